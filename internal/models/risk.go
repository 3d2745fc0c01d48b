// internal/models/risk.go
package models

type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

type Recommendation string

const (
	RecommendApprove               Recommendation = "approve"
	RecommendApproveWithConditions Recommendation = "approve_with_conditions"
	RecommendFurtherReview         Recommendation = "further_review"
	RecommendReject                Recommendation = "reject"
)

type FinancialRisk struct {
	Tier    RiskTier `json:"tier"`
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

type AcademicRisk struct {
	Tier           RiskTier `json:"tier"`
	Score          int      `json:"score"`
	FundingGapRisk RiskTier `json:"fundingGapRisk"`
	Factors        []string `json:"factors"`
}

type FraudRisk struct {
	Tier                 RiskTier `json:"tier"`
	Score                int      `json:"score"`
	NameInconsistency    bool     `json:"nameInconsistency"`
	DateInconsistency    bool     `json:"dateInconsistency"`
	DocumentAuthenticity string   `json:"documentAuthenticity,omitempty"`
	Factors              []string `json:"factors"`
}

// RiskProfile is derived from a complete ApplicationRecord and never mutated.
type RiskProfile struct {
	Financial              FinancialRisk  `json:"financialRisk"`
	Academic               AcademicRisk   `json:"academicRisk"`
	Fraud                  FraudRisk      `json:"fraudRisk"`
	Score                  int            `json:"riskScore"`
	OverallRisk            RiskTier       `json:"overallRisk"`
	ApprovalRecommendation Recommendation `json:"approvalRecommendation"`
	Conditions             []string       `json:"conditions,omitempty"`
}
