// internal/models/records.go
package models

// Qualitative tags returned by the inference service inside riskAssessment blocks.
const (
	IncomeStable    = "stable"
	IncomeIrregular = "irregular"
	IncomeDeclining = "declining"

	SavingsIncreasing = "increasing"
	SavingsStable     = "stable"
	SavingsDecreasing = "decreasing"

	TierTopUniversity   = "top-tier"
	TierMidUniversity   = "mid-tier"
	TierLowerUniversity = "lower-tier"

	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"

	AuthenticityVerified   = "verified"
	AuthenticitySuspicious = "suspicious"
	AuthenticityLikelyFake = "likely-fake"
)

type StatementPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type BankRiskAssessment struct {
	IncomeStability string   `json:"incomeStability"`
	ExpenseRatio    float64  `json:"expenseRatio"` // percent of income, 0-100+
	SavingsTrend    string   `json:"savingsTrend"`
	OverdraftCount  int      `json:"overdraftCount"`
	RiskFactors     []string `json:"riskFactors"`
}

type BankInfo struct {
	AccountHolderName      string             `json:"accountHolderName"`
	BankName               string             `json:"bankName"`
	AccountNumberLast4     string             `json:"accountNumberLast4,omitempty"`
	Currency               string             `json:"currency"`
	StatementPeriod        StatementPeriod    `json:"statementPeriod"`
	CurrentBalance         float64            `json:"currentBalance"`
	AverageMonthlyIncome   float64            `json:"averageMonthlyIncome"`
	AverageMonthlyExpenses float64            `json:"averageMonthlyExpenses"`
	RiskAssessment         BankRiskAssessment `json:"riskAssessment"`
}

type UniversityRiskAssessment struct {
	UniversityTier        string   `json:"universityTier"`
	ProgramMarketability  string   `json:"programMarketability"`
	CompletionProbability string   `json:"completionProbability"`
	RiskFactors           []string `json:"riskFactors"`
}

type UniversityAcceptance struct {
	StudentName          string                   `json:"studentName"`
	UniversityName       string                   `json:"universityName"`
	ProgramName          string                   `json:"programName"`
	DegreeLevel          string                   `json:"degreeLevel"`
	AcceptanceDate       string                   `json:"acceptanceDate"`
	ProgramStartDate     string                   `json:"programStartDate"`
	ProgramDurationYears float64                  `json:"programDurationYears"`
	AnnualTuition        float64                  `json:"annualTuition"`
	Currency             string                   `json:"currency"`
	RiskAssessment       UniversityRiskAssessment `json:"riskAssessment"`
}

type ScholarshipRiskAssessment struct {
	DocumentAuthenticity string   `json:"documentAuthenticity"`
	FundingReliability   string   `json:"fundingReliability"`
	RiskFactors          []string `json:"riskFactors"`
}

type ScholarshipAcceptance struct {
	RecipientName     string                    `json:"recipientName"`
	ScholarshipName   string                    `json:"scholarshipName"`
	ProviderName      string                    `json:"providerName"`
	Amount            float64                   `json:"amount"` // annual award
	Currency          string                    `json:"currency"`
	AwardDate         string                    `json:"awardDate"`
	CoverageStartDate string                    `json:"coverageStartDate"`
	CoverageEndDate   string                    `json:"coverageEndDate"`
	Conditions        []string                  `json:"conditions"`
	RiskAssessment    ScholarshipRiskAssessment `json:"riskAssessment"`
}

type IdentityInfo struct {
	FullName       string `json:"fullName"`
	DateOfBirth    string `json:"dateOfBirth"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	Nationality    string `json:"nationality"`
	IssueDate      string `json:"issueDate"`
	ExpiryDate     string `json:"expiryDate"`
}

// ExtractedDocuments holds the per-kind extraction results of one application.
// A nil field means the extraction did not succeed (or never ran).
type ExtractedDocuments struct {
	Bank        *BankInfo              `json:"bankInfo,omitempty"`
	University  *UniversityAcceptance  `json:"universityAcceptance,omitempty"`
	Scholarship *ScholarshipAcceptance `json:"scholarshipAcceptance,omitempty"`
	Identity    *IdentityInfo          `json:"identityInfo,omitempty"`
}

// Complete reports whether all four records are present.
func (d ExtractedDocuments) Complete() bool {
	return d.Bank != nil && d.University != nil && d.Scholarship != nil && d.Identity != nil
}
