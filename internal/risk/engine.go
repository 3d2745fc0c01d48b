// Package risk turns a fully extracted loan application into a RiskProfile.
//
// The engine is pure: no I/O, no clock, no randomness. Absent or malformed inputs
// degrade the affected category to the highest tier instead of failing, so a
// profile can always be produced once extraction has finished.
package risk

import (
	"math"

	"loan-risk-workers/internal/models"
)

// Thresholds holds every contractual scoring constant.
type Thresholds struct {
	FinancialHigh   int
	FinancialMedium int
	AcademicHigh    int
	AcademicMedium  int
	FraudHigh       int
	FraudMedium     int
	OverallHigh     int
	OverallMedium   int

	// Funding-gap classification: scholarship amount as a share of ReferenceAnnualCost.
	FundingLowCoverage    float64
	FundingMediumCoverage float64
	ReferenceAnnualCost   float64

	FinancialWeight float64
	AcademicWeight  float64
	FraudWeight     float64
}

// DefaultReferenceAnnualCost is the annual cost of attendance the scholarship is measured against.
const DefaultReferenceAnnualCost = 50000.0

func DefaultThresholds() Thresholds {
	return Thresholds{
		FinancialHigh:         60,
		FinancialMedium:       30,
		AcademicHigh:          50,
		AcademicMedium:        25,
		FraudHigh:             50,
		FraudMedium:           25,
		OverallHigh:           70,
		OverallMedium:         35,
		FundingLowCoverage:    0.70,
		FundingMediumCoverage: 0.40,
		ReferenceAnnualCost:   DefaultReferenceAnnualCost,
		FinancialWeight:       40,
		AcademicWeight:        35,
		FraudWeight:           25,
	}
}

// Engine scores applications. The zero value is not usable; build one with NewEngine.
type Engine struct {
	t Thresholds
}

// NewEngine returns an engine using t. A non-positive reference cost falls back to the default.
func NewEngine(t Thresholds) *Engine {
	if t.ReferenceAnnualCost <= 0 {
		t.ReferenceAnnualCost = DefaultReferenceAnnualCost
	}
	return &Engine{t: t}
}

func (e *Engine) Thresholds() Thresholds {
	return e.t
}

// Assess computes the risk profile for app. It never fails; a nil record yields the
// most conservative profile.
func (e *Engine) Assess(app *models.ApplicationRecord) *models.RiskProfile {
	var docs models.ExtractedDocuments
	if app != nil {
		docs = app.Documents
	}

	financial := e.assessFinancial(docs.Bank)
	academic := e.assessAcademic(docs.University, docs.Scholarship)
	fraud := e.assessFraud(docs)

	score := e.overallScore(financial.Tier, academic.Tier, fraud.Tier)
	overall := e.overallTier(score, financial.Tier, academic.Tier, fraud.Tier)
	recommendation := recommend(overall, fraud.Tier)

	profile := &models.RiskProfile{
		Financial:              financial,
		Academic:               academic,
		Fraud:                  fraud,
		Score:                  score,
		OverallRisk:            overall,
		ApprovalRecommendation: recommendation,
	}
	if recommendation == models.RecommendApproveWithConditions {
		profile.Conditions = conditionsFor(profile)
	}
	return profile
}

// tierFactor is the share of a category weight that counts toward the overall score.
var tierFactor = map[models.RiskTier]float64{
	models.RiskHigh:   1.0,
	models.RiskMedium: 0.5,
	models.RiskLow:    0.0,
}

func (e *Engine) overallScore(financial, academic, fraud models.RiskTier) int {
	weighted := e.t.FinancialWeight*tierFactor[financial] +
		e.t.AcademicWeight*tierFactor[academic] +
		e.t.FraudWeight*tierFactor[fraud]
	return clamp(int(math.Round(weighted)), 0, 100)
}

func (e *Engine) overallTier(score int, tiers ...models.RiskTier) models.RiskTier {
	highs := 0
	for _, t := range tiers {
		if t == models.RiskHigh {
			highs++
		}
	}
	switch {
	case highs >= 2 || score >= e.t.OverallHigh:
		return models.RiskHigh
	case score >= e.t.OverallMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func recommend(overall, fraud models.RiskTier) models.Recommendation {
	switch overall {
	case models.RiskLow:
		return models.RecommendApprove
	case models.RiskMedium:
		return models.RecommendApproveWithConditions
	}
	if fraud == models.RiskHigh {
		return models.RecommendReject
	}
	return models.RecommendFurtherReview
}

const (
	conditionFinancial   = "Provide a qualified co-signer or proof of supplementary income"
	conditionAcademic    = "Submit enrollment and academic standing verification at the start of each term"
	conditionFundingGap  = "Provide evidence of funding covering the remaining cost of attendance"
	conditionFraudReview = "Submit original documents for manual verification before disbursement"
)

func conditionsFor(p *models.RiskProfile) []string {
	var out []string
	if p.Financial.Tier != models.RiskLow {
		out = append(out, conditionFinancial)
	}
	if p.Academic.Tier != models.RiskLow {
		out = append(out, conditionAcademic)
	}
	if p.Academic.FundingGapRisk != models.RiskLow {
		out = append(out, conditionFundingGap)
	}
	if p.Fraud.Tier != models.RiskLow {
		out = append(out, conditionFraudReview)
	}
	return out
}

func tierFor(score, high, medium int) models.RiskTier {
	switch {
	case score >= high:
		return models.RiskHigh
	case score >= medium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
