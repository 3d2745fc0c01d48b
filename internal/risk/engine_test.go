package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"loan-risk-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEngine() *Engine {
	return NewEngine(DefaultThresholds())
}

func createCleanDocuments() models.ExtractedDocuments {
	return models.ExtractedDocuments{
		Bank: &models.BankInfo{
			AccountHolderName: "Amara Okafor",
			BankName:          "First Federal",
			Currency:          "USD",
			StatementPeriod:   models.StatementPeriod{StartDate: "2024-01-01", EndDate: "2024-03-31"},
			CurrentBalance:    4200,
			RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable",
				ExpenseRatio:    45,
				SavingsTrend:    "increasing",
			},
		},
		University: &models.UniversityAcceptance{
			StudentName:      "Amara Okafor",
			UniversityName:   "State University",
			ProgramName:      "MSc Computer Science",
			AcceptanceDate:   "2024-03-15",
			ProgramStartDate: "2024-09-01",
			RiskAssessment: models.UniversityRiskAssessment{
				UniversityTier:        "top-tier",
				ProgramMarketability:  "high",
				CompletionProbability: "high",
			},
		},
		Scholarship: &models.ScholarshipAcceptance{
			RecipientName:     "Amara Nkechi Okafor",
			ScholarshipName:   "Global Merit Award",
			Amount:            40000,
			AwardDate:         "2024-04-01",
			CoverageStartDate: "2024-09-01",
			CoverageEndDate:   "2025-08-31",
			RiskAssessment: models.ScholarshipRiskAssessment{
				DocumentAuthenticity: "verified",
				FundingReliability:   "high",
			},
		},
		Identity: &models.IdentityInfo{
			FullName:    "AMARA NKECHI OKAFOR",
			DateOfBirth: "2000-05-20",
			IssueDate:   "2020-01-10",
			ExpiryDate:  "2030-01-09",
		},
	}
}

func createRecord(docs models.ExtractedDocuments) *models.ApplicationRecord {
	return &models.ApplicationRecord{
		ID:          "app-001",
		ApplicantID: "applicant-001",
		Status:      models.StatusDocumentsProcessed,
		Documents:   docs,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestEngine_Assess_ConcreteScenario(t *testing.T) {
	docs := createCleanDocuments()
	docs.Bank.CurrentBalance = 500
	docs.Bank.RiskAssessment = models.BankRiskAssessment{
		IncomeStability: "declining",
		ExpenseRatio:    85,
		SavingsTrend:    "decreasing",
		OverdraftCount:  2,
	}
	docs.University.RiskAssessment = models.UniversityRiskAssessment{
		UniversityTier:        "mid-tier",
		ProgramMarketability:  "medium",
		CompletionProbability: "high",
	}
	docs.Scholarship.Amount = 0.75 * DefaultReferenceAnnualCost

	profile := newTestEngine().Assess(createRecord(docs))

	assert.Equal(t, 95, profile.Financial.Score)
	assert.Equal(t, models.RiskHigh, profile.Financial.Tier)

	assert.Equal(t, 20, profile.Academic.Score)
	assert.Equal(t, models.RiskLow, profile.Academic.Tier)
	assert.Equal(t, models.RiskLow, profile.Academic.FundingGapRisk)

	assert.Equal(t, 0, profile.Fraud.Score)
	assert.Equal(t, models.RiskLow, profile.Fraud.Tier)

	assert.Equal(t, 40, profile.Score)
	assert.Equal(t, models.RiskMedium, profile.OverallRisk)
	assert.Equal(t, models.RecommendApproveWithConditions, profile.ApprovalRecommendation)
	assert.Equal(t, []string{conditionFinancial}, profile.Conditions)
}

func TestEngine_Assess_CleanApplicationApproved(t *testing.T) {
	profile := newTestEngine().Assess(createRecord(createCleanDocuments()))

	assert.Equal(t, models.RiskLow, profile.Financial.Tier)
	assert.Equal(t, models.RiskLow, profile.Academic.Tier)
	assert.Equal(t, models.RiskLow, profile.Fraud.Tier)
	assert.Equal(t, 0, profile.Score)
	assert.Equal(t, models.RiskLow, profile.OverallRisk)
	assert.Equal(t, models.RecommendApprove, profile.ApprovalRecommendation)
	assert.Empty(t, profile.Conditions)
}

func TestEngine_Assess_IsIdempotent(t *testing.T) {
	engine := newTestEngine()
	docs := createCleanDocuments()
	docs.Bank.RiskAssessment.OverdraftCount = 3
	docs.Scholarship.RiskAssessment.DocumentAuthenticity = "suspicious"
	record := createRecord(docs)

	first, err := json.Marshal(engine.Assess(record))
	require.NoError(t, err)
	second, err := json.Marshal(engine.Assess(record))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestEngine_Assess_NilRecordIsMostConservative(t *testing.T) {
	profile := newTestEngine().Assess(nil)

	assert.Equal(t, models.RiskHigh, profile.Financial.Tier)
	assert.Equal(t, models.RiskHigh, profile.Academic.Tier)
	assert.Equal(t, models.RiskHigh, profile.Fraud.Tier)
	assert.Equal(t, 100, profile.Score)
	assert.Equal(t, models.RiskHigh, profile.OverallRisk)
	assert.Equal(t, models.RecommendReject, profile.ApprovalRecommendation)
}

// ==========================
// Overall Tier / Recommendation Table
// ==========================

// referenceOutcome restates the weighting table independently of the engine code.
func referenceOutcome(fin, aca, fra models.RiskTier) (int, models.RiskTier, models.Recommendation) {
	share := func(tier models.RiskTier, weight float64) float64 {
		switch tier {
		case models.RiskHigh:
			return weight
		case models.RiskMedium:
			return weight / 2
		}
		return 0
	}
	score := int(math.Round(share(fin, 40) + share(aca, 35) + share(fra, 25)))

	highs := 0
	for _, t := range []models.RiskTier{fin, aca, fra} {
		if t == models.RiskHigh {
			highs++
		}
	}

	overall := models.RiskLow
	if highs >= 2 || score >= 70 {
		overall = models.RiskHigh
	} else if score >= 35 {
		overall = models.RiskMedium
	}

	rec := models.RecommendApprove
	switch {
	case overall == models.RiskMedium:
		rec = models.RecommendApproveWithConditions
	case overall == models.RiskHigh && fra == models.RiskHigh:
		rec = models.RecommendReject
	case overall == models.RiskHigh:
		rec = models.RecommendFurtherReview
	}
	return score, overall, rec
}

func TestEngine_OverallOutcome_AllTierCombinations(t *testing.T) {
	engine := newTestEngine()
	tiers := []models.RiskTier{models.RiskLow, models.RiskMedium, models.RiskHigh}

	for _, fin := range tiers {
		for _, aca := range tiers {
			for _, fra := range tiers {
				name := fmt.Sprintf("financial=%s/academic=%s/fraud=%s", fin, aca, fra)
				t.Run(name, func(t *testing.T) {
					wantScore, wantTier, wantRec := referenceOutcome(fin, aca, fra)

					score := engine.overallScore(fin, aca, fra)
					tier := engine.overallTier(score, fin, aca, fra)

					assert.Equal(t, wantScore, score)
					assert.Equal(t, wantTier, tier)
					assert.Equal(t, wantRec, recommend(tier, fra))
					assert.GreaterOrEqual(t, score, 0)
					assert.LessOrEqual(t, score, 100)
				})
			}
		}
	}
}

func TestEngine_OverallOutcome_KnownRows(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name          string
		fin, aca, fra models.RiskTier
		expectedScore int
		expectedTier  models.RiskTier
		expectedRec   models.Recommendation
	}{
		{"financial high alone", models.RiskHigh, models.RiskLow, models.RiskLow, 40, models.RiskMedium, models.RecommendApproveWithConditions},
		{"academic high alone", models.RiskLow, models.RiskHigh, models.RiskLow, 35, models.RiskMedium, models.RecommendApproveWithConditions},
		{"fraud high alone", models.RiskLow, models.RiskLow, models.RiskHigh, 25, models.RiskLow, models.RecommendApprove},
		{"two highs without fraud", models.RiskHigh, models.RiskHigh, models.RiskLow, 75, models.RiskHigh, models.RecommendFurtherReview},
		{"two highs with fraud", models.RiskHigh, models.RiskLow, models.RiskHigh, 65, models.RiskHigh, models.RecommendReject},
		{"score reaches 70 with one high", models.RiskHigh, models.RiskMedium, models.RiskMedium, 70, models.RiskHigh, models.RecommendFurtherReview},
		{"all medium", models.RiskMedium, models.RiskMedium, models.RiskMedium, 50, models.RiskMedium, models.RecommendApproveWithConditions},
		{"academic and fraud medium", models.RiskLow, models.RiskMedium, models.RiskMedium, 30, models.RiskLow, models.RecommendApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.overallScore(tt.fin, tt.aca, tt.fra)
			tier := engine.overallTier(score, tt.fin, tt.aca, tt.fra)
			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectedTier, tier)
			assert.Equal(t, tt.expectedRec, recommend(tier, tt.fra))
		})
	}
}

// ==========================
// Financial Category Tests
// ==========================

func TestEngine_AssessFinancial(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name          string
		bank          *models.BankInfo
		expectedScore int
		expectedTier  models.RiskTier
	}{
		{
			name:          "missing bank data is high regardless of other fields",
			bank:          nil,
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "healthy account",
			bank: &models.BankInfo{CurrentBalance: 1000, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable", ExpenseRatio: 50, SavingsTrend: "stable",
			}},
			expectedScore: 0,
			expectedTier:  models.RiskLow,
		},
		{
			name: "expense ratio exactly 80 is the elevated band",
			bank: &models.BankInfo{CurrentBalance: 1000, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable", ExpenseRatio: 80, SavingsTrend: "stable",
			}},
			expectedScore: 15,
			expectedTier:  models.RiskLow,
		},
		{
			name: "irregular income reaches medium",
			bank: &models.BankInfo{CurrentBalance: 1000, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "Irregular", ExpenseRatio: 61, SavingsTrend: "increasing",
			}},
			expectedScore: 45,
			expectedTier:  models.RiskMedium,
		},
		{
			name: "zero balance adds forty",
			bank: &models.BankInfo{CurrentBalance: 0, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable", SavingsTrend: "decreasing",
			}},
			expectedScore: 60,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "score is clamped at 100",
			bank: &models.BankInfo{CurrentBalance: -250, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "declining", ExpenseRatio: 120, SavingsTrend: "decreasing", OverdraftCount: 9,
			}},
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "negative overdraft count is treated as the worst case",
			bank: &models.BankInfo{CurrentBalance: 10, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable", SavingsTrend: "stable", OverdraftCount: -3,
			}},
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "huge overdraft count saturates instead of overflowing",
			bank: &models.BankInfo{CurrentBalance: 10, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "declining", SavingsTrend: "stable", OverdraftCount: math.MaxInt,
			}},
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "eleven overdrafts score the same as ten",
			bank: &models.BankInfo{CurrentBalance: 10, RiskAssessment: models.BankRiskAssessment{
				IncomeStability: "stable", SavingsTrend: "stable", OverdraftCount: 11,
			}},
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.assessFinancial(tt.bank)
			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedTier, result.Tier)
			assert.NotNil(t, result.Factors)
		})
	}
}

func TestEngine_Assess_MissingBankWithPerfectOtherDocuments(t *testing.T) {
	docs := createCleanDocuments()
	docs.Bank = nil

	profile := newTestEngine().Assess(createRecord(docs))

	assert.Equal(t, models.RiskHigh, profile.Financial.Tier)
	assert.Contains(t, profile.Financial.Factors, "bank statement data missing")
}

// ==========================
// Academic Category Tests
// ==========================

func TestEngine_FundingGap(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name        string
		scholarship *models.ScholarshipAcceptance
		expected    models.RiskTier
	}{
		{"missing scholarship", nil, models.RiskHigh},
		{"zero amount", &models.ScholarshipAcceptance{Amount: 0}, models.RiskHigh},
		{"exactly 70 percent", &models.ScholarshipAcceptance{Amount: 35000}, models.RiskLow},
		{"full coverage", &models.ScholarshipAcceptance{Amount: 60000}, models.RiskLow},
		{"exactly 40 percent", &models.ScholarshipAcceptance{Amount: 20000}, models.RiskMedium},
		{"just under 40 percent", &models.ScholarshipAcceptance{Amount: 19999}, models.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.fundingGap(tt.scholarship))
		})
	}
}

func TestEngine_AssessAcademic(t *testing.T) {
	engine := newTestEngine()
	fullScholarship := &models.ScholarshipAcceptance{Amount: 50000}

	tests := []struct {
		name          string
		university    *models.UniversityAcceptance
		scholarship   *models.ScholarshipAcceptance
		expectedScore int
		expectedTier  models.RiskTier
	}{
		{
			name:          "missing university data",
			university:    nil,
			scholarship:   fullScholarship,
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "lower tier with low marketability is medium",
			university: &models.UniversityAcceptance{RiskAssessment: models.UniversityRiskAssessment{
				UniversityTier: "lower-tier", ProgramMarketability: "low", CompletionProbability: "high",
			}},
			scholarship:   fullScholarship,
			expectedScore: 45,
			expectedTier:  models.RiskMedium,
		},
		{
			name: "medium completion pushes to high",
			university: &models.UniversityAcceptance{RiskAssessment: models.UniversityRiskAssessment{
				UniversityTier: "lower_tier", ProgramMarketability: "low", CompletionProbability: "medium",
			}},
			scholarship:   fullScholarship,
			expectedScore: 60,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "missing scholarship adds high funding gap",
			university: &models.UniversityAcceptance{RiskAssessment: models.UniversityRiskAssessment{
				UniversityTier: "top-tier", ProgramMarketability: "high", CompletionProbability: "high",
			}},
			scholarship:   nil,
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
		},
		{
			name: "medium funding gap",
			university: &models.UniversityAcceptance{RiskAssessment: models.UniversityRiskAssessment{
				UniversityTier: "mid-tier", ProgramMarketability: "high", CompletionProbability: "high",
			}},
			scholarship:   &models.ScholarshipAcceptance{Amount: 25000},
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.assessAcademic(tt.university, tt.scholarship)
			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedTier, result.Tier)
		})
	}
}

// ==========================
// Fraud Category Tests
// ==========================

func TestEngine_AssessFraud(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name          string
		mutate        func(d *models.ExtractedDocuments)
		expectedScore int
		expectedTier  models.RiskTier
		validate      func(t *testing.T, r models.FraudRisk)
	}{
		{
			name:          "no triggers",
			mutate:        func(d *models.ExtractedDocuments) {},
			expectedScore: 0,
			expectedTier:  models.RiskLow,
		},
		{
			name: "name mismatch alone is medium",
			mutate: func(d *models.ExtractedDocuments) {
				d.Bank.AccountHolderName = "John Smith"
			},
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
			validate: func(t *testing.T, r models.FraudRisk) {
				assert.True(t, r.NameInconsistency)
				assert.False(t, r.DateInconsistency)
			},
		},
		{
			name: "acceptance after program start",
			mutate: func(d *models.ExtractedDocuments) {
				d.University.AcceptanceDate = "2024-10-01"
			},
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
			validate: func(t *testing.T, r models.FraudRisk) {
				assert.True(t, r.DateInconsistency)
			},
		},
		{
			name: "several date issues count once",
			mutate: func(d *models.ExtractedDocuments) {
				d.Identity.IssueDate = "2031-01-01"
				d.Scholarship.CoverageStartDate = "2026-01-01"
			},
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
		},
		{
			name: "suspicious scholarship letter",
			mutate: func(d *models.ExtractedDocuments) {
				d.Scholarship.RiskAssessment.DocumentAuthenticity = "suspicious"
			},
			expectedScore: 25,
			expectedTier:  models.RiskMedium,
		},
		{
			name: "likely fake is high on its own",
			mutate: func(d *models.ExtractedDocuments) {
				d.Scholarship.RiskAssessment.DocumentAuthenticity = "Likely Fake"
			},
			expectedScore: 25,
			expectedTier:  models.RiskHigh,
			validate: func(t *testing.T, r models.FraudRisk) {
				assert.Equal(t, "likely-fake", r.DocumentAuthenticity)
			},
		},
		{
			name: "two triggers are high",
			mutate: func(d *models.ExtractedDocuments) {
				d.University.StudentName = "Someone Else"
				d.Scholarship.RiskAssessment.DocumentAuthenticity = "suspicious"
			},
			expectedScore: 50,
			expectedTier:  models.RiskHigh,
		},
		{
			name: "unparseable dates are ignored",
			mutate: func(d *models.ExtractedDocuments) {
				d.Identity.IssueDate = "10/01/2031"
			},
			expectedScore: 0,
			expectedTier:  models.RiskLow,
		},
		{
			name: "missing identity is high",
			mutate: func(d *models.ExtractedDocuments) {
				d.Identity = nil
			},
			expectedScore: 100,
			expectedTier:  models.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := createCleanDocuments()
			tt.mutate(&docs)

			result := engine.assessFraud(docs)

			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedTier, result.Tier)
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestNameTokens(t *testing.T) {
	assert.Equal(t, map[string]bool{"amara": true, "okafor": true}, nameTokens("Dr. Amara OKAFOR"))
	assert.Empty(t, nameTokens("  "))
}

func TestNormalizeTag(t *testing.T) {
	tests := map[string]string{
		"Lower Tier":  "lower-tier",
		"lower_tier":  "lower-tier",
		" mid-tier ":  "mid-tier",
		"LIKELY-FAKE": "likely-fake",
		"":            "",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, normalizeTag(in), "input %q", in)
	}
}

// ==========================
// Malformed Input Tests
// ==========================

func TestEngine_AssessFinancial_MalformedInputs(t *testing.T) {
	engine := newTestEngine()
	healthy := models.BankRiskAssessment{IncomeStability: "stable", ExpenseRatio: 40, SavingsTrend: "stable"}

	tests := []struct {
		name           string
		mutate         func(ra *models.BankRiskAssessment)
		expectedScore  int
		expectedFactor string
	}{
		{
			name:           "unknown income stability",
			mutate:         func(ra *models.BankRiskAssessment) { ra.IncomeStability = "unknown" },
			expectedScore:  30,
			expectedFactor: `income stability not recognised ("unknown")`,
		},
		{
			name:           "empty income stability",
			mutate:         func(ra *models.BankRiskAssessment) { ra.IncomeStability = "" },
			expectedScore:  30,
			expectedFactor: `income stability not recognised ("")`,
		},
		{
			name:           "empty savings trend",
			mutate:         func(ra *models.BankRiskAssessment) { ra.SavingsTrend = "" },
			expectedScore:  20,
			expectedFactor: `savings trend not recognised ("")`,
		},
		{
			name:           "negative expense ratio",
			mutate:         func(ra *models.BankRiskAssessment) { ra.ExpenseRatio = -50 },
			expectedScore:  25,
			expectedFactor: "expense ratio -50% is not a valid percentage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra := healthy
			tt.mutate(&ra)

			result := engine.assessFinancial(&models.BankInfo{CurrentBalance: 1000, RiskAssessment: ra})

			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Contains(t, result.Factors, tt.expectedFactor)
		})
	}
}

func TestEngine_AssessAcademic_MalformedInputs(t *testing.T) {
	engine := newTestEngine()
	fullScholarship := &models.ScholarshipAcceptance{Amount: 50000}

	tests := []struct {
		name           string
		ra             models.UniversityRiskAssessment
		expectedScore  int
		expectedFactor string
	}{
		{
			name:           "empty university tier",
			ra:             models.UniversityRiskAssessment{ProgramMarketability: "high", CompletionProbability: "high"},
			expectedScore:  20,
			expectedFactor: `university tier not recognised ("")`,
		},
		{
			name:           "unknown marketability",
			ra:             models.UniversityRiskAssessment{UniversityTier: "top-tier", ProgramMarketability: "n/a", CompletionProbability: "high"},
			expectedScore:  25,
			expectedFactor: `program marketability not recognised ("n/a")`,
		},
		{
			name:           "unknown completion probability",
			ra:             models.UniversityRiskAssessment{UniversityTier: "top-tier", ProgramMarketability: "high", CompletionProbability: "very low"},
			expectedScore:  30,
			expectedFactor: `completion probability not recognised ("very low")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.assessAcademic(&models.UniversityAcceptance{RiskAssessment: tt.ra}, fullScholarship)

			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Contains(t, result.Factors, tt.expectedFactor)
		})
	}
}

func TestEngine_AssessFraud_UnreadableAuthenticityIsSuspicious(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name   string
		mutate func(d *models.ExtractedDocuments)
	}{
		{"unknown value", func(d *models.ExtractedDocuments) { d.Scholarship.RiskAssessment.DocumentAuthenticity = "unverifiable" }},
		{"empty value", func(d *models.ExtractedDocuments) { d.Scholarship.RiskAssessment.DocumentAuthenticity = "" }},
		{"missing scholarship", func(d *models.ExtractedDocuments) { d.Scholarship = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := createCleanDocuments()
			tt.mutate(&docs)

			result := engine.assessFraud(docs)

			assert.Equal(t, 25, result.Score)
			assert.Equal(t, models.RiskMedium, result.Tier)
			assert.Equal(t, models.AuthenticitySuspicious, result.DocumentAuthenticity)
		})
	}
}

func TestEngine_Assess_GarbledAnswersAreNeverApproved(t *testing.T) {
	docs := createCleanDocuments()
	docs.Bank.RiskAssessment = models.BankRiskAssessment{IncomeStability: "unknown", SavingsTrend: "", ExpenseRatio: -50}
	docs.University.RiskAssessment = models.UniversityRiskAssessment{
		UniversityTier: "", ProgramMarketability: "n/a", CompletionProbability: "very low",
	}
	docs.Scholarship.RiskAssessment.DocumentAuthenticity = "unverifiable"

	profile := newTestEngine().Assess(createRecord(docs))

	assert.Equal(t, models.RiskHigh, profile.Financial.Tier)
	assert.Equal(t, models.RiskHigh, profile.Academic.Tier)
	assert.Equal(t, models.RiskMedium, profile.Fraud.Tier)
	assert.Equal(t, models.RiskHigh, profile.OverallRisk)
	assert.Equal(t, models.RecommendFurtherReview, profile.ApprovalRecommendation)
}

// ==========================
// Conditions
// ==========================

func TestEngine_Assess_ConditionsPerCategory(t *testing.T) {
	docs := createCleanDocuments()
	docs.Bank.RiskAssessment.IncomeStability = "irregular"
	docs.Bank.RiskAssessment.SavingsTrend = "decreasing"
	docs.Bank.RiskAssessment.OverdraftCount = 1
	docs.Scholarship.Amount = 25000
	docs.Scholarship.RiskAssessment.DocumentAuthenticity = "suspicious"

	profile := newTestEngine().Assess(createRecord(docs))

	require.Equal(t, models.RecommendApproveWithConditions, profile.ApprovalRecommendation)
	assert.Equal(t, []string{conditionFinancial, conditionFundingGap, conditionFraudReview}, profile.Conditions)
}
