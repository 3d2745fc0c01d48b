package risk

import (
	"fmt"
	"strings"

	"loan-risk-workers/internal/models"
)

// Points awarded per qualitative tag. A tag missing from its table scores that table's
// maximum: a value the engine cannot read never lowers the risk.
var (
	incomeStabilityPoints = map[string]int{
		models.IncomeStable:    0,
		models.IncomeIrregular: 30,
		models.IncomeDeclining: 30,
	}
	savingsTrendPoints = map[string]int{
		models.SavingsIncreasing: 0,
		models.SavingsStable:     0,
		models.SavingsDecreasing: 20,
	}
	universityTierPoints = map[string]int{
		models.TierTopUniversity:   0,
		models.TierMidUniversity:   10,
		models.TierLowerUniversity: 20,
	}
	marketabilityPoints = map[string]int{
		models.LevelHigh:   0,
		models.LevelMedium: 10,
		models.LevelLow:    25,
	}
	completionPoints = map[string]int{
		models.LevelHigh:   0,
		models.LevelMedium: 15,
		models.LevelLow:    30,
	}
	fundingGapPoints = map[models.RiskTier]int{
		models.RiskHigh:   25,
		models.RiskMedium: 15,
		models.RiskLow:    0,
	}
)

const (
	expenseRatioSevere   = 80.0
	expenseRatioElevated = 60.0
	expenseSeverePoints  = 25
	expenseElevPoints    = 15
	overdraftPoints      = 10
	maxCountedOverdrafts = 10
	nonPositiveBalance   = 40
	fraudTriggerPoints   = 25
	missingCategoryScore = 100
)

// normalizeTag lower-cases a tag and folds "_" and spaces into "-", so "Lower Tier"
// and "lower_tier" both read as "lower-tier".
func normalizeTag(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.ReplaceAll(t, "_", "-")
	return strings.Join(strings.Fields(strings.ReplaceAll(t, "-", " ")), "-")
}

// tagScore returns the points for raw under table and the factor to report, if any.
func tagScore(table map[string]int, label, raw string) (int, string) {
	tag := normalizeTag(raw)
	if p, ok := table[tag]; ok {
		if p == 0 {
			return 0, ""
		}
		return p, fmt.Sprintf("%s is %s", label, tag)
	}

	worst := 0
	for _, p := range table {
		if p > worst {
			worst = p
		}
	}
	return worst, fmt.Sprintf("%s not recognised (%q)", label, raw)
}

func (e *Engine) assessFinancial(bank *models.BankInfo) models.FinancialRisk {
	if bank == nil {
		return models.FinancialRisk{
			Tier:    models.RiskHigh,
			Score:   missingCategoryScore,
			Factors: []string{"bank statement data missing"},
		}
	}

	ra := bank.RiskAssessment
	score := 0
	factors := []string{}

	add := func(p int, factor string) {
		score += p
		if factor != "" {
			factors = append(factors, factor)
		}
	}

	add(tagScore(incomeStabilityPoints, "income stability", ra.IncomeStability))

	switch {
	case ra.ExpenseRatio < 0:
		add(expenseSeverePoints, fmt.Sprintf("expense ratio %.0f%% is not a valid percentage", ra.ExpenseRatio))
	case ra.ExpenseRatio > expenseRatioSevere:
		add(expenseSeverePoints, fmt.Sprintf("expense ratio %.0f%% exceeds %.0f%%", ra.ExpenseRatio, expenseRatioSevere))
	case ra.ExpenseRatio > expenseRatioElevated:
		add(expenseElevPoints, fmt.Sprintf("expense ratio %.0f%% exceeds %.0f%%", ra.ExpenseRatio, expenseRatioElevated))
	}

	add(tagScore(savingsTrendPoints, "savings trend", ra.SavingsTrend))

	// Counts past maxCountedOverdrafts already saturate the score.
	switch {
	case ra.OverdraftCount < 0:
		add(overdraftPoints*maxCountedOverdrafts, fmt.Sprintf("overdraft count %d is not valid", ra.OverdraftCount))
	case ra.OverdraftCount > 0:
		add(overdraftPoints*min(ra.OverdraftCount, maxCountedOverdrafts),
			fmt.Sprintf("%d overdraft(s) in statement period", ra.OverdraftCount))
	}

	if bank.CurrentBalance <= 0 {
		add(nonPositiveBalance, "current balance is zero or negative")
	}

	score = clamp(score, 0, 100)
	return models.FinancialRisk{
		Tier:    tierFor(score, e.t.FinancialHigh, e.t.FinancialMedium),
		Score:   score,
		Factors: factors,
	}
}

func (e *Engine) assessAcademic(uni *models.UniversityAcceptance, sch *models.ScholarshipAcceptance) models.AcademicRisk {
	gap := e.fundingGap(sch)

	if uni == nil {
		return models.AcademicRisk{
			Tier:           models.RiskHigh,
			Score:          missingCategoryScore,
			FundingGapRisk: gap,
			Factors:        []string{"university acceptance data missing"},
		}
	}

	ra := uni.RiskAssessment
	score := 0
	factors := []string{}

	add := func(p int, factor string) {
		score += p
		if factor != "" {
			factors = append(factors, factor)
		}
	}

	add(tagScore(universityTierPoints, "university tier", ra.UniversityTier))
	add(tagScore(marketabilityPoints, "program marketability", ra.ProgramMarketability))
	add(tagScore(completionPoints, "completion probability", ra.CompletionProbability))

	if p := fundingGapPoints[gap]; p > 0 {
		add(p, fmt.Sprintf("funding gap risk is %s", gap))
	}

	score = clamp(score, 0, 100)
	return models.AcademicRisk{
		Tier:           tierFor(score, e.t.AcademicHigh, e.t.AcademicMedium),
		Score:          score,
		FundingGapRisk: gap,
		Factors:        factors,
	}
}

// fundingGap classifies how much of the reference annual cost the scholarship covers.
func (e *Engine) fundingGap(sch *models.ScholarshipAcceptance) models.RiskTier {
	if sch == nil || sch.Amount <= 0 {
		return models.RiskHigh
	}
	coverage := sch.Amount / e.t.ReferenceAnnualCost
	switch {
	case coverage >= e.t.FundingLowCoverage:
		return models.RiskLow
	case coverage >= e.t.FundingMediumCoverage:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func (e *Engine) assessFraud(docs models.ExtractedDocuments) models.FraudRisk {
	if docs.Identity == nil {
		return models.FraudRisk{
			Tier:    models.RiskHigh,
			Score:   missingCategoryScore,
			Factors: []string{"identity document data missing"},
		}
	}

	score := 0
	factors := []string{}

	nameMismatch := namesInconsistent(docs)
	if nameMismatch {
		score += fraudTriggerPoints
		factors = append(factors, "applicant name differs across documents")
	}

	dateIssues := illogicalDates(docs)
	if len(dateIssues) > 0 {
		score += fraudTriggerPoints
		factors = append(factors, dateIssues...)
	}

	// An authenticity the engine cannot read counts as suspicious.
	authenticity := ""
	if docs.Scholarship != nil {
		authenticity = normalizeTag(docs.Scholarship.RiskAssessment.DocumentAuthenticity)
	}
	switch authenticity {
	case models.AuthenticityVerified:
	case models.AuthenticitySuspicious, models.AuthenticityLikelyFake:
		score += fraudTriggerPoints
		factors = append(factors, fmt.Sprintf("scholarship letter authenticity assessed as %s", authenticity))
	case "":
		authenticity = models.AuthenticitySuspicious
		score += fraudTriggerPoints
		factors = append(factors, "scholarship letter authenticity unavailable, treated as suspicious")
	default:
		factors = append(factors, fmt.Sprintf("scholarship letter authenticity not recognised (%q), treated as suspicious", authenticity))
		authenticity = models.AuthenticitySuspicious
		score += fraudTriggerPoints
	}

	tier := models.RiskLow
	switch {
	case score >= e.t.FraudHigh || authenticity == models.AuthenticityLikelyFake:
		tier = models.RiskHigh
	case score >= e.t.FraudMedium || authenticity == models.AuthenticitySuspicious:
		tier = models.RiskMedium
	}

	return models.FraudRisk{
		Tier:                 tier,
		Score:                score,
		NameInconsistency:    nameMismatch,
		DateInconsistency:    len(dateIssues) > 0,
		DocumentAuthenticity: authenticity,
		Factors:              factors,
	}
}
