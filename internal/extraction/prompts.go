package extraction

import (
	"strings"

	"loan-risk-workers/internal/models"
)

const promptPreamble = `You are a document analyst for a student loan underwriting team.
Read the attached document and return ONLY a JSON object, with no commentary and no markdown.
Use ISO dates (YYYY-MM-DD). Use numbers for amounts, without currency symbols or separators.
If a value is not present in the document, use an empty string or 0.`

var prompts = map[models.DocumentKind]string{
	models.KindBankStatement: `The document is a bank statement. Return:
{
  "accountHolderName": string,
  "bankName": string,
  "accountNumberLast4": string,
  "currency": string,
  "statementPeriod": {"startDate": string, "endDate": string},
  "currentBalance": number,
  "averageMonthlyIncome": number,
  "averageMonthlyExpenses": number,
  "riskAssessment": {
    "incomeStability": "stable" | "irregular" | "declining",
    "expenseRatio": number (average monthly expenses as a percentage of income, e.g. 72.5),
    "savingsTrend": "increasing" | "stable" | "decreasing",
    "overdraftCount": integer (overdraft events in the statement period),
    "riskFactors": [string]
  }
}`,

	models.KindUniversityAcceptance: `The document is a university acceptance letter. Return:
{
  "studentName": string,
  "universityName": string,
  "programName": string,
  "degreeLevel": string,
  "acceptanceDate": string,
  "programStartDate": string,
  "programDurationYears": number,
  "annualTuition": number,
  "currency": string,
  "riskAssessment": {
    "universityTier": "top-tier" | "mid-tier" | "lower-tier",
    "programMarketability": "high" | "medium" | "low",
    "completionProbability": "high" | "medium" | "low",
    "riskFactors": [string]
  }
}`,

	models.KindScholarshipLetter: `The document is a scholarship award letter. Return:
{
  "recipientName": string,
  "scholarshipName": string,
  "providerName": string,
  "amount": number (annual award),
  "currency": string,
  "awardDate": string,
  "coverageStartDate": string,
  "coverageEndDate": string,
  "conditions": [string],
  "riskAssessment": {
    "documentAuthenticity": "verified" | "suspicious" | "likely-fake",
    "fundingReliability": "high" | "medium" | "low",
    "riskFactors": [string]
  }
}`,

	models.KindIdentityDocument: `The document is a government-issued identity document. Return:
{
  "fullName": string,
  "dateOfBirth": string,
  "documentType": "passport" | "national_id" | "drivers_license" | "other",
  "documentNumber": string,
  "nationality": string,
  "issueDate": string,
  "expiryDate": string
}`,
}

// promptFor returns the full instruction text for kind.
func promptFor(kind models.DocumentKind) string {
	return strings.Join([]string{promptPreamble, prompts[kind]}, "\n\n")
}
