package extraction

import (
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/models"
)

// Schemas require the fields the risk engine reads and type-check everything else. Tag
// patterns accept the same spellings normalizeTag folds (case, "_", spaces), so an answer
// outside a vocabulary fails as a parse error here instead of reaching the engine.
var schemas = map[models.DocumentKind]*validation.Schema{
	models.KindBankStatement: validation.MustCompileSchema("bankInfo", `{
  "type": "object",
  "required": ["accountHolderName", "currentBalance", "riskAssessment"],
  "properties": {
    "accountHolderName": {"type": "string"},
    "bankName": {"type": ["string", "null"]},
    "accountNumberLast4": {"type": ["string", "null"]},
    "currency": {"type": ["string", "null"]},
    "statementPeriod": {
      "type": ["object", "null"],
      "properties": {
        "startDate": {"type": ["string", "null"]},
        "endDate": {"type": ["string", "null"]}
      }
    },
    "currentBalance": {"type": "number"},
    "averageMonthlyIncome": {"type": ["number", "null"]},
    "averageMonthlyExpenses": {"type": ["number", "null"]},
    "riskAssessment": {
      "type": "object",
      "required": ["incomeStability", "expenseRatio", "savingsTrend", "overdraftCount"],
      "properties": {
        "incomeStability": {"type": "string", "pattern": "(?i)^\\s*(stable|irregular|declining)\\s*$"},
        "expenseRatio": {"type": "number", "minimum": 0},
        "savingsTrend": {"type": "string", "pattern": "(?i)^\\s*(increasing|stable|decreasing)\\s*$"},
        "overdraftCount": {"type": "integer", "minimum": 0, "maximum": 1000},
        "riskFactors": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    }
  }
}`),

	models.KindUniversityAcceptance: validation.MustCompileSchema("universityAcceptance", `{
  "type": "object",
  "required": ["studentName", "universityName", "riskAssessment"],
  "properties": {
    "studentName": {"type": "string"},
    "universityName": {"type": "string"},
    "programName": {"type": ["string", "null"]},
    "degreeLevel": {"type": ["string", "null"]},
    "acceptanceDate": {"type": ["string", "null"]},
    "programStartDate": {"type": ["string", "null"]},
    "programDurationYears": {"type": ["number", "null"]},
    "annualTuition": {"type": ["number", "null"]},
    "currency": {"type": ["string", "null"]},
    "riskAssessment": {
      "type": "object",
      "required": ["universityTier", "programMarketability", "completionProbability"],
      "properties": {
        "universityTier": {"type": "string", "pattern": "(?i)^\\s*(top|mid|lower)[-_ ]+tier\\s*$"},
        "programMarketability": {"type": "string", "pattern": "(?i)^\\s*(high|medium|low)\\s*$"},
        "completionProbability": {"type": "string", "pattern": "(?i)^\\s*(high|medium|low)\\s*$"},
        "riskFactors": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    }
  }
}`),

	models.KindScholarshipLetter: validation.MustCompileSchema("scholarshipAcceptance", `{
  "type": "object",
  "required": ["recipientName", "amount", "riskAssessment"],
  "properties": {
    "recipientName": {"type": "string"},
    "scholarshipName": {"type": ["string", "null"]},
    "providerName": {"type": ["string", "null"]},
    "amount": {"type": "number", "minimum": 0},
    "currency": {"type": ["string", "null"]},
    "awardDate": {"type": ["string", "null"]},
    "coverageStartDate": {"type": ["string", "null"]},
    "coverageEndDate": {"type": ["string", "null"]},
    "conditions": {"type": ["array", "null"], "items": {"type": "string"}},
    "riskAssessment": {
      "type": "object",
      "required": ["documentAuthenticity"],
      "properties": {
        "documentAuthenticity": {"type": "string", "pattern": "(?i)^\\s*(verified|suspicious|likely[-_ ]+fake)\\s*$"},
        "fundingReliability": {"type": ["string", "null"]},
        "riskFactors": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    }
  }
}`),

	models.KindIdentityDocument: validation.MustCompileSchema("identityInfo", `{
  "type": "object",
  "required": ["fullName", "dateOfBirth"],
  "properties": {
    "fullName": {"type": "string", "minLength": 1},
    "dateOfBirth": {"type": "string"},
    "documentType": {"type": ["string", "null"]},
    "documentNumber": {"type": ["string", "null"]},
    "nationality": {"type": ["string", "null"]},
    "issueDate": {"type": ["string", "null"]},
    "expiryDate": {"type": ["string", "null"]}
  }
}`),
}
