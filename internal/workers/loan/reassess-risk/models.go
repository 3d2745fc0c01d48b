// internal/workers/loan/reassess-risk/models.go
package reassessrisk

import "loan-risk-workers/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID          string              `json:"applicationId"`
	ApplicationStatus      string              `json:"applicationStatus"`
	OverallRisk            string              `json:"overallRisk"`
	RiskScore              int                 `json:"riskScore"`
	ApprovalRecommendation string              `json:"approvalRecommendation"`
	Conditions             []string            `json:"conditions"`
	RiskProfile            *models.RiskProfile `json:"riskProfile"`
	// ProfileChanged is true when the new profile differs from the stored one.
	ProfileChanged bool `json:"profileChanged"`
}
