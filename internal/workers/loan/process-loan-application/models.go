// internal/workers/loan/process-loan-application/models.go
package processloanapplication

import "loan-risk-workers/internal/models"

type Input struct {
	ApplicantID string       `json:"applicantId"`
	Documents   DocumentRefs `json:"documents"`
}

// DocumentRefs locates the four uploaded documents in object storage.
type DocumentRefs struct {
	BankStatement        *models.DocumentRef `json:"bankStatement"`
	UniversityAcceptance *models.DocumentRef `json:"universityAcceptance"`
	ScholarshipLetter    *models.DocumentRef `json:"scholarshipLetter"`
	IdentityDocument     *models.DocumentRef `json:"identityDocument"`
}

func (r DocumentRefs) Get(kind models.DocumentKind) *models.DocumentRef {
	switch kind {
	case models.KindBankStatement:
		return r.BankStatement
	case models.KindUniversityAcceptance:
		return r.UniversityAcceptance
	case models.KindScholarshipLetter:
		return r.ScholarshipLetter
	case models.KindIdentityDocument:
		return r.IdentityDocument
	}
	return nil
}

type Output struct {
	ApplicationID          string              `json:"applicationId"`
	ApplicationStatus      string              `json:"applicationStatus"`
	OverallRisk            string              `json:"overallRisk"`
	RiskScore              int                 `json:"riskScore"`
	ApprovalRecommendation string              `json:"approvalRecommendation"`
	Conditions             []string            `json:"conditions"`
	RiskProfile            *models.RiskProfile `json:"riskProfile"`
}
