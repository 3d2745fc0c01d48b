// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	StatusReceived           ApplicationStatus = "received"
	StatusProcessing         ApplicationStatus = "processing"
	StatusDocumentsProcessed ApplicationStatus = "documents_processed"
	StatusCompleted          ApplicationStatus = "completed"
	StatusFailed             ApplicationStatus = "failed"
)

// DocumentFailure describes why one document of an application could not be extracted.
// Cause is the original error and is not persisted.
type DocumentFailure struct {
	DocumentKind DocumentKind `json:"documentKind"`
	ErrorKind    string       `json:"errorKind"`
	Message      string       `json:"message"`
	Cause        error        `json:"-"`
}

// ProcessingTimings is read-only instrumentation, in milliseconds.
type ProcessingTimings struct {
	ExtractionMs     int64 `json:"extractionMs"`
	RiskAssessmentMs int64 `json:"riskAssessmentMs"`
	TotalMs          int64 `json:"totalMs"`
}

// ApplicationRecord is the composite result of one orchestration run.
type ApplicationRecord struct {
	ID          string             `json:"id"`
	ApplicantID string             `json:"applicantId"`
	Status      ApplicationStatus  `json:"status"`
	Documents   ExtractedDocuments `json:"documents"`
	RiskProfile *RiskProfile       `json:"riskProfile,omitempty"`
	Failures    []DocumentFailure  `json:"failures,omitempty"`
	StartedAt   time.Time          `json:"startedAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	Timings     ProcessingTimings  `json:"timings"`
}

// Assessable reports whether the record carries everything the risk engine needs
// to produce a non-degraded profile.
func (a *ApplicationRecord) Assessable() bool {
	return a != nil && a.Documents.Complete()
}
