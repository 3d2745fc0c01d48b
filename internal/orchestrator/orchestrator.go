// Package orchestrator runs one loan application through extraction and risk assessment.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/metrics"
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/extraction"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/risk"

	"github.com/google/uuid"
)

const (
	PhaseExtraction     = "extraction"
	PhaseRiskAssessment = "risk_assessment"
)

// Extractor turns raw documents into typed records. *extraction.Client implements it.
type Extractor interface {
	ExtractBankStatement(ctx context.Context, doc *models.RawDocument) (*models.BankInfo, error)
	ExtractUniversityAcceptance(ctx context.Context, doc *models.RawDocument) (*models.UniversityAcceptance, error)
	ExtractScholarshipLetter(ctx context.Context, doc *models.RawDocument) (*models.ScholarshipAcceptance, error)
	ExtractIdentityDocument(ctx context.Context, doc *models.RawDocument) (*models.IdentityInfo, error)
}

// PhaseRecorder receives phase durations. *observability.Observability implements it.
type PhaseRecorder interface {
	RecordPhase(ctx context.Context, phase string, d time.Duration)
}

type noopPhases struct{}

func (noopPhases) RecordPhase(context.Context, string, time.Duration) {}

type Orchestrator struct {
	extractor Extractor
	engine    *risk.Engine
	phases    PhaseRecorder
	logger    logger.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Orchestrator)

func WithPhaseRecorder(p PhaseRecorder) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.phases = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

func New(extractor Extractor, engine *risk.Engine, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		extractor: extractor,
		engine:    engine,
		phases:    noopPhases{},
		logger:    logger.ForComponent(log, "orchestrator"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process validates all four documents, extracts them concurrently and, when every
// extraction succeeds, attaches a risk profile. On any document failure the returned
// record has status failed, keeps the successful extractions, and err is an
// *ApplicationFailedError. Each call creates a new application ID.
func (o *Orchestrator) Process(ctx context.Context, applicantID string, docs models.DocumentSet) (*models.ApplicationRecord, error) {
	if applicantID == "" {
		return nil, apperrors.NewInvalidInputError("applicantId is required")
	}

	started := o.now()
	record := &models.ApplicationRecord{
		ID:          o.newID(),
		ApplicantID: applicantID,
		Status:      models.StatusReceived,
		StartedAt:   started,
	}
	log := o.logger.WithFields(map[string]interface{}{
		"applicationId": record.ID,
		"applicantId":   applicantID,
	})

	if problems := validation.ValidateDocumentSet(docs); len(problems) > 0 {
		return o.reject(record, problems, started, log)
	}

	record.Status = models.StatusProcessing
	log.Info("Extracting documents", nil)

	extractionStart := o.now()
	errs := o.extractAll(ctx, docs, &record.Documents)
	extractionTime := o.now().Sub(extractionStart)
	o.phases.RecordPhase(ctx, PhaseExtraction, extractionTime)
	record.Timings.ExtractionMs = extractionTime.Milliseconds()

	for i, kind := range models.AllDocumentKinds {
		if errs[i] != nil {
			record.Failures = append(record.Failures, failureFor(kind, errs[i]))
		}
	}
	if len(record.Failures) > 0 {
		log.Error("Document extraction failed", map[string]interface{}{
			"failedDocuments": len(record.Failures),
			"extractionMs":    record.Timings.ExtractionMs,
		})
		return o.fail(record, started)
	}

	record.Status = models.StatusDocumentsProcessed

	riskStart := o.now()
	record.RiskProfile = o.engine.Assess(record)
	riskTime := o.now().Sub(riskStart)
	o.phases.RecordPhase(ctx, PhaseRiskAssessment, riskTime)
	record.Timings.RiskAssessmentMs = riskTime.Milliseconds()

	o.finish(record, models.StatusCompleted, started)
	metrics.RiskRecommendations.WithLabelValues(
		string(record.RiskProfile.ApprovalRecommendation),
		string(record.RiskProfile.OverallRisk),
	).Inc()

	log.Info("Application assessed", map[string]interface{}{
		"overallRisk":            string(record.RiskProfile.OverallRisk),
		"riskScore":              record.RiskProfile.Score,
		"approvalRecommendation": string(record.RiskProfile.ApprovalRecommendation),
		"totalMs":                record.Timings.TotalMs,
	})
	return record, nil
}

// extractAll runs the four extractions concurrently and waits for all of them. Each task
// writes only its own field of out and its own slot of the returned slice, ordered as
// models.AllDocumentKinds. A failing task does not cancel its siblings.
func (o *Orchestrator) extractAll(ctx context.Context, docs models.DocumentSet, out *models.ExtractedDocuments) []error {
	tasks := map[models.DocumentKind]func() error{
		models.KindBankStatement: func() (err error) {
			out.Bank, err = o.extractor.ExtractBankStatement(ctx, docs.BankStatement)
			return err
		},
		models.KindUniversityAcceptance: func() (err error) {
			out.University, err = o.extractor.ExtractUniversityAcceptance(ctx, docs.UniversityAcceptance)
			return err
		},
		models.KindScholarshipLetter: func() (err error) {
			out.Scholarship, err = o.extractor.ExtractScholarshipLetter(ctx, docs.ScholarshipLetter)
			return err
		},
		models.KindIdentityDocument: func() (err error) {
			out.Identity, err = o.extractor.ExtractIdentityDocument(ctx, docs.IdentityDocument)
			return err
		},
	}

	errs := make([]error, len(models.AllDocumentKinds))
	var wg sync.WaitGroup
	for i, kind := range models.AllDocumentKinds {
		wg.Add(1)
		go func(i int, kind models.DocumentKind, run func() error) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("extraction of %s panicked: %v", kind, r)
				}
			}()
			errs[i] = run()
		}(i, kind, tasks[kind])
	}
	wg.Wait()
	return errs
}

// Reject records an application whose documents were refused before they could be
// handed to Process, e.g. by storage limits. rejected overrides what validating docs
// would report for the same kind, and every other invalid slot is reported alongside
// it. The record has status failed and err is an *ApplicationFailedError.
func (o *Orchestrator) Reject(ctx context.Context, applicantID string, docs models.DocumentSet, rejected map[models.DocumentKind]error) (*models.ApplicationRecord, error) {
	if applicantID == "" {
		return nil, apperrors.NewInvalidInputError("applicantId is required")
	}

	started := o.now()
	record := &models.ApplicationRecord{
		ID:          o.newID(),
		ApplicantID: applicantID,
		Status:      models.StatusReceived,
		StartedAt:   started,
	}
	log := o.logger.WithFields(map[string]interface{}{
		"applicationId": record.ID,
		"applicantId":   applicantID,
	})

	problems := validation.ValidateDocumentSet(docs)
	for kind, err := range rejected {
		problems[kind] = err
	}
	return o.reject(record, problems, started, log)
}

// reject fails record with one validation failure per problem, in processing order.
func (o *Orchestrator) reject(record *models.ApplicationRecord, problems map[models.DocumentKind]error, started time.Time, log logger.Logger) (*models.ApplicationRecord, error) {
	for _, kind := range models.AllDocumentKinds {
		err, bad := problems[kind]
		if !bad {
			continue
		}
		record.Failures = append(record.Failures, models.DocumentFailure{
			DocumentKind: kind,
			ErrorKind:    string(extraction.KindValidation),
			Message:      failureMessage(err),
			Cause:        &extraction.ExtractionError{Kind: extraction.KindValidation, Document: kind, Err: err},
		})
	}
	log.Warn("Application rejected before extraction", map[string]interface{}{
		"failedDocuments": len(record.Failures),
	})
	return o.fail(record, started)
}

// failureMessage prefers the details of a StandardError over its generic message.
func failureMessage(err error) string {
	var std *apperrors.StandardError
	if errors.As(err, &std) && std.Details != "" {
		return std.Details
	}
	return err.Error()
}

func failureFor(kind models.DocumentKind, err error) models.DocumentFailure {
	failure := models.DocumentFailure{DocumentKind: kind, ErrorKind: "internal", Message: err.Error(), Cause: err}
	var ee *extraction.ExtractionError
	if errors.As(err, &ee) {
		failure.ErrorKind = string(ee.Kind)
	}
	return failure
}

func (o *Orchestrator) fail(record *models.ApplicationRecord, started time.Time) (*models.ApplicationRecord, error) {
	o.finish(record, models.StatusFailed, started)
	return record, &ApplicationFailedError{ApplicationID: record.ID, Failures: record.Failures}
}

func (o *Orchestrator) finish(record *models.ApplicationRecord, status models.ApplicationStatus, started time.Time) {
	completed := o.now()
	record.Status = status
	record.CompletedAt = &completed
	record.Timings.TotalMs = completed.Sub(started).Milliseconds()
	metrics.ApplicationsProcessed.WithLabelValues(string(status)).Inc()
}

// Reassess re-runs only the risk engine. record must hold all four extracted documents.
// The record itself is not modified.
func (o *Orchestrator) Reassess(ctx context.Context, record *models.ApplicationRecord) (*models.RiskProfile, error) {
	if record == nil {
		return nil, apperrors.NewInvalidInputError("application record is required")
	}
	if !record.Assessable() {
		return nil, apperrors.NewApplicationNotAssessableError(record.ID, "extracted documents are incomplete")
	}

	start := o.now()
	profile := o.engine.Assess(record)
	o.phases.RecordPhase(ctx, PhaseRiskAssessment, o.now().Sub(start))

	o.logger.Info("Application reassessed", map[string]interface{}{
		"applicationId":          record.ID,
		"overallRisk":            string(profile.OverallRisk),
		"approvalRecommendation": string(profile.ApprovalRecommendation),
	})
	return profile, nil
}
