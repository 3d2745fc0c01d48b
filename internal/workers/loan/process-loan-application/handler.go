// internal/workers/loan/process-loan-application/handler.go
package processloanapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-risk-workers/internal/common/aws"
	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/metrics"
	"loan-risk-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "process-loan-application"
)

type DocumentFetcher interface {
	Fetch(ctx context.Context, kind models.DocumentKind, ref models.DocumentRef) (*models.RawDocument, error)
}

// Processor is implemented by *orchestrator.Orchestrator.
type Processor interface {
	Process(ctx context.Context, applicantID string, docs models.DocumentSet) (*models.ApplicationRecord, error)
	Reject(ctx context.Context, applicantID string, docs models.DocumentSet, rejected map[models.DocumentKind]error) (*models.ApplicationRecord, error)
}

type ApplicationStore interface {
	Save(ctx context.Context, record *models.ApplicationRecord) error
}

type ProfileCache interface {
	Set(ctx context.Context, applicationID string, p *models.RiskProfile) error
}

type DecisionPublisher interface {
	Publish(ctx context.Context, event *aws.DecisionEvent) (string, error)
}

type Handler struct {
	config       *Config
	fetcher      DocumentFetcher
	processor    Processor
	store        ApplicationStore
	cache        ProfileCache
	publisher    DecisionPublisher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(
	config *Config,
	fetcher DocumentFetcher,
	processor Processor,
	store ApplicationStore,
	cache ProfileCache,
	publisher DecisionPublisher,
	log logger.Logger,
) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		fetcher:      fetcher,
		processor:    processor,
		store:        store,
		cache:        cache,
		publisher:    publisher,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute fetches the documents, runs the pipeline and persists the outcome. A record
// whose extraction failed is still saved before the failure is returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicantID == "" {
		return nil, apperrors.NewInvalidInputError("applicantId is required")
	}

	docs, rejected, err := h.fetchDocuments(ctx, input.Documents)
	if err != nil {
		return nil, err
	}

	var record *models.ApplicationRecord
	var procErr error
	if len(rejected) > 0 {
		record, procErr = h.processor.Reject(ctx, input.ApplicantID, docs, rejected)
	} else {
		record, procErr = h.processor.Process(ctx, input.ApplicantID, docs)
	}
	if record == nil {
		return nil, procErr
	}

	if err := h.store.Save(ctx, record); err != nil {
		h.logger.Error("Failed to persist application", map[string]interface{}{
			"applicationId": record.ID,
			"status":        string(record.Status),
			"error":         err.Error(),
		})
		if procErr != nil {
			return nil, procErr
		}
		return nil, err
	}
	if procErr != nil {
		return nil, procErr
	}

	if err := h.cache.Set(ctx, record.ID, record.RiskProfile); err != nil {
		h.logger.Warn("Failed to cache risk profile", map[string]interface{}{
			"applicationId": record.ID,
			"error":         err.Error(),
		})
	}
	h.publishDecision(ctx, record)

	return buildOutput(record), nil
}

// fetchDocuments downloads the documents in processing order. A missing reference
// leaves the slot empty so the orchestrator reports it with the other validation failures.
// Documents the store refuses (unsupported type, oversized object) are collected per kind
// so every bad document is reported at once. Any other fetch error aborts the fetch.
func (h *Handler) fetchDocuments(ctx context.Context, refs DocumentRefs) (models.DocumentSet, map[models.DocumentKind]error, error) {
	var set models.DocumentSet
	rejected := make(map[models.DocumentKind]error)
	for _, kind := range models.AllDocumentKinds {
		ref := refs.Get(kind)
		if ref == nil {
			continue
		}
		doc, err := h.fetcher.Fetch(ctx, kind, *ref)
		if err != nil {
			if apperrors.Normalize(err).Code != apperrors.ErrCodeDocumentValidationFailed {
				return models.DocumentSet{}, nil, err
			}
			h.logger.Warn("Document rejected by storage", map[string]interface{}{
				"documentKind": string(kind),
				"key":          ref.Key,
				"error":        err.Error(),
			})
			rejected[kind] = err
			continue
		}
		switch kind {
		case models.KindBankStatement:
			set.BankStatement = doc
		case models.KindUniversityAcceptance:
			set.UniversityAcceptance = doc
		case models.KindScholarshipLetter:
			set.ScholarshipLetter = doc
		case models.KindIdentityDocument:
			set.IdentityDocument = doc
		}
	}
	return set, rejected, nil
}

func (h *Handler) publishDecision(ctx context.Context, record *models.ApplicationRecord) {
	if h.publisher == nil {
		return
	}
	messageID, err := h.publisher.Publish(ctx, aws.NewDecisionEvent(record, record.RiskProfile, h.now()))
	if err != nil {
		h.logger.Warn("Failed to publish decision event", map[string]interface{}{
			"applicationId": record.ID,
			"error":         err.Error(),
		})
		return
	}
	if messageID != "" {
		h.logger.Debug("Decision event published", map[string]interface{}{
			"applicationId": record.ID,
			"messageId":     messageID,
		})
	}
}

func buildOutput(record *models.ApplicationRecord) *Output {
	out := &Output{
		ApplicationID:     record.ID,
		ApplicationStatus: string(record.Status),
		Conditions:        []string{},
		RiskProfile:       record.RiskProfile,
	}
	if p := record.RiskProfile; p != nil {
		out.OverallRisk = string(p.OverallRisk)
		out.RiskScore = p.Score
		out.ApprovalRecommendation = string(p.ApprovalRecommendation)
		if p.Conditions != nil {
			out.Conditions = p.Conditions
		}
	}
	return out
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("Job completed successfully", map[string]interface{}{
		"jobKey":                 job.Key,
		"applicationId":          output.ApplicationID,
		"approvalRecommendation": output.ApprovalRecommendation,
	})
}
