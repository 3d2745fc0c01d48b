// internal/workers/loan/reassess-risk/handler.go
package reassessrisk

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
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
	TaskType = "reassess-risk"
)

type ApplicationStore interface {
	Get(ctx context.Context, id string) (*models.ApplicationRecord, error)
	UpdateRiskProfile(ctx context.Context, id string, p *models.RiskProfile) error
}

// Reassessor is implemented by *orchestrator.Orchestrator.
type Reassessor interface {
	Reassess(ctx context.Context, record *models.ApplicationRecord) (*models.RiskProfile, error)
}

type ProfileCache interface {
	Set(ctx context.Context, applicationID string, p *models.RiskProfile) error
}

type DecisionPublisher interface {
	Publish(ctx context.Context, event *aws.DecisionEvent) (string, error)
}

type Handler struct {
	config       *Config
	store        ApplicationStore
	reassessor   Reassessor
	cache        ProfileCache
	publisher    DecisionPublisher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(
	config *Config,
	store ApplicationStore,
	reassessor Reassessor,
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
		store:        store,
		reassessor:   reassessor,
		cache:        cache,
		publisher:    publisher,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
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

// Execute re-scores a stored application from its extracted documents. No document
// is fetched or extracted again.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, apperrors.NewInvalidInputError("applicationId is required")
	}

	record, err := h.store.Get(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	profile, err := h.reassessor.Reassess(ctx, record)
	if err != nil {
		return nil, err
	}
	changed := !reflect.DeepEqual(record.RiskProfile, profile)

	if changed {
		if err := h.store.UpdateRiskProfile(ctx, record.ID, profile); err != nil {
			return nil, err
		}
	}
	if err := h.cache.Set(ctx, record.ID, profile); err != nil {
		h.logger.Warn("Failed to refresh cached risk profile", map[string]interface{}{
			"applicationId": record.ID,
			"error":         err.Error(),
		})
	}
	if changed && h.publisher != nil {
		if _, err := h.publisher.Publish(ctx, aws.NewDecisionEvent(record, profile, time.Now())); err != nil {
			h.logger.Warn("Failed to publish decision event", map[string]interface{}{
				"applicationId": record.ID,
				"error":         err.Error(),
			})
		}
	}

	h.logger.Info("Application reassessed", map[string]interface{}{
		"applicationId":          record.ID,
		"approvalRecommendation": string(profile.ApprovalRecommendation),
		"profileChanged":         changed,
	})

	conditions := profile.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	return &Output{
		ApplicationID:          record.ID,
		ApplicationStatus:      string(record.Status),
		OverallRisk:            string(profile.OverallRisk),
		RiskScore:              profile.Score,
		ApprovalRecommendation: string(profile.ApprovalRecommendation),
		Conditions:             conditions,
		RiskProfile:            profile,
		ProfileChanged:         changed,
	}, nil
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
		"jobKey":        job.Key,
		"applicationId": output.ApplicationID,
	})
}
