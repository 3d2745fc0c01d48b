// Package repository persists application records and caches their risk profiles.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"
)

// ApplicationRepository stores ApplicationRecords in the loan_applications table.
type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Save inserts the record or replaces the stored copy with the same ID.
func (r *ApplicationRepository) Save(ctx context.Context, record *models.ApplicationRecord) error {
	if record == nil || record.ID == "" {
		return apperrors.NewInvalidInputError("application record with an id is required")
	}

	documents, err := json.Marshal(record.Documents)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("save application", err)
	}
	failures := record.Failures
	if failures == nil {
		failures = []models.DocumentFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("save application", err)
	}
	timings, err := json.Marshal(record.Timings)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("save application", err)
	}
	profile, overall, score, recommendation, err := profileColumns(record.RiskProfile)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("save application", err)
	}

	var completedAt interface{}
	if record.CompletedAt != nil {
		completedAt = record.CompletedAt.UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO loan_applications (
			id, applicant_id, status, documents, failures, risk_profile,
			overall_risk, risk_score, approval_recommendation, timings,
			started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			documents = EXCLUDED.documents,
			failures = EXCLUDED.failures,
			risk_profile = EXCLUDED.risk_profile,
			overall_risk = EXCLUDED.overall_risk,
			risk_score = EXCLUDED.risk_score,
			approval_recommendation = EXCLUDED.approval_recommendation,
			timings = EXCLUDED.timings,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()`,
		record.ID,
		record.ApplicantID,
		string(record.Status),
		documents,
		failuresJSON,
		profile,
		overall,
		score,
		recommendation,
		timings,
		record.StartedAt.UTC(),
		completedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("save application", err)
	}
	return nil
}

// Get loads a record by ID. A missing row yields APPLICATION_NOT_FOUND.
func (r *ApplicationRepository) Get(ctx context.Context, id string) (*models.ApplicationRecord, error) {
	var (
		record                       models.ApplicationRecord
		status                       string
		documents, failures, timings []byte
		profile                      []byte
		completedAt                  sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, applicant_id, status, documents, failures, risk_profile, timings, started_at, completed_at
		FROM loan_applications
		WHERE id = $1`, id).
		Scan(&record.ID, &record.ApplicantID, &status, &documents, &failures, &profile, &timings, &record.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewApplicationNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get application", err)
	}

	record.Status = models.ApplicationStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	if err := unmarshalColumn(documents, &record.Documents); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("decode documents", err)
	}
	if err := unmarshalColumn(failures, &record.Failures); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("decode failures", err)
	}
	if err := unmarshalColumn(timings, &record.Timings); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("decode timings", err)
	}
	if len(profile) > 0 {
		record.RiskProfile = &models.RiskProfile{}
		if err := json.Unmarshal(profile, record.RiskProfile); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("decode risk profile", err)
		}
	}
	if len(record.Failures) == 0 {
		record.Failures = nil
	}
	return &record, nil
}

// UpdateRiskProfile replaces the stored profile of an existing record.
func (r *ApplicationRepository) UpdateRiskProfile(ctx context.Context, id string, p *models.RiskProfile) error {
	if p == nil {
		return apperrors.NewInvalidInputError("risk profile is required")
	}
	profile, overall, score, recommendation, err := profileColumns(p)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("update risk profile", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE loan_applications
		SET risk_profile = $2, overall_risk = $3, risk_score = $4, approval_recommendation = $5, updated_at = NOW()
		WHERE id = $1`,
		id, profile, overall, score, recommendation,
	)
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("update risk profile", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseWriteFailedError("update risk profile", err)
	}
	if n == 0 {
		return apperrors.NewApplicationNotFoundError(id)
	}
	return nil
}

// profileColumns returns the JSON column and the denormalized summary columns.
// All values are nil when p is nil.
func profileColumns(p *models.RiskProfile) (profile, overall, score, recommendation interface{}, err error) {
	if p == nil {
		return nil, nil, nil, nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal risk profile: %w", err)
	}
	return data, string(p.OverallRisk), p.Score, string(p.ApprovalRecommendation), nil
}

func unmarshalColumn(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
