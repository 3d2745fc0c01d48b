package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var selectColumns = []string{
	"id", "applicant_id", "status", "documents", "failures", "risk_profile", "timings", "started_at", "completed_at",
}

func createTestProfile() *models.RiskProfile {
	return &models.RiskProfile{
		Financial:              models.FinancialRisk{Tier: models.RiskHigh, Score: 95, Factors: []string{"Irregular income"}},
		Academic:               models.AcademicRisk{Tier: models.RiskLow, Score: 20, FundingGapRisk: models.RiskLow, Factors: []string{}},
		Fraud:                  models.FraudRisk{Tier: models.RiskLow, Score: 0, Factors: []string{}},
		Score:                  40,
		OverallRisk:            models.RiskMedium,
		ApprovalRecommendation: models.RecommendApproveWithConditions,
		Conditions:             []string{"Provide a co-signer"},
	}
}

func createTestRecord() *models.ApplicationRecord {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(3 * time.Second)
	return &models.ApplicationRecord{
		ID:          "app-001",
		ApplicantID: "applicant-001",
		Status:      models.StatusCompleted,
		Documents: models.ExtractedDocuments{
			Identity: &models.IdentityInfo{FullName: "Amara Okafor"},
		},
		RiskProfile: createTestProfile(),
		StartedAt:   started,
		CompletedAt: &completed,
		Timings:     models.ProcessingTimings{ExtractionMs: 2900, RiskAssessmentMs: 1, TotalMs: 3000},
	}
}

func newTestCache(t *testing.T) (*ProfileCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewProfileCache(client, time.Hour), mr
}

// ==========================
// Application Repository Tests
// ==========================

func TestApplicationRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	record := createTestRecord()
	mock.ExpectExec(`INSERT INTO loan_applications`).
		WithArgs(
			"app-001",
			"applicant-001",
			"completed",
			sqlmock.AnyArg(), // documents JSON
			sqlmock.AnyArg(), // failures JSON
			sqlmock.AnyArg(), // risk profile JSON
			"medium",
			40,
			"approve_with_conditions",
			sqlmock.AnyArg(), // timings JSON
			record.StartedAt,
			*record.CompletedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewApplicationRepository(db)
	err = repo.Save(context.Background(), record)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Save_FailedRecordWithoutProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	record := createTestRecord()
	record.Status = models.StatusFailed
	record.RiskProfile = nil
	record.Failures = []models.DocumentFailure{{DocumentKind: models.KindBankStatement, ErrorKind: "parse", Message: "bad"}}

	mock.ExpectExec(`INSERT INTO loan_applications`).
		WithArgs(
			"app-001", "applicant-001", "failed",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			nil, nil, nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewApplicationRepository(db).Save(context.Background(), record)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Save_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO loan_applications`).WillReturnError(errors.New("connection reset"))

	err = NewApplicationRepository(db).Save(context.Background(), createTestRecord())

	require.Error(t, err)
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeDatabaseWriteFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestApplicationRepository_Save_RequiresID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = NewApplicationRepository(db).Save(context.Background(), &models.ApplicationRecord{})

	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	record := createTestRecord()
	documents, _ := json.Marshal(record.Documents)
	profile, _ := json.Marshal(record.RiskProfile)
	timings, _ := json.Marshal(record.Timings)

	mock.ExpectQuery(`SELECT (.+) FROM loan_applications`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows(selectColumns).
			AddRow("app-001", "applicant-001", "completed", documents, []byte("[]"), profile, timings, record.StartedAt, *record.CompletedAt))

	got, err := NewApplicationRepository(db).Get(context.Background(), "app-001")

	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, record.Documents, got.Documents)
	assert.Equal(t, record.RiskProfile, got.RiskProfile)
	assert.Equal(t, record.Timings, got.Timings)
	assert.Nil(t, got.Failures)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, record.CompletedAt.Equal(*got.CompletedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM loan_applications`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(selectColumns))

	got, err := NewApplicationRepository(db).Get(context.Background(), "missing")

	assert.Nil(t, got)
	assert.Equal(t, apperrors.ErrCodeApplicationNotFound, apperrors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateRiskProfile(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		dbErr        error
		expectedCode apperrors.ErrorCode
	}{
		{name: "updated", rowsAffected: 1},
		{name: "no such application", rowsAffected: 0, expectedCode: apperrors.ErrCodeApplicationNotFound},
		{name: "database error", dbErr: errors.New("deadlock"), expectedCode: apperrors.ErrCodeDatabaseWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exec := mock.ExpectExec(`UPDATE loan_applications`).
				WithArgs("app-001", sqlmock.AnyArg(), "medium", 40, "approve_with_conditions")
			if tt.dbErr != nil {
				exec.WillReturnError(tt.dbErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			}

			err = NewApplicationRepository(db).UpdateRiskProfile(context.Background(), "app-001", createTestProfile())

			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.expectedCode, apperrors.Normalize(err).Code)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Profile Cache Tests
// ==========================

func TestProfileCache_Set(t *testing.T) {
	cache, mr := newTestCache(t)
	profile := createTestProfile()

	require.NoError(t, cache.Set(context.Background(), "app-001", profile))

	raw, err := mr.Get(profileKey("app-001"))
	require.NoError(t, err)
	var stored models.RiskProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, *profile, stored)
	assert.Equal(t, time.Hour, mr.TTL(profileKey("app-001")))
}

func TestProfileCache_SetOverwritesAndRefreshesTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "app-001", createTestProfile()))
	mr.FastForward(30 * time.Minute)

	updated := createTestProfile()
	updated.Score = 58
	updated.OverallRisk = models.RiskHigh
	require.NoError(t, cache.Set(ctx, "app-001", updated))

	raw, err := mr.Get(profileKey("app-001"))
	require.NoError(t, err)
	var stored models.RiskProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, 58, stored.Score)
	assert.Equal(t, time.Hour, mr.TTL(profileKey("app-001")))
}

func TestProfileCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Set(context.Background(), "app-001", createTestProfile()))

	mr.FastForward(2 * time.Hour)

	assert.False(t, mr.Exists(profileKey("app-001")))
}

func TestProfileCache_ServerDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	err := cache.Set(context.Background(), "app-001", createTestProfile())

	assert.Equal(t, apperrors.ErrCodeCacheWriteFailed, apperrors.Normalize(err).Code)
}

func TestNewProfileCache_DefaultTTL(t *testing.T) {
	cache := NewProfileCache(nil, 0)
	assert.Equal(t, DefaultProfileTTL, cache.ttl)
}
