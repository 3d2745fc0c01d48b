package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type convertible struct{ code ErrorCode }

func (c *convertible) Error() string { return "convertible" }

func (c *convertible) StandardError() *StandardError {
	return &StandardError{Code: c.code, Message: "converted", Retryable: true}
}

// composite carries several causes the way a multi-document failure does.
type composite struct{ causes []error }

func (c *composite) Error() string { return "composite" }
func (c *composite) Unwrap() []error { return c.causes }

func (c *composite) StandardError() *StandardError {
	return NewDocumentsExtractionFailedError("composite", nil)
}

// ==========================
// Conversion Tests
// ==========================

func TestConvertToBPMNError_CopiesMetadata(t *testing.T) {
	stdErr := NewDocumentsExtractionFailedError("bank_statement failed", []string{"bank_statement"})

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "DOCUMENTS_EXTRACTION_FAILED", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Zero(t, bpmnErr.Retries)
	assert.Equal(t, []string{"bank_statement"}, bpmnErr.ErrorVariables["failedDocuments"])
	assert.Equal(t, "DOCUMENTS_EXTRACTION_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "bank_statement failed", vars["errorDetails"])
	assert.Contains(t, vars, "failedDocuments")
}

func TestConvertToBPMNError_Retries(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedRetries int
	}{
		{"fetch failure", NewDocumentFetchFailedError("k", fmt.Errorf("timeout")), 3},
		{"write failure", NewDatabaseWriteFailedError("save", fmt.Errorf("deadlock")), 3},
		{"publish failure", NewDecisionPublishFailedError(fmt.Errorf("throttled")), 3},
		{"not found", NewApplicationNotFoundError("app-1"), 0},
		{"invalid input", NewInvalidInputError("missing"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedRetries, ConvertToBPMNError(tt.err).Retries)
		})
	}
}

func TestConvertToBPMNError_UnmappedCodeKeepsCode(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewInternalError(fmt.Errorf("boom")))
	assert.Equal(t, "INTERNAL_ERROR", bpmnErr.Code)
}

// ==========================
// Normalize Tests
// ==========================

func TestNormalize(t *testing.T) {
	notFound := NewApplicationNotFoundError("app-1")

	tests := []struct {
		name         string
		err          error
		expectedCode ErrorCode
	}{
		{"standard error", notFound, ErrCodeApplicationNotFound},
		{"wrapped standard error", fmt.Errorf("load: %w", notFound), ErrCodeApplicationNotFound},
		{"converter", &convertible{code: ErrCodeExtractionRateLimited}, ErrCodeExtractionRateLimited},
		{"wrapped converter", fmt.Errorf("extract: %w", &convertible{code: ErrCodeExtractionParseFailed}), ErrCodeExtractionParseFailed},
		{"plain error", stderrors.New("boom"), ErrCodeInternal},
		{"composite wins over standard error causes", &composite{causes: []error{
			NewDocumentFetchFailedError("bank_statement", stderrors.New("timeout")),
			&convertible{code: ErrCodeExtractionRateLimited},
		}}, ErrCodeDocumentsExtractionFailed},
		{"wrapped composite", fmt.Errorf("process: %w", &composite{causes: []error{notFound}}), ErrCodeDocumentsExtractionFailed},
		{"standard error inside plain multi-error", stderrors.Join(stderrors.New("a"), notFound), ErrCodeApplicationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := Normalize(tt.err)
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
		})
	}

	assert.Nil(t, Normalize(nil))
}

// ==========================
// Utility Tests
// ==========================

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeExtractionRateLimited, "EXTRACTION"},
		{ErrCodeDocumentsExtractionFailed, "EXTRACTION"},
		{ErrCodeDocumentFetchFailed, "DOCUMENT"},
		{ErrCodeApplicationNotAssessable, "APPLICATION"},
		{ErrCodeDatabaseQueryFailed, "DATABASE"},
		{ErrCodeCacheWriteFailed, "CACHE"},
		{ErrCodeDecisionPublishFailed, "NOTIFICATION"},
		{ErrCodeInvalidInput, "VALIDATION"},
		{ErrCodeInternal, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeExtractionTransportFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseConnectionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeExtractionParseFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDocumentValidationFailed))
}
