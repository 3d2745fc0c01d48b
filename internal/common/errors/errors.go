// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDocumentValidationFailed ErrorCode = "DOCUMENT_VALIDATION_FAILED"
	ErrCodeDocumentFetchFailed      ErrorCode = "DOCUMENT_FETCH_FAILED"

	ErrCodeExtractionTransportFailed ErrorCode = "EXTRACTION_TRANSPORT_FAILED"
	ErrCodeExtractionRateLimited     ErrorCode = "EXTRACTION_RATE_LIMITED"
	ErrCodeExtractionParseFailed     ErrorCode = "EXTRACTION_PARSE_FAILED"
	ErrCodeExtractionUpstreamFailed  ErrorCode = "EXTRACTION_UPSTREAM_FAILED"
	ErrCodeDocumentsExtractionFailed ErrorCode = "DOCUMENTS_EXTRACTION_FAILED"

	ErrCodeApplicationNotFound      ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationNotAssessable ErrorCode = "APPLICATION_NOT_ASSESSABLE"
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseWriteFailed      ErrorCode = "DATABASE_WRITE_FAILED"

	ErrCodeCacheWriteFailed ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeDecisionPublishFailed ErrorCode = "DECISION_PUBLISH_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Converter is implemented by domain errors that know their StandardError form.
type Converter interface {
	StandardError() *StandardError
}

// StandardError makes *StandardError a Converter of itself.
func (e *StandardError) StandardError() *StandardError {
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewDocumentValidationFailedError creates a non-retryable document validation error.
func NewDocumentValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentValidationFailed,
		Message:   "Submitted document failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentFetchFailedError creates a retryable document storage error.
func NewDocumentFetchFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentFetchFailed,
		Message:   "Failed to fetch document from storage",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentsExtractionFailedError creates a non-retryable error for a failed application.
// failedDocuments is exposed to the process as an error variable.
func NewDocumentsExtractionFailedError(details string, failedDocuments interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentsExtractionFailed,
		Message:   "One or more documents could not be extracted",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"failedDocuments": failedDocuments},
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotAssessableError is returned when a record lacks extracted documents.
func NewApplicationNotAssessableError(applicationID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotAssessable,
		Message:   "Application cannot be risk assessed",
		Details:   fmt.Sprintf("applicationId: %s, %s", applicationID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable job input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseWriteFailedError creates a retryable database write error.
func NewDatabaseWriteFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseWriteFailed,
		Message:   "Database write operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheWriteFailed,
		Message:   "Cache write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionPublishFailedError creates a retryable notification error.
func NewDecisionPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionPublishFailed,
		Message:   "Decision event publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDocumentValidationFailed:  "DOCUMENT_VALIDATION_FAILED",
	ErrCodeDocumentFetchFailed:       "DOCUMENT_FETCH_FAILED",
	ErrCodeExtractionTransportFailed: "EXTRACTION_TRANSPORT_FAILED",
	ErrCodeExtractionRateLimited:     "EXTRACTION_RATE_LIMITED",
	ErrCodeExtractionParseFailed:     "EXTRACTION_PARSE_FAILED",
	ErrCodeExtractionUpstreamFailed:  "EXTRACTION_UPSTREAM_FAILED",
	ErrCodeDocumentsExtractionFailed: "DOCUMENTS_EXTRACTION_FAILED",
	ErrCodeApplicationNotFound:       "APPLICATION_NOT_FOUND",
	ErrCodeApplicationNotAssessable:  "APPLICATION_NOT_ASSESSABLE",
	ErrCodeInvalidInput:              "INVALID_INPUT",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseQueryFailed:       "DATABASE_QUERY_FAILED",
	ErrCodeDatabaseWriteFailed:       "DATABASE_WRITE_FAILED",
	ErrCodeCacheWriteFailed:          "CACHE_WRITE_FAILED",
	ErrCodeDecisionPublishFailed:     "DECISION_PUBLISH_FAILED",
}

// GetRetryCount returns the recommended job retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentFetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeDatabaseWriteFailed,
		ErrCodeCacheWriteFailed,
		ErrCodeDecisionPublishFailed:
		return 3

	case ErrCodeExtractionTransportFailed,
		ErrCodeExtractionRateLimited:
		return 1 // the extraction client already spent its own attempt budget

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "EXTRACTION") || strings.HasPrefix(codeStr, "DOCUMENTS_EXTRACTION"):
		return "EXTRACTION"
	case strings.HasPrefix(codeStr, "DOCUMENT"):
		return "DOCUMENT"
	case strings.HasPrefix(codeStr, "APPLICATION"):
		return "APPLICATION"
	case strings.HasPrefix(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "DECISION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
