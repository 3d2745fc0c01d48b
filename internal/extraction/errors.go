package extraction

import (
	"fmt"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"
)

// ErrorKind classifies why an extraction failed.
type ErrorKind string

const (
	// KindValidation: the document was rejected before any request was sent.
	KindValidation ErrorKind = "validation"
	// KindTransport: the request could not be sent or no response arrived.
	KindTransport ErrorKind = "transport"
	// KindRateLimited: the service kept answering 429 until the attempt budget ran out.
	KindRateLimited ErrorKind = "rate_limited"
	// KindParse: a response arrived but did not contain a valid record.
	KindParse ErrorKind = "parse"
	// KindUpstream: the service answered with an explicit error.
	KindUpstream ErrorKind = "upstream"
)

var errorCodes = map[ErrorKind]apperrors.ErrorCode{
	KindValidation:  apperrors.ErrCodeDocumentValidationFailed,
	KindTransport:   apperrors.ErrCodeExtractionTransportFailed,
	KindRateLimited: apperrors.ErrCodeExtractionRateLimited,
	KindParse:       apperrors.ErrCodeExtractionParseFailed,
	KindUpstream:    apperrors.ErrCodeExtractionUpstreamFailed,
}

// ExtractionError is the only error type returned by Client.
type ExtractionError struct {
	Kind       ErrorKind
	Document   models.DocumentKind
	Attempts   int // requests actually sent
	StatusCode int // last HTTP status, 0 if none
	Message    string
	Err        error

	permanent bool // transport failure that a retry cannot fix
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Document, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request could succeed later.
func (e *ExtractionError) Retryable() bool {
	if e.permanent {
		return false
	}
	return e.Kind == KindTransport || e.Kind == KindRateLimited
}

// StandardError converts the failure for BPMN error handling.
func (e *ExtractionError) StandardError() *apperrors.StandardError {
	var std *apperrors.StandardError
	if e.Kind == KindValidation {
		std = apperrors.NewDocumentValidationFailedError(e.Error())
	} else {
		std = apperrors.NewInternalError(e)
		std.Code = errorCodes[e.Kind]
		std.Message = fmt.Sprintf("Extraction of %s failed", e.Document)
		std.Retryable = e.Retryable()
	}
	std.Metadata = map[string]interface{}{
		"documentKind": string(e.Document),
		"errorKind":    string(e.Kind),
		"attempts":     e.Attempts,
	}
	return std
}
