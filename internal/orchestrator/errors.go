package orchestrator

import (
	"fmt"
	"strings"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"
)

// ApplicationFailedError reports every document of an application that could not be
// extracted. The record returned alongside it keeps the documents that did succeed.
type ApplicationFailedError struct {
	ApplicationID string
	Failures      []models.DocumentFailure
}

func (e *ApplicationFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", f.DocumentKind, f.ErrorKind, f.Message))
	}
	return fmt.Sprintf("application %s failed: %s", e.ApplicationID, strings.Join(parts, "; "))
}

// Unwrap exposes each document's cause, so errors.As reaches an *extraction.ExtractionError.
func (e *ApplicationFailedError) Unwrap() []error {
	causes := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Cause != nil {
			causes = append(causes, f.Cause)
		}
	}
	return causes
}

// FailedKinds lists the failed document kinds in processing order.
func (e *ApplicationFailedError) FailedKinds() []models.DocumentKind {
	kinds := make([]models.DocumentKind, 0, len(e.Failures))
	for _, f := range e.Failures {
		kinds = append(kinds, f.DocumentKind)
	}
	return kinds
}

func (e *ApplicationFailedError) StandardError() *apperrors.StandardError {
	return apperrors.NewDocumentsExtractionFailedError(e.Error(), e.Failures)
}
