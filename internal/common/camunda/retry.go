package camunda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-risk-workers/internal/common/logger"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so Retry gives up immediately.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Retry runs op up to MaxRetries+1 times with exponential backoff capped at MaxDelay.
// It stops early on a Permanent error or when ctx is done.
func Retry(ctx context.Context, cfg *RetryConfig, operationName string, log logger.Logger, op func(context.Context) error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig
	}
	log = logger.ForComponent(log, "retry")

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		log.Warn(fmt.Sprintf("%s failed, retrying", operationName), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt + 1,
			"maxRetries":  cfg.MaxRetries,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, cfg.MaxRetries+1, lastErr)
}
