// Package extraction turns one uploaded document into a typed record by calling a
// multimodal generateContent inference endpoint.
package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	commonhttp "loan-risk-workers/internal/common/http"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/metrics"
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "loan-risk-workers/extraction"

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration // per request
	MaxAttempts    int
	InitialBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://generativelanguage.googleapis.com",
		Model:          "gemini-1.5-flash",
		Timeout:        60 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
	}
}

// Client is stateless apart from configuration and is safe for concurrent use.
type Client struct {
	config Config
	http   *commonhttp.Client
	logger logger.Logger
	tracer trace.Tracer
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithSleeper replaces the wait between attempts. sleep must return ctx.Err() if ctx
// ends first.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func NewClient(config Config, log logger.Logger, opts ...Option) *Client {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.InitialBackoff < 0 {
		config.InitialBackoff = 0
	}
	c := &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout),
		logger: logger.ForComponent(log, "extraction"),
		tracer: otel.Tracer(tracerName),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) ExtractBankStatement(ctx context.Context, doc *models.RawDocument) (*models.BankInfo, error) {
	var out models.BankInfo
	if err := c.extract(ctx, doc, models.KindBankStatement, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExtractUniversityAcceptance(ctx context.Context, doc *models.RawDocument) (*models.UniversityAcceptance, error) {
	var out models.UniversityAcceptance
	if err := c.extract(ctx, doc, models.KindUniversityAcceptance, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExtractScholarshipLetter(ctx context.Context, doc *models.RawDocument) (*models.ScholarshipAcceptance, error) {
	var out models.ScholarshipAcceptance
	if err := c.extract(ctx, doc, models.KindScholarshipLetter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExtractIdentityDocument(ctx context.Context, doc *models.RawDocument) (*models.IdentityInfo, error) {
	var out models.IdentityInfo
	if err := c.extract(ctx, doc, models.KindIdentityDocument, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.config.BaseURL, "/"), c.config.Model)
}

// extract validates doc, sends it with bounded retries and decodes the reply into out.
// Every failure is an *ExtractionError.
func (c *Client) extract(ctx context.Context, doc *models.RawDocument, kind models.DocumentKind, out interface{}) (err error) {
	start := time.Now()
	log := c.logger.WithFields(map[string]interface{}{
		"documentKind": string(kind),
		"source":       sourceOf(doc),
	})

	ctx, span := c.tracer.Start(ctx, "extraction."+string(kind),
		trace.WithAttributes(attribute.String("document.kind", string(kind))))
	defer func() {
		metrics.ExtractionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if verr := validation.ValidateDocument(doc, kind); verr != nil {
		log.Warn("Document rejected before extraction", map[string]interface{}{"error": verr.Error()})
		return &ExtractionError{Kind: KindValidation, Document: kind, Message: verr.Error()}
	}

	body, merr := json.Marshal(generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: promptFor(kind)},
				{InlineData: &inlineData{
					MimeType: validation.NormalizeMimeType(doc.MimeType),
					Data:     base64.StdEncoding.EncodeToString(doc.Data),
				}},
			},
		}},
	})
	if merr != nil {
		return &ExtractionError{Kind: KindTransport, Document: kind, Message: "encode request", Err: merr}
	}

	headers := map[string]string{"x-goog-api-key": c.config.APIKey}

	var lastErr *ExtractionError
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.config.InitialBackoff * time.Duration(1<<(attempt-2))
			log.Info("Retrying extraction", map[string]interface{}{
				"attempt":   attempt,
				"backoffMs": backoff.Milliseconds(),
				"lastError": lastErr.Error(),
			})
			if serr := c.sleep(ctx, backoff); serr != nil {
				lastErr.Err = serr
				return lastErr
			}
		}

		span.SetAttributes(attribute.Int("extraction.attempts", attempt))
		text, aerr := c.attempt(ctx, kind, attempt, headers, body)
		if aerr == nil {
			if perr := decode(text, kind, attempt, out); perr != nil {
				log.Error("Extraction response rejected", map[string]interface{}{"error": perr.Error()})
				return perr
			}
			log.Info("Document extracted", map[string]interface{}{
				"attempts":   attempt,
				"durationMs": time.Since(start).Milliseconds(),
			})
			return nil
		}

		if !aerr.Retryable() || ctx.Err() != nil {
			log.Error("Extraction failed", map[string]interface{}{"error": aerr.Error(), "attempts": attempt})
			return aerr
		}
		lastErr = aerr
	}

	log.Error("Extraction attempts exhausted", map[string]interface{}{
		"error":    lastErr.Error(),
		"attempts": c.config.MaxAttempts,
	})
	return lastErr
}

// attempt sends one request and returns the candidate text or a classified error.
func (c *Client) attempt(ctx context.Context, kind models.DocumentKind, attempt int, headers map[string]string, body []byte) (string, *ExtractionError) {
	outcome := "success"
	defer func() {
		metrics.ExtractionAttempts.WithLabelValues(string(kind), outcome).Inc()
	}()

	resp, err := c.http.PostJSON(ctx, c.endpoint(), headers, body)
	if errors.Is(err, commonhttp.ErrResponseTooLarge) {
		outcome = string(KindUpstream)
		return "", &ExtractionError{Kind: KindUpstream, Document: kind, Attempts: attempt, Message: "response too large", Err: err}
	}
	if err != nil {
		outcome = string(KindTransport)
		ee := &ExtractionError{Kind: KindTransport, Document: kind, Attempts: attempt, Err: err}
		var reqErr *commonhttp.RequestError
		if errors.As(err, &reqErr) || !isTransient(err) {
			ee.permanent = true
		}
		return "", ee
	}

	var envelope generateContentResponse
	decodeErr := json.Unmarshal(resp.Body, &envelope)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		outcome = string(KindRateLimited)
		ee := &ExtractionError{Kind: KindRateLimited, Document: kind, Attempts: attempt, StatusCode: resp.StatusCode, Message: "rate limited"}
		if decodeErr == nil && envelope.Error != nil && envelope.Error.Message != "" {
			ee.Message = envelope.Error.Message
		}
		return "", ee

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		outcome = string(KindUpstream)
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if decodeErr == nil && envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return "", &ExtractionError{Kind: KindUpstream, Document: kind, Attempts: attempt, StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		outcome = string(KindParse)
		return "", &ExtractionError{Kind: KindParse, Document: kind, Attempts: attempt, StatusCode: resp.StatusCode, Message: "malformed response envelope", Err: decodeErr}
	}
	if envelope.Error != nil && envelope.Error.Message != "" {
		outcome = string(KindUpstream)
		return "", &ExtractionError{Kind: KindUpstream, Document: kind, Attempts: attempt, StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}

	text := envelope.text()
	if strings.TrimSpace(text) == "" {
		outcome = string(KindParse)
		return "", &ExtractionError{Kind: KindParse, Document: kind, Attempts: attempt, StatusCode: resp.StatusCode, Message: "response contained no text"}
	}
	return text, nil
}

// decode strips fences, validates against the kind's schema and unmarshals into out.
func decode(text string, kind models.DocumentKind, attempts int, out interface{}) *ExtractionError {
	payload := []byte(stripCodeFences(text))

	if schema, ok := schemas[kind]; ok {
		if result := schema.Validate(payload); !result.Valid {
			return &ExtractionError{Kind: KindParse, Document: kind, Attempts: attempts, StatusCode: http.StatusOK,
				Message: "response failed schema validation: " + result.Summary()}
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &ExtractionError{Kind: KindParse, Document: kind, Attempts: attempts, StatusCode: http.StatusOK,
			Message: "decode record", Err: err}
	}
	return nil
}

// isTransient reports whether a transport failure is worth retrying: timeouts, refused or
// reset connections, truncated responses and temporary DNS failures.
func isTransient(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound && (dnsErr.IsTemporary || dnsErr.IsTimeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func sourceOf(doc *models.RawDocument) string {
	if doc == nil {
		return ""
	}
	return doc.Source
}
