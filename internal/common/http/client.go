// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 16 * 1024 * 1024

// ErrResponseTooLarge is returned when a response body exceeds the client's limit.
var ErrResponseTooLarge = errors.New("response body too large")

type Client struct {
	httpClient       *http.Client
	maxResponseBytes int64
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxResponseBytes: maxResponseBytes,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// PostJSON sends body as application/json and reads the whole response. A non-nil error
// means no usable response was received; HTTP error statuses are returned in Response.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes (status %d)", ErrResponseTooLarge, c.maxResponseBytes, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// RequestError reports that a request could not be built, so nothing was sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return "build request: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
