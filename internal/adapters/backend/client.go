// Package backend implements ports.BinAPI against the binwatch data API over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/target/binwatch/internal/domain/bins"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/observability/metrics"
	"github.com/target/binwatch/internal/observability/statsd"
	"github.com/target/binwatch/internal/ports"
)

const (
	binsPath    = "/api/bins"
	reportsPath = "/api/reports"

	defaultTimeout = 10 * time.Second
	defaultBackoff = 250 * time.Millisecond

	maxResponseBodyBytes = 1 << 20
	maxErrorBodyBytes    = 512
)

var _ ports.BinAPI = (*Client)(nil)

// ClientOptions configures the backend client.
type ClientOptions struct {
	BaseURL string
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration // default 10s
	// RetryLimit is the number of extra attempts for idempotent reads.
	RetryLimit int
	Backoff    time.Duration // linear step between attempts; default 250ms
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// Client talks to the backend data API.
type Client struct {
	base       *url.URL
	http       *http.Client
	retryLimit int
	backoff    time.Duration
	metrics    statsd.Sink
	logger     *slog.Logger
}

// NewClient validates the base URL and builds a client.
func NewClient(opts ClientOptions) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, apperrors.ValidationField("base_url", "backend base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.ValidationField("base_url", fmt.Sprintf("invalid backend base url %q", opts.BaseURL))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:       base,
		http:       httpClient,
		retryLimit: max(opts.RetryLimit, 0),
		backoff:    backoff,
		metrics:    opts.Metrics,
		logger:     logger,
	}, nil
}

// ListBins returns every registered bin in backend order.
func (c *Client) ListBins(ctx context.Context) ([]bins.Bin, error) {
	start := time.Now()
	var list []bins.Bin
	err := c.withRetry(ctx, "list_bins", func() error {
		body, err := c.do(ctx, http.MethodGet, binsPath, nil)
		if err != nil {
			return err
		}
		list = nil
		if err := json.Unmarshal(body, &list); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "decode bins response")
		}
		return nil
	})
	metrics.EmitRequest(c.metrics, metrics.RequestMetric{Operation: "list_bins", Duration: time.Since(start), Err: err})
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	if list == nil {
		list = []bins.Bin{}
	}
	return list, nil
}

// SubmitReport posts a bin report. Reports are not retried.
func (c *Client) SubmitReport(ctx context.Context, report bins.Report) error {
	start := time.Now()
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, reportsPath, payload)
	metrics.EmitRequest(c.metrics, metrics.RequestMetric{Operation: "submit_report", Duration: time.Since(start), Err: err})
	if err != nil {
		return fmt.Errorf("submit report: %w", err)
	}
	return nil
}

// withRetry runs fn up to retryLimit+1 times, waiting attempt*backoff between tries.
// Only transport failures and 5xx responses are retried.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= c.retryLimit || !retryable(err) {
			return err
		}

		wait := time.Duration(attempt+1) * c.backoff
		c.logger.WarnContext(ctx, "backend request failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"wait", wait.String(),
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

// statusError is an upstream response outside the 2xx range.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("backend returned status %d", e.status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.status, e.body)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}

// retryable reports whether err is a 5xx or a transport failure. Cancellation of the
// caller's context arrives unwrapped and is never retried.
func retryable(err error) bool {
	if status := StatusCode(err); status != 0 {
		return status >= http.StatusInternalServerError
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeTimeout, apperrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	target := c.base.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyTransportError(err)
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if closeErr := resp.Body.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}
	if readErr != nil {
		return nil, apperrors.Wrap(readErr, apperrors.ErrCodeInternal, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Wrapf(&statusError{status: resp.StatusCode, body: errorSnippet(data)},
			apperrors.ErrCodeUpstream, "%s %s", method, path)
	}
	if len(data) > maxResponseBodyBytes {
		return nil, apperrors.Newf(apperrors.ErrCodeUpstream,
			"%s %s: response body exceeds %d bytes", method, path, maxResponseBodyBytes)
	}
	return data, nil
}

// errorSnippet trims an error body to maxErrorBodyBytes without splitting a rune.
func errorSnippet(data []byte) string {
	snippet := strings.TrimSpace(string(data))
	if len(snippet) <= maxErrorBodyBytes {
		return snippet
	}
	cut := maxErrorBodyBytes
	for cut > 0 && !utf8.RuneStart(snippet[cut]) {
		cut--
	}
	return snippet[:cut]
}

func classifyTransportError(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "backend request timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "send request")
}
