// Package jce implements the HTTP client for the Junta Central Electoral
// data portal: query building, overall-deadline retries with exponential
// backoff, payload sanitation and failure classification.
package jce

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"jceconsulta/internal/cedula"
	"jceconsulta/internal/platform/config"
)

// Failure taxonomy surfaced to the orchestrator. Each sentinel maps to a
// distinct result code at the API boundary.
var (
	// ErrNotFound means the portal answered but holds no data for the cédula.
	// This is a business outcome, never retried and never cached.
	ErrNotFound = errors.New("jce: citizen not found")
	// ErrTimeout means the overall deadline elapsed before a usable answer.
	ErrTimeout = errors.New("jce: portal timed out")
	// ErrUnavailable covers transport failures and 5xx/429 after retries.
	ErrUnavailable = errors.New("jce: portal unavailable")
	// ErrBadResponse covers unexpected 4xx replies and unparseable payloads.
	ErrBadResponse = errors.New("jce: portal returned an invalid response")
)

const (
	userAgent = "JCE-Consulta-Service/1.0"
	// maxBodyBytes caps portal payloads; real answers are a few KB.
	maxBodyBytes = 1 << 20
)

// Client queries the JCE data portal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	endpoint   string
	serviceID  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a portal client from configuration.
func NewClient(cfg config.Portal, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    cfg.BaseURL,
		endpoint:   cfg.Endpoint,
		serviceID:  cfg.ServiceID,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch queries the portal for one cédula. The deadline covers the whole
// retry sequence, not a single attempt. Transport failures and 5xx/429 are
// retried with exponential backoff; other 4xx and parse failures are not.
func (c *Client) Fetch(ctx context.Context, ced cedula.Cedula) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.consultaURL(ced)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			c.logger.WarnContext(ctx, "retrying portal consulta",
				"cedula", ced.Formatted(),
				"attempt", attempt+1,
				"error", lastErr,
			)
		}

		rec, retryable, err := c.attempt(ctx, reqURL)
		if err == nil {
			if !rec.ConsultaExitosa() {
				return nil, fmt.Errorf("%w: cedula %s", ErrNotFound, ced.Formatted())
			}
			return rec, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("portal consulta failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Health probes portal reachability without touching the consulta endpoint.
// It has no side effects on cache or admission state.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "portal health probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func (c *Client) consultaURL(ced cedula.Cedula) string {
	q := url.Values{}
	q.Set("ServiceID", c.serviceID)
	q.Set("ID1", ced.Municipality())
	q.Set("ID2", ced.Sequence())
	q.Set("ID3", ced.CheckDigit())
	return c.baseURL + c.endpoint + "?" + q.Encode()
}

// attempt performs a single portal round trip. The second return value
// reports whether the failure is worth retrying.
func (c *Client) attempt(ctx context.Context, reqURL string) (*Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: build request: %v", ErrBadResponse, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Accept-Charset", "utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, c.deadlineError(ctx)
		}
		// Connection refused, DNS failure, reset: worth retrying.
		return nil, true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, true, fmt.Errorf("%w: portal answered HTTP %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, false, fmt.Errorf("%w: portal answered HTTP %d", ErrBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, c.deadlineError(ctx)
		}
		return nil, true, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	rec, err := parseRecord(body)
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.retryDelay << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return c.deadlineError(ctx)
	case <-timer.C:
		return nil
	}
}

func (c *Client) deadlineError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: deadline exceeded", ErrTimeout)
	}
	return ctx.Err()
}

// parseRecord sanitizes and decodes a portal payload. The portal is known to
// emit byte order marks, raw control characters and unescaped ampersands.
func parseRecord(body []byte) (*Record, error) {
	clean := sanitizeXML(string(body))
	if clean == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrBadResponse)
	}

	var rec Record
	if err := xml.Unmarshal([]byte(clean), &rec); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrBadResponse, err)
	}
	return &rec, nil
}
