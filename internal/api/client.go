package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikbrunner/bmr/internal/metrics"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request id for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Params configures a Client.
type Params struct {
	BaseURL     string
	Credentials storage.CredentialStore
	// OnAuthFailure is called with a human-readable reason after a 401 or 403.
	OnAuthFailure func(reason string)
	HTTPClient    *http.Client
	// Limiter paces outgoing requests. Nil means unlimited.
	Limiter *rate.Limiter
}

// Client talks to the bookmark service, attaching the stored API key.
type Client struct {
	baseURL       string
	creds         storage.CredentialStore
	onAuthFailure func(reason string)
	httpClient    *http.Client
	limiter       *rate.Limiter
}

// New creates a Client.
func New(p Params) *Client {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	onAuthFailure := p.OnAuthFailure
	if onAuthFailure == nil {
		onAuthFailure = func(string) {}
	}

	return &Client{
		baseURL:       strings.TrimRight(p.BaseURL, "/"),
		creds:         p.Credentials,
		onAuthFailure: onAuthFailure,
		httpClient:    httpClient,
		limiter:       p.Limiter,
	}
}

// NewFromConfig creates a Client reporting auth failures to auth.
func NewFromConfig(cfg *storage.Config, creds storage.CredentialStore, auth *AuthState) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	return New(Params{
		BaseURL:       cfg.BaseURL,
		Credentials:   creds,
		OnAuthFailure: auth.Require,
		HTTPClient:    &http.Client{Timeout: cfg.Timeout()},
		Limiter:       limiter,
	})
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request to path (which may carry a query string) and returns the
// raw response. Non-2xx responses are closed and returned as *HTTPError.
// The caller must close the body of a successful response.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.loadCredential(); token != "" {
		req.Header.Set("Authorization", token)
	}

	endpoint := endpointLabel(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RequestDurationSeconds.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, endpoint, "error").Inc()
		log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	metrics.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.authFailed(ReasonKeyRequired)
	case http.StatusForbidden:
		c.authFailed(ReasonKeyInvalid)
	}
	return nil, newHTTPError(resp)
}

// DoJSON sends a request and decodes a successful JSON response into out.
// A nil out discards the body.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Exec sends a request whose response body is of no interest.
func (c *Client) Exec(ctx context.Context, method, path string, body any) error {
	return c.DoJSON(ctx, method, path, body, nil)
}

func (c *Client) loadCredential() string {
	if c.creds == nil {
		return ""
	}
	token, ok, err := c.creds.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load credential")
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// authFailed reports the reason before clearing the credential, so a
// concurrent request that already sees no key cannot report first.
func (c *Client) authFailed(reason string) {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	log.Warn().Str("reason", reason).Msg("authentication required")
	c.onAuthFailure(reason)
	if c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear credential")
		}
	}
}

// endpointLabel strips the query and replaces numeric segments so metric
// labels stay bounded: /api/bookmarks/5 becomes /api/bookmarks/{id}.
func endpointLabel(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
