// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared across stages.
package httputil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/pkg/types"
)

const defaultTimeout = 30 * time.Second

// ErrNotFound matches a StatusError carrying HTTP 404.
var ErrNotFound = errors.New("not found")

// StatusError reports a non-200 response from an upstream API.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Source, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client sends each request exactly once. Every call shares one timeout
// and, when configured, one request-rate limiter. Failures are returned to
// the caller, which decides whether they abstain or abort.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Limiter paces requests across all goroutines using the client.
	// Nil disables pacing.
	Limiter *rate.Limiter

	Metrics *observability.Metrics
}

// New builds a Client from cfg. A zero timeout falls back to 30s so no
// call can hang indefinitely.
func New(cfg types.HTTPConfig, m *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
		Metrics:   m,
	}
	if cfg.RequestsPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Do sends req once and returns the response when the status is 200.
// Any other status drains and closes the body and yields a *StatusError.
// source names the upstream API in errors and metrics.
func (c *Client) Do(ctx context.Context, source string, req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		c.Metrics.Request(source, "network_error")
		return nil, fmt.Errorf("%s request: %w", source, err)
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		outcome := "http_error"
		if resp.StatusCode == http.StatusNotFound {
			outcome = "not_found"
		}
		c.Metrics.Request(source, outcome)
		return nil, &StatusError{Source: source, StatusCode: resp.StatusCode}
	}

	c.Metrics.Request(source, "ok")
	return resp, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, source, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, source, req, v)
}

// PostJSON sends body as JSON to url and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, source, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", source, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, source, req, v)
}

func (c *Client) doJSON(ctx context.Context, source string, req *http.Request, v any) error {
	resp, err := c.Do(ctx, source, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.Metrics.Request(source, "decode_error")
		return fmt.Errorf("parsing %s response: %w", source, err)
	}
	return nil
}

// EscapePath escapes each slash-separated segment of s for use in a URL
// path, keeping the slashes. DOIs routinely carry characters such as ';'
// and '<' that are not valid in a raw path.
func EscapePath(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
