// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/tracing"
)

// ErrUnexpectedStatus is returned when an upstream service answers with a
// non-success HTTP status.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// maxErrorBodySize limits the amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads at most maxErrorBodySize bytes of a response body
// for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client is the HTTP transport shared by the upstream service clients.
// It is safe for concurrent use.
type Client struct {
	service        string // metrics and span label
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter // nil when unlimited
	maxRetries     int           // Maximum retries for rate limiting
	retryBaseDelay time.Duration // Base delay for exponential backoff
}

// NewClient creates a client for the service at cfg.URL.
// The transport is instrumented with OpenTelemetry.
func NewClient(service string, cfg *config.UpstreamConfig) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// Service returns the name used to label this client's metrics and spans.
func (c *Client) Service() string {
	return c.service
}

// getJSON issues GET baseURL+path and decodes the JSON body into result.
// When notFoundOK is set a 404 answer returns found=false and no error.
func (c *Client) getJSON(ctx context.Context, op, path string, result interface{}, notFoundOK bool) (bool, error) {
	ctx, span := tracing.Tracer().Start(ctx, c.service+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upstream.service", c.service),
			attribute.String("upstream.operation", op),
		))
	defer span.End()

	start := time.Now()
	found, status, err := c.get(ctx, op, path, result, notFoundOK)
	metrics.RecordUpstreamRequest(c.service, op, status, time.Since(start))

	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return found, err
}

// get performs the request and returns the final HTTP status, or 0 when no
// response was received.
func (c *Client) get(ctx context.Context, op, path string, result interface{}, notFoundOK bool) (bool, int, error) {
	resp, err := c.doRequestWithRateLimit(ctx, c.baseURL+path)
	if err != nil {
		return false, 0, fmt.Errorf("%s %s request: %w", c.service, op, err)
	}
	defer resp.Body.Close()

	if notFoundOK && resp.StatusCode == http.StatusNotFound {
		return false, resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return false, resp.StatusCode, fmt.Errorf("%w: %s %s request failed with status %d: %s",
			ErrUnexpectedStatus, c.service, op, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, resp.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", c.service, op, err)
	}
	return true, resp.StatusCode, nil
}

// doRequestWithRateLimit performs a GET with the outbound rate limit applied
// and automatic retry of HTTP 429 answers with exponential backoff. A
// Retry-After header in seconds overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("%w: rate limit exceeded after %d retries (HTTP 429)", ErrUnexpectedStatus, c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}
