// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across translation backends.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// throttled responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps a server-provided Retry-After delay.
var MaxRetryAfter = 2 * time.Minute

const defaultMaxRetries = 5

// retryable reports whether the status means "try again later".
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and 503 (Service Unavailable) with exponential backoff starting
// at RetryBaseDelay. A Retry-After header given in seconds replaces the
// computed delay.
//
// Request bodies are rewound through req.GetBody before each retry, so POST
// requests built with http.NewRequest over a bytes or strings reader are
// safe to retry. When maxRetries is 0 the default (5) is used. If the context
// is cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last throttled response is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryAfter(resp.Header.Get("Retry-After"))
		if backoff == 0 {
			backoff = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}
		slog.Default().Info("throttled, retrying",
			"status", resp.StatusCode,
			"backoff", backoff,
			"attempt", attempt+1,
			"maxRetries", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryAfter parses a Retry-After value in seconds. HTTP-date values and
// garbage yield 0 so the caller falls back to exponential backoff.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > MaxRetryAfter {
		return MaxRetryAfter
	}
	return d
}
