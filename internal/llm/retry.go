package llm

import (
	"context"
	"net/http"
	"time"
)

// RetryConfig defines retry behavior for the initial connection of a
// streaming call. Only failures before the first byte are retried; once a
// response is received, streaming proceeds or fails without replay.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts (0 = no retries).
	MaxRetries int
	// Backoff is the delay before each retry.
	Backoff time.Duration
}

// DefaultRetryConfig retries once on connection failure with a short delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 1,
		Backoff:    2 * time.Second,
	}
}

// DoRequest executes fn with the configured retry policy. Retries happen
// only when no HTTP response was obtained at all (connection refused, DNS
// failure). Any response, including 429 and 5xx, is returned as-is: the
// caller classifies it and rate limits are never retried.
func DoRequest(ctx context.Context, cfg RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.Backoff):
		}
	}

	return nil, lastErr
}
