package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultRetryCount is the default number of retry attempts.
const DefaultRetryCount = 3

// DefaultBaseDelay is the initial delay for exponential backoff.
const DefaultBaseDelay = 1 * time.Second

// Retry wraps a Transcriber with retry logic and exponential backoff.
// Connection failures and 5xx responses are retried; auth failures and
// other client errors are not.
type Retry struct {
	client    Transcriber
	maxRetry  int
	baseDelay time.Duration
	onRetry   func(attempt int, delay time.Duration, err error)
}

// RetryOption configures the Retry wrapper.
type RetryOption func(*Retry)

// WithRetryCount sets the maximum number of retry attempts.
func WithRetryCount(n int) RetryOption {
	return func(r *Retry) {
		r.maxRetry = n
	}
}

// WithBaseDelay sets the initial delay for exponential backoff.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(r *Retry) {
		r.baseDelay = d
	}
}

// WithRetryCallback registers a hook invoked before each retry sleep.
func WithRetryCallback(fn func(attempt int, delay time.Duration, err error)) RetryOption {
	return func(r *Retry) {
		r.onRetry = fn
	}
}

// NewRetry creates a Retry wrapping the given Transcriber.
func NewRetry(client Transcriber, opts ...RetryOption) *Retry {
	r := &Retry{
		client:    client,
		maxRetry:  DefaultRetryCount,
		baseDelay: DefaultBaseDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Transcribe calls the wrapped client, retrying on transient failures.
func (r *Retry) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetry; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay * (1 << (attempt - 1)) // Exponential: 1s, 2s, 4s...
			if r.onRetry != nil {
				r.onRetry(attempt, delay, lastErr)
			}

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := r.client.Transcribe(ctx, audioPath)
		if err == nil {
			return text, nil
		}

		if !isRetryable(err) {
			return "", err
		}

		lastErr = err
	}

	return "", fmt.Errorf("transcription failed after %d retries: %w", r.maxRetry, lastErr)
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Bad credentials won't improve with retries.
	if errors.Is(err, ErrAuth) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
		return apiErr.HTTPStatusCode >= 500 && apiErr.HTTPStatusCode < 600
	}

	// Connection errors in wrapped error messages - retryable
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") {
		return true
	}

	// Default: don't retry unknown errors
	return false
}
