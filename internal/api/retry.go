package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Retry configuration constants
const (
	MaxAPIRetryAttempts = 3
	APIInitialBackoff   = 500 * time.Millisecond
	APIMaxBackoff       = 5 * time.Second
	BackoffMultiplier   = 2.0
)

// RetryableStatusCodes are gateway failures seen while pveproxy restarts.
// Other failures are answers from the API and are never retried.
var RetryableStatusCodes = []int{
	http.StatusBadGateway,         // 502
	http.StatusServiceUnavailable, // 503
	http.StatusGatewayTimeout,     // 504
}

// ShouldRetryAPICall checks if the error status code indicates we should retry the API call
func ShouldRetryAPICall(statusCode int) bool {
	for _, code := range RetryableStatusCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// CalculateAPIBackoff returns the backoff duration for API retry attempts
func CalculateAPIBackoff(attempt int) time.Duration {
	backoff := APIInitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * BackoffMultiplier)
		if backoff > APIMaxBackoff {
			backoff = APIMaxBackoff
			break
		}
	}
	return backoff
}

// RetryableFunc is a function that can be retried
type RetryableFunc[T any] func() (T, error)

// WithRetry executes a function with retry logic for transient failures.
// Only *APIError values with a retryable status are retried, with
// exponential backoff between attempts.
func WithRetry[T any](ctx context.Context, fn RetryableFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt < MaxAPIRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("operation cancelled: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !ShouldRetryAPICall(apiErr.StatusCode) {
			return zero, err
		}

		if attempt < MaxAPIRetryAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("operation cancelled: %w", ctx.Err())
			case <-time.After(CalculateAPIBackoff(attempt)):
			}
		}
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", MaxAPIRetryAttempts, lastErr)
}
