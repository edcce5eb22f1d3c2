package completion

import (
	"fmt"
	"time"
)

// RateLimitError is returned when the provider answers 429. RetryAfter
// is the provider-supplied wait hint; zero means no hint was present
// and the fallback backoff schedule applies.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %s", e.RetryAfter, e.Message)
	}
	return "rate limited: " + e.Message
}

// ProviderError is a non-rate-limit upstream failure.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether another attempt could plausibly succeed.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}

// ExhaustedError is the terminal error after the attempt ceiling is
// hit; it carries the attempt count and the last underlying failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
