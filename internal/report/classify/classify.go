// Package classify separates retryable generation failures from fatal
// ones. Rules apply in a fixed order and the first match wins; the
// default is to classify unknown errors as retryable, failing open
// toward giving the user another chance.
package classify

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/celestia-labs/reportgen/internal/astro"
	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/types"
)

// Context carries the orchestrator's observations about the failed
// attempt, supplementing whatever the error value itself says.
type Context struct {
	IsTimeout             bool
	IsNetworkError        bool
	ValidationFailed      bool
	ValidationCode        string
	CanAutoExpand         bool
	HasPlaceholderContent bool
	RetryCount            int
}

// Classify maps a failed attempt to a GenerationResult. The retry
// ceiling is checked first: once it is hit the outcome is fatal no
// matter what went wrong, so fatality is monotonic in RetryCount.
func Classify(err error, ctx Context, logger *slog.Logger) types.GenerationResult {
	res := types.GenerationResult{
		RetryCount: ctx.RetryCount,
		MaxRetries: types.MaxGenerationRetries,
	}

	if ctx.RetryCount >= types.MaxGenerationRetries {
		return fatal(res, types.CodeMaxRetriesExceeded)
	}

	msg := ""
	if err != nil {
		msg = strings.ToLower(err.Error())
	}

	switch {
	case ctx.IsTimeout || errorsIsTimeout(err) || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return retryable(res, types.CodeTimeout)

	case ctx.IsNetworkError || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") || strings.Contains(msg, "no such host"):
		return retryable(res, types.CodeNetworkError)

	case errors.Is(err, astro.ErrProviderSlow):
		return retryable(res, types.CodeChartProviderSlow)

	case isProviderError(err) || strings.Contains(msg, "rate limit"):
		return retryable(res, types.CodeAPIError)

	case ctx.ValidationFailed && ctx.ValidationCode != types.CodeMockContentDetected &&
		(ctx.HasPlaceholderContent || ctx.CanAutoExpand):
		return retryable(res, types.CodeValidationFailedPlaceholder)

	case strings.Contains(msg, "missing birth") || strings.Contains(msg, "incomplete input"):
		return fatal(res, types.CodeMissingInputData)

	case errors.Is(err, astro.ErrUnsupportedLocation):
		return fatal(res, types.CodeUnsupportedLocation)

	case strings.Contains(msg, "nil pointer") || strings.Contains(msg, "index out of range") ||
		strings.Contains(msg, "internal error"):
		return fatal(res, types.CodeInternalError)

	case ctx.ValidationCode == types.CodeMockContentDetected:
		// A mock marker signals a template defect, not flakiness.
		// Retrying the same prompt cannot fix it.
		return fatal(res, types.CodeMockContentDetected)
	}

	if logger != nil {
		logger.Warn("unclassified generation failure, treating as retryable",
			"error", err, "retry_count", ctx.RetryCount)
	}
	return retryable(res, types.CodeUnknownError)
}

func retryable(res types.GenerationResult, code string) types.GenerationResult {
	res.State = types.StateRetryableFailure
	res.ErrorCode = code
	res.CanRetry = true
	return res
}

func fatal(res types.GenerationResult, code string) types.GenerationResult {
	res.State = types.StateFatalFailure
	res.ErrorCode = code
	res.CanRetry = false
	return res
}

func errorsIsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// isProviderError recognizes completion-backend failures, including
// the terminal wrapper around an exhausted retry budget.
func isProviderError(err error) bool {
	var rle *completion.RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var pe *completion.ProviderError
	if errors.As(err, &pe) {
		return true
	}
	var ee *completion.ExhaustedError
	return errors.As(err, &ee)
}
