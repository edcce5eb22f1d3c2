package types

// ValidationResult is the verdict of the content validator. Valid with
// a non-empty QualityWarning is a soft pass, distinct from a clean
// pass: the report is deliverable but flagged.
type ValidationResult struct {
	Valid          bool   `json:"valid"`
	ErrorCode      string `json:"error_code,omitempty"`
	QualityWarning string `json:"quality_warning,omitempty"`
	// CanAutoExpand hints that a re-prompt asking for longer output
	// may fix the failure or clear the warning.
	CanAutoExpand bool `json:"can_auto_expand,omitempty"`
}

// GenerationState is the failure classifier's trichotomy.
type GenerationState int

const (
	StateSuccess GenerationState = iota
	StateRetryableFailure
	StateFatalFailure
)

func (s GenerationState) String() string {
	switch s {
	case StateSuccess:
		return "SUCCESS"
	case StateRetryableFailure:
		return "RETRYABLE_FAILURE"
	case StateFatalFailure:
		return "FATAL_FAILURE"
	default:
		return "unknown"
	}
}

// MaxGenerationRetries bounds how many times the orchestrator retries
// a retryable failure before converting it to MAX_RETRIES_EXCEEDED.
const MaxGenerationRetries = 2

// GenerationResult drives orchestrator control flow for a single
// generation attempt. It is never persisted.
type GenerationResult struct {
	State      GenerationState
	ErrorCode  string
	CanRetry   bool
	RetryCount int
	MaxRetries int
}
