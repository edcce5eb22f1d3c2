package types

// Validation error codes. These are stable strings surfaced to clients
// and matched by the failure classifier.
const (
	CodeMissingSections     = "MISSING_SECTIONS"
	CodeMockContentDetected = "MOCK_CONTENT_DETECTED"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUserDataMismatch    = "USER_DATA_MISMATCH"
)

// Failure error codes produced by the classifier.
const (
	CodeTimeout                     = "TIMEOUT"
	CodeNetworkError                = "NETWORK_ERROR"
	CodeAPIError                    = "API_ERROR"
	CodeChartProviderSlow           = "PROKERALA_SLOW"
	CodeValidationFailedPlaceholder = "VALIDATION_FAILED_PLACEHOLDER"
	CodeMissingInputData            = "MISSING_INPUT_DATA"
	CodeUnsupportedLocation         = "UNSUPPORTED_LOCATION"
	CodeInternalError               = "INTERNAL_ERROR"
	CodeMaxRetriesExceeded          = "MAX_RETRIES_EXCEEDED"
	CodeUnknownError                = "UNKNOWN_ERROR"
)
