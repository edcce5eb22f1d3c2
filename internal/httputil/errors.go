package httputil

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope returned on every non-2xx response.
type APIError struct {
	Error APIErrorBody `json:"error"`
}

type APIErrorBody struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	// ReportID accompanies conflict responses so the caller can poll
	// the generation already in flight.
	ReportID string `json:"report_id,omitempty"`
}

func WriteError(w http.ResponseWriter, requestID string, statusCode int, errType, code, message string) {
	writeBody(w, requestID, statusCode, APIErrorBody{
		Message:   message,
		Type:      errType,
		Code:      code,
		RequestID: requestID,
	})
}

func writeBody(w http.ResponseWriter, requestID string, statusCode int, body APIErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIError{Error: body})
}

func WriteAuthError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnauthorized, "authentication_error", "invalid_api_key", message)
}

func WriteRateLimitError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, "rate_limit_error", "rate_limit_exceeded", message)
}

func WriteQuotaExceededError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, "quota_error", "daily_report_limit_exceeded", message)
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, "invalid_request_error", "invalid_request", message)
}

func WriteNotFoundError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusNotFound, "invalid_request_error", "not_found", message)
}

// WriteConflictError reports a duplicate request whose generation is
// still in flight, pointing the caller at the existing report.
func WriteConflictError(w http.ResponseWriter, requestID, reportID, message string) {
	writeBody(w, requestID, http.StatusConflict, APIErrorBody{
		Message:   message,
		Type:      "conflict_error",
		Code:      "generation_in_progress",
		RequestID: requestID,
		ReportID:  reportID,
	})
}

// WriteUnprocessableError reports a fatal generation outcome with its
// stable failure code.
func WriteUnprocessableError(w http.ResponseWriter, requestID, code, message string) {
	WriteError(w, requestID, http.StatusUnprocessableEntity, "generation_error", code, message)
}

func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusInternalServerError, "server_error", "internal_error", message)
}

func WriteServiceUnavailableError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusServiceUnavailable, "server_error", "service_unavailable", message)
}
