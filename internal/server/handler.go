// Package server exposes the report generation pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/celestia-labs/reportgen/internal/auth"
	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/httputil"
	"github.com/celestia-labs/reportgen/internal/ratelimit"
	"github.com/celestia-labs/reportgen/internal/report"
	"github.com/celestia-labs/reportgen/internal/types"
)

// ReportGenerator is the pipeline surface the handlers call. Satisfied
// by *report.Generator.
type ReportGenerator interface {
	Generate(ctx context.Context, input types.BirthInput, rt types.ReportType, sessionID string) (*report.Result, error)
}

// Handler holds dependencies for the report HTTP handlers.
type Handler struct {
	generator ReportGenerator
	store     cache.Store
	quota     *ratelimit.QuotaTracker
	logger    *slog.Logger
}

func NewHandler(generator ReportGenerator, store cache.Store, quota *ratelimit.QuotaTracker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{generator: generator, store: store, quota: quota, logger: logger}
}

type generateRequest struct {
	ReportType string           `json:"report_type"`
	Input      types.BirthInput `json:"input"`
	SessionID  string           `json:"session_id,omitempty"`
}

type reportResponse struct {
	ReportID       string               `json:"report_id"`
	Status         string               `json:"status"`
	ReportType     string               `json:"report_type,omitempty"`
	Content        *types.ReportContent `json:"content,omitempty"`
	QualityWarning string               `json:"quality_warning,omitempty"`
	Deduplicated   bool                 `json:"deduplicated,omitempty"`
}

// CreateReport handles POST /v1/reports.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	defer r.Body.Close()

	rt, ok := types.ParseReportType(req.ReportType)
	if !ok {
		httputil.WriteBadRequestError(w, reqID, "Unknown report type: "+req.ReportType)
		return
	}
	if !authInfo.AllowsReportType(string(rt)) {
		httputil.WriteError(w, reqID, http.StatusForbidden,
			"permission_error", "report_type_not_allowed",
			"This API key cannot request "+string(rt)+" reports")
		return
	}
	if rt.Paid() && authInfo.Plan == "free" {
		httputil.WriteError(w, reqID, http.StatusForbidden,
			"permission_error", "plan_upgrade_required",
			"The "+string(rt)+" report requires a paid plan")
		return
	}

	res, err := h.generator.Generate(r.Context(), req.Input, rt, req.SessionID)
	if err != nil {
		h.writeGenerationError(w, reqID, rt, err)
		return
	}

	status := http.StatusCreated
	if res.Deduplicated {
		status = http.StatusOK
	} else if h.quota != nil {
		if qerr := h.quota.RecordReport(r.Context(), authInfo.UserID); qerr != nil {
			h.logger.Warn("record daily report count failed", "error", qerr, "user_id", authInfo.UserID)
		}
	}

	writeJSON(w, status, reportResponse{
		ReportID:       res.ReportID,
		Status:         string(res.Status),
		ReportType:     string(rt),
		Content:        res.Content,
		QualityWarning: res.QualityWarning,
		Deduplicated:   res.Deduplicated,
	})
}

func (h *Handler) writeGenerationError(w http.ResponseWriter, reqID string, rt types.ReportType, err error) {
	var inflight *report.InFlightError
	if errors.As(err, &inflight) {
		httputil.WriteConflictError(w, reqID, inflight.ReportID,
			"A report for this request is already being generated")
		return
	}

	var gerr *report.GenerationError
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case types.CodeMissingInputData:
			httputil.WriteBadRequestError(w, reqID, "Date, time, and place of birth are required")
		default:
			httputil.WriteUnprocessableError(w, reqID, gerr.Code, gerr.Error())
		}
		return
	}

	var exhausted *completion.ExhaustedError
	if errors.As(err, &exhausted) {
		httputil.WriteServiceUnavailableError(w, reqID, "Report generation is temporarily unavailable")
		return
	}

	h.logger.Error("report generation failed", "report_type", string(rt), "error", err)
	httputil.WriteInternalError(w, reqID, "Internal error during report generation")
}

// GetReport handles GET /v1/reports/{reportID}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	reportID := chi.URLParam(r, "reportID")

	entry, err := h.store.GetByReportID(r.Context(), reportID)
	if err != nil {
		h.logger.Error("report lookup failed", "report_id", reportID, "error", err)
		httputil.WriteInternalError(w, reqID, "Internal error during report lookup")
		return
	}
	if entry == nil {
		httputil.WriteNotFoundError(w, reqID, "No report found with id "+reportID)
		return
	}

	resp := reportResponse{
		ReportID:   entry.ReportID,
		Status:     string(entry.Status),
		ReportType: string(entry.ReportType),
	}
	if entry.Status == cache.StatusDelivered {
		resp.Content = entry.Content
		resp.QualityWarning = entry.QualityWarning
	}
	writeJSON(w, http.StatusOK, resp)
}

type reportTypeInfo struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Tier        string `json:"tier"`
	Paid        bool   `json:"paid"`
	MaxTokens   int    `json:"max_tokens"`
	WordTarget  int    `json:"word_target"`
}

// ListReportTypes handles GET /v1/report-types.
func (h *Handler) ListReportTypes(w http.ResponseWriter, r *http.Request) {
	all := types.AllReportTypes()
	out := make([]reportTypeInfo, 0, len(all))
	for _, rt := range all {
		out = append(out, reportTypeInfo{
			Type:        string(rt),
			DisplayName: rt.DisplayName(),
			Tier:        string(rt.Tier()),
			Paid:        rt.Paid(),
			MaxTokens:   completion.TokenBudget(rt),
			WordTarget:  report.WordTarget(rt),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"report_types": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
