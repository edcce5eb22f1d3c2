package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/types"
)

// Metrics holds all Prometheus metrics for the report service. It
// satisfies both the orchestrator's Observer and the completion
// client's CallTracker.
type Metrics struct {
	GenerationTotal       *prometheus.CounterVec
	GenerationRetryTotal  *prometheus.CounterVec
	DuplicateTotal        *prometheus.CounterVec
	CompletionCallTotal   *prometheus.CounterVec
	CompletionDurationMs  *prometheus.HistogramVec
	TokensTotal           *prometheus.CounterVec
	RateLimitTotal        *prometheus.CounterVec
	ChartCacheLookupTotal *prometheus.CounterVec
	RequestRejectedTotal  *prometheus.CounterVec
	SweepRemovedTotal     prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		GenerationTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_generation_total",
			Help: "Total report generations by final outcome.",
		}, []string{"report_type", "outcome"}),

		GenerationRetryTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_generation_retry_total",
			Help: "Total generation retries by failure code.",
		}, []string{"report_type", "code"}),

		DuplicateTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_duplicate_total",
			Help: "Total duplicate requests suppressed by the idempotency cache.",
		}, []string{"report_type"}),

		CompletionCallTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_completion_call_total",
			Help: "Total upstream completion calls by status.",
		}, []string{"provider", "report_type", "status"}),

		CompletionDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reportgen_completion_duration_ms",
			Help:    "Upstream completion call duration in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 90000},
		}, []string{"provider"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_tokens_total",
			Help: "Total completion tokens consumed.",
		}, []string{"provider", "report_type"}),

		RateLimitTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_provider_rate_limit_total",
			Help: "Total rate-limit responses from completion providers.",
		}, []string{"provider"}),

		ChartCacheLookupTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_chart_cache_lookup_total",
			Help: "Chart cache lookups by outcome (hit, negative_hit, miss).",
		}, []string{"outcome"}),

		RequestRejectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reportgen_request_rejected_total",
			Help: "Requests rejected before generation, by reason.",
		}, []string{"reason"}),

		SweepRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reportgen_cache_sweep_removed_total",
			Help: "Report cache entries removed by the periodic sweep.",
		}),
	}
}

// GenerationFinished records a terminal pipeline outcome.
func (m *Metrics) GenerationFinished(rt types.ReportType, outcome string) {
	m.GenerationTotal.WithLabelValues(string(rt), outcome).Inc()
}

// GenerationRetried records one orchestrator-level retry.
func (m *Metrics) GenerationRetried(rt types.ReportType, code string) {
	m.GenerationRetryTotal.WithLabelValues(string(rt), code).Inc()
}

// DuplicateSuppressed records an idempotency-cache dedup.
func (m *Metrics) DuplicateSuppressed(rt types.ReportType) {
	m.DuplicateTotal.WithLabelValues(string(rt)).Inc()
}

// RecordCall records one upstream completion call.
func (m *Metrics) RecordCall(provider string, rt types.ReportType, tokens int, duration time.Duration, err error) {
	status := "ok"
	var rle *completion.RateLimitError
	switch {
	case errors.As(err, &rle):
		status = "rate_limited"
		m.RateLimitTotal.WithLabelValues(provider).Inc()
	case err != nil:
		status = "error"
	}

	m.CompletionCallTotal.WithLabelValues(provider, string(rt), status).Inc()
	m.CompletionDurationMs.WithLabelValues(provider).Observe(float64(duration.Milliseconds()))
	if tokens > 0 {
		m.TokensTotal.WithLabelValues(provider, string(rt)).Add(float64(tokens))
	}
}

// ChartCacheLookup records one chart cache lookup outcome.
func (m *Metrics) ChartCacheLookup(outcome string) {
	m.ChartCacheLookupTotal.WithLabelValues(outcome).Inc()
}

// RequestRejected records a request refused before generation.
func (m *Metrics) RequestRejected(reason string) {
	m.RequestRejectedTotal.WithLabelValues(reason).Inc()
}

// SweepRemoved records entries pruned by the TTL sweep.
func (m *Metrics) SweepRemoved(n int) {
	if n > 0 {
		m.SweepRemovedTotal.Add(float64(n))
	}
}
