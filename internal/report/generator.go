// Package report composes the generation pipeline: claim the
// idempotency key, resolve the birth chart, prompt the completion
// backend, parse and validate the output, then finalize or retry.
package report

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/celestia-labs/reportgen/internal/astro"
	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/idempotency"
	"github.com/celestia-labs/reportgen/internal/report/classify"
	"github.com/celestia-labs/reportgen/internal/report/parser"
	"github.com/celestia-labs/reportgen/internal/report/validate"
	"github.com/celestia-labs/reportgen/internal/types"
)

// Completer is the completion surface the pipeline needs. Satisfied by
// *completion.Client.
type Completer interface {
	Complete(ctx context.Context, rt types.ReportType, system, prompt string) (*completion.Response, error)
}

// Observer receives pipeline outcome events. The telemetry package
// provides the Prometheus-backed implementation.
type Observer interface {
	GenerationFinished(rt types.ReportType, outcome string)
	GenerationRetried(rt types.ReportType, code string)
	DuplicateSuppressed(rt types.ReportType)
}

type nopObserver struct{}

func (nopObserver) GenerationFinished(types.ReportType, string) {}
func (nopObserver) GenerationRetried(types.ReportType, string)  {}
func (nopObserver) DuplicateSuppressed(types.ReportType)        {}

// GenerationError is a fatal pipeline outcome, carrying the stable
// failure code surfaced to the client.
type GenerationError struct {
	Code string
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Code, e.Err)
	}
	return "generation failed (" + e.Code + ")"
}

func (e *GenerationError) Unwrap() error { return e.Err }

// InFlightError means another caller holds the PROCESSING claim for
// the same logical request. The existing report id supports polling.
type InFlightError struct {
	ReportID string
}

func (e *InFlightError) Error() string {
	return "generation already in progress for this request"
}

// Result is a finished or deduplicated generation.
type Result struct {
	ReportID       string
	Key            string
	Status         cache.Status
	Content        *types.ReportContent
	QualityWarning string
	// Deduplicated marks a result served from an earlier generation of
	// the same logical request.
	Deduplicated bool
}

// Options configures a Generator. Zero values get sane defaults.
type Options struct {
	Logger  *slog.Logger
	Metrics Observer
	// NewID overrides report id generation, for tests.
	NewID func() string
}

type Generator struct {
	store     cache.Store
	charts    astro.ChartProvider
	completer Completer
	logger    *slog.Logger
	metrics   Observer
	newID     func() string
}

func NewGenerator(store cache.Store, charts astro.ChartProvider, completer Completer, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopObserver{}
	}
	if opts.NewID == nil {
		opts.NewID = newReportID
	}
	return &Generator{
		store:     store,
		charts:    charts,
		completer: completer,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		newID:     opts.NewID,
	}
}

func newReportID() string {
	var b [12]byte
	rand.Read(b[:])
	return "rpt_" + hex.EncodeToString(b[:])
}

// Generate runs the full pipeline for one request. A duplicate request
// returns the earlier DELIVERED result directly, or an InFlightError
// when the earlier generation is still running. Fatal outcomes release
// the claim so a corrected request does not wait out the TTL.
func (g *Generator) Generate(ctx context.Context, input types.BirthInput, rt types.ReportType, sessionID string) (*Result, error) {
	if !input.Complete() {
		return nil, &GenerationError{
			Code: types.CodeMissingInputData,
			Err:  errors.New("incomplete input: date, time, and place of birth are required"),
		}
	}

	key := idempotency.Key(input, rt, sessionID)
	log := g.logger.With("report_type", string(rt), "cache_key", key)

	reportID := g.newID()
	claimed, err := g.store.TryClaim(ctx, key, reportID, rt, input)
	if err != nil {
		return nil, fmt.Errorf("claim cache entry: %w", err)
	}
	if !claimed {
		return g.duplicate(ctx, key, rt, log)
	}

	// The claim is held: the generation runs to completion even if the
	// caller goes away, so a later poll can observe the outcome.
	genCtx := context.WithoutCancel(ctx)
	log = log.With("report_id", reportID)

	result, gerr := g.run(genCtx, key, reportID, input, rt, log)
	if gerr != nil {
		if rerr := g.store.Release(genCtx, key, reportID); rerr != nil {
			log.Error("release claim after fatal failure", "error", rerr)
		}
		g.metrics.GenerationFinished(rt, "fatal")
		log.Warn("generation failed", "code", gerr.Code, "error", gerr.Err)
		return nil, gerr
	}

	g.metrics.GenerationFinished(rt, "delivered")
	log.Info("report delivered", "quality_warning", result.QualityWarning)
	return result, nil
}

func (g *Generator) duplicate(ctx context.Context, key string, rt types.ReportType, log *slog.Logger) (*Result, error) {
	g.metrics.DuplicateSuppressed(rt)

	existing, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read existing entry: %w", err)
	}
	if existing == nil {
		// Claimed but expired between TryClaim and Get; the holder will
		// finalize or the sweep will clear it.
		return nil, &InFlightError{}
	}
	if existing.Status == cache.StatusDelivered {
		log.Info("duplicate request served from cache", "report_id", existing.ReportID)
		return &Result{
			ReportID:       existing.ReportID,
			Key:            key,
			Status:         existing.Status,
			Content:        existing.Content,
			QualityWarning: existing.QualityWarning,
			Deduplicated:   true,
		}, nil
	}
	log.Info("duplicate request while generation in flight", "report_id", existing.ReportID)
	return nil, &InFlightError{ReportID: existing.ReportID}
}

func (g *Generator) run(ctx context.Context, key, reportID string, input types.BirthInput, rt types.ReportType, log *slog.Logger) (*Result, *GenerationError) {
	expand := false

	for retryCount := 0; ; retryCount++ {
		content, warning, failure, attemptErr := g.attempt(ctx, input, rt, expand, retryCount, log)
		if failure == nil {
			if err := g.store.Finalize(ctx, key, reportID, content, rt, input, warning); err != nil {
				return nil, &GenerationError{Code: types.CodeInternalError, Err: fmt.Errorf("finalize report: %w", err)}
			}
			return &Result{
				ReportID:       reportID,
				Key:            key,
				Status:         cache.StatusDelivered,
				Content:        content,
				QualityWarning: warning,
			}, nil
		}

		if failure.CanRetry {
			g.metrics.GenerationRetried(rt, failure.ErrorCode)
			log.Warn("generation attempt failed, retrying",
				"code", failure.ErrorCode, "retry_count", retryCount, "error", attemptErr)
			if failure.ErrorCode == types.CodeValidationFailedPlaceholder {
				expand = true
			}
			continue
		}
		return nil, &GenerationError{Code: failure.ErrorCode, Err: attemptErr}
	}
}

// attempt runs one pass of the pipeline. A nil GenerationResult means
// the pass produced valid, deliverable content.
func (g *Generator) attempt(ctx context.Context, input types.BirthInput, rt types.ReportType, expand bool, retryCount int, log *slog.Logger) (*types.ReportContent, string, *types.GenerationResult, error) {
	chart, err := g.charts.Chart(ctx, input)
	if err != nil {
		res := classify.Classify(err, classify.Context{RetryCount: retryCount}, log)
		return nil, "", &res, fmt.Errorf("resolve chart: %w", err)
	}

	system, prompt := BuildPrompt(rt, input, chart, expand)
	resp, err := g.completer.Complete(ctx, rt, system, prompt)
	if err != nil {
		res := classify.Classify(err, classify.Context{RetryCount: retryCount}, log)
		return nil, "", &res, fmt.Errorf("completion: %w", err)
	}

	content := parser.Parse(resp.Text, rt)
	vres := validate.Validate(content, input, rt)
	if vres.Valid {
		return content, vres.QualityWarning, nil, nil
	}

	res := classify.Classify(nil, classify.Context{
		ValidationFailed:      true,
		ValidationCode:        vres.ErrorCode,
		CanAutoExpand:         vres.CanAutoExpand,
		HasPlaceholderContent: validate.HasPlaceholder(content, rt),
		RetryCount:            retryCount,
	}, log)
	return nil, "", &res, fmt.Errorf("content validation failed: %s", vres.ErrorCode)
}
