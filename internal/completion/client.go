package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/celestia-labs/reportgen/internal/config"
	"github.com/celestia-labs/reportgen/internal/types"
)

// Options tunes the retrying client.
type Options struct {
	// CallTimeout is the hard per-call deadline.
	CallTimeout time.Duration
	Backoff     config.BackoffConfig
	Tracker     CallTracker
	Logger      *slog.Logger
	// Tuning overrides the built-in per-type budgets, keyed by report
	// type string.
	Tuning map[string]config.ReportTuning
}

// Client wraps the primary provider with bounded retry/backoff. The
// secondary provider, when configured, gets exactly one attempt after
// the primary's budget is exhausted.
type Client struct {
	primary   Provider
	secondary Provider
	opts      Options
}

func NewClient(primary, secondary Provider, opts Options) *Client {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 90 * time.Second
	}
	if opts.Backoff == (config.BackoffConfig{}) {
		opts.Backoff = config.DefaultBackoffConfig()
	}
	if opts.Tracker == nil {
		opts.Tracker = NoopTracker{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{primary: primary, secondary: secondary, opts: opts}
}

func (c *Client) maxAttempts(rt types.ReportType) int {
	if t, ok := c.opts.Tuning[string(rt)]; ok && t.MaxAttempts > 0 {
		return t.MaxAttempts
	}
	return MaxAttempts(rt)
}

func (c *Client) tokenBudget(rt types.ReportType) int {
	if t, ok := c.opts.Tuning[string(rt)]; ok && t.MaxTokens > 0 {
		return t.MaxTokens
	}
	return TokenBudget(rt)
}

// Complete runs the prompt against the backend, retrying rate-limit
// and transient errors up to the per-type attempt ceiling.
func (c *Client) Complete(ctx context.Context, rt types.ReportType, system, prompt string) (*Response, error) {
	req := &Request{
		System:      system,
		Prompt:      prompt,
		Temperature: DefaultTemperature,
		MaxTokens:   c.tokenBudget(rt),
	}

	attempts := c.maxAttempts(rt)
	var last error

	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := c.call(ctx, c.primary, rt, req)
		if err == nil {
			return resp, nil
		}
		last = err

		if !retryable(err) {
			break
		}
		if attempt == attempts-1 {
			break
		}

		wait := backoffWait(c.opts.Backoff, err, attempt)
		c.opts.Logger.Warn("completion attempt failed, backing off",
			"provider", c.primary.Name(),
			"report_type", string(rt),
			"attempt", attempt+1,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Secondary gets a single attempt, no backoff of its own.
	if c.secondary != nil {
		resp, err := c.call(ctx, c.secondary, rt, req)
		if err == nil {
			c.opts.Logger.Info("secondary provider served request",
				"provider", c.secondary.Name(), "report_type", string(rt))
			return resp, nil
		}
		last = err
	}

	return nil, &ExhaustedError{Attempts: attempts, Last: last}
}

func (c *Client) call(ctx context.Context, p Provider, rt types.ReportType, req *Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := p.Complete(callCtx, req)
	elapsed := time.Since(start)

	tokens := 0
	if resp != nil {
		tokens = resp.TokensUsed
	}
	c.opts.Tracker.RecordCall(p.Name(), rt, tokens, elapsed, err)
	return resp, err
}

// retryable separates transient failures from ones another attempt
// cannot fix (auth errors, malformed requests, caller cancellation).
// Rate limits, timeouts, and transport-level failures all count as
// transient.
func retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
