// Package completion drives the AI text-completion backend with
// bounded retry and backoff on rate limiting and transient failures.
package completion

import (
	"context"
	"net/http"
	"time"

	"github.com/celestia-labs/reportgen/internal/config"
)

// Request is the canonical completion request. The provider supplies
// its own model name from configuration.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response exposes the generated text plus an optional token-usage
// count for telemetry (zero when the provider omits it).
type Response struct {
	Text       string
	TokensUsed int
	Provider   string
}

// Provider is one completion backend. Implementations perform a single
// call with no retry logic of their own; retries belong to the Client.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// BuildFromConfig resolves the provider precedence list: the first
// configured entry becomes primary, the next configured one secondary.
// The choice is static for the life of the process.
func BuildFromConfig(provCfg *config.ProvidersConfig) (primary, secondary Provider) {
	for _, cfg := range provCfg.Providers {
		if !cfg.Configured() {
			continue
		}

		var p Provider
		switch cfg.Type {
		case "gemini":
			p = NewGeminiProvider(cfg, newHTTPClient(cfg.Timeout))
		default:
			// OpenAI-compatible for unknown types
			p = NewOpenAIProvider(cfg, newHTTPClient(cfg.Timeout))
		}

		if primary == nil {
			primary = p
			continue
		}
		secondary = p
		break
	}
	return primary, secondary
}
