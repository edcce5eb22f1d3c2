// Package astro consumes the external birth-chart engine as a black
// box and shields the generation pipeline from its cost and flakiness.
package astro

import (
	"context"
	"errors"

	"github.com/celestia-labs/reportgen/internal/types"
)

// Placement is one planet's position in the computed chart.
type Placement struct {
	Planet string `json:"planet"`
	Sign   string `json:"sign"`
	House  int    `json:"house"`
}

// Chart is the upstream engine's output for one birth input. The
// pipeline treats it as prompt-building material only.
type Chart struct {
	Ascendant  string      `json:"ascendant"`
	MoonSign   string      `json:"moon_sign"`
	Nakshatra  string      `json:"nakshatra"`
	Placements []Placement `json:"placements"`
	Doshas     []string    `json:"doshas,omitempty"`
}

// ChartProvider computes a birth chart. Implementations include the
// HTTP client, the caching decorator, and the circuit-breaking wrapper.
type ChartProvider interface {
	Chart(ctx context.Context, input types.BirthInput) (*Chart, error)
}

var (
	// ErrUnsupportedLocation means the engine cannot resolve the birth
	// place. Retrying cannot fix it.
	ErrUnsupportedLocation = errors.New("astro: unsupported location")

	// ErrProviderSlow means the chart engine is degraded and the
	// breaker is rejecting calls. Retryable after backoff.
	ErrProviderSlow = errors.New("astro: chart provider slow")

	// ErrLookupFailed is the cached form of an upstream failure: the
	// negative cache answers without re-calling the engine.
	ErrLookupFailed = errors.New("astro: chart lookup previously failed")
)
