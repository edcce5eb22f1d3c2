package astro

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/types"
)

const (
	reasonLookupFailed        = "lookup_failed"
	reasonUnsupportedLocation = "unsupported_location"
)

// CachedProvider decorates a ChartProvider with the upstream TTL cache.
// Failed lookups are cached negatively so a broken input does not call
// the engine again within the TTL; breaker rejections are transient and
// are never cached.
type CachedProvider struct {
	inner   ChartProvider
	cache   *cache.UpstreamCache
	logger  *slog.Logger
	observe func(outcome string)
}

func NewCachedProvider(inner ChartProvider, c *cache.UpstreamCache, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, logger: logger}
}

// SetObserver installs a callback receiving each lookup outcome:
// "hit", "negative_hit", or "miss".
func (p *CachedProvider) SetObserver(fn func(outcome string)) { p.observe = fn }

func (p *CachedProvider) observed(outcome string) {
	if p.observe != nil {
		p.observe(outcome)
	}
}

// chartKey hashes only the chart-relevant subset of the input: the name
// and decision context never affect the computed chart.
func chartKey(input types.BirthInput) string {
	sub := struct {
		DateOfBirth string  `json:"dob"`
		TimeOfBirth string  `json:"tob"`
		Place       string  `json:"place"`
		Latitude    float64 `json:"lat"`
		Longitude   float64 `json:"lng"`
		Timezone    string  `json:"tz"`
	}{input.DateOfBirth, input.TimeOfBirth, input.Place, input.Latitude, input.Longitude, input.Timezone}
	data, _ := json.Marshal(sub)
	sum := sha256.Sum256(data)
	return "chart:" + hex.EncodeToString(sum[:8])
}

func (p *CachedProvider) Chart(ctx context.Context, input types.BirthInput) (*Chart, error) {
	key := chartKey(input)

	if v, negative, ok := p.cache.Get(key); ok {
		if negative {
			p.observed("negative_hit")
			if v == reasonUnsupportedLocation {
				return nil, ErrUnsupportedLocation
			}
			return nil, ErrLookupFailed
		}
		p.observed("hit")
		return v.(*Chart), nil
	}
	p.observed("miss")

	chart, err := p.inner.Chart(ctx, input)
	if err != nil {
		if errors.Is(err, ErrProviderSlow) {
			return nil, err
		}
		reason := reasonLookupFailed
		if errors.Is(err, ErrUnsupportedLocation) {
			reason = reasonUnsupportedLocation
		}
		p.logger.Warn("chart lookup failed, caching negative result",
			"cache_key", key, "error", err)
		p.cache.PutNegative(key, reason)
		return nil, err
	}

	p.cache.Put(key, chart)
	return chart, nil
}
