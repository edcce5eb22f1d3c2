package astro

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedProvider_SecondCallHitsCache(t *testing.T) {
	inner := &scriptedProvider{charts: []*Chart{{Ascendant: "Leo"}, {Ascendant: "Virgo"}}}
	p := NewCachedProvider(inner, cache.NewUpstreamCache(time.Hour), discardLogger())

	input := types.BirthInput{Name: "A", DateOfBirth: "1990-01-01", TimeOfBirth: "10:00", Place: "X"}

	first, err := p.Chart(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Chart(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("engine called %d times, want 1", inner.calls)
	}
	if first.Ascendant != second.Ascendant {
		t.Error("cache returned a different chart")
	}
}

func TestCachedProvider_KeyIgnoresName(t *testing.T) {
	inner := &scriptedProvider{charts: []*Chart{{Ascendant: "Leo"}, {Ascendant: "Virgo"}}}
	p := NewCachedProvider(inner, cache.NewUpstreamCache(time.Hour), discardLogger())

	a := types.BirthInput{Name: "A", DateOfBirth: "1990-01-01", TimeOfBirth: "10:00", Place: "X"}
	b := a
	b.Name = "B"

	p.Chart(context.Background(), a)
	p.Chart(context.Background(), b)
	if inner.calls != 1 {
		t.Errorf("name must not affect the chart key; engine called %d times", inner.calls)
	}
}

func TestCachedProvider_NegativeCaching(t *testing.T) {
	inner := &scriptedProvider{errs: []error{errors.New("upstream 500")}}
	p := NewCachedProvider(inner, cache.NewUpstreamCache(time.Hour), discardLogger())

	input := types.BirthInput{DateOfBirth: "1990-01-01", TimeOfBirth: "10:00", Place: "X"}

	if _, err := p.Chart(context.Background(), input); err == nil {
		t.Fatal("expected first call to fail")
	}
	_, err := p.Chart(context.Background(), input)
	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("expected cached negative result, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("negative result not cached; engine called %d times", inner.calls)
	}
}

func TestCachedProvider_NegativeCachingPreservesUnsupportedLocation(t *testing.T) {
	inner := &scriptedProvider{errs: []error{ErrUnsupportedLocation}}
	p := NewCachedProvider(inner, cache.NewUpstreamCache(time.Hour), discardLogger())

	input := types.BirthInput{DateOfBirth: "1990-01-01", TimeOfBirth: "10:00", Place: "Atlantis"}

	p.Chart(context.Background(), input)
	_, err := p.Chart(context.Background(), input)
	if !errors.Is(err, ErrUnsupportedLocation) {
		t.Errorf("cached hit must keep the fatal classification, got %v", err)
	}
}

func TestCachedProvider_BreakerRejectionNotCached(t *testing.T) {
	inner := &scriptedProvider{
		errs:   []error{ErrProviderSlow},
		charts: []*Chart{nil, {Ascendant: "Leo"}},
	}
	p := NewCachedProvider(inner, cache.NewUpstreamCache(time.Hour), discardLogger())

	input := types.BirthInput{DateOfBirth: "1990-01-01", TimeOfBirth: "10:00", Place: "X"}

	if _, err := p.Chart(context.Background(), input); !errors.Is(err, ErrProviderSlow) {
		t.Fatalf("expected slow rejection, got %v", err)
	}
	chart, err := p.Chart(context.Background(), input)
	if err != nil || chart == nil {
		t.Errorf("slow rejection must not poison the cache, got (%v, %v)", chart, err)
	}
}
