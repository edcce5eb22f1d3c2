package astro

import (
	"context"
	"sync"
	"time"

	"github.com/celestia-labs/reportgen/internal/types"
)

// CircuitState represents the state of the chart-provider breaker.
type CircuitState int

const (
	StateClosed   CircuitState = iota // healthy — calls flow
	StateOpen                         // degraded — calls rejected
	StateHalfOpen                     // probing — one call allowed
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards the chart engine. Failures and slow calls both
// count against the threshold: a chart call past the slow threshold is
// as useless to an interactive generation as a failed one.
type CircuitBreaker struct {
	mu sync.Mutex

	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	openedAt    time.Time

	failureThreshold      int
	recoveryProbeInterval time.Duration
}

func NewCircuitBreaker(failureThreshold int, recoveryProbeInterval time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:                 StateClosed,
		failureThreshold:      failureThreshold,
		recoveryProbeInterval: recoveryProbeInterval,
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState returns state, transitioning OPEN→HALF_OPEN if the probe
// interval elapsed. Must be called with mu held.
func (cb *CircuitBreaker) currentState() CircuitState {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.recoveryProbeInterval {
		cb.state = StateHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentState() {
	case StateClosed:
		return true
	case StateHalfOpen:
		// Allow exactly one probe call
		return true
	case StateOpen:
		return false
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.state = StateClosed
		cb.failures = 0
		cb.successes = 0
	case StateClosed:
		cb.successes++
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.failureThreshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
}

// BreakerProvider wraps a ChartProvider with the circuit breaker. When
// the breaker is open, calls fail fast with ErrProviderSlow instead of
// queueing on a degraded engine.
type BreakerProvider struct {
	inner         ChartProvider
	breaker       *CircuitBreaker
	slowThreshold time.Duration
}

func NewBreakerProvider(inner ChartProvider, breaker *CircuitBreaker, slowThreshold time.Duration) *BreakerProvider {
	if slowThreshold <= 0 {
		slowThreshold = 8 * time.Second
	}
	return &BreakerProvider{inner: inner, breaker: breaker, slowThreshold: slowThreshold}
}

func (p *BreakerProvider) Chart(ctx context.Context, input types.BirthInput) (*Chart, error) {
	if !p.breaker.Allow() {
		return nil, ErrProviderSlow
	}

	start := time.Now()
	chart, err := p.inner.Chart(ctx, input)
	elapsed := time.Since(start)

	if err != nil || elapsed > p.slowThreshold {
		p.breaker.RecordFailure()
	} else {
		p.breaker.RecordSuccess()
	}
	if err != nil {
		return nil, err
	}
	return chart, nil
}
