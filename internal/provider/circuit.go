package provider

import (
	"sync"
	"time"
)

const (
	circuitOpenDurationDefault = 30 * time.Second
	circuitOpenDurationRate    = 60 * time.Second
	consecutiveFailureThreshold = 5
)

// circuitState tracks one provider's breaker state.
type circuitState struct {
	openUntil           time.Time
	consecutiveFailures int
}

// circuitBreaker is a process-wide, per-provider breaker registry.
type circuitBreaker struct {
	mu     sync.Mutex
	states map[string]*circuitState
}

func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{states: map[string]*circuitState{}}
}

func (b *circuitBreaker) state(slug string) *circuitState {
	s, ok := b.states[slug]
	if !ok {
		s = &circuitState{}
		b.states[slug] = s
	}
	return s
}

// open reports whether slug's breaker is currently tripped.
func (b *circuitBreaker) open(slug string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state(slug)
	return time.Now().Before(s.openUntil)
}

// recordSuccess resets slug's breaker state.
func (b *circuitBreaker) recordSuccess(slug string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state(slug)
	s.consecutiveFailures = 0
	s.openUntil = time.Time{}
}

// recordFailure updates slug's breaker based on the failure kind. Repeated
// timeouts, 5xx, or no-endpoint responses open the circuit for
// circuitOpenDurationDefault; rate limits open it for circuitOpenDurationRate;
// crossing the consecutive-failure threshold forces it open regardless of kind.
func (b *circuitBreaker) recordFailure(slug string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state(slug)
	s.consecutiveFailures++

	now := time.Now()
	switch kind {
	case KindRateLimit:
		s.openUntil = now.Add(circuitOpenDurationRate)
	case KindTimeout, KindServer, KindNoEndpoint:
		s.openUntil = now.Add(circuitOpenDurationDefault)
	}
	if s.consecutiveFailures >= consecutiveFailureThreshold {
		if now.Add(circuitOpenDurationDefault).After(s.openUntil) {
			s.openUntil = now.Add(circuitOpenDurationDefault)
		}
	}
}
