package provider

import (
	"context"
	"fmt"
	"time"

	"cosmos/internal/logging"
)

const (
	minBudgetFallsBackToPrimary = 3 * time.Second
	minPrimarySlice             = 2 * time.Second
	minFallbackSlice            = 1 * time.Second
	primaryWeight               = 0.70
	maxPrimarySlice             = 60 * time.Second
)

// Attempt records one provider attempt for caller-visible diagnostics.
type Attempt struct {
	Slug    string
	Mode    Mode
	Slice   time.Duration
	Elapsed time.Duration
	Outcome string // "ok" | "error"
	ErrTail string
}

// Router holds the registered clients and the shared circuit breaker and
// drives the speed-tier failover entry point.
type Router struct {
	clients map[string]Client
	breaker *circuitBreaker
}

// NewRouter builds a Router over the given clients, keyed by Slug().
func NewRouter(clients ...Client) *Router {
	r := &Router{clients: map[string]Client{}, breaker: newCircuitBreaker()}
	for _, c := range clients {
		r.clients[c.Slug()] = c
	}
	return r
}

// Complete runs chain (an ordered list of provider slugs) against budget,
// filtering out providers whose breaker is open, slicing the remaining time,
// and trying each sequentially. It returns the first success, the full
// attempt diagnostics, and an error only if every attempt failed.
func (r *Router) Complete(ctx context.Context, req CompletionRequest, chain []string, budget time.Duration) (CompletionResponse, []Attempt, error) {
	resp, attempts, err := r.pass(ctx, req, chain, budget)
	if err == nil {
		return resp, attempts, nil
	}

	if allRetryable(attempts) && budget > minBudgetFallsBackToPrimary {
		logging.ProviderDebug("speed-tier: first pass exhausted retryable failures, attempting second pass")
		resp2, attempts2, err2 := r.pass(ctx, req, chain, budget)
		attempts = append(attempts, attempts2...)
		if err2 == nil {
			return resp2, attempts, nil
		}
		return CompletionResponse{}, attempts, err2
	}
	return CompletionResponse{}, attempts, err
}

func allRetryable(attempts []Attempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if a.Outcome == "ok" {
			return false
		}
	}
	return true
}

func (r *Router) pass(ctx context.Context, req CompletionRequest, chain []string, budget time.Duration) (CompletionResponse, []Attempt, error) {
	eligible := make([]string, 0, len(chain))
	for _, slug := range chain {
		if !r.breaker.open(slug) {
			eligible = append(eligible, slug)
		}
	}
	if len(eligible) == 0 {
		return CompletionResponse{}, nil, fmt.Errorf("speed-tier: no endpoints available (all circuits open)")
	}

	slices := allocateSlices(eligible, budget)
	var attempts []Attempt

	for i, slug := range eligible {
		if slices[i] <= 0 {
			continue
		}
		client, ok := r.clients[slug]
		if !ok {
			continue
		}
		sliceCtx, cancel := context.WithTimeout(ctx, slices[i])
		start := time.Now()
		resp, err := client.Complete(sliceCtx, req)
		elapsed := time.Since(start)
		cancel()

		if err == nil {
			r.breaker.recordSuccess(slug)
			attempts = append(attempts, Attempt{Slug: slug, Mode: req.Mode, Slice: slices[i], Elapsed: elapsed, Outcome: "ok"})
			return resp, attempts, nil
		}

		kind := KindOther
		if perr, ok := err.(*Error); ok {
			kind = perr.Kind
		}
		r.breaker.recordFailure(slug, kind)
		attempts = append(attempts, Attempt{Slug: slug, Mode: req.Mode, Slice: slices[i], Elapsed: elapsed, Outcome: "error", ErrTail: sanitize(err.Error())})
	}

	return CompletionResponse{}, attempts, fmt.Errorf("speed-tier: all %d attempts failed", len(attempts))
}

// allocateSlices distributes budget across n providers: a single slot gets
// the whole budget; two or more reserve minimum slices for primary and each
// fallback, then weight the remainder toward the primary, capped at
// maxPrimarySlice. Below minBudgetFallsBackToPrimary the whole budget goes to
// the primary only.
func allocateSlices(providers []string, budget time.Duration) []time.Duration {
	n := len(providers)
	slices := make([]time.Duration, n)

	if n == 1 || budget <= minBudgetFallsBackToPrimary {
		slices[0] = budget
		for i := 1; i < n; i++ {
			slices[i] = 0
		}
		return slices
	}

	reserved := minPrimarySlice + minFallbackSlice*time.Duration(n-1)
	remainder := budget - reserved
	if remainder < 0 {
		remainder = 0
	}

	primary := minPrimarySlice + time.Duration(float64(remainder)*primaryWeight)
	if primary > maxPrimarySlice {
		primary = maxPrimarySlice
	}
	slices[0] = primary

	leftover := budget - primary
	each := leftover / time.Duration(n-1)
	if each < minFallbackSlice {
		each = minFallbackSlice
	}
	for i := 1; i < n; i++ {
		slices[i] = each
	}
	return slices
}
