package station

import "go.uber.org/atomic"

// FetchGuard hands out monotonically increasing tokens for
// replacement-style fetches. Overlapping fetches are not cancelled;
// instead, a response whose token is no longer current is discarded, so
// the consumer always keeps the result of the most recently issued fetch.
type FetchGuard struct {
	latest *atomic.Int64
}

// NewFetchGuard creates a guard with no fetches issued.
func NewFetchGuard() *FetchGuard {
	return &FetchGuard{latest: atomic.NewInt64(0)}
}

// Next issues a token for a new fetch, superseding all earlier tokens.
func (g *FetchGuard) Next() int64 {
	return g.latest.Inc()
}

// Current reports whether token still belongs to the latest issued fetch.
func (g *FetchGuard) Current(token int64) bool {
	return g.latest.Load() == token
}
