// Package cost tracks accumulated API spend across pipeline stages.
package cost

import "sync"

// Tracker is a thread-safe running-cost accumulator. It is the only
// cross-task mutable state in the pipeline; one instance is injected
// into every stage that bills external calls.
type Tracker struct {
	mu    sync.Mutex
	total float64
}

// NewTracker returns a Tracker starting at zero.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add accrues usd onto the running total. Safe for concurrent use.
func (t *Tracker) Add(usd float64) {
	t.mu.Lock()
	t.total += usd
	t.mu.Unlock()
}

// Total returns the spend accrued so far.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
