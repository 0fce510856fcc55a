package vlist

import "time"

// gate is the single coalescing primitive shared by all scroll-driven
// work: range recomputation, position saving and performance sampling all
// run behind one gate rather than three ad hoc timers.
//
// Semantics are leading-edge with a trailing flush: the first call in a
// window runs immediately, further calls inside the window are swallowed
// but remembered, and Flush runs the remembered work once. Unbounded
// synchronous work per scroll event is the primary failure mode this
// design exists to prevent, so the gate is a hard requirement, not an
// optimization.
type gate struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
	pending  bool
}

func newGate(interval time.Duration, now func() time.Time) *gate {
	if now == nil {
		now = time.Now
	}
	return &gate{interval: interval, now: now}
}

// Do runs fn immediately if the window has elapsed (leading edge) and
// reports whether it ran. Otherwise the call is recorded as pending for a
// later Flush.
func (g *gate) Do(fn func()) bool {
	t := g.now()
	if g.last.IsZero() || t.Sub(g.last) >= g.interval {
		g.last = t
		g.pending = false
		fn()
		return true
	}
	g.pending = true
	return false
}

// Flush runs fn once if a call was swallowed since the last run, and
// reports whether it ran. Call at quiescence (e.g. scroll end) to apply
// the trailing event.
func (g *gate) Flush(fn func()) bool {
	if !g.pending {
		return false
	}
	g.pending = false
	g.last = g.now()
	fn()
	return true
}

// Pending reports whether a swallowed call is waiting for Flush.
func (g *gate) Pending() bool { return g.pending }
