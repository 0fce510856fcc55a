package vlist

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source for deterministic tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGateLeadingEdge(t *testing.T) {
	clock := newFakeClock()
	g := newGate(16*time.Millisecond, clock.Now)

	runs := 0
	if !g.Do(func() { runs++ }) {
		t.Fatal("first call should run on the leading edge")
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	// Inside the window: swallowed but remembered.
	if g.Do(func() { runs++ }) {
		t.Error("call inside the window should be swallowed")
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if !g.Pending() {
		t.Error("swallowed call should be pending")
	}

	// After the window: runs again.
	clock.Advance(16 * time.Millisecond)
	if !g.Do(func() { runs++ }) {
		t.Error("call after the window should run")
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestGateTrailingFlush(t *testing.T) {
	clock := newFakeClock()
	g := newGate(16*time.Millisecond, clock.Now)

	runs := 0
	g.Do(func() { runs++ })
	g.Do(func() { runs++ }) // swallowed

	if !g.Flush(func() { runs++ }) {
		t.Fatal("Flush should run the pending work")
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}

	// Nothing pending anymore.
	if g.Flush(func() { runs++ }) {
		t.Error("second Flush should be a no-op")
	}
	if g.Pending() {
		t.Error("nothing should be pending after Flush")
	}
}
