package vlist

import (
	"testing"
	"time"
)

func TestPerfSamplerClampsFPS(t *testing.T) {
	clock := newFakeClock()
	var snaps []PerfSnapshot
	s := newPerfSampler(true, func(snap PerfSnapshot) { snaps = append(snaps, snap) }, clock.Now)

	s.Sample(10, 20, time.Millisecond, 0)
	if snaps[0].FPS != 0 {
		t.Errorf("first sample FPS = %v, want 0 (no previous tick)", snaps[0].FPS)
	}

	// A near-instant synchronous tick would compute an absurd rate; the
	// sampler caps it.
	clock.Advance(time.Microsecond)
	s.Sample(10, 20, 0, 0)
	if snaps[1].FPS != maxReportedFPS {
		t.Errorf("fast-tick FPS = %v, want clamp to %v", snaps[1].FPS, maxReportedFPS)
	}

	clock.Advance(100 * time.Millisecond)
	s.Sample(10, 20, 0, 0)
	if snaps[2].FPS != 10 {
		t.Errorf("slow-tick FPS = %v, want 10", snaps[2].FPS)
	}
}

func TestPerfSamplerDisabled(t *testing.T) {
	called := false
	s := newPerfSampler(false, func(PerfSnapshot) { called = true }, nil)
	s.Sample(1, 1, 0, 0)
	if called {
		t.Error("disabled sampler must not report")
	}

	// Enabled without a callback is also a no-op rather than a nil call.
	s = newPerfSampler(true, nil, nil)
	s.Sample(1, 1, 0, 0)
}
