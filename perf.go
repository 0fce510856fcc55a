package vlist

import "time"

// maxReportedFPS caps the computed rate so near-zero deltas between
// synchronous ticks don't report meaningless spikes.
const maxReportedFPS = 60

// PerfSnapshot is one observation of engine health, recomputed on the
// sampling cadence and handed to the observer callback. Never persisted.
type PerfSnapshot struct {
	FPS          float32
	VisibleCount int
	NodeCount    int
	RenderTimeMs float32
	ScrollOffset float32
}

// perfSampler measures frame pacing and rendered-item counts on each
// coalesced scroll tick. Purely observational: it never blocks the
// scroll-handling path, and a panicking observer is contained rather than
// allowed to abort rendering.
type perfSampler struct {
	enabled  bool
	callback func(PerfSnapshot)
	now      func() time.Time
	lastTick time.Time
}

func newPerfSampler(enabled bool, callback func(PerfSnapshot), now func() time.Time) *perfSampler {
	if now == nil {
		now = time.Now
	}
	return &perfSampler{enabled: enabled && callback != nil, callback: callback, now: now}
}

// Sample reports one snapshot. Zero cost when disabled.
func (s *perfSampler) Sample(visible, nodes int, renderTime time.Duration, offset float32) {
	if !s.enabled {
		return
	}

	t := s.now()
	var fps float32
	if !s.lastTick.IsZero() {
		if deltaMs := float32(t.Sub(s.lastTick).Seconds() * 1000); deltaMs > 0 {
			fps = minf(1000/deltaMs, maxReportedFPS)
		} else {
			fps = maxReportedFPS
		}
	}
	s.lastTick = t

	snap := PerfSnapshot{
		FPS:          fps,
		VisibleCount: visible,
		NodeCount:    nodes,
		RenderTimeMs: float32(renderTime.Seconds() * 1000),
		ScrollOffset: offset,
	}
	s.report(snap)
}

// report isolates observer panics from the scroll path.
func (s *perfSampler) report(snap PerfSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			vlistLogger.Debug("perf observer panicked", "cause", r)
		}
	}()
	s.callback(snap)
}
