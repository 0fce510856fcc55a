package vlist

import "math"

// sizeEntry tracks the extent of one item: either a real measurement
// reported by the rendering layer or an estimate.
type sizeEntry struct {
	size     float32
	measured bool
}

// SizeOracle answers "how tall is item i" for the windowing algorithm.
//
// Three strategies, in priority order: a fixed size configured up front
// (O(1), no cache at all), a cached measurement reported by the rendering
// layer, and falling back to a per-item estimator or a flat default
// estimate. Estimates are promoted to measurements via Commit and demoted
// again via Invalidate.
type SizeOracle struct {
	fixed     float32 // >0 enables fixed-size mode
	estimate  float32
	estimator func(index int) float32
	entries   []sizeEntry
}

// NewSizeOracle creates a size oracle from the size strategy options
// (OptFixedSize, OptEstimateSize, OptEstimator).
func NewSizeOracle(opts ...Option) *SizeOracle {
	o := applyOptions(opts)
	return &SizeOracle{
		fixed:     GetOpt(o, OptFixedSize),
		estimate:  GetOpt(o, OptEstimateSize),
		estimator: GetOpt(o, OptEstimator),
	}
}

// Fixed reports whether the oracle is in fixed-size mode.
func (s *SizeOracle) Fixed() bool { return s.fixed > 0 }

// Count returns the number of indices the oracle currently tracks.
func (s *SizeOracle) Count() int { return len(s.entries) }

// SetCount grows or truncates the entry table to n indices. New indices
// start as estimates; entries at or beyond n are discarded. No-op in
// fixed-size mode.
func (s *SizeOracle) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	if s.Fixed() {
		return
	}
	if n <= len(s.entries) {
		s.entries = s.entries[:n]
		return
	}
	for i := len(s.entries); i < n; i++ {
		s.entries = append(s.entries, sizeEntry{size: s.estimateAt(i)})
	}
}

// Estimate returns the current extent for the item at index: the fixed
// size, a cached measurement, or an estimate. Always at least 1px so the
// prefix sums stay strictly monotonic.
func (s *SizeOracle) Estimate(index int) float32 {
	if s.fixed > 0 {
		return s.fixed
	}
	if index >= 0 && index < len(s.entries) {
		return s.entries[index].size
	}
	return s.estimateAt(index)
}

// Measured reports whether the extent at index is a real measurement.
func (s *SizeOracle) Measured(index int) bool {
	if s.Fixed() {
		return true
	}
	return index >= 0 && index < len(s.entries) && s.entries[index].measured
}

// Commit records an authoritative measured size for index, overwriting any
// estimate. Committing the same value twice is a no-op. Returns the delta
// between the new and previous extent so the caller can update its prefix
// sums incrementally.
func (s *SizeOracle) Commit(index int, size float32) float32 {
	if s.Fixed() || index < 0 || index >= len(s.entries) {
		return 0
	}
	size = clampSize(size)
	e := &s.entries[index]
	if e.measured && e.size == size {
		return 0
	}
	delta := size - e.size
	e.size = size
	e.measured = true
	return delta
}

// Invalidate forces re-estimation of the item at index. Returns the delta
// between the fresh estimate and the previous extent.
func (s *SizeOracle) Invalidate(index int) float32 {
	if s.Fixed() || index < 0 || index >= len(s.entries) {
		return 0
	}
	e := &s.entries[index]
	fresh := s.estimateAt(index)
	delta := fresh - e.size
	e.size = fresh
	e.measured = false
	return delta
}

// SetEstimator replaces the per-item estimator. Existing entries keep
// their current values until invalidated; callers normally follow up with
// InvalidateAll (or RangeCalculator.Remeasure).
func (s *SizeOracle) SetEstimator(fn func(index int) float32) {
	s.estimator = fn
}

// InvalidateAll forces re-estimation of every item. Used by remeasure
// requests and collection truncation.
func (s *SizeOracle) InvalidateAll() {
	if s.Fixed() {
		return
	}
	for i := range s.entries {
		s.entries[i] = sizeEntry{size: s.estimateAt(i)}
	}
}

// estimateAt computes the estimate for index without touching the cache.
func (s *SizeOracle) estimateAt(index int) float32 {
	if s.estimator != nil {
		return clampSize(s.estimator(index))
	}
	return clampSize(s.estimate)
}

// clampSize guards against misbehaving estimators: negative, NaN or
// infinite sizes clamp to 1px to guarantee forward progress of the
// prefix-sum walk.
func clampSize(size float32) float32 {
	if math.IsNaN(float64(size)) || math.IsInf(float64(size), 0) || size < 1 {
		return 1
	}
	return size
}
