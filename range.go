package vlist

import "math"

// RangeCalculator is the windowing core: given a total item count, a
// SizeOracle, a viewport extent and a scroll offset, it computes the
// contiguous index range that must be rendered and the absolute pixel
// offset of each rendered item.
//
// The rendered range never exceeds the items fitting the viewport plus
// the overscan margin on each side, regardless of the collection size.
// That bound is the whole point: it is what distinguishes virtualization
// from naively rendering all items.
type RangeCalculator struct {
	oracle   *SizeOracle
	tree     *prefixTree // nil in fixed-size mode
	overscan int
	count    int
}

// NewRangeCalculator creates a calculator over count items.
// Recognized options: OptOverscan plus the size strategy keys consumed by
// the supplied oracle.
func NewRangeCalculator(oracle *SizeOracle, count int, opts ...Option) *RangeCalculator {
	o := applyOptions(opts)
	overscan := GetOpt(o, OptOverscan)
	if overscan < 0 {
		overscan = 0
	}
	c := &RangeCalculator{oracle: oracle, overscan: overscan}
	c.SetCount(count)
	return c
}

// Count returns the current total item count.
func (c *RangeCalculator) Count() int { return c.count }

// Overscan returns the configured overscan margin.
func (c *RangeCalculator) Overscan() int { return c.overscan }

// SetCount updates the total item count, growing or truncating the size
// cache. Fixed-size mode keeps O(1) memory; variable-size mode rebuilds
// the prefix sums in O(n).
func (c *RangeCalculator) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	c.count = n
	c.oracle.SetCount(n)
	if !c.oracle.Fixed() {
		c.tree = newPrefixTree(n, c.oracle.Estimate)
	}
}

// Commit records a measured size for index and incrementally patches the
// prefix sums. Reports whether the extent actually changed, so callers can
// skip recomputation for idempotent commits.
func (c *RangeCalculator) Commit(index int, size float32) bool {
	delta := c.oracle.Commit(index, size)
	if delta == 0 {
		return false
	}
	c.tree.Add(index, delta)
	return true
}

// Remeasure invalidates all cached sizes and rebuilds the prefix sums.
func (c *RangeCalculator) Remeasure() {
	if c.oracle.Fixed() {
		return
	}
	c.oracle.InvalidateAll()
	c.tree = newPrefixTree(c.count, c.oracle.Estimate)
}

// InvalidateIndex resets the item at index to an estimate (item identity
// changed at that index).
func (c *RangeCalculator) InvalidateIndex(index int) {
	delta := c.oracle.Invalidate(index)
	if delta != 0 {
		c.tree.Add(index, delta)
	}
}

// OffsetOf returns the absolute pixel offset at which item index starts:
// the sum of all extents before it.
func (c *RangeCalculator) OffsetOf(index int) float32 {
	if index < 0 {
		return 0
	}
	if index > c.count {
		index = c.count
	}
	if c.oracle.Fixed() {
		return float32(index) * c.oracle.Estimate(0)
	}
	return c.tree.SumTo(index)
}

// TotalSize returns the extent of the whole collection. Callers use it to
// size the scrollable container so native scrollbar behavior stays
// correct.
func (c *RangeCalculator) TotalSize() float32 {
	return c.OffsetOf(c.count)
}

// MaxScroll returns the maximum meaningful scroll offset for the given
// viewport extent.
func (c *RangeCalculator) MaxScroll(viewport float32) float32 {
	return maxf(0, c.TotalSize()-viewport)
}

// Compute returns the virtual range for the given scroll offset and
// viewport extent. The range is empty iff the collection is empty or the
// viewport is detached (extent <= 0).
func (c *RangeCalculator) Compute(offset, viewport float32) Range {
	total := c.TotalSize()
	if c.count == 0 || viewport <= 0 {
		return Range{StartIdx: 0, EndIdx: -1, TotalSize: total}
	}
	offset = clampf(offset, 0, maxf(0, total-viewport))

	first, last := c.visibleBounds(offset, viewport)

	// Expand by overscan on both ends, clamped to the collection.
	start := first - c.overscan
	if start < 0 {
		start = 0
	}
	end := last + c.overscan
	if end > c.count-1 {
		end = c.count - 1
	}

	items := make([]RangeItem, 0, end-start+1)
	pos := c.OffsetOf(start)
	for i := start; i <= end; i++ {
		size := c.oracle.Estimate(i)
		items = append(items, RangeItem{Index: i, Start: pos, Size: size})
		pos += size
	}

	return Range{StartIdx: start, EndIdx: end, Items: items, TotalSize: total}
}

// visibleBounds returns the first and last strictly visible indices for
// the clamped offset: the smallest index whose end offset exceeds the
// offset, and the smallest index whose cumulative extent reaches the
// bottom of the viewport.
func (c *RangeCalculator) visibleBounds(offset, viewport float32) (first, last int) {
	limit := offset + viewport

	if c.oracle.Fixed() {
		size := c.oracle.Estimate(0)
		first = int(offset / size)
		last = int(math.Ceil(float64(limit)/float64(size))) - 1
		if first < 0 {
			first = 0
		}
		if first > c.count-1 {
			first = c.count - 1
		}
		if last < first {
			last = first
		}
		if last > c.count-1 {
			last = c.count - 1
		}
		return first, last
	}

	first = c.tree.FindFirst(offset)
	last = first
	acc := c.tree.SumTo(first + 1)
	for last+1 < c.count && acc < limit {
		last++
		acc += c.oracle.Estimate(last)
	}
	return first, last
}

// OffsetForIndex computes the scroll offset that places index at the
// requested alignment within the viewport. AlignAuto returns the current
// offset unchanged when the item is already fully visible, otherwise it
// scrolls the minimal distance to reveal it (the same policy a plain list
// clipper uses for scroll-to-item).
func (c *RangeCalculator) OffsetForIndex(index int, align Align, current, viewport float32) float32 {
	if c.count == 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index > c.count-1 {
		index = c.count - 1
	}

	itemTop := c.OffsetOf(index)
	itemSize := c.oracle.Estimate(index)
	itemBottom := itemTop + itemSize
	maxScroll := c.MaxScroll(viewport)

	var target float32
	switch align {
	case AlignStart:
		target = itemTop
	case AlignCenter:
		target = itemTop + itemSize/2 - viewport/2
	case AlignEnd:
		target = itemBottom - viewport
	default: // AlignAuto
		switch {
		case itemTop < current:
			target = itemTop
		case itemBottom > current+viewport:
			target = itemBottom - viewport
		default:
			return clampf(current, 0, maxScroll)
		}
	}
	return clampf(target, 0, maxScroll)
}
