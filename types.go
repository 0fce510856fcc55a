package vlist

// Item pairs a stable caller-assigned identity with the item payload.
// The ID is distinct from the array index: indices shift as pages load,
// the ID does not. The engine never mutates payloads; it only reads the
// count and asks the SizeOracle for extents by index.
type Item[T any] struct {
	ID   string
	Data T
}

// RangeItem is one rendered entry of a virtual range: an item index, its
// absolute pixel offset along the scroll axis, and its current extent.
type RangeItem struct {
	Index int
	Start float32
	Size  float32
}

// Range is the contiguous set of item indices that must be rendered for
// the current scroll offset, including the overscan margin.
//
// Invariants: StartIdx <= EndIdx (inclusive bounds), Items are contiguous
// and sorted by index, and Items[i+1].Start == Items[i].Start +
// Items[i].Size (no gaps, no overlaps). A Range is computed fresh on every
// relevant input change and never persisted.
type Range struct {
	StartIdx  int // First rendered item index (inclusive)
	EndIdx    int // Last rendered item index (inclusive)
	Items     []RangeItem
	TotalSize float32 // Extent of the whole collection, for sizing the scroll container
}

// IsEmpty reports whether the range contains no items (count was zero or
// the viewport was detached).
func (r Range) IsEmpty() bool {
	return len(r.Items) == 0
}

// VisibleCount returns the number of items that should be rendered.
func (r Range) VisibleCount() int {
	return len(r.Items)
}

// Align selects where ScrollToIndex places the target item in the viewport.
type Align int

const (
	AlignAuto   Align = iota // No scroll if the item is already fully visible
	AlignStart               // Item top edge at the viewport top
	AlignCenter              // Item centered in the viewport
	AlignEnd                 // Item bottom edge at the viewport bottom
)

func (a Align) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "auto"
	}
}

// clampf clamps v to the range [minVal, maxVal].
func clampf(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// maxf returns the larger of two float32 values.
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// minf returns the smaller of two float32 values.
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
