package vlist

// prefixTree is a Fenwick (binary indexed) tree over item extents. It
// keeps offsetOf(i) == sum(size(j) for j < i) queryable in O(log n) and
// lets a single size commit update the sums in O(log n) instead of
// rebuilding an O(n) prefix array on every measurement.
type prefixTree struct {
	tree []float32 // 1-indexed partial sums
	n    int
}

// newPrefixTree builds the tree over n items in O(n) using the size
// callback for the initial extents.
func newPrefixTree(n int, size func(index int) float32) *prefixTree {
	t := &prefixTree{tree: make([]float32, n+1), n: n}
	for i := 1; i <= n; i++ {
		t.tree[i] += size(i - 1)
		if j := i + (i & -i); j <= n {
			t.tree[j] += t.tree[i]
		}
	}
	return t
}

// Len returns the number of items covered by the tree.
func (t *prefixTree) Len() int { return t.n }

// Add applies a size delta to the item at index.
func (t *prefixTree) Add(index int, delta float32) {
	if index < 0 || index >= t.n || delta == 0 {
		return
	}
	for i := index + 1; i <= t.n; i += i & -i {
		t.tree[i] += delta
	}
}

// SumTo returns the cumulative extent of items [0, index), i.e. the
// absolute pixel offset at which item index starts.
func (t *prefixTree) SumTo(index int) float32 {
	if index > t.n {
		index = t.n
	}
	var sum float32
	for i := index; i > 0; i -= i & -i {
		sum += t.tree[i]
	}
	return sum
}

// Total returns the extent of the whole collection.
func (t *prefixTree) Total() float32 { return t.SumTo(t.n) }

// FindFirst returns the smallest index whose end offset exceeds target:
// the first item that can be visible at scroll offset target. Implemented
// as a Fenwick descent, O(log n). Requires strictly positive item sizes,
// which the SizeOracle's 1px clamp guarantees.
func (t *prefixTree) FindFirst(target float32) int {
	if t.n == 0 {
		return 0
	}
	pos := 0
	rem := target
	for bit := highestBit(t.n); bit > 0; bit >>= 1 {
		if next := pos + bit; next <= t.n && t.tree[next] <= rem {
			pos = next
			rem -= t.tree[next]
		}
	}
	if pos >= t.n {
		// Target is at or past the total extent; clamp to the last item.
		pos = t.n - 1
	}
	return pos
}

// highestBit returns the largest power of two <= n.
func highestBit(n int) int {
	bit := 1
	for bit<<1 <= n {
		bit <<= 1
	}
	return bit
}
