package vlist

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

// List is the integration point of the engine. It owns the backing item
// array and wires scroll events into the range calculator, the position
// store, the pager and the performance sampler, exposing an imperative
// control surface (scroll-to-index, scroll-to-offset, remeasure).
//
// All scroll-driven work is coalesced behind one gate: however fast scroll
// events arrive, range recomputation, position saving and sampling run at
// most once per scroll debounce interval, always against the most recent
// offset (last-write-wins). Imperative calls recompute synchronously.
type List[T any] struct {
	mu sync.Mutex

	id    string
	items []Item[T]

	oracle  *SizeOracle
	calc    *RangeCalculator
	pager   *Pager[T]
	store   *PositionStore
	sampler *perfSampler

	scrollGate *gate
	now        func() time.Time

	viewport float32
	offset   float32
	current  Range

	restoreKey    string
	loadThreshold int

	pendingRestore    float32
	hasPendingRestore bool

	onRange []func(Range)

	// Pager construction is deferred to SetLoadMore; remember its knobs.
	paginationDebounce time.Duration
	initialHasMore     bool

	ownerID     int64 // owner goroutine, 0 when the check is disabled
	ownerWarned bool
}

// NewList creates a list over the given backing items. The engine reads
// the items' count and identities but never mutates payloads; pages loaded
// by the pager are appended, never reordered.
func NewList[T any](items []Item[T], opts ...Option) *List[T] {
	o := applyOptions(opts)

	oracle := NewSizeOracle(opts...)
	now := GetOpt(o, OptClock)
	if now == nil {
		now = time.Now
	}

	l := &List[T]{
		id:                 uuid.NewString(),
		items:              items,
		oracle:             oracle,
		calc:               NewRangeCalculator(oracle, len(items), opts...),
		now:                now,
		viewport:           GetOpt(o, OptViewport),
		restoreKey:         GetOpt(o, OptRestoreKey),
		loadThreshold:      GetOpt(o, OptLoadThreshold),
		paginationDebounce: GetOpt(o, OptPaginationDebounce),
		initialHasMore:     GetOpt(o, OptHasMore),
		scrollGate:         newGate(GetOpt(o, OptScrollDebounce), now),
		sampler:            newPerfSampler(GetOpt(o, OptPerfMonitoring), GetOpt(o, OptPerfCallback), now),
	}

	l.store = GetOpt(o, OptPositionStore)
	if l.store == nil && l.restoreKey != "" {
		l.store = NewPositionStore(opts...)
	}
	if GetOpt(o, OptOwnerCheck) {
		l.ownerID = goid.Get()
	}

	l.current = l.calc.Compute(l.offset, l.viewport)
	vlistLogger.Debug("list created",
		"list", l.id, "count", len(items), "viewport", l.viewport, "restoreKey", l.restoreKey)
	return l
}

// SetLoadMore wires the external page fetch. The fetch runs on its own
// goroutine with the given context; fetched items are appended to the
// backing array and the total count updated.
func (l *List[T]) SetLoadMore(ctx context.Context, fn LoadFunc[T]) {
	pager := NewPager(ctx, fn, l.appendItems,
		WithPaginationDebounce(l.paginationDebounce),
		WithHasMore(l.initialHasMore),
		WithClock(l.now),
	)
	l.mu.Lock()
	l.pager = pager
	l.mu.Unlock()
}

// Pager exposes the pagination state machine (state, counters, Retry,
// Reset). Nil until SetLoadMore is called.
func (l *List[T]) Pager() *Pager[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager
}

// OnRangeChange registers an observer invoked with each freshly computed
// virtual range. The UI layer subscribes here instead of polling.
func (l *List[T]) OnRangeChange(fn func(Range)) {
	l.mu.Lock()
	l.onRange = append(l.onRange, fn)
	l.mu.Unlock()
}

// HandleScroll records a new scroll offset. The offset always wins
// (last-write-wins), but the scroll-driven work runs at most once per
// debounce interval; a swallowed event is applied by Flush.
func (l *List[T]) HandleScroll(offset float32) {
	l.checkOwner()

	var rng Range
	ran := false
	nearEnd := false

	l.mu.Lock()
	l.offset = offset
	ran = l.scrollGate.Do(func() {
		rng, nearEnd = l.tickLocked()
	})
	subs := l.subsLocked()
	l.mu.Unlock()

	l.afterTick(ran, rng, nearEnd, subs)
}

// Flush applies a trailing scroll event swallowed inside the coalescing
// window. Call at scroll end. Reports whether any work ran.
func (l *List[T]) Flush() bool {
	l.checkOwner()

	var rng Range
	ran := false
	nearEnd := false

	l.mu.Lock()
	ran = l.scrollGate.Flush(func() {
		rng, nearEnd = l.tickLocked()
	})
	subs := l.subsLocked()
	l.mu.Unlock()

	l.afterTick(ran, rng, nearEnd, subs)
	return ran
}

// VisibleRange returns the most recently computed virtual range. The
// caller renders exactly the listed indices at the listed offsets.
func (l *List[T]) VisibleRange() Range {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// TotalSize returns the extent of the whole collection along the scroll
// axis, for sizing the scrollable container.
func (l *List[T]) TotalSize() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calc.TotalSize()
}

// Offset returns the current scroll offset.
func (l *List[T]) Offset() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset
}

// Count returns the number of items in the backing array.
func (l *List[T]) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// ItemAt returns the item at index, if in range.
func (l *List[T]) ItemAt(index int) (Item[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		var zero Item[T]
		return zero, false
	}
	return l.items[index], true
}

// SetViewport updates the viewport extent and recomputes synchronously. A
// non-positive extent detaches the viewport: range computation becomes a
// no-op producing an empty range, which is the normal transient state for
// a not-yet-mounted container.
func (l *List[T]) SetViewport(extent float32) {
	l.mutate(func() {
		l.viewport = extent
	})
}

// CommitSize records a measured extent for the item at index, reported by
// the rendering layer once the real size is known. Idempotent: committing
// the same value twice changes nothing and triggers no recomputation.
// Commits beyond the rendered window's trailing edge don't affect what is
// on screen and are folded into the next tick instead.
func (l *List[T]) CommitSize(index int, size float32) {
	l.mu.Lock()
	changed := l.calc.Commit(index, size)
	if !changed || index > l.current.EndIdx {
		l.mu.Unlock()
		return
	}
	rng, nearEnd := l.recomputeLocked()
	subs := l.subsLocked()
	l.mu.Unlock()

	l.afterTick(true, rng, nearEnd, subs)
}

// SetItemEstimator supplies an estimator with access to the item payload
// (WithEstimator sees only the index). All cached sizes are re-estimated.
// No-op in fixed-size mode.
func (l *List[T]) SetItemEstimator(fn func(item Item[T], index int) float32) {
	l.mutate(func() {
		l.oracle.SetEstimator(func(index int) float32 {
			if index >= 0 && index < len(l.items) {
				return fn(l.items[index], index)
			}
			return 0 // out of range; the oracle clamps
		})
		l.calc.Remeasure()
	})
}

// Remeasure invalidates all cached sizes and forces recomputation.
func (l *List[T]) Remeasure() {
	l.mutate(func() {
		l.calc.Remeasure()
	})
}

// ScrollToIndex computes the offset that places index at the requested
// alignment and scrolls there synchronously. AlignAuto is a no-op when the
// item is already fully visible. A request issued while another is in
// progress simply retargets; setting a new offset supersedes the old one.
func (l *List[T]) ScrollToIndex(index int, align Align) {
	l.mutate(func() {
		l.offset = l.calc.OffsetForIndex(index, align, l.offset, l.viewport)
	})
}

// ScrollToOffset scrolls to an absolute offset synchronously.
func (l *List[T]) ScrollToOffset(offset float32) {
	l.mutate(func() {
		l.offset = offset
	})
}

// Append adds a fetched page to the backing array and updates the total
// count. The engine only ever appends; it never reorders or mutates
// elements in place.
func (l *List[T]) Append(items []Item[T]) {
	l.checkOwner()
	l.appendItems(items)
}

// appendItems is Append without the owner check: the pager's sink runs on
// the fetch goroutine by design.
func (l *List[T]) appendItems(items []Item[T]) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, items...)
	l.calc.SetCount(len(l.items))
	rng, nearEnd := l.recomputeLocked()
	subs := l.subsLocked()
	l.mu.Unlock()

	l.afterTick(true, rng, nearEnd, subs)
}

// SetItems replaces the backing array when the list's identity (filter,
// query) changes. Measured sizes survive only for indices whose item ID is
// unchanged; the pagination state machine is reset, which also discards
// any in-flight page fetch.
func (l *List[T]) SetItems(items []Item[T]) {
	l.mu.Lock()
	old := l.items
	l.items = items
	l.calc.SetCount(len(items))
	for i := range items {
		if i < len(old) && old[i].ID != items[i].ID {
			l.calc.InvalidateIndex(i)
		}
	}
	pager := l.pager
	rng, nearEnd := l.recomputeLocked()
	subs := l.subsLocked()
	l.mu.Unlock()

	if pager != nil {
		pager.Reset()
	}
	l.afterTick(true, rng, nearEnd, subs)
}

// SaveScrollPosition saves the current offset under the restore key
// immediately, outside the debounced save that each tick performs.
func (l *List[T]) SaveScrollPosition() {
	l.mu.Lock()
	store, key := l.store, l.restoreKey
	offset := l.offset
	meta := l.positionMetaLocked()
	l.mu.Unlock()

	if store != nil && key != "" {
		store.Save(key, offset, meta)
	}
}

// RestoreScrollPosition schedules a scroll to the offset saved under the
// restore key. The offset is applied on the next coalesced tick rather
// than synchronously, to avoid racing a layout that has not settled.
// Returns false when no valid record exists.
func (l *List[T]) RestoreScrollPosition(opts ...RestoreOptions) bool {
	l.mu.Lock()
	store, key := l.store, l.restoreKey
	l.mu.Unlock()
	if store == nil || key == "" {
		return false
	}

	var ro RestoreOptions
	if len(opts) > 0 {
		ro = opts[0]
	}
	return store.Restore(key, deferredTarget[T]{l}, ro)
}

// Close saves the final scroll position. Call on unmount/navigation away.
func (l *List[T]) Close() {
	l.SaveScrollPosition()
}

// deferredTarget applies a restored offset on the list's next tick.
type deferredTarget[T any] struct{ list *List[T] }

func (t deferredTarget[T]) ScrollToOffset(offset float32) {
	t.list.mu.Lock()
	t.list.pendingRestore = offset
	t.list.hasPendingRestore = true
	t.list.mu.Unlock()
}

// mutate runs a state change under the lock, recomputes synchronously and
// publishes the fresh range.
func (l *List[T]) mutate(fn func()) {
	l.checkOwner()
	l.mu.Lock()
	fn()
	rng, nearEnd := l.recomputeLocked()
	subs := l.subsLocked()
	l.mu.Unlock()

	l.afterTick(true, rng, nearEnd, subs)
}

// tickLocked is the coalesced per-scroll pass: consume a pending restore,
// recompute the range, save the position and sample performance.
func (l *List[T]) tickLocked() (Range, bool) {
	started := l.now()

	rng, nearEnd := l.recomputeLocked()

	if l.store != nil && l.restoreKey != "" {
		l.store.Save(l.restoreKey, l.offset, l.positionMetaLocked())
	}
	l.sampler.Sample(l.visibleCountLocked(), rng.VisibleCount(), l.now().Sub(started), l.offset)

	return rng, nearEnd
}

// recomputeLocked recomputes the virtual range against the current offset
// and reports whether the trailing edge is near the end of the collection.
func (l *List[T]) recomputeLocked() (Range, bool) {
	if l.hasPendingRestore {
		l.offset = l.pendingRestore
		l.hasPendingRestore = false
	}
	if l.viewport > 0 {
		l.offset = clampf(l.offset, 0, l.calc.MaxScroll(l.viewport))
	}

	l.current = l.calc.Compute(l.offset, l.viewport)

	count := l.calc.Count()
	nearEnd := count > 0 && !l.current.IsEmpty() && l.current.EndIdx >= count-1-l.loadThreshold
	return l.current, nearEnd
}

// visibleCountLocked counts the strictly visible items in the current
// range, excluding the overscan margin.
func (l *List[T]) visibleCountLocked() int {
	n := 0
	for _, it := range l.current.Items {
		if it.Start+it.Size > l.offset && it.Start < l.offset+l.viewport {
			n++
		}
	}
	return n
}

func (l *List[T]) positionMetaLocked() PositionMeta {
	meta := PositionMeta{TotalItems: len(l.items)}
	for _, it := range l.current.Items {
		if it.Start+it.Size > l.offset {
			meta.FirstVisibleIndex = it.Index
			break
		}
	}
	return meta
}

func (l *List[T]) subsLocked() []func(Range) {
	if len(l.onRange) == 0 {
		return nil
	}
	subs := make([]func(Range), len(l.onRange))
	copy(subs, l.onRange)
	return subs
}

// afterTick runs the work that must happen outside the lock: the load-more
// trigger and subscriber callbacks.
func (l *List[T]) afterTick(ran bool, rng Range, nearEnd bool, subs []func(Range)) {
	if !ran {
		return
	}
	if nearEnd {
		l.mu.Lock()
		pager := l.pager
		l.mu.Unlock()
		if pager != nil {
			pager.RequestLoadMore()
		}
	}
	for _, fn := range subs {
		fn(rng)
	}
}

// checkOwner logs (once) when a scroll-path method is called from a
// goroutine other than the one that created the list. The engine's
// concurrency model is a single event-driven UI goroutine; violations are
// reported, never panicked, since rendering must not abort.
func (l *List[T]) checkOwner() {
	if l.ownerID == 0 {
		return
	}
	gid := goid.Get()
	if gid == l.ownerID {
		return
	}
	l.mu.Lock()
	warned := l.ownerWarned
	l.ownerWarned = true
	l.mu.Unlock()
	if !warned {
		vlistLogger.Warn("list accessed off its owner goroutine",
			"list", l.id, "owner", l.ownerID, "goroutine", gid)
	}
}
