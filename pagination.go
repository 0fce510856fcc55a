package vlist

import (
	"context"
	"sync"
	"time"
)

// PagerState is the pagination state machine's current state.
type PagerState int

const (
	// StateIdle accepts load-more triggers.
	StateIdle PagerState = iota
	// StateLoading has a fetch in flight; further triggers are ignored.
	StateLoading
	// StateError holds the last fetch failure until Retry or Reset.
	StateError
	// StateExhausted is terminal: the source reported no more pages.
	// Only Reset leaves it.
	StateExhausted
)

func (s PagerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Page is one fetched page of items.
type Page[T any] struct {
	Items   []Item[T]
	HasMore bool
}

// LoadFunc fetches the next page. It runs on its own goroutine; the
// context is the one supplied at pager construction.
type LoadFunc[T any] func(ctx context.Context) (Page[T], error)

// Pager drives incremental pagination. Visibility-proximity signals call
// RequestLoadMore; the pager accepts at most one trigger per debounce
// interval, invokes the load function off the caller's thread, hands the
// fetched items to the sink, and tracks idle/loading/error/exhausted.
//
// A generation counter discards stale in-flight results: Reset increments
// it, and a completion whose captured generation no longer matches is
// dropped on the floor.
type Pager[T any] struct {
	mu           sync.Mutex
	state        PagerState
	err          error
	hasMore      bool
	pagesLoaded  int
	itemsLoaded  int
	gen          uint64
	lastAccepted time.Time

	debounce time.Duration
	now      func() time.Time
	ctx      context.Context
	load     LoadFunc[T]
	sink     func(items []Item[T])
	onState  func(PagerState)
}

// NewPager creates a pager that fetches with load and appends results via
// sink. Recognized options: OptPaginationDebounce, OptHasMore, OptClock.
func NewPager[T any](ctx context.Context, load LoadFunc[T], sink func(items []Item[T]), opts ...Option) *Pager[T] {
	o := applyOptions(opts)
	now := GetOpt(o, OptClock)
	if now == nil {
		now = time.Now
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pager[T]{
		state:    StateIdle,
		hasMore:  GetOpt(o, OptHasMore),
		debounce: GetOpt(o, OptPaginationDebounce),
		now:      now,
		ctx:      ctx,
		load:     load,
		sink:     sink,
	}
}

// OnStateChange registers the observer invoked on every state transition.
// Must be set before the first trigger.
func (p *Pager[T]) OnStateChange(fn func(PagerState)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

// State returns the current state.
func (p *Pager[T]) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the cause recorded by the last failed fetch, if any.
func (p *Pager[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// HasMore reports whether the source may have further pages.
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// PagesLoaded returns the number of successfully fetched pages.
func (p *Pager[T]) PagesLoaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pagesLoaded
}

// ItemsLoaded returns the number of items fetched across all pages.
func (p *Pager[T]) ItemsLoaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.itemsLoaded
}

// RequestLoadMore is the visibility trigger: fired when the trailing edge
// of the rendered window nears the end of the collection. The request is
// ignored unless the pager is idle, the source has more pages, and the
// debounce interval has elapsed since the last accepted request. Reports
// whether the request was accepted.
func (p *Pager[T]) RequestLoadMore() bool {
	return p.trigger()
}

// LoadMore manually requests the next page, bypassing the visibility
// trigger but still respecting the state and debounce guards.
func (p *Pager[T]) LoadMore() bool {
	return p.trigger()
}

// Retry clears a recorded error and re-invokes the fetch as if freshly
// triggered. No-op outside the error state.
func (p *Pager[T]) Retry() bool {
	p.mu.Lock()
	if p.state != StateError {
		p.mu.Unlock()
		return false
	}
	p.err = nil
	p.state = StateIdle
	p.lastAccepted = time.Time{} // a retry is a fresh trigger
	p.mu.Unlock()
	return p.trigger()
}

// Reset returns the pager to idle with counters zeroed and invalidates any
// in-flight fetch. Call when the list's identity (filter, query) changes.
func (p *Pager[T]) Reset() {
	p.mu.Lock()
	p.gen++
	p.state = StateIdle
	p.err = nil
	p.hasMore = true
	p.pagesLoaded = 0
	p.itemsLoaded = 0
	p.lastAccepted = time.Time{}
	fn := p.onState
	p.mu.Unlock()
	notifyState(fn, StateIdle)
}

func (p *Pager[T]) trigger() bool {
	p.mu.Lock()
	if p.load == nil || p.state != StateIdle || !p.hasMore {
		p.mu.Unlock()
		return false
	}
	t := p.now()
	if !p.lastAccepted.IsZero() && t.Sub(p.lastAccepted) < p.debounce {
		p.mu.Unlock()
		return false
	}
	p.lastAccepted = t
	p.state = StateLoading
	gen := p.gen
	fn := p.onState
	p.mu.Unlock()

	notifyState(fn, StateLoading)
	go p.fetch(gen)
	return true
}

func (p *Pager[T]) fetch(gen uint64) {
	page, err := p.load(p.ctx)

	p.mu.Lock()
	if gen != p.gen {
		// The list's identity changed mid-flight; the result belongs to a
		// superseded generation.
		p.mu.Unlock()
		vlistLogger.Debug("stale page discarded", "generation", gen)
		return
	}

	if err != nil {
		p.err = err
		p.state = StateError
		fn := p.onState
		p.mu.Unlock()
		vlistLogger.Debug("page load failed", "err", err)
		notifyState(fn, StateError)
		return
	}

	p.pagesLoaded++
	p.itemsLoaded += len(page.Items)
	p.hasMore = page.HasMore
	if page.HasMore {
		p.state = StateIdle
	} else {
		p.state = StateExhausted
	}
	next := p.state
	fn := p.onState
	sink := p.sink
	p.mu.Unlock()

	if sink != nil && len(page.Items) > 0 {
		sink(page.Items)
	}
	notifyState(fn, next)
}

func notifyState(fn func(PagerState), s PagerState) {
	if fn != nil {
		fn(s)
	}
}
