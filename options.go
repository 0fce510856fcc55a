package vlist

import "time"

// Option configures an engine component (List, PositionStore, Pager).
type Option func(*options)

// options holds all configuration via the extensions map.
// All options use the unified OptKey system for type safety.
type options struct {
	extensions map[string]any
}

// OptKey is a typed key for engine options.
// All options (built-in and custom) use this system for consistency.
//
// Example:
//
//	// Define option keys (built-in ones are already defined below)
//	var OptCustomThing = vlist.NewOptKey("customThing", defaultValue)
//
//	// Set options
//	vlist.NewList(items, vlist.WithOpt(OptCustomThing, value))
type OptKey[T any] struct {
	name string
	def  T
}

// NewOptKey creates a typed option key with a default value.
// The default is returned when the option is not set.
func NewOptKey[T any](name string, defaultValue T) OptKey[T] {
	return OptKey[T]{name: name, def: defaultValue}
}

// Name returns the key name (useful for debugging).
func (k OptKey[T]) Name() string { return k.name }

// Default returns the default value for this key.
func (k OptKey[T]) Default() T { return k.def }

// WithOpt sets an option value using a typed key.
func WithOpt[T any](key OptKey[T], value T) Option {
	return func(o *options) {
		if o.extensions == nil {
			o.extensions = make(map[string]any)
		}
		o.extensions[key.name] = value
	}
}

// GetOpt retrieves an option value with type safety.
// Returns the key's default value if not set.
func GetOpt[T any](o options, key OptKey[T]) T {
	if o.extensions == nil {
		return key.def
	}
	v, ok := o.extensions[key.name]
	if !ok {
		return key.def
	}
	typed, ok := v.(T)
	if !ok {
		return key.def
	}
	return typed
}

// HasOpt returns true if the option was explicitly set.
func HasOpt[T any](o options, key OptKey[T]) bool {
	if o.extensions == nil {
		return false
	}
	_, ok := o.extensions[key.name]
	return ok
}

// applyOptions applies all options and returns the configuration.
func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// =============================================================================
// Built-in Option Keys
// =============================================================================

// --- Windowing Options ---
var (
	OptOverscan = NewOptKey("overscan", 5)
	OptViewport = NewOptKey[float32]("viewport", 0)

	// Size strategy. Mutually exclusive priority: fixed > per-item estimator
	// > flat estimate.
	OptFixedSize    = NewOptKey[float32]("fixedSize", 0)
	OptEstimateSize = NewOptKey[float32]("estimateSize", 40)
	OptEstimator    = NewOptKey[func(index int) float32]("estimator", nil)
)

// --- Coalescing Options ---
var (
	OptScrollDebounce = NewOptKey("scrollDebounce", 16*time.Millisecond)
	OptClock          = NewOptKey[func() time.Time]("clock", nil)
)

// --- Pagination Options ---
var (
	OptPaginationDebounce = NewOptKey("paginationDebounce", 300*time.Millisecond)
	OptLoadThreshold      = NewOptKey("loadThreshold", 3)
	OptHasMore            = NewOptKey("hasMore", true)
)

// --- Position Store Options ---
var (
	OptRestoreKey    = NewOptKey("restoreKey", "")
	OptMaxAge        = NewOptKey("maxAge", 30*time.Minute)
	OptCapacity      = NewOptKey("capacity", 50)
	OptBackend       = NewOptKey[PositionBackend]("backend", nil)
	OptPositionStore = NewOptKey[*PositionStore]("positionStore", nil)
)

// --- Observability Options ---
var (
	OptPerfMonitoring = NewOptKey("perfMonitoring", false)
	OptPerfCallback   = NewOptKey[func(PerfSnapshot)]("perfCallback", nil)
	OptOwnerCheck     = NewOptKey("ownerCheck", false)
)

// =============================================================================
// Convenience Option Functions (wrap WithOpt for common cases)
// =============================================================================

// WithOverscan sets how many extra items are rendered beyond the viewport
// on each side. More overscan means fewer blank frames during fast
// scrolling at the cost of more live elements.
func WithOverscan(n int) Option { return WithOpt(OptOverscan, n) }

// WithViewport sets the viewport extent in pixels along the scroll axis.
func WithViewport(extent float32) Option { return WithOpt(OptViewport, extent) }

// WithFixedSize configures fixed-size mode: every item has the given
// extent. This short-circuits all size caching for O(1) memory.
func WithFixedSize(size float32) Option { return WithOpt(OptFixedSize, size) }

// WithEstimateSize sets the flat default estimate used for items that have
// not been measured yet (variable-size mode).
func WithEstimateSize(size float32) Option { return WithOpt(OptEstimateSize, size) }

// WithEstimator supplies a per-index size estimator used for items that
// have not been measured yet. Non-finite or sub-pixel results are clamped
// to 1px.
func WithEstimator(fn func(index int) float32) Option { return WithOpt(OptEstimator, fn) }

// WithScrollDebounce sets the coalescing interval for scroll-driven work
// (range recomputation, position save, sampling). Default is one frame.
func WithScrollDebounce(d time.Duration) Option { return WithOpt(OptScrollDebounce, d) }

// WithPaginationDebounce sets the minimum interval between accepted
// load-more triggers.
func WithPaginationDebounce(d time.Duration) Option { return WithOpt(OptPaginationDebounce, d) }

// WithLoadThreshold sets how close (in items) the rendered window's
// trailing edge must be to the end of the collection before the next page
// is requested.
func WithLoadThreshold(n int) Option { return WithOpt(OptLoadThreshold, n) }

// WithHasMore sets the initial has-more flag for pagination. Defaults to
// true; pass false for collections known to be complete.
func WithHasMore(hasMore bool) Option { return WithOpt(OptHasMore, hasMore) }

// WithRestoreKey sets the identity under which the scroll position is
// saved and restored across navigation.
func WithRestoreKey(key string) Option { return WithOpt(OptRestoreKey, key) }

// WithMaxAge sets how old a saved scroll position may be before it is
// treated as invalid.
func WithMaxAge(d time.Duration) Option { return WithOpt(OptMaxAge, d) }

// WithCapacity sets the maximum number of scroll position records the
// store retains; the oldest records are evicted first.
func WithCapacity(n int) Option { return WithOpt(OptCapacity, n) }

// WithBackend sets the persistence substrate for a PositionStore.
func WithBackend(b PositionBackend) Option { return WithOpt(OptBackend, b) }

// WithPositionStore shares an existing PositionStore with a List. Multiple
// lists may share one store, keyed by distinct restore keys.
func WithPositionStore(s *PositionStore) Option { return WithOpt(OptPositionStore, s) }

// WithPerfMonitoring toggles the performance sampler.
func WithPerfMonitoring(enabled bool) Option { return WithOpt(OptPerfMonitoring, enabled) }

// WithPerfCallback sets the observer invoked with each performance
// snapshot. Implies monitoring is useful only when enabled.
func WithPerfCallback(fn func(PerfSnapshot)) Option { return WithOpt(OptPerfCallback, fn) }

// WithOwnerCheck enables a debug assertion that scroll-path methods are
// called from the goroutine that created the List. Violations are logged,
// never panicked.
func WithOwnerCheck() Option { return WithOpt(OptOwnerCheck, true) }

// WithClock injects the time source used for debouncing, expiry and
// sampling. Intended for deterministic tests.
func WithClock(now func() time.Time) Option { return WithOpt(OptClock, now) }
