package vlist

import (
	"sync"
	"time"

	"github.com/google/btree"
)

// Position is one saved scroll position record. The JSON shape is the
// persisted layout: one such value per top-level restore key.
//
// No versioning field is defined; adding one would require an envelope
// around the per-key map, so format evolution means a new file path.
type Position struct {
	Offset            float32 `json:"offset"`
	Timestamp         int64   `json:"timestamp"` // unix milliseconds
	FirstVisibleIndex int     `json:"firstVisibleIndex,omitempty"`
	TotalItems        int     `json:"totalItems,omitempty"`
}

// PositionMeta carries the optional extras saved alongside an offset.
type PositionMeta struct {
	FirstVisibleIndex int
	TotalItems        int
}

// ScrollTarget is anything that can be scrolled to an absolute offset.
// List implements it by deferring the scroll to its next coalesced tick,
// which avoids racing a layout that has not settled yet.
type ScrollTarget interface {
	ScrollToOffset(offset float32)
}

// RestoreOptions tunes a single Restore call.
type RestoreOptions struct {
	// MaxAge overrides the store default when non-zero.
	MaxAge time.Duration
	// OnRestore is invoked after the scroll is scheduled.
	OnRestore func(Position)
	// OnSkip is invoked instead, with "not-found" or "expired".
	OnSkip func(reason string)
}

// ageKey orders records oldest-first for eviction.
type ageKey struct {
	ts  int64
	key string
}

func ageLess(a, b ageKey) bool {
	if a.ts != b.ts {
		return a.ts < b.ts
	}
	return a.key < b.key
}

// PositionStore is a capacity- and age-bounded key->position cache
// surviving across navigation. One record per key; the oldest records are
// evicted once the store is over capacity, and records older than the
// configured max age are treated as absent and removed lazily on access.
//
// The store is safe for concurrent use and may be shared as a singleton
// between multiple lists keyed by distinct restore keys. A Save followed
// immediately by Get for the same key always returns the just-saved
// record: the in-memory view is authoritative even when the persistence
// backend is slow or failing.
type PositionStore struct {
	mu       sync.Mutex
	records  map[string]Position
	byAge    *btree.BTreeG[ageKey]
	capacity int
	maxAge   time.Duration
	backend  PositionBackend
	now      func() time.Time
}

// NewPositionStore creates a store from OptCapacity, OptMaxAge, OptBackend
// and OptClock. The backend defaults to an in-memory map; a corrupt or
// unreadable backend is logged and treated as empty rather than surfaced.
func NewPositionStore(opts ...Option) *PositionStore {
	o := applyOptions(opts)

	capacity := GetOpt(o, OptCapacity)
	if capacity < 1 {
		capacity = 1
	}
	backend := GetOpt(o, OptBackend)
	if backend == nil {
		backend = NewMemoryBackend()
	}
	now := GetOpt(o, OptClock)
	if now == nil {
		now = time.Now
	}

	s := &PositionStore{
		records:  map[string]Position{},
		byAge:    btree.NewG(32, ageLess),
		capacity: capacity,
		maxAge:   GetOpt(o, OptMaxAge),
		backend:  backend,
		now:      now,
	}

	loaded, err := backend.Load()
	if err != nil {
		vlistLogger.Debug("position store starting empty", "err", err)
		loaded = map[string]Position{}
	}
	for k, rec := range loaded {
		s.records[k] = rec
		s.byAge.ReplaceOrInsert(ageKey{ts: rec.Timestamp, key: k})
	}
	s.cleanupLocked()
	return s
}

// Save upserts the record for key. It always succeeds; persistence
// failures are swallowed so the current session keeps working.
func (s *PositionStore) Save(key string, offset float32, extra ...PositionMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Position{Offset: offset, Timestamp: s.now().UnixMilli()}
	if len(extra) > 0 {
		rec.FirstVisibleIndex = extra[0].FirstVisibleIndex
		rec.TotalItems = extra[0].TotalItems
	}

	if old, ok := s.records[key]; ok {
		s.byAge.Delete(ageKey{ts: old.Timestamp, key: key})
	}
	s.records[key] = rec
	s.byAge.ReplaceOrInsert(ageKey{ts: rec.Timestamp, key: key})

	s.cleanupLocked()
	s.persistLocked()
}

// Get returns the record for key, if present and unexpired. Expired
// records are removed on the way out.
func (s *PositionStore) Get(key string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key, s.maxAge)
}

// Has reports whether an unexpired record exists for key. An optional
// maxAge overrides the store default for this check only.
func (s *PositionStore) Has(key string, maxAge ...time.Duration) bool {
	age := s.maxAge
	if len(maxAge) > 0 {
		age = maxAge[0]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.getLocked(key, age)
	return ok
}

// Restore looks up the record for key. If absent or expired it invokes
// OnSkip with the reason and returns false without side effects.
// Otherwise it schedules a scroll of target to the saved offset, invokes
// OnRestore, and returns true. True means a restoration was scheduled,
// independent of whether it visually completes.
func (s *PositionStore) Restore(key string, target ScrollTarget, opts RestoreOptions) bool {
	age := opts.MaxAge
	if age == 0 {
		age = s.maxAge
	}

	s.mu.Lock()
	rec, ok := s.getLockedReason(key, age, opts.OnSkip)
	s.mu.Unlock()
	if !ok {
		return false
	}

	target.ScrollToOffset(rec.Offset)
	vlistLogger.Debug("scroll position restored", "key", key, "offset", rec.Offset)
	if opts.OnRestore != nil {
		opts.OnRestore(rec)
	}
	return true
}

// Remove deletes the record for key.
func (s *PositionStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.records[key]; ok {
		delete(s.records, key)
		s.byAge.Delete(ageKey{ts: old.Timestamp, key: key})
		s.persistLocked()
	}
}

// Clear deletes all records.
func (s *PositionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[string]Position{}
	s.byAge.Clear(false)
	s.persistLocked()
}

// Len returns the number of records currently held.
func (s *PositionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cleanup removes all expired records, then evicts the oldest remaining
// records until the store is at or under capacity. Safe to call at any
// time.
func (s *PositionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanupLocked() {
		s.persistLocked()
	}
}

func (s *PositionStore) getLocked(key string, maxAge time.Duration) (Position, bool) {
	return s.getLockedReason(key, maxAge, nil)
}

func (s *PositionStore) getLockedReason(key string, maxAge time.Duration, onSkip func(string)) (Position, bool) {
	rec, ok := s.records[key]
	if !ok {
		if onSkip != nil {
			onSkip("not-found")
		}
		return Position{}, false
	}
	if maxAge > 0 && s.now().UnixMilli()-rec.Timestamp >= maxAge.Milliseconds() {
		delete(s.records, key)
		s.byAge.Delete(ageKey{ts: rec.Timestamp, key: key})
		if onSkip != nil {
			onSkip("expired")
		}
		return Position{}, false
	}
	return rec, true
}

// cleanupLocked drops expired records and evicts oldest-first past
// capacity. Reports whether anything was removed.
func (s *PositionStore) cleanupLocked() bool {
	removed := false

	if s.maxAge > 0 {
		cutoff := s.now().UnixMilli() - s.maxAge.Milliseconds()
		var expired []ageKey
		s.byAge.Ascend(func(k ageKey) bool {
			if k.ts > cutoff {
				return false // records are age-ordered; the rest are fresh
			}
			expired = append(expired, k)
			return true
		})
		for _, k := range expired {
			delete(s.records, k.key)
			s.byAge.Delete(k)
			removed = true
		}
	}

	for len(s.records) > s.capacity {
		oldest, ok := s.byAge.Min()
		if !ok {
			break
		}
		delete(s.records, oldest.key)
		s.byAge.Delete(oldest)
		removed = true
	}
	return removed
}

// persistLocked snapshots the records to the backend, swallowing failures
// per the storage error policy.
func (s *PositionStore) persistLocked() {
	snapshot := make(map[string]Position, len(s.records))
	for k, v := range s.records {
		snapshot[k] = v
	}
	if err := s.backend.Persist(snapshot); err != nil {
		vlistLogger.Debug("position persist failed", "err", err)
	}
}
