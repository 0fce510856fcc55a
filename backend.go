package vlist

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/natefinch/atomic"
)

// PositionBackend is the persistence substrate behind a PositionStore.
// Session storage, a file, or a plain in-memory map all satisfy the
// contract; the store's capacity and age rules apply regardless of the
// backend.
//
// Backend failures are never surfaced to PositionStore callers: the
// in-memory view stays authoritative for the current session and only
// cross-navigation persistence is lost.
type PositionBackend interface {
	// Load returns the persisted records, or an empty map when nothing
	// was persisted yet.
	Load() (map[string]Position, error)
	// Persist writes the full record set.
	Persist(records map[string]Position) error
}

// MemoryBackend keeps records in process memory. It is the default
// backend: positions survive navigation within a session but not a
// process restart. Safe for concurrent use and for sharing between
// stores.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]Position
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]Position)}
}

// Load implements PositionBackend.
func (b *MemoryBackend) Load() (map[string]Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Position, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out, nil
}

// Persist implements PositionBackend.
func (b *MemoryBackend) Persist(records map[string]Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]Position, len(records))
	for k, v := range records {
		b.data[k] = v
	}
	return nil
}

// FileBackend persists records to a single JSON file: one top-level key
// per navigation identity. Writes are atomic (write-to-temp then rename)
// so a crash mid-persist never corrupts the previous snapshot.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend persisting to the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load implements PositionBackend. A missing file is an empty store, not
// an error; an unreadable or corrupt file is reported so the store can
// log it and start fresh.
func (b *FileBackend) Load() (map[string]Position, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Position{}, nil
		}
		return map[string]Position{}, fmt.Errorf("reading positions: %w", err)
	}

	records := map[string]Position{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return map[string]Position{}, fmt.Errorf("decoding positions: %w", err)
	}
	return records, nil
}

// Persist implements PositionBackend.
func (b *FileBackend) Persist(records map[string]Position) error {
	buf, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding positions: %w", err)
	}
	if err := atomic.WriteFile(b.path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	return nil
}
