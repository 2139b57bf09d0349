package recorder

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Store persists saved recordings.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a recording. An existing id is overwritten.
	Save(ctx context.Context, id string, data []byte) error

	// Load retrieves a recording by id.
	// Returns (nil, nil) if the recording doesn't exist.
	Load(ctx context.Context, id string) ([]byte, error)

	// List returns the stored recordings ordered by id.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes a recording.
	// Should not return an error if the recording doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// Entry describes a stored recording.
type Entry struct {
	ID   string
	Size int
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "recording store is closed"
}

// MemoryStore keeps recordings in memory. It is the default store.
type MemoryStore struct {
	mu         sync.RWMutex
	recordings map[string][]byte
	closed     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recordings: make(map[string][]byte)}
}

// Save stores a copy of data under id.
func (m *MemoryStore) Save(ctx context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	m.recordings[id] = append([]byte(nil), data...)
	return nil
}

// Load returns a copy of the recording stored under id.
func (m *MemoryStore) Load(ctx context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}
	data, ok := m.recordings[id]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// List returns all recordings ordered by id.
func (m *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}
	entries := make([]Entry, 0, len(m.recordings))
	for id, data := range m.recordings {
		entries = append(entries, Entry{ID: id, Size: len(data)})
	}
	sortEntries(entries)
	return entries, nil
}

// Delete removes the recording stored under id.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	delete(m.recordings, id)
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
}
