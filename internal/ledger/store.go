package ledger

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// Store persists the counter state and the append-only issued log.
//
// Append must persist the entry and, for generated entries, advance the
// (prefix, year) counter atomically: a failed Append leaves both unchanged.
type Store interface {
	// LastSequence returns the highest issued sequence for the key and
	// whether the key exists at all.
	LastSequence(ctx context.Context, prefix string, year int) (int, bool, error)

	// Append durably records an entry. This is the only write operation.
	Append(ctx context.Context, e Entry) error

	// Entries returns all entries for a prefix across all years, ordered
	// by year then sequence.
	Entries(ctx context.Context, prefix string) ([]Entry, error)
}

// MemoryStore keeps the ledger in process memory. For tests and ephemeral
// use; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // by prefix
	last    map[string]int     // by prefix/year key
	exists  map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string][]Entry{},
		last:    map[string]int{},
		exists:  map[string]bool{},
	}
}

func counterKey(prefix string, year int) string {
	return prefix + "/" + strconv.Itoa(year)
}

// LastSequence implements Store.
func (s *MemoryStore) LastSequence(ctx context.Context, prefix string, year int) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := counterKey(prefix, year)
	return s.last[key], s.exists[key], nil
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Prefix] = append(s.entries[e.Prefix], e)
	key := counterKey(e.Prefix, e.Year)
	if !s.exists[key] || e.Sequence > s.last[key] {
		s.last[key] = e.Sequence
		s.exists[key] = true
	}
	return nil
}

// Entries implements Store.
func (s *MemoryStore) Entries(ctx context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries[prefix]))
	copy(out, s.entries[prefix])
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}
