package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileState is the on-disk layout of the JSON ledger file.
type fileState struct {
	Counters map[string]int `json:"counters"` // prefix/year -> last sequence
	Entries  []Entry        `json:"entries"`
}

// FileStore persists the ledger as a single JSON file, replaced atomically
// on every append (write to temp file, fsync, rename). Suitable for
// single-process deployments; use PostgresStore when multiple processes
// issue numbers.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewFileStore opens or creates the ledger file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		state: fileState{Counters: map[string]int{}},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger file: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("ledger file: parse %s: %w", path, err)
		}
	}
	if s.state.Counters == nil {
		s.state.Counters = map[string]int{}
	}
	return s, nil
}

// LastSequence implements Store.
func (s *FileStore) LastSequence(ctx context.Context, prefix string, year int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.state.Counters[counterKey(prefix, year)]
	return last, ok, nil
}

// Append implements Store. The new state is durable before Append returns;
// on any failure the in-memory state is rolled back so no number is
// considered issued.
func (s *FileStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey(e.Prefix, e.Year)
	prevLast, prevOK := s.state.Counters[key]

	s.state.Entries = append(s.state.Entries, e)
	if !prevOK || e.Sequence > prevLast {
		s.state.Counters[key] = e.Sequence
	}

	if err := s.flush(); err != nil {
		s.state.Entries = s.state.Entries[:len(s.state.Entries)-1]
		if prevOK {
			s.state.Counters[key] = prevLast
		} else {
			delete(s.state.Counters, key)
		}
		return err
	}
	return nil
}

// flush writes the state to a temp file and renames it over the ledger
// file. Rename is atomic on POSIX filesystems, so readers never observe a
// half-written ledger.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger file: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("ledger file: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger file: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger file: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger file: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("ledger file: rename: %w", err)
	}
	return nil
}

// Entries implements Store.
func (s *FileStore) Entries(ctx context.Context, prefix string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range s.state.Entries {
		if e.Prefix == prefix {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}
