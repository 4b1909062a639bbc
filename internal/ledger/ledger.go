// Package ledger issues gap-free, monotonically increasing document numbers
// per (prefix, year) and audits the issued log for continuity violations.
//
// Generate is linearizable per key: an in-process mutex serializes
// increments, and the store must persist counter and log entry atomically
// before the number becomes visible. If persistence fails, no number is
// considered issued. Multi-process deployments use the PostgreSQL store,
// whose transactional conditional update rejects lost increments.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/taxcheck/internal/model"
)

// Entry sources.
const (
	SourceGenerated  = "generated"
	SourceRegistered = "registered"
)

// Entry is one issued number. Immutable once appended.
type Entry struct {
	ID        string    `json:"id"`
	Prefix    string    `json:"prefix"`
	Year      int       `json:"year"`
	Sequence  int       `json:"sequence"`
	Formatted string    `json:"formatted"`
	IssuedAt  time.Time `json:"issued_at"`
	Source    string    `json:"source"`
}

// Config controls numbering behavior.
type Config struct {
	// Start is the first sequence number of a fresh (prefix, year) key.
	Start int

	// SequenceWidth is the zero-padded width in the formatted number.
	Width int

	// ContinueAcrossYears keeps the counter running over a year
	// rollover instead of resetting to Start.
	ContinueAcrossYears bool
}

// DefaultConfig numbers from 1 with five-digit padding and a yearly reset.
func DefaultConfig() Config {
	return Config{Start: 1, Width: 5}
}

// Ledger is the stateful number generator and auditor.
type Ledger struct {
	mu    sync.Mutex
	store Store
	cfg   Config
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures the ledger.
type Option func(*Ledger)

// WithClock replaces the time source. Tests pin the year with this.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a ledger over the given store.
func New(store Store, cfg Config, opts ...Option) *Ledger {
	if cfg.Start <= 0 {
		cfg.Start = 1
	}
	if cfg.Width <= 0 {
		cfg.Width = 5
	}
	l := &Ledger{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Format renders a number in the configured schema, e.g. RE-2026-00001.
func (l *Ledger) Format(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, l.cfg.Width, sequence)
}

// Generate issues the next number for the prefix in the current year.
// The entry is persisted before it is returned: a store failure means no
// number was issued.
func (l *Ledger) Generate(ctx context.Context, prefix string) (*Entry, error) {
	if prefix == "" {
		return nil, fmt.Errorf("ledger: prefix is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	year := now.Year()

	next, err := l.nextSequence(ctx, prefix, year)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Prefix:    prefix,
		Year:      year,
		Sequence:  next,
		Formatted: l.Format(prefix, year, next),
		IssuedAt:  now,
		Source:    SourceGenerated,
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return nil, model.NewPersistenceError("append", err)
	}

	l.log.Debug().Str("number", entry.Formatted).Msg("number issued")
	return &entry, nil
}

func (l *Ledger) nextSequence(ctx context.Context, prefix string, year int) (int, error) {
	last, ok, err := l.store.LastSequence(ctx, prefix, year)
	if err != nil {
		return 0, model.NewPersistenceError("last-sequence", err)
	}
	if ok {
		return last + 1, nil
	}
	if !l.cfg.ContinueAcrossYears {
		return l.cfg.Start, nil
	}

	// Carry the counter over from earlier years.
	entries, err := l.store.Entries(ctx, prefix)
	if err != nil {
		return 0, model.NewPersistenceError("entries", err)
	}
	max := 0
	for _, e := range entries {
		if e.Sequence > max {
			max = e.Sequence
		}
	}
	if max == 0 {
		return l.cfg.Start, nil
	}
	return max + 1, nil
}

// Register records an externally issued number retroactively. Registered
// numbers may introduce gaps or duplicates; Audit reports them.
func (l *Ledger) Register(ctx context.Context, prefix string, year, sequence int, issuedAt time.Time) (*Entry, error) {
	if prefix == "" || sequence <= 0 {
		return nil, fmt.Errorf("ledger: prefix and a positive sequence are required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if issuedAt.IsZero() {
		issuedAt = l.now().UTC()
	}
	entry := Entry{
		ID:        uuid.NewString(),
		Prefix:    prefix,
		Year:      year,
		Sequence:  sequence,
		Formatted: l.Format(prefix, year, sequence),
		IssuedAt:  issuedAt.UTC(),
		Source:    SourceRegistered,
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return nil, model.NewPersistenceError("append", err)
	}
	return &entry, nil
}

// NumberRef points at one sequence number within a year.
type NumberRef struct {
	Year     int `json:"year"`
	Sequence int `json:"sequence"`
}

// AuditReport lists continuity violations in the issued log. Diagnostic
// only: auditing never mutates the ledger.
type AuditReport struct {
	Prefix     string      `json:"prefix"`
	Entries    int         `json:"entries"`
	Gaps       []NumberRef `json:"gaps"`
	Duplicates []NumberRef `json:"duplicates"`
}

// Clean reports whether the log is gap-free and duplicate-free.
func (r *AuditReport) Clean() bool {
	return len(r.Gaps) == 0 && len(r.Duplicates) == 0
}

// Audit scans the persisted log for the prefix across all years and reports
// every break in strict +1 continuity and every sequence issued more than
// once.
func (l *Ledger) Audit(ctx context.Context, prefix string) (*AuditReport, error) {
	entries, err := l.store.Entries(ctx, prefix)
	if err != nil {
		return nil, model.NewPersistenceError("entries", err)
	}

	report := &AuditReport{
		Prefix:     prefix,
		Entries:    len(entries),
		Gaps:       []NumberRef{},
		Duplicates: []NumberRef{},
	}

	byYear := map[int][]int{}
	for _, e := range entries {
		byYear[e.Year] = append(byYear[e.Year], e.Sequence)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, year := range years {
		seqs := byYear[year]
		sort.Ints(seqs)
		seen := map[int]bool{}
		dup := map[int]bool{}
		for i, s := range seqs {
			if seen[s] {
				if !dup[s] {
					report.Duplicates = append(report.Duplicates, NumberRef{Year: year, Sequence: s})
					dup[s] = true
				}
				continue
			}
			seen[s] = true
			if i > 0 {
				for missing := seqs[i-1] + 1; missing < s; missing++ {
					report.Gaps = append(report.Gaps, NumberRef{Year: year, Sequence: missing})
				}
			}
		}
	}
	return report, nil
}
