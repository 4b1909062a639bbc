package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSequenceConflict means another process issued the same sequence first.
// The caller's Generate fails and no number is considered issued.
var ErrSequenceConflict = errors.New("ledger: sequence already issued by another process")

// PostgresStore persists the ledger in PostgreSQL. The counter advance and
// the log append run in one transaction with a conditional update, so
// concurrent processes cannot issue the same sequence twice.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the ledger tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledger_counters (
			prefix        TEXT    NOT NULL,
			year          INTEGER NOT NULL,
			last_sequence INTEGER NOT NULL,
			PRIMARY KEY (prefix, year)
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id        UUID        PRIMARY KEY,
			prefix    TEXT        NOT NULL,
			year      INTEGER     NOT NULL,
			sequence  INTEGER     NOT NULL,
			formatted TEXT        NOT NULL,
			issued_at TIMESTAMPTZ NOT NULL,
			source    TEXT        NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_prefix
			ON ledger_entries (prefix, year, sequence)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ledger pg: ensure schema: %w", err)
		}
	}
	return nil
}

// LastSequence implements Store.
func (s *PostgresStore) LastSequence(ctx context.Context, prefix string, year int) (int, bool, error) {
	var last int
	err := s.pool.QueryRow(ctx,
		`SELECT last_sequence FROM ledger_counters WHERE prefix = $1 AND year = $2`,
		prefix, year,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ledger pg: last sequence: %w", err)
	}
	return last, true, nil
}

// Append implements Store. Generated entries advance the counter with a
// conditional update: if another process got there first, the transaction
// rolls back with ErrSequenceConflict.
func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger pg: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if e.Source == SourceGenerated {
		tag, err := tx.Exec(ctx, `
			INSERT INTO ledger_counters (prefix, year, last_sequence)
			VALUES ($1, $2, $3)
			ON CONFLICT (prefix, year) DO UPDATE
				SET last_sequence = EXCLUDED.last_sequence
				WHERE ledger_counters.last_sequence = EXCLUDED.last_sequence - 1`,
			e.Prefix, e.Year, e.Sequence,
		)
		if err != nil {
			return fmt.Errorf("ledger pg: advance counter: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrSequenceConflict
		}
	} else {
		// Registered numbers only pull the counter forward.
		_, err := tx.Exec(ctx, `
			INSERT INTO ledger_counters (prefix, year, last_sequence)
			VALUES ($1, $2, $3)
			ON CONFLICT (prefix, year) DO UPDATE
				SET last_sequence = GREATEST(ledger_counters.last_sequence, EXCLUDED.last_sequence)`,
			e.Prefix, e.Year, e.Sequence,
		)
		if err != nil {
			return fmt.Errorf("ledger pg: update counter: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, prefix, year, sequence, formatted, issued_at, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Prefix, e.Year, e.Sequence, e.Formatted, e.IssuedAt, e.Source,
	)
	if err != nil {
		return fmt.Errorf("ledger pg: append entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ledger pg: commit: %w", err)
	}
	return nil
}

// Entries implements Store.
func (s *PostgresStore) Entries(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prefix, year, sequence, formatted, issued_at, source
		FROM ledger_entries
		WHERE prefix = $1
		ORDER BY year, sequence`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger pg: entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Prefix, &e.Year, &e.Sequence, &e.Formatted, &e.IssuedAt, &e.Source); err != nil {
			return nil, fmt.Errorf("ledger pg: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger pg: rows: %w", err)
	}
	return out, nil
}
