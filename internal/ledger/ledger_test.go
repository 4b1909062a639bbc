package ledger

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.March, 14, 10, 30, 0, 0, time.UTC)
	}
}

func TestGenerateSequence(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))

	want := []string{"RE-2026-00001", "RE-2026-00002", "RE-2026-00003"}
	for i, formatted := range want {
		entry, err := l.Generate(context.Background(), "RE")
		require.NoError(t, err)
		assert.Equal(t, formatted, entry.Formatted)
		assert.Equal(t, i+1, entry.Sequence)
		assert.Equal(t, 2026, entry.Year)
		assert.Equal(t, SourceGenerated, entry.Source)
		assert.NotEmpty(t, entry.ID)
	}
}

func TestGenerateIndependentPrefixes(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))

	re, err := l.Generate(context.Background(), "RE")
	require.NoError(t, err)
	gs, err := l.Generate(context.Background(), "GS")
	require.NoError(t, err)

	assert.Equal(t, "RE-2026-00001", re.Formatted)
	assert.Equal(t, "GS-2026-00001", gs.Formatted)
}

func TestGenerateEmptyPrefix(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig())

	_, err := l.Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerateConcurrent(t *testing.T) {
	const n = 100
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))

	var wg sync.WaitGroup
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := l.Generate(context.Background(), "RE")
			assert.NoError(t, err)
			results <- entry.Sequence
		}()
	}
	wg.Wait()
	close(results)

	seqs := make([]int, 0, n)
	for s := range results {
		seqs = append(seqs, s)
	}
	sort.Ints(seqs)

	require.Len(t, seqs, n)
	for i, s := range seqs {
		assert.Equal(t, i+1, s, "sequences must be distinct and contiguous")
	}
}

func TestYearRolloverResets(t *testing.T) {
	year := 2025
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(func() time.Time {
		return time.Date(year, time.December, 31, 23, 0, 0, 0, time.UTC)
	}))

	e1, err := l.Generate(context.Background(), "RE")
	require.NoError(t, err)
	assert.Equal(t, "RE-2025-00001", e1.Formatted)

	year = 2026
	e2, err := l.Generate(context.Background(), "RE")
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-00001", e2.Formatted)
}

func TestYearRolloverContinues(t *testing.T) {
	year := 2025
	cfg := DefaultConfig()
	cfg.ContinueAcrossYears = true
	l := New(NewMemoryStore(), cfg, WithClock(func() time.Time {
		return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	}))

	for i := 0; i < 3; i++ {
		_, err := l.Generate(context.Background(), "RE")
		require.NoError(t, err)
	}

	year = 2026
	entry, err := l.Generate(context.Background(), "RE")
	require.NoError(t, err)
	assert.Equal(t, 4, entry.Sequence)
	assert.Equal(t, "RE-2026-00004", entry.Formatted)
}

func TestGenerateCustomConfig(t *testing.T) {
	l := New(NewMemoryStore(), Config{Start: 100, Width: 8}, WithClock(fixedClock(2026)))

	entry, err := l.Generate(context.Background(), "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00000100", entry.Formatted)
}

func TestRegister(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))

	issued := time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
	entry, err := l.Register(context.Background(), "RE", 2026, 7, issued)
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-00007", entry.Formatted)
	assert.Equal(t, SourceRegistered, entry.Source)
	assert.Equal(t, issued, entry.IssuedAt)

	// Generation continues after the registered number.
	next, err := l.Generate(context.Background(), "RE")
	require.NoError(t, err)
	assert.Equal(t, 8, next.Sequence)
}

func TestRegisterRejectsInvalid(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig())

	_, err := l.Register(context.Background(), "", 2026, 1, time.Time{})
	assert.Error(t, err)
	_, err = l.Register(context.Background(), "RE", 2026, 0, time.Time{})
	assert.Error(t, err)
}

func TestAuditClean(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))
	for i := 0; i < 5; i++ {
		_, err := l.Generate(context.Background(), "RE")
		require.NoError(t, err)
	}

	report, err := l.Audit(context.Background(), "RE")
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 5, report.Entries)
	assert.Empty(t, report.Gaps)
	assert.Empty(t, report.Duplicates)
}

func TestAuditReportsGap(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))
	for _, seq := range []int{1, 2, 4, 5} {
		_, err := l.Register(context.Background(), "RE", 2026, seq, time.Time{})
		require.NoError(t, err)
	}

	report, err := l.Audit(context.Background(), "RE")
	require.NoError(t, err)
	assert.False(t, report.Clean())
	require.Len(t, report.Gaps, 1)
	assert.Equal(t, NumberRef{Year: 2026, Sequence: 3}, report.Gaps[0])
	assert.Empty(t, report.Duplicates)
}

func TestAuditReportsDuplicates(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))
	for _, seq := range []int{1, 2, 2, 2, 3} {
		_, err := l.Register(context.Background(), "RE", 2026, seq, time.Time{})
		require.NoError(t, err)
	}

	report, err := l.Audit(context.Background(), "RE")
	require.NoError(t, err)
	assert.False(t, report.Clean())
	assert.Empty(t, report.Gaps)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, NumberRef{Year: 2026, Sequence: 2}, report.Duplicates[0])
}

func TestAuditPerYear(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig(), WithClock(fixedClock(2026)))
	// 2025 ends at 3, 2026 starts at 1 again: no cross-year gap.
	for _, seq := range []int{1, 2, 3} {
		_, err := l.Register(context.Background(), "RE", 2025, seq, time.Time{})
		require.NoError(t, err)
	}
	for _, seq := range []int{1, 2} {
		_, err := l.Register(context.Background(), "RE", 2026, seq, time.Time{})
		require.NoError(t, err)
	}

	report, err := l.Audit(context.Background(), "RE")
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 5, report.Entries)
}

func TestAuditEmptyLedger(t *testing.T) {
	l := New(NewMemoryStore(), DefaultConfig())

	report, err := l.Audit(context.Background(), "RE")
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 0, report.Entries)
}
