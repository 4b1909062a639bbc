package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/model"
)

func TestNewReportPasses(t *testing.T) {
	r := New()
	assert.True(t, r.Passed)
	assert.Zero(t, r.Total)
	assert.False(t, r.CheckedAt.IsZero())
}

func TestAddValid(t *testing.T) {
	r := New()
	r.Add(model.NewVerdict(model.ClassIBAN, "DE89370400440532013000"))

	assert.True(t, r.Passed)
	assert.Equal(t, 1, r.Total)
	assert.Equal(t, 1, r.Valid)
	assert.Empty(t, r.Defects)
}

func TestAddInvalidFailsReport(t *testing.T) {
	r := New()
	r.Add(model.NewVerdict(model.ClassIBAN, "DE89370400440532013000"))

	bad := model.NewVerdict(model.ClassIBAN, "DE90370400440532013000")
	bad.AddDefect("checksum", "mod-97 residue is not 1")
	r.Add(bad)

	assert.False(t, r.Passed)
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Valid)
	assert.Equal(t, 1, r.Invalid)
	require.Len(t, r.Defects, 1)
	assert.Equal(t, "DE90370400440532013000", r.Defects[0].Input)
	assert.Equal(t, "checksum", r.Defects[0].Field)
}

func TestAddUnknownDoesNotFail(t *testing.T) {
	r := New()
	unknown := model.NewVerdict(model.ClassVATID, "FR12345678901")
	unknown.MarkUnknown(model.StatusFormatValid)
	r.Add(unknown)

	assert.True(t, r.Passed, "unknown must not be collapsed into invalid")
	assert.Equal(t, 1, r.Unknown)
	assert.Zero(t, r.Invalid)
	assert.Empty(t, r.Defects)
}

func TestMerge(t *testing.T) {
	a := New()
	a.Add(model.NewVerdict(model.ClassBIC, "MARKDEF1100"))

	b := New()
	bad := model.NewVerdict(model.ClassBIC, "XX")
	bad.AddDefect("length", "BIC must be 8 or 11 characters")
	b.Add(bad)

	a.Merge(b)
	assert.False(t, a.Passed)
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 1, a.Invalid)
}
