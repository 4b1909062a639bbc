package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/model"
)

func TestVerdict_AddDefect(t *testing.T) {
	v := model.NewVerdict(model.ClassIBAN, "DE00")
	require.Equal(t, model.Valid, v.Validity)
	require.True(t, v.IsValid())

	v.AddDefect("length", "expected 22 characters, got 4")
	v.AddDefect("checksum", "mod-97 residue is 5, expected 1")

	assert.Equal(t, model.Invalid, v.Validity)
	assert.False(t, v.IsValid())
	require.Len(t, v.Defects, 2)
	// Defects keep check order.
	assert.Equal(t, "length", v.Defects[0].Field)
	assert.Equal(t, "checksum", v.Defects[1].Field)
}

func TestVerdict_MarkUnknown(t *testing.T) {
	v := model.NewVerdict(model.ClassVATID, "FR12345678901")
	v.MarkUnknown(model.StatusFormatValid)

	assert.Equal(t, model.Unknown, v.Validity)
	assert.Equal(t, model.StatusFormatValid, v.Status)
	// Unknown must not read as valid or invalid.
	assert.False(t, v.IsValid())
	assert.NotEqual(t, model.Invalid, v.Validity)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "valid", model.StatusValid.String())
	assert.Equal(t, "invalid", model.StatusInvalid.String())
	assert.Equal(t, "not registered", model.StatusNotRegistered.String())
	assert.Equal(t, "check not possible", model.StatusCheckNotPossible.String())
	assert.Equal(t, "check not possible", model.StatusCheckNotPossibleNow.String())
	assert.Equal(t, "valid, address mismatch", model.StatusValidAddressDiffers.String())
	assert.Equal(t, "valid, no address comparison", model.StatusValidNoAddressCheck.String())
	assert.Equal(t, "format valid, not confirmed", model.StatusFormatValid.String())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")

	svcErr := model.NewServiceUnavailableError("bzst", cause)
	assert.ErrorIs(t, svcErr, cause)
	assert.Contains(t, svcErr.Error(), "bzst unavailable")

	persErr := model.NewPersistenceError("append", cause)
	assert.ErrorIs(t, persErr, cause)
	assert.Contains(t, persErr.Error(), "append")
}

func TestErrors_Messages(t *testing.T) {
	fe := model.NewFormatError(model.ClassEORI, "body", "expected digits")
	assert.Contains(t, fe.Error(), "eori")
	assert.Contains(t, fe.Error(), "expected digits")

	ce := model.NewChecksumError(model.ClassIBAN, 1, 45)
	assert.Contains(t, ce.Error(), "expected 1")

	nf := model.NewNotFoundError(model.ClassIBAN, "XX")
	assert.Contains(t, nf.Error(), "XX")
}
