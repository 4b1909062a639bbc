package taxlib_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/pkg/taxlib"
)

func TestCheckerValidateAutoDetect(t *testing.T) {
	checker := taxlib.NewChecker()

	verdict, err := checker.Validate(context.Background(), "DE89 3704 0044 0532 0130 00")
	require.NoError(t, err)
	assert.Equal(t, taxlib.ClassIBAN, verdict.Class)
	assert.Equal(t, taxlib.Valid, verdict.Validity)
	assert.Equal(t, "37040044", verdict.BankCode)
}

func TestCheckerValidateClass(t *testing.T) {
	checker := taxlib.NewChecker()

	verdict, err := checker.ValidateClass(context.Background(), taxlib.ClassBIC, "MARKDEF1100")
	require.NoError(t, err)
	assert.Equal(t, taxlib.Valid, verdict.Validity)

	_, err = checker.ValidateClass(context.Background(), taxlib.Class("passport"), "X")
	assert.Error(t, err)
}

func TestCheckerValidateBatch(t *testing.T) {
	checker := taxlib.NewChecker()

	rep := checker.ValidateBatch(context.Background(), []string{
		"DE89370400440532013000",
		"DE90370400440532013000",
	})
	assert.False(t, rep.Passed)
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 1, rep.Valid)
	assert.Equal(t, 1, rep.Invalid)
}

func TestCheckerValidateInvoice(t *testing.T) {
	checker := taxlib.NewChecker()

	ublInvoice := `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>RE-2026-00001</cbc:ID>
  <cbc:IssueDate>2026-03-14</cbc:IssueDate>
</Invoice>`

	result, err := checker.ValidateInvoice(context.Background(), strings.NewReader(ublInvoice))
	require.NoError(t, err)
	assert.Equal(t, taxlib.ProfileEN16931UBL, result.Profile)
	assert.Equal(t, "RE-2026-00001", result.Document.Number)
	assert.Equal(t, taxlib.Invalid, result.Verdict.Validity)
}

func TestCheckerValidateInvoiceUnknownSyntax(t *testing.T) {
	checker := taxlib.NewChecker()

	_, err := checker.ValidateInvoice(context.Background(), strings.NewReader("<Order/>"))
	require.Error(t, err)
	var parseErr *taxlib.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
