package validator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/bzst"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/validator"
)

// fakeChecker implements bzst.Checker in-process.
type fakeChecker struct {
	status  model.Status
	err     error
	lastReq bzst.CheckRequest
}

func (f *fakeChecker) Check(ctx context.Context, req bzst.CheckRequest) (*bzst.CheckResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &bzst.CheckResult{Status: f.status, Qualified: req.Qualified()}, nil
}

func TestVATID_GermanFormatOnly(t *testing.T) {
	v := validator.NewVATIDValidator()

	verdict, err := v.Validate(context.Background(), "DE 123 456 789")
	require.NoError(t, err)

	// No checker configured: format-valid but unconfirmed.
	assert.Equal(t, model.Unknown, verdict.Validity)
	assert.Equal(t, model.StatusFormatValid, verdict.Status)
	assert.Equal(t, "DE123456789", verdict.Normalized)
}

func TestVATID_EUFormatOnlyStaysUnknown(t *testing.T) {
	checker := &fakeChecker{status: model.StatusValid}
	v := validator.NewVATIDValidator(validator.WithChecker(checker, "DE999999999"))

	// Confirmation authority for non-DE VAT-IDs lies with the member
	// state; the checker must not even be called.
	verdict, err := v.Validate(context.Background(), "FR12345678901")
	require.NoError(t, err)

	assert.Equal(t, model.Unknown, verdict.Validity)
	assert.Equal(t, model.StatusFormatValid, verdict.Status)
	assert.Empty(t, checker.lastReq.VATID)
}

func TestVATID_GermanConfirmed(t *testing.T) {
	checker := &fakeChecker{status: model.StatusValid}
	v := validator.NewVATIDValidator(validator.WithChecker(checker, "DE999999999"))

	verdict, err := v.Validate(context.Background(), "DE123456789")
	require.NoError(t, err)

	assert.Equal(t, model.Valid, verdict.Validity)
	assert.Equal(t, model.StatusValid, verdict.Status)
	assert.Equal(t, "DE999999999", checker.lastReq.OwnVATID)
	assert.Equal(t, "DE123456789", checker.lastReq.VATID)
}

func TestVATID_GermanRegistryStatuses(t *testing.T) {
	tests := []struct {
		status   model.Status
		validity model.Validity
	}{
		{model.StatusValid, model.Valid},
		{model.StatusInvalid, model.Invalid},
		{model.StatusNotRegistered, model.Invalid},
		{model.StatusCheckNotPossible, model.Unknown},
		{model.StatusCheckNotPossibleNow, model.Unknown},
		{model.StatusValidAddressDiffers, model.Valid},
		{model.StatusValidNoAddressCheck, model.Valid},
	}
	for _, tt := range tests {
		checker := &fakeChecker{status: tt.status}
		v := validator.NewVATIDValidator(validator.WithChecker(checker, "DE999999999"))

		verdict, err := v.Validate(context.Background(), "DE123456789")
		require.NoError(t, err, "status %d", tt.status)
		assert.Equal(t, tt.validity, verdict.Validity, "status %d", tt.status)
		assert.Equal(t, tt.status, verdict.Status)
	}
}

func TestVATID_QualifiedCheck(t *testing.T) {
	checker := &fakeChecker{status: model.StatusValidAddressDiffers}
	v := validator.NewVATIDValidator(validator.WithChecker(checker, "DE999999999"))

	verdict, err := v.ValidateQualified(context.Background(), "DE123456789", "Muster GmbH", "Berlin", "10115")
	require.NoError(t, err)

	assert.Equal(t, model.Valid, verdict.Validity)
	assert.Equal(t, model.StatusValidAddressDiffers, verdict.Status)
	assert.Equal(t, "Muster GmbH", checker.lastReq.CompanyName)
	assert.Equal(t, "Berlin", checker.lastReq.City)
	assert.Equal(t, "10115", checker.lastReq.PostalCode)
}

func TestVATID_RegistryUnavailable(t *testing.T) {
	checker := &fakeChecker{err: model.NewServiceUnavailableError("bzst", nil)}
	v := validator.NewVATIDValidator(validator.WithChecker(checker, "DE999999999"))

	verdict, err := v.Validate(context.Background(), "DE123456789")
	require.Error(t, err)

	var unavailable *model.ServiceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	// The format verdict is still usable; unavailability is not invalidity.
	assert.Equal(t, model.Unknown, verdict.Validity)
	assert.Equal(t, model.StatusFormatValid, verdict.Status)
}

func TestVATID_BadFormat(t *testing.T) {
	v := validator.NewVATIDValidator()
	ctx := context.Background()

	for _, input := range []string{"DE12345678", "DE1234567890", "ATX12345678", "X1"} {
		verdict, err := v.Validate(ctx, input)
		require.NoError(t, err, input)
		assert.Equal(t, model.Invalid, verdict.Validity, input)
		assert.NotEmpty(t, verdict.Defects, input)
		// Local format failures never carry a registry answer code.
		assert.Equal(t, model.StatusNone, verdict.Status, input)
	}
}

func TestVATID_UnsupportedCountry(t *testing.T) {
	v := validator.NewVATIDValidator()

	verdict, err := v.Validate(context.Background(), "US123456789")
	require.NoError(t, err)

	// Tri-state: not silently passed, not declared invalid.
	assert.Equal(t, model.Unknown, verdict.Validity)
	assert.NotEmpty(t, verdict.Defects)
}
