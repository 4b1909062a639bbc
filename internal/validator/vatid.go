package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rezonia/taxcheck/internal/bzst"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/registry"
)

// VATIDValidator checks EU VAT identification numbers. German VAT-IDs can be
// confirmed against the BZSt registry when a checker is configured; for all
// other member states only the format is checked and the verdict stays
// tri-state Unknown, because confirmation authority lies with each member
// state.
type VATIDValidator struct {
	checker  bzst.Checker
	ownVATID string
}

// VATIDOption configures the VAT-ID validator.
type VATIDOption func(*VATIDValidator)

// WithChecker enables registry confirmation for German VAT-IDs. ownVATID is
// the requester's own VAT-ID, required by the confirmation interface.
func WithChecker(c bzst.Checker, ownVATID string) VATIDOption {
	return func(v *VATIDValidator) {
		v.checker = c
		v.ownVATID = ownVATID
	}
}

// NewVATIDValidator creates a new VAT-ID validator.
func NewVATIDValidator(opts ...VATIDOption) *VATIDValidator {
	v := &VATIDValidator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Class returns the identifier class.
func (v *VATIDValidator) Class() model.Class {
	return model.ClassVATID
}

// CanValidate matches a known country prefix followed by a body matching
// that country's VAT-ID pattern.
func (v *VATIDValidator) CanValidate(normalized string) bool {
	s := normalizeVATID(normalized)
	if len(s) < 4 || !isLetter(s[0]) || !isLetter(s[1]) {
		return false
	}
	rule, err := registry.Lookup(model.ClassVATID, s[:2])
	if err != nil {
		return false
	}
	return rule.Body.MatchString(s[2:])
}

// Validate runs the format check and, for DE with a configured checker, the
// simple registry confirmation. Registry unreachability is returned as a
// *model.ServiceUnavailableError alongside the format-checked verdict.
func (v *VATIDValidator) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	return v.validate(ctx, raw, bzst.CheckRequest{})
}

// ValidateQualified runs a qualified check for German VAT-IDs: the registry
// compares company name, city and postal code and may answer with the
// address-comparison statuses 216/217.
func (v *VATIDValidator) ValidateQualified(ctx context.Context, raw, companyName, city, postalCode string) (*model.Verdict, error) {
	return v.validate(ctx, raw, bzst.CheckRequest{
		CompanyName: companyName,
		City:        city,
		PostalCode:  postalCode,
	})
}

func (v *VATIDValidator) validate(ctx context.Context, raw string, req bzst.CheckRequest) (*model.Verdict, error) {
	verdict := model.NewVerdict(model.ClassVATID, raw)
	id := normalizeVATID(Normalize(raw))
	verdict.Normalized = id

	if len(id) < 4 || !isLetter(id[0]) || !isLetter(id[1]) {
		verdict.AddDefect("format", "expected two-letter country prefix followed by the national number")
		return verdict, nil
	}

	country := id[:2]
	rule, err := registry.Lookup(model.ClassVATID, country)
	if err != nil {
		verdict.AddDefect("country", fmt.Sprintf("unsupported country prefix %s, format not checked", country))
		verdict.MarkUnknown(model.StatusNone)
		return verdict, nil
	}

	if !rule.Body.MatchString(id[2:]) {
		// Status stays None: the 2xx codes are registry answers, and the
		// registry was never consulted for a local format failure.
		verdict.AddDefect("format", fmt.Sprintf("body does not match the %s VAT-ID pattern", country))
		return verdict, nil
	}

	if country != "DE" || v.checker == nil {
		// Format-valid, registry not consulted. Explicitly tri-state:
		// not confirmed is not the same as confirmed.
		verdict.MarkUnknown(model.StatusFormatValid)
		return verdict, nil
	}

	req.OwnVATID = v.ownVATID
	req.VATID = id
	result, err := v.checker.Check(ctx, req)
	if err != nil {
		// Leave the verdict at format-valid/unknown and surface the
		// infrastructure failure separately.
		verdict.MarkUnknown(model.StatusFormatValid)
		return verdict, err
	}

	verdict.Status = result.Status
	switch result.Status {
	case model.StatusValid, model.StatusValidAddressDiffers, model.StatusValidNoAddressCheck:
		verdict.Validity = model.Valid
	case model.StatusInvalid:
		verdict.AddDefect("registry", "VAT-ID reported invalid by the registry")
	case model.StatusNotRegistered:
		verdict.AddDefect("registry", "VAT-ID is not registered")
	case model.StatusCheckNotPossible, model.StatusCheckNotPossibleNow:
		verdict.MarkUnknown(result.Status)
	}
	return verdict, nil
}

// normalizeVATID additionally strips the separators commonly written inside
// VAT-IDs (DE 123.456.789, ATU-12345678).
func normalizeVATID(s string) string {
	return strings.NewReplacer(".", "", "-", "", "/", "").Replace(s)
}
