package validator

import (
	"context"
	"fmt"

	"github.com/rezonia/taxcheck/internal/checksum"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/registry"
)

// IBANValidator checks IBANs: per-country length and body pattern from the
// registry, then the ISO 7064 mod-97-10 residue over the rearranged string.
type IBANValidator struct{}

// NewIBANValidator creates a new IBAN validator.
func NewIBANValidator() *IBANValidator {
	return &IBANValidator{}
}

// Class returns the identifier class.
func (v *IBANValidator) Class() model.Class {
	return model.ClassIBAN
}

// CanValidate reports whether the input looks like an IBAN: two letters, two
// check digits, and the country's registered length where one is known.
func (v *IBANValidator) CanValidate(normalized string) bool {
	if len(normalized) < 15 || len(normalized) > 34 {
		return false
	}
	if !isLetter(normalized[0]) || !isLetter(normalized[1]) ||
		!isDigit(normalized[2]) || !isDigit(normalized[3]) {
		return false
	}
	if rule, err := registry.Lookup(model.ClassIBAN, normalized[:2]); err == nil {
		return len(normalized) == rule.TotalLength
	}
	return true
}

// Validate checks the IBAN and, where the national layout is known, derives
// the bank code and account number. Unknown layouts omit the derived fields
// without invalidating the IBAN.
func (v *IBANValidator) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	verdict := model.NewVerdict(model.ClassIBAN, raw)
	iban := Normalize(raw)
	verdict.Normalized = iban

	if len(iban) < 5 || !isLetter(iban[0]) || !isLetter(iban[1]) || !isDigit(iban[2]) || !isDigit(iban[3]) {
		verdict.AddDefect("format", "expected two-letter country code followed by two check digits")
		return verdict, nil
	}

	country := iban[:2]
	rule, err := registry.Lookup(model.ClassIBAN, country)
	if err != nil {
		// No rule: length unknown, but the mod-97 residue is intrinsic
		// to every IBAN, so checksum-check and report unknown.
		if rem, cerr := checksum.Mod97(iban[4:] + iban[:4]); cerr != nil {
			verdict.AddDefect("format", "invalid characters for mod-97 checksum")
		} else if rem != 1 {
			verdict.AddDefect("checksum", model.NewChecksumError(model.ClassIBAN, 1, rem).Error())
		} else {
			verdict.MarkUnknown(model.StatusFormatValid)
		}
		return verdict, nil
	}

	if len(iban) != rule.TotalLength {
		verdict.AddDefect("length", fmt.Sprintf("expected %d characters for %s, got %d", rule.TotalLength, country, len(iban)))
	}
	if !rule.Body.MatchString(iban[4:]) {
		verdict.AddDefect("format", fmt.Sprintf("body does not match the %s layout", country))
	}

	rem, err := checksum.Mod97(iban[4:] + iban[:4])
	if err != nil {
		verdict.AddDefect("format", "invalid characters for mod-97 checksum")
		return verdict, nil
	}
	if rem != 1 {
		verdict.AddDefect("checksum", model.NewChecksumError(model.ClassIBAN, 1, rem).Error())
	}

	if verdict.IsValid() {
		verdict.Status = model.StatusValid
		if rule.BankCode.Defined() && rule.BankCode.End <= len(iban) {
			verdict.BankCode = iban[rule.BankCode.Start:rule.BankCode.End]
		}
		if rule.Account.Defined() && rule.Account.End <= len(iban) {
			verdict.AccountNumber = iban[rule.Account.Start:rule.Account.End]
		}
	}
	return verdict, nil
}
