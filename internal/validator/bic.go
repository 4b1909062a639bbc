package validator

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rezonia/taxcheck/internal/model"
)

// BIC structure per ISO 9362: 4-letter bank code, 2-letter country code,
// 2 alphanumeric location code, optional 3 alphanumeric branch code.
var bicPattern = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

// BICValidator checks BIC structure. No checksum exists for BICs, so
// validity is format-only.
type BICValidator struct{}

// NewBICValidator creates a new BIC validator.
func NewBICValidator() *BICValidator {
	return &BICValidator{}
}

// Class returns the identifier class.
func (v *BICValidator) Class() model.Class {
	return model.ClassBIC
}

// CanValidate matches 8 or 11 character strings with the BIC letter layout.
func (v *BICValidator) CanValidate(normalized string) bool {
	return (len(normalized) == 8 || len(normalized) == 11) && bicPattern.MatchString(normalized)
}

// Validate checks BIC length and structure.
func (v *BICValidator) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	verdict := model.NewVerdict(model.ClassBIC, raw)
	bic := Normalize(raw)
	verdict.Normalized = bic

	if len(bic) != 8 && len(bic) != 11 {
		verdict.AddDefect("length", fmt.Sprintf("expected 8 or 11 characters, got %d", len(bic)))
	}
	if !bicPattern.MatchString(bic) {
		verdict.AddDefect("format", "expected 4 letters (bank), 2 letters (country), 2 alphanumeric (location), optional 3 alphanumeric (branch)")
	}

	if verdict.IsValid() {
		verdict.Status = model.StatusFormatValid
	}
	return verdict, nil
}
