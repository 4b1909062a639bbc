package validator

import (
	"context"
	"fmt"

	"github.com/rezonia/taxcheck/internal/checksum"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/registry"
)

// Weights for the check digit of German nine-digit customs numbers.
var eoriWeights = []int{3, 1, 2, 1, 2, 1, 2, 1}

// EORIValidator checks EORI numbers against the per-country format table.
// German nine-digit bodies additionally carry a weighted mod-11 check digit;
// its result is reported separately as pruefziffer_ok so a format-valid but
// checksum-invalid number is distinguishable, never silently passed.
type EORIValidator struct{}

// NewEORIValidator creates a new EORI validator.
func NewEORIValidator() *EORIValidator {
	return &EORIValidator{}
}

// Class returns the identifier class.
func (v *EORIValidator) Class() model.Class {
	return model.ClassEORI
}

// CanValidate matches a supported country prefix with a body matching that
// country's EORI pattern.
func (v *EORIValidator) CanValidate(normalized string) bool {
	if len(normalized) < 4 || !isLetter(normalized[0]) || !isLetter(normalized[1]) {
		return false
	}
	rule, err := registry.Lookup(model.ClassEORI, normalized[:2])
	if err != nil {
		return false
	}
	return rule.Body.MatchString(normalized[2:])
}

// Validate checks the EORI format and, for nine-digit German bodies, the
// embedded check digit.
func (v *EORIValidator) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	verdict := model.NewVerdict(model.ClassEORI, raw)
	eori := Normalize(raw)
	verdict.Normalized = eori

	if len(eori) < 3 || !isLetter(eori[0]) || !isLetter(eori[1]) {
		verdict.AddDefect("format", "expected two-letter country prefix followed by the national number")
		return verdict, nil
	}

	country := eori[:2]
	body := eori[2:]
	rule, err := registry.Lookup(model.ClassEORI, country)
	if err != nil {
		verdict.AddDefect("country", fmt.Sprintf("unsupported country prefix %s, format not checked", country))
		verdict.MarkUnknown(model.StatusNone)
		return verdict, nil
	}

	if !rule.Body.MatchString(body) {
		verdict.AddDefect("format", fmt.Sprintf("body does not match the %s EORI pattern", country))
		return verdict, nil
	}

	if rule.Algorithm == registry.AlgoWeightedMod11 && len(body) == 9 {
		v.checkPruefziffer(verdict, body)
		if !verdict.IsValid() {
			return verdict, nil
		}
	}

	verdict.Status = model.StatusFormatValid
	return verdict, nil
}

// checkPruefziffer recomputes the weighted mod-11 check digit over the first
// eight digits and compares it with the ninth.
func (v *EORIValidator) checkPruefziffer(verdict *model.Verdict, body string) {
	digits, err := checksum.Digits(body)
	if err != nil {
		verdict.AddDefect("format", "customs number must be numeric")
		return
	}

	rem, err := checksum.WeightedMod(digits[:8], eoriWeights, 11)
	if err != nil {
		verdict.AddDefect("checksum", "check digit could not be computed")
		return
	}

	ok := rem != 10 && rem == digits[8]
	verdict.PruefzifferOK = &ok
	if !ok {
		verdict.AddDefect("pruefziffer", model.NewChecksumError(model.ClassEORI, rem, digits[8]).Error())
	}
}
