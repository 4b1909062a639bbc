// Package validator implements the per-class identifier validators (IBAN,
// BIC, VAT-ID, EORI, tracking numbers) on top of the checksum primitives and
// the country/format registry.
//
// All validators share one contract: malformed input yields an Invalid
// verdict with an ordered defect list, never an error. The error return is
// reserved for infrastructure failures, e.g. an unreachable confirmation
// registry during a qualified VAT check.
package validator

import (
	"context"
	"strings"

	"github.com/rezonia/taxcheck/internal/model"
)

// Validator validates one identifier class.
type Validator interface {
	// Validate checks a raw identifier. The verdict is always non-nil;
	// a non-nil error means the check could not be carried out at all.
	Validate(ctx context.Context, raw string) (*model.Verdict, error)

	// CanValidate reports whether the normalized input plausibly belongs
	// to this validator's class. Used for auto-detection only.
	CanValidate(normalized string) bool

	// Class returns the identifier class.
	Class() model.Class
}

// Registry holds all validators and dispatches by class or by detection.
type Registry struct {
	validators []Validator
}

// NewRegistry creates a registry with the default validators.
// Order matters for detection: IBAN before VAT-ID (both start with two
// letters), VAT-ID before EORI (a German VAT-ID body is also a plausible
// EORI body), tracking last as the most generic.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		validators: []Validator{
			NewIBANValidator(),
			NewBICValidator(),
			NewVATIDValidator(cfg.vatOpts...),
			NewEORIValidator(),
			NewTrackingValidator(),
		},
	}
}

type registryConfig struct {
	vatOpts []VATIDOption
}

// RegistryOption configures the validator registry.
type RegistryOption func(*registryConfig)

// WithVATIDOptions passes options through to the VAT-ID validator.
func WithVATIDOptions(opts ...VATIDOption) RegistryOption {
	return func(c *registryConfig) { c.vatOpts = append(c.vatOpts, opts...) }
}

// Get returns the validator for a class, or nil.
func (r *Registry) Get(class model.Class) Validator {
	for _, v := range r.validators {
		if v.Class() == class {
			return v
		}
	}
	return nil
}

// Detect identifies the class of a raw identifier by trying each validator
// in registration order.
func (r *Registry) Detect(raw string) (Validator, error) {
	normalized := Normalize(raw)
	for _, v := range r.validators {
		if v.CanValidate(normalized) {
			return v, nil
		}
	}
	return nil, model.NewFormatError("", "input", "no validator recognizes this identifier")
}

// Validate auto-detects the class and validates. Unrecognized input yields
// an Invalid verdict, consistent with the per-validator failure semantics.
func (r *Registry) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	v, err := r.Detect(raw)
	if err != nil {
		verdict := model.NewVerdict("", raw)
		verdict.AddDefect("input", "unrecognized identifier format")
		return verdict, nil
	}
	return v.Validate(ctx, raw)
}

// Normalize uppercases and strips whitespace. Identifier classes with their
// own conventions (dots in tracking numbers) normalize further themselves.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLetter(b byte) bool { return b >= 'A' && b <= 'Z' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return len(s) > 0
}
