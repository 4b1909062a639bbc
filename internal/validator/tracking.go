package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rezonia/taxcheck/internal/checksum"
	"github.com/rezonia/taxcheck/internal/model"
)

// Tracking number kinds returned in Verdict.Kind.
const (
	KindLeitcode = "leitcode"
	KindDHL      = "dhl"
	KindUPS      = "ups"
	KindUPU      = "upu"
	KindUnknown  = "unknown"
)

var (
	upsPattern = regexp.MustCompile(`^1Z[A-Z0-9]{16}$`)
	dhlPattern = regexp.MustCompile(`^[0-9]{12}$|^[0-9]{20}$`)
	upuPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{9}[A-Z]{2}$`)
)

// Weights for the Leitcode half check digits.
var leitcodeWeights = []int{4, 2, 1}

// TrackingValidator dispatches on length and pattern to distinguish the
// DHL Leitcode (14 digits, two mod-10 checksummed 7-digit halves) from
// carrier tracking formats, which have no checksum and are pattern-only.
type TrackingValidator struct{}

// NewTrackingValidator creates a new tracking number validator.
func NewTrackingValidator() *TrackingValidator {
	return &TrackingValidator{}
}

// Class returns the identifier class.
func (v *TrackingValidator) Class() model.Class {
	return model.ClassTracking
}

// CanValidate matches any of the known tracking shapes.
func (v *TrackingValidator) CanValidate(normalized string) bool {
	s := normalizeTracking(normalized)
	if allDigits(s) && (len(s) == 12 || len(s) == 14 || len(s) == 20) {
		return true
	}
	return upsPattern.MatchString(s) || upuPattern.MatchString(s)
}

// Validate dispatches to the matched format and returns its kind alongside
// validity.
func (v *TrackingValidator) Validate(ctx context.Context, raw string) (*model.Verdict, error) {
	verdict := model.NewVerdict(model.ClassTracking, raw)
	s := normalizeTracking(Normalize(raw))
	verdict.Normalized = s

	switch {
	case allDigits(s) && len(s) == 14:
		verdict.Kind = KindLeitcode
		v.checkLeitcode(verdict, s)

	case dhlPattern.MatchString(s):
		verdict.Kind = KindDHL
		verdict.Status = model.StatusFormatValid

	case upsPattern.MatchString(s):
		verdict.Kind = KindUPS
		verdict.Status = model.StatusFormatValid

	case upuPattern.MatchString(s):
		verdict.Kind = KindUPU
		verdict.Status = model.StatusFormatValid

	default:
		verdict.Kind = KindUnknown
		verdict.AddDefect("format", "unrecognized tracking number format")
	}
	return verdict, nil
}

// checkLeitcode verifies both 7-digit halves: the seventh digit of each half
// is a mod-10 check digit over the first six, weights 4,2,1 cycling.
func (v *TrackingValidator) checkLeitcode(verdict *model.Verdict, s string) {
	for i, half := range []string{s[:7], s[7:]} {
		digits, err := checksum.Digits(half)
		if err != nil {
			verdict.AddDefect("format", "leitcode must be numeric")
			return
		}
		rem, err := checksum.WeightedMod(digits[:6], leitcodeWeights, 10)
		if err != nil {
			verdict.AddDefect("checksum", "check digit could not be computed")
			return
		}
		want := (10 - rem) % 10
		if digits[6] != want {
			cerr := model.NewChecksumError(model.ClassTracking, want, digits[6])
			verdict.AddDefect("checksum", fmt.Sprintf("half %d: %v", i+1, cerr))
		}
	}
	if verdict.IsValid() {
		verdict.Status = model.StatusValid
	}
}

// normalizeTracking strips the dots and hyphens commonly printed inside
// Leitcodes and tracking numbers.
func normalizeTracking(s string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(s)
}
