// Package registry holds the static per-country format rules consulted by
// the identifier validators. The tables are built once at init and are
// read-only afterwards, so lookups are safe from any number of goroutines.
//
// Adding a country is a data-table edit: no validator code changes.
package registry

import (
	"regexp"

	"github.com/rezonia/taxcheck/internal/model"
)

// Algorithm selects the checksum to apply to an identifier body.
type Algorithm string

const (
	AlgoNone          Algorithm = "none"
	AlgoMod97         Algorithm = "mod97"
	AlgoWeightedMod11 Algorithm = "weighted-mod11"
	AlgoWeightedMod10 Algorithm = "weighted-mod10"
)

// Substring marks a half-open [Start, End) range inside the normalized
// identifier. A zero-value Substring means "unknown layout".
type Substring struct {
	Start, End int
}

// Defined reports whether the range carries an actual layout.
func (s Substring) Defined() bool { return s.End > s.Start }

// FormatRule is the per-(class, country) specification an identifier is
// checked against.
type FormatRule struct {
	Class       model.Class
	Country     string
	TotalLength int // 0 means variable length, pattern decides
	Body        *regexp.Regexp
	Algorithm   Algorithm

	// IBAN only: where the national bank code and account number live
	// inside the full IBAN. Unknown layouts stay zero and the validator
	// simply omits the derived fields.
	BankCode Substring
	Account  Substring

	// Human-readable name of the confirming authority, where one exists.
	Authority string
}

var rules = map[model.Class]map[string]*FormatRule{}

func register(r *FormatRule) {
	byCountry, ok := rules[r.Class]
	if !ok {
		byCountry = map[string]*FormatRule{}
		rules[r.Class] = byCountry
	}
	byCountry[r.Country] = r
}

// Lookup returns the rule for a (class, country) pair. A missing entry is a
// *model.NotFoundError: callers must fall back to format-only checking, not
// treat the input as valid or invalid.
func Lookup(class model.Class, country string) (*FormatRule, error) {
	if byCountry, ok := rules[class]; ok {
		if r, ok := byCountry[country]; ok {
			return r, nil
		}
	}
	return nil, model.NewNotFoundError(class, country)
}

// Countries lists the supported country codes for a class, in no particular
// order.
func Countries(class model.Class) []string {
	byCountry := rules[class]
	out := make([]string, 0, len(byCountry))
	for c := range byCountry {
		out = append(out, c)
	}
	return out
}
