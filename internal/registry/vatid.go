package registry

import (
	"regexp"

	"github.com/rezonia/taxcheck/internal/model"
)

// VAT-ID body patterns (everything after the two-letter prefix) per EU
// member state, per the VIES format catalogue. Greece uses the EL prefix;
// XI covers Northern Ireland post-Brexit.
var vatBodies = map[string]string{
	"AT": `U[0-9]{8}`,
	"BE": `[01][0-9]{9}`,
	"BG": `[0-9]{9,10}`,
	"CY": `[0-9]{8}[A-Z]`,
	"CZ": `[0-9]{8,10}`,
	"DE": `[0-9]{9}`,
	"DK": `[0-9]{8}`,
	"EE": `[0-9]{9}`,
	"EL": `[0-9]{9}`,
	"ES": `[A-Z0-9][0-9]{7}[A-Z0-9]`,
	"FI": `[0-9]{8}`,
	"FR": `[A-Z0-9]{2}[0-9]{9}`,
	"HR": `[0-9]{11}`,
	"HU": `[0-9]{8}`,
	"IE": `[0-9][A-Z0-9+*][0-9]{5}[A-W]|[0-9]{7}[A-W][A-I]?`,
	"IT": `[0-9]{11}`,
	"LT": `[0-9]{9}|[0-9]{12}`,
	"LU": `[0-9]{8}`,
	"LV": `[0-9]{11}`,
	"MT": `[0-9]{8}`,
	"NL": `[0-9]{9}B[0-9]{2}`,
	"PL": `[0-9]{10}`,
	"PT": `[0-9]{9}`,
	"RO": `[0-9]{2,10}`,
	"SE": `[0-9]{12}`,
	"SI": `[0-9]{8}`,
	"SK": `[0-9]{10}`,
	"XI": `[0-9]{9}|[0-9]{12}`,
}

func init() {
	for country, body := range vatBodies {
		authority := "member state registry (format check only)"
		if country == "DE" {
			authority = "Bundeszentralamt für Steuern"
		}
		register(&FormatRule{
			Class:     model.ClassVATID,
			Country:   country,
			Body:      regexp.MustCompile(`^(` + body + `)$`),
			Algorithm: AlgoNone,
			Authority: authority,
		})
	}
}
