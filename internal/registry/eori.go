package registry

import (
	"regexp"

	"github.com/rezonia/taxcheck/internal/model"
)

// EORI numbers are country-prefixed with national bodies of up to 15
// characters. Only the German scheme embeds a verifiable check digit
// (weighted mod-11 over the first eight digits of a nine-digit body);
// everything else is format-only.
var eoriBodies = map[string]struct {
	body      string
	algorithm Algorithm
	authority string
}{
	"DE": {`[0-9]{7,15}`, AlgoWeightedMod11, "Generalzolldirektion"},
	"AT": {`EOS[0-9]{10}`, AlgoNone, "Zollamt Österreich"},
	"BE": {`[0-9]{10}`, AlgoNone, ""},
	"CZ": {`[0-9]{8,10}`, AlgoNone, ""},
	"DK": {`[0-9]{8}`, AlgoNone, ""},
	"ES": {`[A-Z][0-9]{8}|[0-9]{8}[A-Z]`, AlgoNone, ""},
	"FR": {`[0-9]{14}`, AlgoNone, ""},
	"IT": {`[0-9]{11,16}`, AlgoNone, ""},
	"NL": {`[0-9]{9}`, AlgoNone, ""},
	"PL": {`[0-9]{10,14}`, AlgoNone, ""},
}

func init() {
	for country, e := range eoriBodies {
		register(&FormatRule{
			Class:     model.ClassEORI,
			Country:   country,
			Body:      regexp.MustCompile(`^(` + e.body + `)$`),
			Algorithm: e.algorithm,
			Authority: e.authority,
		})
	}
}
