package registry

import (
	"regexp"

	"github.com/rezonia/taxcheck/internal/model"
)

// ibanEntry is the compact table form expanded into FormatRules at init.
type ibanEntry struct {
	country  string
	length   int
	body     string // pattern for positions 4..length (after country + check digits)
	bank     Substring
	account  Substring
}

// Lengths and layouts from the SWIFT IBAN registry. Bank/account substrings
// are only filled where the national layout is a plain positional split;
// everything else omits derived fields.
var ibanEntries = []ibanEntry{
	{"AD", 24, `[0-9]{8}[A-Z0-9]{12}`, Substring{}, Substring{}},
	{"AT", 20, `[0-9]{16}`, Substring{4, 9}, Substring{9, 20}},
	{"BE", 16, `[0-9]{12}`, Substring{4, 7}, Substring{7, 14}},
	{"BG", 22, `[A-Z]{4}[0-9]{6}[A-Z0-9]{8}`, Substring{}, Substring{}},
	{"CH", 21, `[0-9]{5}[A-Z0-9]{12}`, Substring{4, 9}, Substring{9, 21}},
	{"CY", 28, `[0-9]{8}[A-Z0-9]{16}`, Substring{}, Substring{}},
	{"CZ", 24, `[0-9]{20}`, Substring{4, 8}, Substring{8, 24}},
	{"DE", 22, `[0-9]{18}`, Substring{4, 12}, Substring{12, 22}},
	{"DK", 18, `[0-9]{14}`, Substring{4, 8}, Substring{8, 18}},
	{"EE", 20, `[0-9]{16}`, Substring{}, Substring{}},
	{"ES", 24, `[0-9]{20}`, Substring{4, 8}, Substring{14, 24}},
	{"FI", 18, `[0-9]{14}`, Substring{}, Substring{}},
	{"FR", 27, `[0-9]{10}[A-Z0-9]{11}[0-9]{2}`, Substring{4, 9}, Substring{14, 25}},
	{"GB", 22, `[A-Z]{4}[0-9]{14}`, Substring{4, 8}, Substring{14, 22}},
	{"GR", 27, `[0-9]{7}[A-Z0-9]{16}`, Substring{}, Substring{}},
	{"HR", 21, `[0-9]{17}`, Substring{4, 11}, Substring{11, 21}},
	{"HU", 28, `[0-9]{24}`, Substring{}, Substring{}},
	{"IE", 22, `[A-Z]{4}[0-9]{14}`, Substring{4, 8}, Substring{14, 22}},
	{"IS", 26, `[0-9]{22}`, Substring{}, Substring{}},
	{"IT", 27, `[A-Z][0-9]{10}[A-Z0-9]{12}`, Substring{}, Substring{}},
	{"LI", 21, `[0-9]{5}[A-Z0-9]{12}`, Substring{4, 9}, Substring{9, 21}},
	{"LT", 20, `[0-9]{16}`, Substring{4, 9}, Substring{9, 20}},
	{"LU", 20, `[0-9]{3}[A-Z0-9]{13}`, Substring{}, Substring{}},
	{"LV", 21, `[A-Z]{4}[A-Z0-9]{13}`, Substring{4, 8}, Substring{8, 21}},
	{"MC", 27, `[0-9]{10}[A-Z0-9]{11}[0-9]{2}`, Substring{4, 9}, Substring{14, 25}},
	{"MT", 31, `[A-Z]{4}[0-9]{5}[A-Z0-9]{18}`, Substring{}, Substring{}},
	{"NL", 18, `[A-Z]{4}[0-9]{10}`, Substring{4, 8}, Substring{8, 18}},
	{"NO", 15, `[0-9]{11}`, Substring{4, 8}, Substring{8, 15}},
	{"PL", 28, `[0-9]{24}`, Substring{4, 12}, Substring{12, 28}},
	{"PT", 25, `[0-9]{21}`, Substring{4, 8}, Substring{13, 25}},
	{"RO", 24, `[A-Z]{4}[A-Z0-9]{16}`, Substring{4, 8}, Substring{8, 24}},
	{"SE", 24, `[0-9]{20}`, Substring{4, 7}, Substring{7, 24}},
	{"SI", 19, `[0-9]{15}`, Substring{}, Substring{}},
	{"SK", 24, `[0-9]{20}`, Substring{4, 8}, Substring{8, 24}},
}

func init() {
	for _, e := range ibanEntries {
		register(&FormatRule{
			Class:       model.ClassIBAN,
			Country:     e.country,
			TotalLength: e.length,
			Body:        regexp.MustCompile(`^` + e.body + `$`),
			Algorithm:   AlgoMod97,
			BankCode:    e.bank,
			Account:     e.account,
		})
	}
}
