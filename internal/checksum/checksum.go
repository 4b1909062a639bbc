// Package checksum implements the modulo checksum primitives shared by the
// identifier validators: ISO 7064 mod-97-10 (IBAN), weighted mod-11 (EORI
// customs numbers) and weighted mod-10 (Leitcode).
//
// All functions are pure and expect normalized input: uppercase, no
// whitespace. Non-digit characters where digits are required fail with an
// error, never a silent coercion.
package checksum

import (
	"fmt"
)

// Mod97 computes the ISO 7064 mod-97-10 residue of a rearranged string.
// Letters are expanded to two-digit numerals (A=10 ... Z=35) and the result
// treated as a decimal integer. The caller must rearrange beforehand (for
// IBAN: move the first four characters to the end). A valid IBAN yields 1.
//
// The residue is computed incrementally so arbitrarily long inputs never
// overflow.
func Mod97(rearranged string) (int, error) {
	if rearranged == "" {
		return 0, fmt.Errorf("mod97: empty input")
	}
	rem := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			n := int(r-'A') + 10
			rem = (rem*100 + n) % 97
		default:
			return 0, fmt.Errorf("mod97: invalid character %q", r)
		}
	}
	return rem, nil
}

// WeightedMod multiplies each digit by the next weight, cycling through the
// weight sequence, and returns the sum modulo modulus. Used for EORI
// (weights 3,1,2,1,2,1,2,1 mod 11) and Leitcode (weights 4,2,1 mod 10).
func WeightedMod(digits []int, weights []int, modulus int) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("weightedmod: empty weight sequence")
	}
	if modulus <= 0 {
		return 0, fmt.Errorf("weightedmod: modulus must be positive, got %d", modulus)
	}
	sum := 0
	for i, d := range digits {
		if d < 0 || d > 9 {
			return 0, fmt.Errorf("weightedmod: digit out of range at position %d: %d", i, d)
		}
		sum += d * weights[i%len(weights)]
	}
	return sum % modulus, nil
}

// Digits converts a numeric string into a digit slice. Any non-digit
// character is an error.
func Digits(s string) ([]int, error) {
	out := make([]int, 0, len(s))
	for i, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("digits: non-digit character %q at position %d", r, i)
		}
		out = append(out, int(r-'0'))
	}
	return out, nil
}
