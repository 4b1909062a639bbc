package document

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rezonia/taxcheck/internal/model"
)

// numberPattern matches formatted ledger numbers: PREFIX-YEAR-SEQUENCE.
var numberPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-([0-9]{4})-([0-9]+)$`)

// CheckChronology verifies strict ascending +1 continuity over an ordered
// sequence of invoice numbers sharing one numbering scheme. It parses the
// formatted numbers directly; deployments with a full numbering ledger run
// its audit instead, which also catches retroactively registered numbers.
func CheckChronology(numbers []string) []model.Defect {
	defects := []model.Defect{}
	if len(numbers) == 0 {
		return defects
	}

	prefix := ""
	prevYear, prevSeq := 0, 0
	for i, number := range numbers {
		m := numberPattern.FindStringSubmatch(number)
		if m == nil {
			defects = append(defects, model.Defect{
				Field:   FieldNumber,
				Message: fmt.Sprintf("%q does not match the PREFIX-YEAR-SEQUENCE schema", number),
			})
			continue
		}
		year, _ := strconv.Atoi(m[2])
		seq, _ := strconv.Atoi(m[3])

		if i == 0 {
			prefix, prevYear, prevSeq = m[1], year, seq
			continue
		}
		if m[1] != prefix {
			defects = append(defects, model.Defect{
				Field:   FieldNumber,
				Message: fmt.Sprintf("%q uses prefix %q, expected %q", number, m[1], prefix),
			})
			continue
		}

		switch {
		case year == prevYear && seq == prevSeq+1:
			// Contiguous.
		case year == prevYear && seq == prevSeq:
			defects = append(defects, model.Defect{
				Field:   FieldNumber,
				Message: fmt.Sprintf("%q duplicates sequence %d", number, seq),
			})
		case year == prevYear:
			defects = append(defects, model.Defect{
				Field:   FieldNumber,
				Message: fmt.Sprintf("gap before %q: expected sequence %d, got %d", number, prevSeq+1, seq),
			})
		case year > prevYear:
			// New year restarts the sequence.
		default:
			defects = append(defects, model.Defect{
				Field:   FieldNumber,
				Message: fmt.Sprintf("%q steps back from year %d to %d", number, prevYear, year),
			})
		}
		prevYear, prevSeq = year, seq
	}
	return defects
}
