// Package report aggregates verdicts from the identifier and document
// validators into one structured result for the calling layer (CLI, HTTP
// API, or batch jobs).
package report

import (
	"time"

	"github.com/rezonia/taxcheck/internal/model"
)

// Report is the aggregated outcome of a validation run.
//
// Passed is true only if no verdict is invalid. Unknown verdicts do not
// fail the run but are counted separately so callers can surface them; they
// must never be folded into the invalid count.
type Report struct {
	Passed    bool      `json:"passed"`
	CheckedAt time.Time `json:"checked_at"`

	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Unknown int `json:"unknown"`

	Verdicts []*model.Verdict `json:"verdicts"`

	// Defects flattens the defects of all invalid verdicts, tagged with
	// the input they belong to.
	Defects []ItemDefect `json:"defects,omitempty"`
}

// ItemDefect is one defect attributed to its input.
type ItemDefect struct {
	Class   model.Class `json:"class"`
	Input   string      `json:"input"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}

// New creates an empty passing report.
func New() *Report {
	return &Report{
		Passed:    true,
		CheckedAt: time.Now().UTC(),
		Verdicts:  make([]*model.Verdict, 0),
		Defects:   make([]ItemDefect, 0),
	}
}

// Add folds one verdict into the report.
func (r *Report) Add(v *model.Verdict) {
	r.Total++
	r.Verdicts = append(r.Verdicts, v)

	switch v.Validity {
	case model.Valid:
		r.Valid++
	case model.Unknown:
		r.Unknown++
	case model.Invalid:
		r.Invalid++
		r.Passed = false
		for _, d := range v.Defects {
			r.Defects = append(r.Defects, ItemDefect{
				Class:   v.Class,
				Input:   v.Input,
				Field:   d.Field,
				Message: d.Message,
			})
		}
	}
}

// Merge folds another report into this one.
func (r *Report) Merge(other *Report) {
	for _, v := range other.Verdicts {
		r.Add(v)
	}
}
