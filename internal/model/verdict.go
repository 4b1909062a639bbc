// Package model defines the shared result and error types used by all
// validators: the tri-state Verdict, the BZSt status code enumeration,
// and the error taxonomy.
package model

// Class identifies the kind of identifier or document under validation.
type Class string

const (
	ClassIBAN     Class = "iban"
	ClassBIC      Class = "bic"
	ClassVATID    Class = "vat-id"
	ClassEORI     Class = "eori"
	ClassTracking Class = "tracking"
	ClassInvoice  Class = "invoice"
)

// Validity is the tri-state outcome of a validation.
// Unknown means the format was accepted but no authority could confirm the
// identifier (e.g. non-DE EU VAT-IDs where only the member state registry is
// authoritative). Callers must not collapse Unknown into Invalid.
type Validity string

const (
	Valid   Validity = "valid"
	Invalid Validity = "invalid"
	Unknown Validity = "unknown"
)

// Status is the domain status code attached to a Verdict.
// Codes 200-217 mirror the BZSt confirmation enumeration; StatusFormatValid
// is a local code for format-only checks where no registry was consulted.
type Status int

const (
	StatusNone                Status = 0
	StatusFormatValid         Status = 100 // format accepted, registry not consulted
	StatusValid               Status = 200
	StatusInvalid             Status = 201
	StatusNotRegistered       Status = 202
	StatusCheckNotPossible    Status = 203
	StatusCheckNotPossibleNow Status = 204
	StatusValidAddressDiffers Status = 216
	StatusValidNoAddressCheck Status = 217
)

// String returns a short description of the status code.
func (s Status) String() string {
	switch s {
	case StatusFormatValid:
		return "format valid, not confirmed"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusNotRegistered:
		return "not registered"
	case StatusCheckNotPossible, StatusCheckNotPossibleNow:
		return "check not possible"
	case StatusValidAddressDiffers:
		return "valid, address mismatch"
	case StatusValidNoAddressCheck:
		return "valid, no address comparison"
	default:
		return "unknown status"
	}
}

// Defect describes one concrete problem found during validation.
// Defects are ordered: they appear in the sequence the checks ran.
type Defect struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Verdict is the result of validating one identifier or document.
type Verdict struct {
	Class      Class    `json:"class"`
	Input      string   `json:"input"`
	Normalized string   `json:"normalized,omitempty"`
	Validity   Validity `json:"validity"`
	Status     Status   `json:"status,omitempty"`
	Defects    []Defect `json:"defects,omitempty"`

	// IBAN-derived fields, populated when the country layout is known.
	// Absence does not invalidate the IBAN.
	BankCode      string `json:"bank_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`

	// EORI check digit result, reported separately from overall validity.
	PruefzifferOK *bool `json:"pruefziffer_ok,omitempty"`

	// Tracking number type matched by the dispatcher (leitcode, dhl, ups, ...).
	Kind string `json:"kind,omitempty"`

	// Document content hash (tamper evidence), hex-encoded.
	Hash string `json:"hash,omitempty"`
}

// NewVerdict creates a Verdict for the given class and raw input.
// Validity starts as Valid and flips to Invalid on the first defect.
func NewVerdict(class Class, input string) *Verdict {
	return &Verdict{
		Class:    class,
		Input:    input,
		Validity: Valid,
		Defects:  make([]Defect, 0),
	}
}

// AddDefect records a defect and marks the verdict invalid.
func (v *Verdict) AddDefect(field, message string) {
	v.Defects = append(v.Defects, Defect{Field: field, Message: message})
	v.Validity = Invalid
}

// MarkUnknown sets tri-state unknown validity. Defects recorded so far are
// kept; an Unknown verdict may still carry informational defects.
func (v *Verdict) MarkUnknown(status Status) {
	v.Validity = Unknown
	v.Status = status
}

// IsValid reports strict validity. Unknown is not valid and not invalid;
// use Validity directly when the distinction matters.
func (v *Verdict) IsValid() bool {
	return v.Validity == Valid
}
