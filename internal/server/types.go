package server

import (
	"time"

	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
)

// ValidateRequest is the request body for the validate endpoints. The
// address fields trigger a qualified VAT-ID check and are ignored for
// other identifier classes.
type ValidateRequest struct {
	Value       string `json:"value"`
	CompanyName string `json:"company_name,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// BatchValidateRequest is the request body for batch validation.
type BatchValidateRequest struct {
	Values []string `json:"values"`
}

// InvoiceResponse is the response for invoice document validation.
type InvoiceResponse struct {
	Profile  document.Profile   `json:"profile"`
	Document *document.Document `json:"document"`
	Verdict  *model.Verdict     `json:"verdict"`
}

// GenerateRequest is the request body for number generation.
type GenerateRequest struct {
	Prefix string `json:"prefix"`
}

// RegisterRequest is the request body for registering an externally issued
// number.
type RegisterRequest struct {
	Prefix   string    `json:"prefix"`
	Year     int       `json:"year"`
	Sequence int       `json:"sequence"`
	IssuedAt time.Time `json:"issued_at,omitempty"`
}

// ErrorResponse is the standard error response. Verdict is set when a
// validation produced a tri-state outcome despite the error.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Verdict *model.Verdict `json:"verdict,omitempty"`
}
