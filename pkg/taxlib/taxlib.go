// Package taxlib provides the public API for validating German tax and
// commerce identifiers (IBAN, BIC, VAT-ID, EORI, tracking numbers) and
// GoBD / EN 16931 e-invoice documents.
//
// Example usage:
//
//	checker := taxlib.NewChecker()
//	verdict, err := checker.Validate(ctx, "DE89370400440532013000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(verdict.Validity, verdict.BankCode)
package taxlib

import (
	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/ledger"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/report"
)

// Re-export core types for the public API.
type (
	Verdict  = model.Verdict
	Defect   = model.Defect
	Class    = model.Class
	Validity = model.Validity
	Status   = model.Status

	Document = document.Document
	Line     = document.Line
	Profile  = document.Profile

	Entry       = ledger.Entry
	AuditReport = ledger.AuditReport

	Report = report.Report
)

// Re-export identifier classes.
const (
	ClassIBAN     = model.ClassIBAN
	ClassBIC      = model.ClassBIC
	ClassVATID    = model.ClassVATID
	ClassEORI     = model.ClassEORI
	ClassTracking = model.ClassTracking
	ClassInvoice  = model.ClassInvoice
)

// Re-export validity states.
const (
	Valid   = model.Valid
	Invalid = model.Invalid
	Unknown = model.Unknown
)

// Re-export document profiles.
const (
	ProfileGoBD       = document.ProfileGoBD
	ProfileEN16931CII = document.ProfileEN16931CII
	ProfileEN16931UBL = document.ProfileEN16931UBL
)

// Re-export error types.
type (
	FormatError             = model.FormatError
	ChecksumError           = model.ChecksumError
	NotFoundError           = model.NotFoundError
	ServiceUnavailableError = model.ServiceUnavailableError
	PersistenceError        = model.PersistenceError
	ParseError              = model.ParseError
)
