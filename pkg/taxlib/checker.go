package taxlib

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/rezonia/taxcheck/internal/bzst"
	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/parser/xml"
	"github.com/rezonia/taxcheck/internal/parser/zugferd"
	"github.com/rezonia/taxcheck/internal/report"
	"github.com/rezonia/taxcheck/internal/validator"
)

// Options configures a Checker.
type Options struct {
	// BZStBaseURL enables the German VAT-ID confirmation client. Empty
	// means German VAT-IDs get a format-only verdict.
	BZStBaseURL string

	// OwnVATID is the caller's VAT-ID, required by the confirmation
	// interface.
	OwnVATID string

	// BZStTimeout bounds the outbound confirmation call.
	BZStTimeout time.Duration
}

// Checker is the high-level entry point combining identifier validation
// and invoice document validation.
type Checker struct {
	validators *validator.Registry
	xmlParsers *xml.Registry
	extractor  *zugferd.Extractor
}

// NewChecker creates a checker with default options (offline, format-only
// VAT-ID checks).
func NewChecker() *Checker {
	return NewCheckerWithOptions(Options{})
}

// NewCheckerWithOptions creates a checker with the given options.
func NewCheckerWithOptions(opts Options) *Checker {
	var registryOpts []validator.RegistryOption
	if opts.BZStBaseURL != "" {
		clientOpts := []bzst.Option{}
		if opts.BZStTimeout > 0 {
			clientOpts = append(clientOpts, bzst.WithTimeout(opts.BZStTimeout))
		}
		checker := bzst.NewClient(opts.BZStBaseURL, clientOpts...)
		registryOpts = append(registryOpts, validator.WithVATIDOptions(
			validator.WithChecker(checker, opts.OwnVATID),
		))
	}

	return &Checker{
		validators: validator.NewRegistry(registryOpts...),
		xmlParsers: xml.NewRegistry(),
		extractor:  zugferd.NewExtractor(),
	}
}

// Validate auto-detects the identifier class and validates the value.
func (c *Checker) Validate(ctx context.Context, raw string) (*Verdict, error) {
	return c.validators.Validate(ctx, raw)
}

// ValidateClass validates the value as a specific identifier class.
func (c *Checker) ValidateClass(ctx context.Context, class Class, raw string) (*Verdict, error) {
	v := c.validators.Get(class)
	if v == nil {
		return nil, model.NewNotFoundError(class, "")
	}
	return v.Validate(ctx, raw)
}

// ValidateVATIDQualified runs a qualified VAT-ID check comparing the given
// company address against the registry record. Without a configured BZSt
// client the result is the same format-only verdict as Validate.
func (c *Checker) ValidateVATIDQualified(ctx context.Context, raw, companyName, city, postalCode string) (*Verdict, error) {
	v, ok := c.validators.Get(model.ClassVATID).(*validator.VATIDValidator)
	if !ok {
		return nil, model.NewNotFoundError(model.ClassVATID, "")
	}
	return v.ValidateQualified(ctx, raw, companyName, city, postalCode)
}

// ValidateBatch validates many values and aggregates them into a report.
func (c *Checker) ValidateBatch(ctx context.Context, values []string) *Report {
	rep := report.New()
	for _, value := range values {
		verdict, err := c.validators.Validate(ctx, value)
		if err != nil && verdict == nil {
			verdict = model.NewVerdict(model.Class("unknown"), value)
			verdict.AddDefect("input", err.Error())
		}
		rep.Add(verdict)
	}
	return rep
}

// InvoiceResult is the outcome of validating one invoice input.
type InvoiceResult struct {
	Profile  Profile
	Document *Document
	Verdict  *Verdict
}

// ValidateInvoice reads an invoice (CII XML, UBL XML or ZUGFeRD PDF),
// detects the syntax and validates the document against the matching
// EN 16931 profile.
func (c *Checker) ValidateInvoice(ctx context.Context, r io.Reader) (*InvoiceResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewParseError("auto", "input", "failed to read input", err)
	}

	if bytes.HasPrefix(content, []byte("%PDF")) {
		content, err = c.extractor.ExtractBytes(content)
		if err != nil {
			return nil, err
		}
	}

	doc, profile, err := c.xmlParsers.Parse(ctx, content)
	if err != nil {
		return nil, err
	}

	verdict, err := document.Validate(doc, profile)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Profile: profile, Document: doc, Verdict: verdict}, nil
}

// ValidateDocument validates an already assembled document against a
// profile.
func (c *Checker) ValidateDocument(doc *Document, profile Profile) (*Verdict, error) {
	return document.Validate(doc, profile)
}
