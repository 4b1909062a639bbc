// Package xml detects and parses the EN 16931 XML syntaxes (UN/CEFACT CII
// and OASIS UBL) into the invoice document schema.
package xml

import (
	"bytes"
	"context"
	"io"

	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
)

// Adapter parses one XML syntax into a Document.
type Adapter interface {
	// Parse parses XML content into a Document.
	Parse(ctx context.Context, r io.Reader) (*document.Document, error)

	// CanParse returns true if the adapter can handle this content.
	CanParse(content []byte) bool

	// Profile returns the validation profile for this syntax.
	Profile() document.Profile
}

// Registry holds all registered adapters.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with both EN 16931 syntax adapters.
// Order matters: more specific markers come before generic ones.
func NewRegistry() *Registry {
	return &Registry{
		adapters: []Adapter{
			NewCIIAdapter(), // <CrossIndustryInvoice> - unique root
			NewUBLAdapter(), // Invoice-2 namespace
		},
	}
}

// Detect identifies the syntax from XML content.
func (r *Registry) Detect(content []byte) (Adapter, error) {
	for _, a := range r.adapters {
		if a.CanParse(content) {
			return a, nil
		}
	}
	return nil, model.NewParseError("unknown", "root", "unrecognized XML syntax, expected CII or UBL", nil)
}

// Parse parses XML using the appropriate adapter.
func (r *Registry) Parse(ctx context.Context, content []byte) (*document.Document, document.Profile, error) {
	adapter, err := r.Detect(content)
	if err != nil {
		return nil, "", err
	}
	doc, err := adapter.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, "", err
	}
	return doc, adapter.Profile(), nil
}

// RegisterAdapter adds a custom adapter with priority over the built-ins.
func (r *Registry) RegisterAdapter(a Adapter) {
	r.adapters = append([]Adapter{a}, r.adapters...)
}
