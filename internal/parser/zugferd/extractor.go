// Package zugferd extracts the embedded e-invoice XML from ZUGFeRD /
// Factur-X PDF/A-3 containers. The extracted XML is CII and validated by
// the xml parser package; the PDF itself is only a transport envelope.
package zugferd

import (
	"bytes"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rezonia/taxcheck/internal/model"
)

// attachmentNames are the standardized file names of the embedded invoice
// XML, in preference order. ZUGFeRD 2.x and Factur-X use factur-x.xml,
// ZUGFeRD 1.0 used ZUGFeRD-invoice.xml, XRechnung hybrids use
// xrechnung.xml.
var attachmentNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"xrechnung.xml",
}

// Extractor pulls the embedded invoice XML out of a PDF/A-3 container.
type Extractor struct {
	conf *pdfmodel.Configuration
}

// NewExtractor creates an extractor with relaxed validation, since many
// real-world ZUGFeRD PDFs are not strictly conformant.
func NewExtractor() *Extractor {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &Extractor{conf: conf}
}

// Extract returns the embedded invoice XML from the PDF. It prefers the
// standardized attachment names and falls back to the first .xml
// attachment. A PDF without an XML attachment is a ParseError.
func (e *Extractor) Extract(rs io.ReadSeeker) ([]byte, error) {
	attachments, err := api.ExtractAttachmentsRaw(rs, "", nil, e.conf)
	if err != nil {
		return nil, model.NewParseError("zugferd", "pdf", "failed to read PDF attachments", err)
	}
	if len(attachments) == 0 {
		return nil, model.NewParseError("zugferd", "attachments", "PDF carries no embedded files", nil)
	}

	if att := pickAttachment(attachments); att != nil {
		content, err := io.ReadAll(att)
		if err != nil {
			return nil, model.NewParseError("zugferd", att.FileName, "failed to read attachment", err)
		}
		return content, nil
	}
	return nil, model.NewParseError("zugferd", "attachments", "no invoice XML attachment found", nil)
}

// ExtractBytes is Extract over an in-memory PDF.
func (e *Extractor) ExtractBytes(pdf []byte) ([]byte, error) {
	return e.Extract(bytes.NewReader(pdf))
}

func pickAttachment(attachments []pdfmodel.Attachment) *pdfmodel.Attachment {
	for _, name := range attachmentNames {
		for i := range attachments {
			if strings.EqualFold(attachments[i].FileName, name) {
				return &attachments[i]
			}
		}
	}
	for i := range attachments {
		if strings.HasSuffix(strings.ToLower(attachments[i].FileName), ".xml") {
			return &attachments[i]
		}
	}
	return nil
}
