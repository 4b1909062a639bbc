package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Hash computes the SHA-256 content hash of a document over a canonical
// serialization: fields sorted by name, amounts rendered with two fixed
// decimals, dates as ISO calendar dates. The digest is a pure function of
// the field values; any mutation changes it.
func Hash(doc *Document) string {
	fields := canonicalFields(doc)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s=%s\n", name, fields[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalFields(doc *Document) map[string]string {
	fields := map[string]string{
		FieldSellerName:     doc.SellerName,
		FieldSellerAddress:  doc.SellerAddress,
		FieldSellerVATID:    doc.SellerVATID,
		FieldBuyerName:      doc.BuyerName,
		FieldBuyerAddress:   doc.BuyerAddress,
		FieldBuyerReference: doc.BuyerReference,
		FieldNumber:         doc.Number,
		FieldIssueDate:      canonicalDate(doc.IssueDate),
		FieldSupplyDate:     canonicalDate(doc.SupplyDate),
		FieldCurrency:       doc.Currency,
		FieldTaxRate:        canonicalAmount(doc.TaxRate),
		FieldTaxAmount:      canonicalAmount(doc.TaxAmount),
		FieldTotalNet:       canonicalAmount(doc.TotalNet),
		"total_vat":         canonicalAmount(doc.TotalVAT),
		FieldTotalGross:     canonicalAmount(doc.TotalGross),
	}

	lines := make([]string, len(doc.Lines))
	for i, line := range doc.Lines {
		lines[i] = fmt.Sprintf("%d|%s|%s|%s",
			i+1, line.Description,
			canonicalAmount(line.Quantity),
			canonicalAmount(line.Net))
	}
	fields[FieldLines] = strings.Join(lines, ";")

	return fields
}

func canonicalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func canonicalAmount(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}
