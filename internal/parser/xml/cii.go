package xml

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
)

// CIIAdapter parses the UN/CEFACT Cross Industry Invoice syntax
// (XRechnung CII, ZUGFeRD / Factur-X).
type CIIAdapter struct{}

// NewCIIAdapter creates a new CII adapter.
func NewCIIAdapter() *CIIAdapter {
	return &CIIAdapter{}
}

// Profile returns the validation profile for this syntax.
func (a *CIIAdapter) Profile() document.Profile {
	return document.ProfileEN16931CII
}

// CanParse checks if content is a Cross Industry Invoice.
func (a *CIIAdapter) CanParse(content []byte) bool {
	return bytes.Contains(content, []byte("CrossIndustryInvoice"))
}

// Parse extracts the mandated fields from CII XML. Element paths follow the
// EN 16931 CIUS bindings; selectors match by local name so any namespace
// prefix (rsm/ram/udt or custom) is accepted.
func (a *CIIAdapter) Parse(ctx context.Context, r io.Reader) (*document.Document, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, model.NewParseError("cii", "xml", "malformed XML", err)
	}
	root := tree.Root()
	if root == nil || root.Tag != "CrossIndustryInvoice" {
		return nil, model.NewParseError("cii", "root", "expected CrossIndustryInvoice root element", nil)
	}

	doc := &document.Document{
		Number:     elementText(root, "./ExchangedDocument/ID"),
		IssueDate:  ciiDate(elementText(root, "./ExchangedDocument/IssueDateTime/DateTimeString")),
		SupplyDate: ciiDate(elementText(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeDelivery/ActualDeliverySupplyChainEvent/OccurrenceDateTime/DateTimeString")),
		Currency:   elementText(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/InvoiceCurrencyCode"),

		BuyerReference: elementText(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeAgreement/BuyerReference"),

		TaxRate:    elementAmount(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/ApplicableTradeTax/RateApplicablePercent"),
		TaxAmount:  elementAmount(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/ApplicableTradeTax/CalculatedAmount"),
		TotalNet:   elementAmount(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/SpecifiedTradeSettlementHeaderMonetarySummation/TaxBasisTotalAmount"),
		TotalVAT:   elementAmount(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/SpecifiedTradeSettlementHeaderMonetarySummation/TaxTotalAmount"),
		TotalGross: elementAmount(root, "./SupplyChainTradeTransaction/ApplicableHeaderTradeSettlement/SpecifiedTradeSettlementHeaderMonetarySummation/GrandTotalAmount"),
	}

	if seller := root.FindElement("./SupplyChainTradeTransaction/ApplicableHeaderTradeAgreement/SellerTradeParty"); seller != nil {
		doc.SellerName = elementText(seller, "./Name")
		doc.SellerAddress = ciiAddress(seller.FindElement("./PostalTradeAddress"))
		doc.SellerVATID = elementText(seller, "./SpecifiedTaxRegistration/ID")
	}
	if buyer := root.FindElement("./SupplyChainTradeTransaction/ApplicableHeaderTradeAgreement/BuyerTradeParty"); buyer != nil {
		doc.BuyerName = elementText(buyer, "./Name")
		doc.BuyerAddress = ciiAddress(buyer.FindElement("./PostalTradeAddress"))
	}

	for _, item := range root.FindElements("./SupplyChainTradeTransaction/IncludedSupplyChainTradeLineItem") {
		doc.Lines = append(doc.Lines, document.Line{
			Description: elementText(item, "./SpecifiedTradeProduct/Name"),
			Quantity:    elementAmount(item, "./SpecifiedLineTradeDelivery/BilledQuantity"),
			Net:         elementAmount(item, "./SpecifiedLineTradeSettlement/SpecifiedTradeSettlementLineMonetarySummation/LineTotalAmount"),
		})
	}

	return doc, nil
}

// ciiDate parses the qualified date format 102 (CCYYMMDD).
func ciiDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ciiAddress(addr *etree.Element) string {
	if addr == nil {
		return ""
	}
	parts := []string{
		elementText(addr, "./LineOne"),
		elementText(addr, "./PostcodeCode") + " " + elementText(addr, "./CityName"),
	}
	return joinAddress(parts)
}

// elementText returns the trimmed text of the first element on the path, or
// an empty string when the path does not resolve.
func elementText(el *etree.Element, path string) string {
	found := el.FindElement(path)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

// elementAmount parses a decimal element; an absent or unparseable value
// stays null so presence checks can tell it apart from zero.
func elementAmount(el *etree.Element, path string) decimal.NullDecimal {
	text := elementText(el, path)
	if text == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func joinAddress(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
