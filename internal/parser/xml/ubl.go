package xml

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
)

// UBLAdapter parses the OASIS UBL Invoice syntax (XRechnung UBL).
type UBLAdapter struct{}

// NewUBLAdapter creates a new UBL adapter.
func NewUBLAdapter() *UBLAdapter {
	return &UBLAdapter{}
}

// Profile returns the validation profile for this syntax.
func (a *UBLAdapter) Profile() document.Profile {
	return document.ProfileEN16931UBL
}

// CanParse checks if content is a UBL invoice.
func (a *UBLAdapter) CanParse(content []byte) bool {
	return bytes.Contains(content, []byte("urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"))
}

// Parse extracts the mandated fields from UBL XML. Paths are rooted at the
// Invoice element and match by local name; the cac/cbc prefixes of the
// document are irrelevant to the selectors.
func (a *UBLAdapter) Parse(ctx context.Context, r io.Reader) (*document.Document, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, model.NewParseError("ubl", "xml", "malformed XML", err)
	}
	root := tree.Root()
	if root == nil || root.Tag != "Invoice" {
		return nil, model.NewParseError("ubl", "root", "expected Invoice root element", nil)
	}

	doc := &document.Document{
		Number:         elementText(root, "./ID"),
		IssueDate:      ublDate(elementText(root, "./IssueDate")),
		SupplyDate:     ublDate(elementText(root, "./Delivery/ActualDeliveryDate")),
		Currency:       elementText(root, "./DocumentCurrencyCode"),
		BuyerReference: elementText(root, "./BuyerReference"),

		TaxRate:    elementAmount(root, "./TaxTotal/TaxSubtotal/TaxCategory/Percent"),
		TaxAmount:  elementAmount(root, "./TaxTotal/TaxAmount"),
		TotalNet:   elementAmount(root, "./LegalMonetaryTotal/TaxExclusiveAmount"),
		TotalVAT:   elementAmount(root, "./TaxTotal/TaxAmount"),
		TotalGross: elementAmount(root, "./LegalMonetaryTotal/TaxInclusiveAmount"),
	}

	if seller := root.FindElement("./AccountingSupplierParty/Party"); seller != nil {
		doc.SellerName = partyName(seller)
		doc.SellerAddress = ublAddress(seller.FindElement("./PostalAddress"))
		doc.SellerVATID = elementText(seller, "./PartyTaxScheme/CompanyID")
	}
	if buyer := root.FindElement("./AccountingCustomerParty/Party"); buyer != nil {
		doc.BuyerName = partyName(buyer)
		doc.BuyerAddress = ublAddress(buyer.FindElement("./PostalAddress"))
	}

	for _, line := range root.FindElements("./InvoiceLine") {
		doc.Lines = append(doc.Lines, document.Line{
			Description: elementText(line, "./Item/Name"),
			Quantity:    elementAmount(line, "./InvoicedQuantity"),
			Net:         elementAmount(line, "./LineExtensionAmount"),
		})
	}

	return doc, nil
}

// partyName prefers the legal entity registration name over the trading
// name, matching the EN 16931 seller name binding.
func partyName(party *etree.Element) string {
	if name := elementText(party, "./PartyLegalEntity/RegistrationName"); name != "" {
		return name
	}
	return elementText(party, "./PartyName/Name")
}

func ublAddress(addr *etree.Element) string {
	if addr == nil {
		return ""
	}
	parts := []string{
		elementText(addr, "./StreetName"),
		elementText(addr, "./PostalZone") + " " + elementText(addr, "./CityName"),
	}
	return joinAddress(parts)
}

// ublDate parses the ISO calendar date used by UBL.
func ublDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
