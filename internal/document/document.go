// Package document validates invoice documents against the GoBD mandated
// field set and the EN 16931 semantic model, and computes a deterministic
// content hash for tamper evidence.
package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/taxcheck/internal/model"
)

// Profile selects the rule set a document is validated against.
type Profile string

const (
	// ProfileGoBD checks the mandated invoice fields of §14 UStG.
	ProfileGoBD Profile = "gobd"

	// ProfileEN16931CII checks the EN 16931 field set for the UN/CEFACT
	// Cross Industry Invoice syntax (XRechnung CII, ZUGFeRD).
	ProfileEN16931CII Profile = "en16931-cii"

	// ProfileEN16931UBL checks the EN 16931 field set for the OASIS UBL
	// syntax (XRechnung UBL).
	ProfileEN16931UBL Profile = "en16931-ubl"
)

// Mandated field names as they appear in verdict defects.
const (
	FieldSellerName     = "seller_name"
	FieldSellerAddress  = "seller_address"
	FieldSellerVATID    = "seller_vat_id"
	FieldBuyerName      = "buyer_name"
	FieldBuyerAddress   = "buyer_address"
	FieldNumber         = "number"
	FieldIssueDate      = "issue_date"
	FieldSupplyDate     = "supply_date"
	FieldLines          = "lines"
	FieldTaxRate        = "tax_rate"
	FieldTaxAmount      = "tax_amount"
	FieldCurrency       = "currency"
	FieldTotalNet       = "total_net"
	FieldTotalVAT       = "total_vat"
	FieldTotalGross     = "total_gross"
	FieldBuyerReference = "buyer_reference"
)

// gobdFields are the mandated invoice fields under §14 UStG, in checking
// order.
var gobdFields = []string{
	FieldSellerName,
	FieldSellerAddress,
	FieldSellerVATID,
	FieldBuyerName,
	FieldBuyerAddress,
	FieldNumber,
	FieldIssueDate,
	FieldSupplyDate,
	FieldLines,
	FieldTaxRate,
	FieldTaxAmount,
}

// en16931Fields is the EN 16931 superset checked for the CII and UBL
// syntaxes.
var en16931Fields = append(append([]string{}, gobdFields...),
	FieldCurrency,
	FieldTotalNet,
	FieldTotalVAT,
	FieldTotalGross,
)

// leitwegPattern matches a Leitweg-ID routing identifier.
var leitwegPattern = regexp.MustCompile(`^[0-9-]{6,}$`)

// roundingTolerance is the accepted difference in total cross-checks.
var roundingTolerance = decimal.NewFromFloat(0.01)

// Line is one invoice line item.
type Line struct {
	Description string              `json:"description"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Net         decimal.NullDecimal `json:"net"`
}

// Document is an invoice under validation. All fields are explicitly
// optional; the profile decides which ones are mandated. Numeric fields use
// NullDecimal so an absent amount is distinguishable from zero.
type Document struct {
	SellerName    string `json:"seller_name"`
	SellerAddress string `json:"seller_address"`
	SellerVATID   string `json:"seller_vat_id"`

	BuyerName    string `json:"buyer_name"`
	BuyerAddress string `json:"buyer_address"`

	// BuyerReference carries the Leitweg-ID for public-sector buyers.
	BuyerReference string `json:"buyer_reference,omitempty"`
	PublicSector   bool   `json:"public_sector,omitempty"`

	Number     string    `json:"number"`
	IssueDate  time.Time `json:"issue_date"`
	SupplyDate time.Time `json:"supply_date"`
	Currency   string    `json:"currency,omitempty"`

	Lines []Line `json:"lines"`

	TaxRate    decimal.NullDecimal `json:"tax_rate"`
	TaxAmount  decimal.NullDecimal `json:"tax_amount"`
	TotalNet   decimal.NullDecimal `json:"total_net"`
	TotalVAT   decimal.NullDecimal `json:"total_vat"`
	TotalGross decimal.NullDecimal `json:"total_gross"`
}

// Validate checks the document against the profile's mandated field list
// and cross-field numeric rules. Every violation is collected as a defect;
// the verdict is valid only when the defect list is empty. An unsupported
// profile is a programmer error and returns a plain error, not a verdict.
func Validate(doc *Document, profile Profile) (*model.Verdict, error) {
	var fields []string
	switch profile {
	case ProfileGoBD:
		fields = gobdFields
	case ProfileEN16931CII, ProfileEN16931UBL:
		fields = en16931Fields
	default:
		return nil, fmt.Errorf("document: unsupported profile %q", profile)
	}

	verdict := model.NewVerdict(model.ClassInvoice, doc.Number)
	verdict.Normalized = doc.Number

	for _, field := range fields {
		checkPresence(doc, field, verdict)
	}

	checkAmounts(doc, verdict)
	checkTotals(doc, verdict)
	checkLeitweg(doc, profile, verdict)

	if verdict.IsValid() {
		verdict.Status = model.StatusFormatValid
	}
	verdict.Hash = Hash(doc)
	return verdict, nil
}

func checkPresence(doc *Document, field string, verdict *model.Verdict) {
	missing := func(msg string) { verdict.AddDefect(field, msg) }

	switch field {
	case FieldSellerName:
		if doc.SellerName == "" {
			missing("seller name is required")
		}
	case FieldSellerAddress:
		if doc.SellerAddress == "" {
			missing("seller address is required")
		}
	case FieldSellerVATID:
		if doc.SellerVATID == "" {
			missing("seller VAT-ID or tax number is required")
		}
	case FieldBuyerName:
		if doc.BuyerName == "" {
			missing("buyer name is required")
		}
	case FieldBuyerAddress:
		if doc.BuyerAddress == "" {
			missing("buyer address is required")
		}
	case FieldNumber:
		if doc.Number == "" {
			missing("invoice number is required")
		}
	case FieldIssueDate:
		if doc.IssueDate.IsZero() {
			missing("issue date is required")
		}
	case FieldSupplyDate:
		if doc.SupplyDate.IsZero() {
			missing("supply or service date is required")
		}
	case FieldLines:
		if len(doc.Lines) == 0 {
			missing("at least one line item is required")
		}
		for i, line := range doc.Lines {
			if line.Description == "" {
				verdict.AddDefect(field, fmt.Sprintf("line %d: description is required", i+1))
			}
			if !line.Quantity.Valid {
				verdict.AddDefect(field, fmt.Sprintf("line %d: quantity is required", i+1))
			}
		}
	case FieldTaxRate:
		if !doc.TaxRate.Valid {
			missing("tax rate is required")
		}
	case FieldTaxAmount:
		if !doc.TaxAmount.Valid {
			missing("tax amount is required")
		}
	case FieldCurrency:
		if doc.Currency == "" {
			missing("currency code is required")
		}
	case FieldTotalNet:
		if !doc.TotalNet.Valid {
			missing("net total is required")
		}
	case FieldTotalVAT:
		if !doc.TotalVAT.Valid {
			missing("VAT total is required")
		}
	case FieldTotalGross:
		if !doc.TotalGross.Valid {
			missing("gross total is required")
		}
	}
}

// checkAmounts rejects negative values on every numeric field that is
// present, regardless of profile.
func checkAmounts(doc *Document, verdict *model.Verdict) {
	nonNegative := func(field string, v decimal.NullDecimal) {
		if v.Valid && v.Decimal.IsNegative() {
			verdict.AddDefect(field, "must not be negative")
		}
	}
	nonNegative(FieldTaxRate, doc.TaxRate)
	nonNegative(FieldTaxAmount, doc.TaxAmount)
	nonNegative(FieldTotalNet, doc.TotalNet)
	nonNegative(FieldTotalVAT, doc.TotalVAT)
	nonNegative(FieldTotalGross, doc.TotalGross)
	for i, line := range doc.Lines {
		if line.Net.Valid && line.Net.Decimal.IsNegative() {
			verdict.AddDefect(FieldLines, fmt.Sprintf("line %d: net amount must not be negative", i+1))
		}
	}
}

// checkTotals verifies gross == net + vat within the rounding tolerance.
// It runs whenever net and gross are present, independent of which profile
// mandated them; when the VAT total is absent the tax amount stands in, so
// a missing VAT total cannot hide an inconsistent gross.
func checkTotals(doc *Document, verdict *model.Verdict) {
	if !doc.TotalNet.Valid || !doc.TotalGross.Valid {
		return
	}
	vat := doc.TotalVAT
	if !vat.Valid {
		vat = doc.TaxAmount
	}
	if !vat.Valid {
		return
	}
	diff := doc.TotalGross.Decimal.Sub(doc.TotalNet.Decimal.Add(vat.Decimal)).Abs()
	if diff.GreaterThan(roundingTolerance) {
		verdict.AddDefect(FieldTotalGross, fmt.Sprintf(
			"gross total %s does not equal net %s + VAT %s (difference %s)",
			doc.TotalGross.Decimal.StringFixed(2),
			doc.TotalNet.Decimal.StringFixed(2),
			vat.Decimal.StringFixed(2),
			diff.StringFixed(2),
		))
	}
}

// checkLeitweg enforces the Leitweg-ID on EN 16931 documents addressed to a
// public-sector buyer, and checks the pattern whenever a reference is set.
func checkLeitweg(doc *Document, profile Profile, verdict *model.Verdict) {
	publicSector := doc.PublicSector && profile != ProfileGoBD
	if doc.BuyerReference == "" {
		if publicSector {
			verdict.AddDefect(FieldBuyerReference, "Leitweg-ID is required for public-sector buyers")
		}
		return
	}
	if !leitwegPattern.MatchString(doc.BuyerReference) {
		verdict.AddDefect(FieldBuyerReference, "Leitweg-ID must match [0-9-]{6,}")
	}
}
