package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	bzstBaseURL  string
	ownVATID     string
	bzstTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "taxcheck",
	Short: "Validate German tax identifiers and e-invoices",
	Long: `Taxcheck is a CLI tool for validating structured identifiers and
electronic invoices used in German commerce and tax compliance.

Supports:
  - Identifiers: IBAN, BIC, VAT-ID (all EU countries), EORI, DHL Leitcode
    and carrier tracking numbers
  - Invoices: XRechnung (CII and UBL), ZUGFeRD / Factur-X PDF, GoBD
    mandated-field checks
  - Numbering: gap-free sequential invoice numbers with audit

Examples:
  # Validate an IBAN (class is auto-detected)
  taxcheck validate DE89370400440532013000

  # Validate a VAT-ID against the BZSt registry
  taxcheck validate --class vat-id DE123456789 --bzst-base-url https://... --own-vat-id DE999999999

  # Validate an XRechnung or ZUGFeRD file
  taxcheck invoice rechnung.xml rechnung.pdf

  # Issue the next invoice number
  taxcheck number generate --prefix RE`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&bzstBaseURL, "bzst-base-url", "", "BZSt confirmation API base URL (env: TAXCHECK_BZST_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&ownVATID, "own-vat-id", "", "Own German VAT-ID for registry checks (env: TAXCHECK_BZST_OWN_VAT_ID)")
	rootCmd.PersistentFlags().DurationVar(&bzstTimeout, "bzst-timeout", 10*time.Second, "Timeout for BZSt registry calls")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if bzstBaseURL == "" {
		bzstBaseURL = os.Getenv("TAXCHECK_BZST_BASE_URL")
	}
	if ownVATID == "" {
		ownVATID = os.Getenv("TAXCHECK_BZST_OWN_VAT_ID")
	}
}
