package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/report"
	"github.com/rezonia/taxcheck/pkg/taxlib"
)

var (
	identifierClass string
	companyName     string
	companyCity     string
	companyZip      string
)

var validateCmd = &cobra.Command{
	Use:   "validate [values...]",
	Short: "Validate identifiers",
	Long: `Validate one or more identifiers: IBAN, BIC, VAT-ID, EORI or
tracking numbers (Leitcode, DHL, UPS, UPU).

By default the identifier class is auto-detected. German VAT-IDs are
checked against the BZSt registry when --bzst-base-url and --own-vat-id
are set; other EU VAT-IDs are always format-only and reported as
"unknown", never as confirmed.

Examples:
  taxcheck validate DE89370400440532013000
  taxcheck validate --class bic MARKDEF1100
  taxcheck validate --class vat-id DE123456789 \
      --company "Muster GmbH" --city Berlin --zip 10115`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&identifierClass, "class", "auto", "Identifier class (auto, iban, bic, vat-id, eori, tracking)")
	validateCmd.Flags().StringVar(&companyName, "company", "", "Company name for a qualified VAT-ID check")
	validateCmd.Flags().StringVar(&companyCity, "city", "", "City for a qualified VAT-ID check")
	validateCmd.Flags().StringVar(&companyZip, "zip", "", "Postal code for a qualified VAT-ID check")
}

func newChecker() *taxlib.Checker {
	return taxlib.NewCheckerWithOptions(taxlib.Options{
		BZStBaseURL: bzstBaseURL,
		OwnVATID:    ownVATID,
		BZStTimeout: bzstTimeout,
	})
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checker := newChecker()
	rep := report.New()

	for _, value := range args {
		verdict, err := validateValue(ctx, checker, value)
		if err != nil {
			var unavailable *model.ServiceUnavailableError
			if errors.As(err, &unavailable) {
				// Registry down is not invalidity; surface it and keep
				// the tri-state verdict.
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			} else if verdict == nil {
				return err
			}
		}
		rep.Add(verdict)
	}

	if err := renderReport(rep); err != nil {
		return err
	}
	if !rep.Passed {
		return fmt.Errorf("validation failed for %d of %d values", rep.Invalid, rep.Total)
	}
	return nil
}

func validateValue(ctx context.Context, checker *taxlib.Checker, value string) (*taxlib.Verdict, error) {
	if identifierClass == string(taxlib.ClassVATID) && companyName != "" {
		return checker.ValidateVATIDQualified(ctx, value, companyName, companyCity, companyZip)
	}
	if identifierClass == "auto" || identifierClass == "" {
		return checker.Validate(ctx, value)
	}
	return checker.ValidateClass(ctx, taxlib.Class(identifierClass), value)
}

func renderReport(rep *report.Report) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rep)
	}

	for _, v := range rep.Verdicts {
		switch v.Validity {
		case model.Valid:
			fmt.Printf("✓ %s [%s]: VALID", v.Input, v.Class)
			if v.BankCode != "" {
				fmt.Printf(" (bank %s, account %s)", v.BankCode, v.AccountNumber)
			}
			if v.Kind != "" {
				fmt.Printf(" (%s)", v.Kind)
			}
			fmt.Println()
		case model.Unknown:
			fmt.Printf("? %s [%s]: %s\n", v.Input, v.Class, v.Status)
		case model.Invalid:
			fmt.Printf("✗ %s [%s]: INVALID\n", v.Input, v.Class)
			for _, d := range v.Defects {
				fmt.Printf("  - %s: %s\n", d.Field, d.Message)
			}
		}
	}
	return nil
}
