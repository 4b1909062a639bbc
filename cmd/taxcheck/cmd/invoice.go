package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/pkg/taxlib"
)

var (
	invoiceProfile string
	invoiceWorkers int
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice [files...]",
	Short: "Validate e-invoice files",
	Long: `Validate one or more electronic invoice files.

Accepted inputs:
  - XRechnung CII XML (CrossIndustryInvoice)
  - XRechnung UBL XML (Invoice-2)
  - ZUGFeRD / Factur-X PDF (the embedded XML attachment is validated)

The syntax is auto-detected and the document is checked against the
matching EN 16931 profile. Use --profile gobd to check only the mandated
fields of §14 UStG.

Examples:
  taxcheck invoice rechnung.xml
  taxcheck invoice --profile gobd *.xml
  taxcheck invoice rechnung.pdf -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInvoice,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)

	invoiceCmd.Flags().StringVar(&invoiceProfile, "profile", "", "Override the validation profile (gobd)")
	invoiceCmd.Flags().IntVar(&invoiceWorkers, "workers", 4, "Number of files validated in parallel")
}

// fileResult is the outcome of validating one file.
type fileResult struct {
	File    string             `json:"file"`
	Profile document.Profile   `json:"profile,omitempty"`
	Verdict *model.Verdict     `json:"verdict,omitempty"`
	Error   string             `json:"error,omitempty"`
	Doc     *document.Document `json:"-"`
}

func runInvoice(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	checker := newChecker()

	results := make([]*fileResult, len(args))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(invoiceWorkers)
	for i, file := range args {
		i, file := i, file
		g.Go(func() error {
			res := validateInvoiceFile(gctx, checker, file)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return renderInvoiceResults(results)
}

func validateInvoiceFile(ctx context.Context, checker *taxlib.Checker, file string) *fileResult {
	res := &fileResult{File: file}

	f, err := os.Open(file)
	if err != nil {
		res.Error = fmt.Sprintf("failed to open file: %v", err)
		return res
	}
	defer f.Close()

	out, err := checker.ValidateInvoice(ctx, f)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Profile = out.Profile
	res.Doc = out.Document

	if invoiceProfile == string(document.ProfileGoBD) {
		res.Profile = document.ProfileGoBD
		verdict, err := checker.ValidateDocument(out.Document, document.ProfileGoBD)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Verdict = verdict
		return res
	}

	res.Verdict = out.Verdict
	return res
}

func renderInvoiceResults(results []*fileResult) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			switch {
			case r.Error != "":
				fmt.Printf("✗ %s: ERROR: %s\n", r.File, r.Error)
			case r.Verdict.IsValid():
				fmt.Printf("✓ %s [%s]: VALID (hash %s)\n", r.File, r.Profile, r.Verdict.Hash[:16])
			default:
				fmt.Printf("✗ %s [%s]: INVALID\n", r.File, r.Profile)
				for _, d := range r.Verdict.Defects {
					fmt.Printf("  - %s: %s\n", d.Field, d.Message)
				}
			}
		}
	}

	for _, r := range results {
		if r.Error != "" || !r.Verdict.IsValid() {
			return fmt.Errorf("validation failed for some files")
		}
	}
	return nil
}
