package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/rezonia/taxcheck/internal/ledger"
	"github.com/rezonia/taxcheck/pkg/config"
)

var (
	numberPrefix   string
	numberYear     int
	numberSequence int
	numberCount    int
)

var numberCmd = &cobra.Command{
	Use:   "number",
	Short: "Manage sequential invoice numbers",
	Long: `Issue and audit gap-free sequential invoice numbers.

Numbers follow the schema PREFIX-YEAR-SEQUENCE (e.g. RE-2026-00001) and
are persisted before they are returned, so a crash never issues the same
number twice. The backing store is configured via TAXCHECK_LEDGER_BACKEND
(file, memory or postgres).

Examples:
  taxcheck number generate --prefix RE
  taxcheck number register --prefix RE --year 2026 --sequence 17
  taxcheck number audit --prefix RE`,
}

var numberGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Issue the next number for a prefix",
	RunE:  runNumberGenerate,
}

var numberRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Record an externally issued number",
	RunE:  runNumberRegister,
}

var numberAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report gaps and duplicates in the issued log",
	RunE:  runNumberAudit,
}

func init() {
	rootCmd.AddCommand(numberCmd)
	numberCmd.AddCommand(numberGenerateCmd, numberRegisterCmd, numberAuditCmd)

	numberCmd.PersistentFlags().StringVar(&numberPrefix, "prefix", "", "Number prefix (required)")

	numberGenerateCmd.Flags().IntVar(&numberCount, "count", 1, "How many numbers to issue")
	numberRegisterCmd.Flags().IntVar(&numberYear, "year", time.Now().UTC().Year(), "Numbering year")
	numberRegisterCmd.Flags().IntVar(&numberSequence, "sequence", 0, "Sequence number (required)")
}

// openLedger builds the ledger over the configured store.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	lcfg := ledger.Config{
		Start:               cfg.Ledger.Start,
		Width:               cfg.Ledger.Width,
		ContinueAcrossYears: cfg.Ledger.ContinueAcrossYears,
	}

	switch cfg.Ledger.Backend {
	case "memory":
		return ledger.New(ledger.NewMemoryStore(), lcfg), func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Ledger.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to ledger database: %w", err)
		}
		store := ledger.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return ledger.New(store, lcfg), pool.Close, nil
	default:
		store, err := ledger.NewFileStore(cfg.Ledger.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return ledger.New(store, lcfg), func() {}, nil
	}
}

func runNumberGenerate(cmd *cobra.Command, args []string) error {
	if numberPrefix == "" {
		return fmt.Errorf("--prefix is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	led, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	entries := make([]*ledger.Entry, 0, numberCount)
	for i := 0; i < numberCount; i++ {
		entry, err := led.Generate(ctx, numberPrefix)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	for _, e := range entries {
		fmt.Println(e.Formatted)
	}
	return nil
}

func runNumberRegister(cmd *cobra.Command, args []string) error {
	if numberPrefix == "" || numberSequence <= 0 {
		return fmt.Errorf("--prefix and a positive --sequence are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	led, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	entry, err := led.Register(ctx, numberPrefix, numberYear, numberSequence, time.Time{})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entry)
	}
	fmt.Printf("registered %s\n", entry.Formatted)
	return nil
}

func runNumberAudit(cmd *cobra.Command, args []string) error {
	if numberPrefix == "" {
		return fmt.Errorf("--prefix is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	led, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	audit, err := led.Audit(ctx, numberPrefix)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(audit)
	}

	if audit.Clean() {
		fmt.Printf("✓ %s: %d entries, no gaps, no duplicates\n", audit.Prefix, audit.Entries)
		return nil
	}
	fmt.Printf("✗ %s: %d entries\n", audit.Prefix, audit.Entries)
	for _, gap := range audit.Gaps {
		fmt.Printf("  gap: %d-%d\n", gap.Year, gap.Sequence)
	}
	for _, dup := range audit.Duplicates {
		fmt.Printf("  duplicate: %d-%d\n", dup.Year, dup.Sequence)
	}
	return fmt.Errorf("numbering continuity violated")
}
