package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/taxcheck/internal/server"
	"github.com/rezonia/taxcheck/pkg/config"
	"github.com/rezonia/taxcheck/pkg/logger"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the validators and the
numbering ledger.

The API provides endpoints for:
  - POST /api/v1/validate           - Auto-detect and validate an identifier
  - POST /api/v1/validate/batch     - Validate many identifiers
  - POST /api/v1/validate/:class    - Validate as iban, bic, vat-id, eori or tracking
  - POST /api/v1/invoice/validate   - Validate XRechnung XML or ZUGFeRD PDF
  - POST /api/v1/numbers/generate   - Issue the next invoice number
  - POST /api/v1/numbers/register   - Record an externally issued number
  - GET  /api/v1/numbers/audit      - Report numbering gaps and duplicates
  - GET  /health                    - Health check

Examples:
  taxcheck serve
  taxcheck serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from TAXCHECK_HTTP_HOST/PORT)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	led, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	address := serverAddr
	if address == "" {
		address = cfg.HTTP.Addr()
	}
	baseURL := bzstBaseURL
	if baseURL == "" {
		baseURL = cfg.BZSt.BaseURL
	}
	vatID := ownVATID
	if vatID == "" {
		vatID = cfg.BZSt.OwnVATID
	}

	srv := server.NewServer(&server.Config{
		Address:      address,
		BZStBaseURL:  baseURL,
		OwnVATID:     vatID,
		BZStTimeout:  cfg.BZSt.Timeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, led, log.Zerolog())

	log.Info().Str("address", address).Msg("starting API server")
	return srv.Run()
}
