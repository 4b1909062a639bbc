// Package config loads the application configuration from environment
// variables and an optional .env file via Viper. Environment variables win.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config groups the application configuration.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Ledger LedgerConfig
	BZSt   BZStConfig
}

// AppConfig is the general application configuration.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig configures the numbering ledger and its backing store.
// Backend selects memory (ephemeral), file (single process) or postgres
// (multi process).
type LedgerConfig struct {
	Backend             string
	FilePath            string
	DatabaseURL         string
	Start               int
	Width               int
	ContinueAcrossYears bool
}

// BZStConfig configures the VAT-ID confirmation client. OwnVATID is the
// caller's German VAT-ID, required by the confirmation interface for both
// simple and qualified checks. An empty BaseURL disables registry checks;
// German VAT-IDs then get a format-only verdict.
type BZStConfig struct {
	BaseURL  string
	OwnVATID string
	Timeout  time.Duration
}

// Load reads the configuration from environment variables, with an
// optional .env file as fallback. Expected names: TAXCHECK_APP_ENV,
// TAXCHECK_HTTP_PORT, TAXCHECK_LEDGER_BACKEND, TAXCHECK_BZST_BASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine

	v.SetEnvPrefix("TAXCHECK")
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Ledger: LedgerConfig{
			Backend:             v.GetString("LEDGER_BACKEND"),
			FilePath:            v.GetString("LEDGER_FILE"),
			DatabaseURL:         v.GetString("LEDGER_DATABASE_URL"),
			Start:               v.GetInt("LEDGER_START"),
			Width:               v.GetInt("LEDGER_WIDTH"),
			ContinueAcrossYears: v.GetBool("LEDGER_CONTINUE_ACROSS_YEARS"),
		},
		BZSt: BZStConfig{
			BaseURL:  v.GetString("BZST_BASE_URL"),
			OwnVATID: v.GetString("BZST_OWN_VAT_ID"),
			Timeout:  v.GetDuration("BZST_TIMEOUT"),
		},
	}

	if cfg.Ledger.Backend != "memory" && cfg.Ledger.Backend != "file" && cfg.Ledger.Backend != "postgres" {
		return nil, fmt.Errorf("config: unknown ledger backend %q", cfg.Ledger.Backend)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "taxcheck")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("LEDGER_BACKEND", "file")
	v.SetDefault("LEDGER_FILE", "taxcheck-ledger.json")
	v.SetDefault("LEDGER_START", 1)
	v.SetDefault("LEDGER_WIDTH", 5)
	v.SetDefault("BZST_TIMEOUT", 10*time.Second)
}
