package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/exitcode"
)

var cfg = config.Config{Rules: config.DefaultRules()}

var rootCmd = &cobra.Command{
	Use:   "billcheck",
	Short: "Medical bill and EOB error detector",
	Long:  "Matches bill lines to EOB lines, runs billing-error rules and benefits math, and estimates recoverable savings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()
		if cfg.DSN == "" {
			cfg.DSN = os.Getenv("BILLCHECK_DB_URL")
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("BILLCHECK_DB_URL"), "Postgres connection string (or set BILLCHECK_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file overriding rule thresholds and reference tables")
}

// loadRuleConfig merges --config over the built-in rule defaults.
func loadRuleConfig(log zerolog.Logger) {
	if cfg.ConfigPath == "" {
		return
	}
	if err := cfg.LoadFromFile(cfg.ConfigPath); err != nil {
		log.Error().Err(err).Str("path", cfg.ConfigPath).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	log.Debug().Str("path", cfg.ConfigPath).Msg("rule config loaded")
}
