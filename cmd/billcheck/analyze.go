package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/caseio"
	"github.com/gyeh/billcheck/internal/db"
	"github.com/gyeh/billcheck/internal/exitcode"
	"github.com/gyeh/billcheck/internal/idgen"
	"github.com/gyeh/billcheck/internal/logging"
	"github.com/gyeh/billcheck/internal/metrics"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
	"github.com/gyeh/billcheck/internal/persist"
	"github.com/gyeh/billcheck/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one case and write the result JSON",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&cfg.CasePath, "case", "", "Path to case JSON file (required)")
	f.StringVar(&cfg.OutputPath, "out", "-", "Where to write the result JSON (- for stdout)")
	f.IntVar(&cfg.Workers, "workers", 4, "Rules evaluated concurrently (1 runs them inline)")
	f.BoolVar(&cfg.SequentialIDs, "sequential-ids", false, "Use det-0001 style detection ids instead of UUIDs")
	f.BoolVar(&cfg.Save, "save", false, "Persist the result to Postgres")
	f.BoolVar(&cfg.Force, "force", false, "Re-save even if this case fingerprint was already saved")
	f.StringVar(&cfg.MetricsPath, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
	_ = analyzeCmd.MarkFlagRequired("case")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()
	loadRuleConfig(log)

	validate := cfg.Validate
	if cfg.Save {
		validate = cfg.ValidateWithDSN
	}
	if err := validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	c, err := caseio.LoadCase(cfg.CasePath)
	if err != nil {
		exitInvalid(log, err)
	}
	fingerprint, err := normalize.CaseFingerprint(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to fingerprint case")
		os.Exit(exitcode.AnalysisError)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	var ids idgen.Generator = idgen.UUID{}
	if cfg.SequentialIDs {
		ids = idgen.NewSequence("det")
	}

	res, err := pipeline.New(cfg.Rules, cfg.Workers, ids, log, m).Run(c)
	if err != nil {
		exitInvalid(log, err)
	}

	if err := caseio.WriteResultFile(cfg.OutputPath, res); err != nil {
		log.Error().Err(err).Msg("failed to write result")
		os.Exit(exitcode.AnalysisError)
	}

	if cfg.Save {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		summary, err := persist.Save(ctx, pool, log, res, fingerprint, cfg.Force)
		pool.Close()
		if err != nil {
			var pe *persist.PhaseError
			if errors.As(err, &pe) {
				log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("save failed")
			} else {
				log.Error().Err(err).Msg("save failed")
			}
			os.Exit(exitcode.StoreError)
		}
		if summary.AlreadySaved {
			fmt.Fprintf(os.Stderr, "Case %s already saved as run %s (use --force to replace)\n", res.CaseID, summary.RunID)
		} else {
			fmt.Fprintf(os.Stderr, "Saved run %s: %d detections (%.1fs)\n",
				summary.RunID, summary.RowsServing, summary.DurationTotal.Seconds())
		}
	}

	if cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(cfg.MetricsPath, reg); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsPath).Msg("failed to write metrics file")
		}
	}

	fmt.Fprintf(os.Stderr, "Analysis complete: %d detections, %s estimated savings, confidence %.1f\n",
		len(res.Detections), normalize.FormatCents(res.Savings.TotalCents), res.Confidence.Overall)

	if len(res.Diagnostics) > 0 {
		for _, d := range res.Diagnostics {
			log.Warn().Str("source", d.Source).Msg(d.Message)
		}
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

// exitInvalid logs a rejected case and exits. Input contract violations are
// listed one per log line.
func exitInvalid(log zerolog.Logger, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		for _, v := range ve.Violations {
			log.Error().Msg(v)
		}
		log.Error().Int("violations", len(ve.Violations)).Msg("case rejected")
		os.Exit(exitcode.ValidationError)
	}
	log.Error().Err(err).Msg("failed to load case")
	os.Exit(exitcode.ValidationError)
}
