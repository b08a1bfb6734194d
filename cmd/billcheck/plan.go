package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/caseio"
	"github.com/gyeh/billcheck/internal/exitcode"
	"github.com/gyeh/billcheck/internal/logging"
	"github.com/gyeh/billcheck/internal/match"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
	"github.com/gyeh/billcheck/internal/rules"
	"github.com/gyeh/billcheck/internal/summary"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation and alignment stats (no rules, no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.CasePath, "case", "", "Path to case JSON file (required)")
	_ = planCmd.MarkFlagRequired("case")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	loadRuleConfig(log)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sha, err := normalize.FileHash(cfg.CasePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash case file")
		os.Exit(exitcode.ValidationError)
	}

	c, err := caseio.LoadCase(cfg.CasePath)
	if err != nil {
		exitInvalid(log, err)
	}
	if err := model.Validate(c); err != nil {
		exitInvalid(log, err)
	}

	matches := match.Align(c)
	byType := make(map[model.MatchType]int)
	for _, m := range matches {
		byType[m.MatchType]++
	}
	declared := model.NetworkUnknown
	if c.Benefits != nil && c.Benefits.Network != "" {
		declared = c.Benefits.Network
	}
	totals := summary.Totals(c.LineItems)

	fmt.Println("=== billcheck plan ===")
	fmt.Printf("Case:       %s\n", c.CaseID)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Artifacts:  %d\n", len(c.Artifacts))
	fmt.Printf("Bill lines: %d\n", len(c.LinesOf(model.DocBill)))
	fmt.Printf("EOB lines:  %d\n", len(c.LinesOf(model.DocEOB)))
	fmt.Printf("Charges:    %s\n", normalize.FormatCents(totals.ChargeCents))
	fmt.Println()
	fmt.Println("Alignment:")
	for _, mt := range []model.MatchType{model.MatchExact, model.MatchFuzzy, model.MatchManual, model.MatchUnmatched} {
		fmt.Printf("  %-10s %d\n", mt, byType[mt])
	}
	if ids := match.Unmatched(matches); len(ids) > 0 && len(c.LinesOf(model.DocEOB)) > 0 {
		fmt.Printf("  not on EOB: %s\n", strings.Join(ids, ", "))
	}
	fmt.Printf("\nNetwork:    declared %s, inferred %s\n", declared, match.InferNetwork(c.LineItems))
	fmt.Printf("Rules:      %d in catalog, benefits math %s\n", len(rules.Catalog()), benefitsState(c))
	fmt.Println("Input validation: OK")
	return nil
}

func benefitsState(c *model.Case) string {
	if c.Benefits == nil {
		return "skipped (no benefits context)"
	}
	return "enabled"
}
