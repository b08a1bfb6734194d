package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a billcheck run.
type Config struct {
	DSN           string
	CasePath      string
	OutputPath    string
	ConfigPath    string
	LogFormat     string // "text" or "json"
	LogLevel      string
	Workers       int  // rule evaluation goroutines; <=1 runs rules inline
	SequentialIDs bool // deterministic "det-0001" ids instead of UUIDs
	Save          bool // persist the result to Postgres
	Force         bool // re-save even if the case fingerprint already exists
	MetricsPath   string
	Rules         RuleConfig
}

// RuleConfig carries every threshold and reference table the detection
// core reads. An empty table means the table was not supplied.
type RuleConfig struct {
	MathToleranceCents      int64
	GlobalPeriodDays        int
	NSAInNetworkRatio       float64
	TimelyFilingDays        int
	DrugUnitMax             int
	TherapyUnitsPerDayMax   int
	ObservationHoursMax     int
	SummaryDescriptionWidth int
	SummaryMaxLines         int
	BundlingEdits           map[string][]string // parent code -> component codes
	PreventiveCodes         []string
	MajorSurgeryCodes       []string
	FacilityFeeCodes        []string
}

// yamlConfig is the on-disk YAML structure. Pointers distinguish "absent"
// (keep the default) from "present but empty" (table not supplied).
type yamlConfig struct {
	MathToleranceCents      *int64               `yaml:"math_tolerance_cents"`
	GlobalPeriodDays        *int                 `yaml:"global_period_days"`
	NSAInNetworkRatio       *float64             `yaml:"nsa_in_network_ratio"`
	TimelyFilingDays        *int                 `yaml:"timely_filing_days"`
	DrugUnitMax             *int                 `yaml:"drug_unit_max"`
	TherapyUnitsPerDayMax   *int                 `yaml:"therapy_units_per_day_max"`
	ObservationHoursMax     *int                 `yaml:"observation_hours_max"`
	SummaryDescriptionWidth *int                 `yaml:"summary_description_width"`
	SummaryMaxLines         *int                 `yaml:"summary_max_lines"`
	BundlingEdits           *map[string][]string `yaml:"bundling_edits"`
	PreventiveCodes         *[]string            `yaml:"preventive_codes"`
	MajorSurgeryCodes       *[]string            `yaml:"major_surgery_codes"`
	FacilityFeeCodes        *[]string            `yaml:"facility_fee_codes"`
}

// LoadFromFile reads a YAML config file and merges its values over the
// current rule configuration (call after Rules has defaults).
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	r := &c.Rules
	setIf(&r.MathToleranceCents, yc.MathToleranceCents)
	setIf(&r.GlobalPeriodDays, yc.GlobalPeriodDays)
	setIf(&r.NSAInNetworkRatio, yc.NSAInNetworkRatio)
	setIf(&r.TimelyFilingDays, yc.TimelyFilingDays)
	setIf(&r.DrugUnitMax, yc.DrugUnitMax)
	setIf(&r.TherapyUnitsPerDayMax, yc.TherapyUnitsPerDayMax)
	setIf(&r.ObservationHoursMax, yc.ObservationHoursMax)
	setIf(&r.SummaryDescriptionWidth, yc.SummaryDescriptionWidth)
	setIf(&r.SummaryMaxLines, yc.SummaryMaxLines)
	setIf(&r.BundlingEdits, yc.BundlingEdits)
	setIf(&r.PreventiveCodes, yc.PreventiveCodes)
	setIf(&r.MajorSurgeryCodes, yc.MajorSurgeryCodes)
	setIf(&r.FacilityFeeCodes, yc.FacilityFeeCodes)

	return r.Validate()
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks that thresholds are usable.
func (r *RuleConfig) Validate() error {
	if r.MathToleranceCents < 0 {
		return fmt.Errorf("math_tolerance_cents must be >= 0, got %d", r.MathToleranceCents)
	}
	if r.GlobalPeriodDays <= 0 {
		return fmt.Errorf("global_period_days must be > 0, got %d", r.GlobalPeriodDays)
	}
	if r.NSAInNetworkRatio <= 0 || r.NSAInNetworkRatio > 1 {
		return fmt.Errorf("nsa_in_network_ratio must be in (0,1], got %.2f", r.NSAInNetworkRatio)
	}
	for name, v := range map[string]int{
		"timely_filing_days":        r.TimelyFilingDays,
		"drug_unit_max":             r.DrugUnitMax,
		"therapy_units_per_day_max": r.TherapyUnitsPerDayMax,
		"observation_hours_max":     r.ObservationHoursMax,
		"summary_description_width": r.SummaryDescriptionWidth,
		"summary_max_lines":         r.SummaryMaxLines,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", name, v)
		}
	}
	for parent, comps := range r.BundlingEdits {
		if len(comps) == 0 {
			return fmt.Errorf("bundling_edits: parent %s has no components", parent)
		}
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.CasePath == "" {
		return fmt.Errorf("--case is required")
	}
	if _, err := os.Stat(c.CasePath); err != nil {
		return fmt.Errorf("case file not accessible: %w", err)
	}
	return c.Rules.Validate()
}

// ValidateWithDSN checks both case file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or BILLCHECK_DB_URL is required")
	}
	return nil
}
