package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DetectionRow is one finding flattened for COPY into the staging table.
type DetectionRow struct {
	RunID              uuid.UUID
	DetectionID        string
	RuleKey            string
	Category           string
	Severity           string
	Explanation        string
	Confidence         float64
	RequiresTableCheck bool
	SavingsCents       int64
	ExpectedCents      *int64
	ObservedCents      *int64
	LineRefs           []string
	SavingsLineRefs    []string
	PageRefs           []int32
	Citations          []byte // JSON
}

// DetectionColumns returns the staging column names in COPY order.
func DetectionColumns() []string {
	return []string{
		"run_id", "detection_id", "rule_key", "category", "severity", "explanation",
		"confidence", "requires_table_check", "savings_cents", "expected_cents",
		"observed_cents", "line_refs", "savings_line_refs", "page_refs", "citations",
	}
}

// CopyValues returns the row's values in DetectionColumns order.
func (r *DetectionRow) CopyValues() []any {
	return []any{
		r.RunID, r.DetectionID, r.RuleKey, r.Category, r.Severity, r.Explanation,
		r.Confidence, r.RequiresTableCheck, r.SavingsCents, r.ExpectedCents,
		r.ObservedCents, r.LineRefs, r.SavingsLineRefs, r.PageRefs, r.Citations,
	}
}

// ToDetectionRow flattens d for run.
func ToDetectionRow(run uuid.UUID, d *Detection) (*DetectionRow, error) {
	cites, err := json.Marshal(d.Citations)
	if err != nil {
		return nil, fmt.Errorf("detection %s: encode citations: %w", d.DetectionID, err)
	}
	row := &DetectionRow{
		RunID:              run,
		DetectionID:        d.DetectionID,
		RuleKey:            d.RuleKey,
		Category:           string(d.Category),
		Severity:           string(d.Severity),
		Explanation:        d.Explanation,
		Confidence:         d.Confidence,
		RequiresTableCheck: d.RequiresTableCheck,
		SavingsCents:       d.SavingsCents,
		LineRefs:           d.Evidence.LineRefs,
		SavingsLineRefs:    d.SavingsLineRefs,
		Citations:          cites,
	}
	if row.LineRefs == nil {
		row.LineRefs = []string{}
	}
	if d.MathDelta != nil {
		exp, obs := d.MathDelta.ExpectedCents, d.MathDelta.ObservedCents
		row.ExpectedCents, row.ObservedCents = &exp, &obs
	}
	for _, p := range d.Evidence.PageRefs {
		row.PageRefs = append(row.PageRefs, int32(p))
	}
	return row, nil
}
