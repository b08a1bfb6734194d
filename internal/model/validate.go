package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValidationError lists every input contract violation found in a case.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid case input (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// Validate checks the upstream input contract. It never stops at the first
// problem: the returned *ValidationError carries all of them.
func Validate(c *Case) error {
	var v []string
	add := func(format string, args ...any) {
		v = append(v, fmt.Sprintf(format, args...))
	}

	artifacts := make(map[string]bool, len(c.Artifacts))
	for i, a := range c.Artifacts {
		if a.ArtifactID == "" {
			add("artifact[%d]: empty artifact id", i)
			continue
		}
		if artifacts[a.ArtifactID] {
			add("artifact %s: duplicate artifact id", a.ArtifactID)
		}
		artifacts[a.ArtifactID] = true
		if !a.DocType.Valid() {
			add("artifact %s: unknown document type %q", a.ArtifactID, a.DocType)
		}
		if a.OCRConfidence < 0 || a.OCRConfidence > 1 {
			add("artifact %s: ocr confidence %.2f outside 0..1", a.ArtifactID, a.OCRConfidence)
		}
	}

	lines := make(map[string]bool, len(c.LineItems))
	for i, l := range c.LineItems {
		id := l.LineID
		if id == "" {
			add("line[%d]: empty line id", i)
			id = fmt.Sprintf("#%d", i)
		} else if lines[id] {
			add("line %s: duplicate line id", id)
		}
		lines[id] = true

		if !artifacts[l.ArtifactID] {
			add("line %s: references unknown artifact %q", id, l.ArtifactID)
		}
		for name, val := range map[string]*int64{
			"charge":                 l.ChargeCents,
			"allowed":                l.AllowedCents,
			"plan paid":              l.PlanPaidCents,
			"patient responsibility": l.PatientRespCents,
		} {
			if val != nil && *val < 0 {
				add("line %s: negative %s amount %d", id, name, *val)
			}
		}
		if l.Units < 0 {
			add("line %s: negative units %d", id, l.Units)
		}
		if l.DOS != "" {
			if _, err := time.Parse(time.DateOnly, l.DOS); err != nil {
				add("line %s: date of service %q is not an ISO-8601 date", id, l.DOS)
			}
		}
	}

	for i, m := range c.Meta {
		if !artifacts[m.ArtifactID] {
			add("documentMeta[%d]: references unknown artifact %q", i, m.ArtifactID)
		}
		for name, d := range map[string]string{
			"serviceDateStart": m.ServiceDateStart,
			"serviceDateEnd":   m.ServiceDateEnd,
			"statementDate":    m.StatementDate,
			"appealDeadline":   m.AppealDeadline,
		} {
			if d == "" {
				continue
			}
			if _, err := time.Parse(time.DateOnly, d); err != nil {
				add("documentMeta[%d]: %s %q is not an ISO-8601 date", i, name, d)
			}
		}
	}

	for bill, eob := range c.ManualMatches {
		if !lines[bill] {
			add("manual match: unknown bill line %q", bill)
		}
		if !lines[eob] {
			add("manual match: unknown EOB line %q", eob)
		}
	}

	if b := c.Benefits; b != nil {
		for name, val := range map[string]*int64{
			"deductible individual": b.DeductibleIndividualCents,
			"deductible family":     b.DeductibleFamilyCents,
			"deductible met":        b.DeductibleMetCents,
			"oop max individual":    b.OOPMaxIndividualCents,
			"oop max family":        b.OOPMaxFamilyCents,
			"oop met":               b.OOPMetCents,
		} {
			if val != nil && *val < 0 {
				add("benefits: negative %s amount %d", name, *val)
			}
		}
		if b.CoinsurancePct != nil && (*b.CoinsurancePct < 0 || *b.CoinsurancePct > 100) {
			add("benefits: coinsurance %.2f%% outside 0..100", *b.CoinsurancePct)
		}
		for cat, cents := range b.CopayCents {
			if cents < 0 {
				add("benefits: negative copay %d for %s", cents, cat)
			}
		}
		switch b.Network {
		case "", NetworkIn, NetworkOut, NetworkUnknown:
		default:
			add("benefits: unknown network %q", b.Network)
		}
	}

	if len(v) == 0 {
		return nil
	}
	sort.Strings(v)
	return &ValidationError{Violations: v}
}
