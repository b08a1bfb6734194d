// Package savings assigns a recoverable amount to every finding without
// counting any line twice.
package savings

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// TopRulesLimit bounds SavingsSummary.TopRules.
const TopRulesLimit = 5

// Allocate orders ds by Priority (stable, so ties keep production order),
// then walks them once. Each finding is credited only with evidence lines
// no earlier finding has claimed; the lines it is paid for are recorded in
// SavingsLineRefs and become unavailable to later findings. The input slice
// is not modified.
func Allocate(ds []model.Detection, lines []model.LineItem) ([]model.Detection, model.SavingsSummary) {
	byID := make(map[string]*model.LineItem, len(lines))
	for i := range lines {
		byID[lines[i].LineID] = &lines[i]
	}

	out := slices.Clone(ds)
	slices.SortStableFunc(out, func(a, b model.Detection) int {
		return cmp.Compare(Priority(&a), Priority(&b))
	})

	claimed := make(map[string]bool)
	for i := range out {
		d := &out[i]
		var fresh []*model.LineItem
		for _, ref := range d.Evidence.LineRefs {
			if l := byID[ref]; l != nil && !claimed[ref] {
				fresh = append(fresh, l)
			}
		}
		d.SavingsCents = 0
		d.SavingsLineRefs = nil
		if len(fresh) == 0 {
			continue
		}
		amount := estimate(d, fresh, byID)
		if amount <= 0 {
			continue
		}
		d.SavingsCents = amount
		for _, l := range fresh {
			claimed[l.LineID] = true
			d.SavingsLineRefs = append(d.SavingsLineRefs, l.LineID)
		}
	}
	return out, Summarize(out)
}

func estimate(d *model.Detection, fresh []*model.LineItem, byID map[string]*model.LineItem) int64 {
	switch d.Category {
	case model.CategoryDuplicate:
		if len(fresh) < 2 {
			return 0
		}
		var sum int64
		lowest := model.Cents(fresh[0].ChargeCents)
		for _, l := range fresh {
			c := model.Cents(l.ChargeCents)
			sum += c
			lowest = min(lowest, c)
		}
		return sum - lowest

	case model.CategoryUnbundling:
		var sum int64
		for _, l := range fresh {
			if l.AllowedCents != nil {
				sum += *l.AllowedCents
			} else {
				sum += model.Cents(l.ChargeCents)
			}
		}
		if d.RequiresTableCheck {
			return normalize.ApplyRate(sum, fallbackRate(d.Severity))
		}
		return sum

	case model.CategoryMathError:
		if d.MathDelta == nil {
			break
		}
		delta := d.MathDelta.DeltaCents()
		if delta < 0 {
			delta = -delta
		}
		return delta
	}

	if d.MathDelta != nil {
		over := d.MathDelta.DeltaCents()
		if over <= 0 {
			return 0
		}
		return prorate(over, d, fresh, byID)
	}

	var charges int64
	for _, l := range fresh {
		charges += model.Cents(l.ChargeCents)
	}
	return normalize.ApplyRate(charges, fallbackRate(d.Severity))
}

// prorate scales amount by the fresh lines' share of the finding's patient
// responsibility, or by line count when no responsibility is recorded.
func prorate(amount int64, d *model.Detection, fresh []*model.LineItem, byID map[string]*model.LineItem) int64 {
	var total, part int64
	n := 0
	for _, ref := range d.Evidence.LineRefs {
		if l := byID[ref]; l != nil {
			total += model.Cents(l.PatientRespCents)
			n++
		}
	}
	if len(fresh) == n {
		return amount
	}
	for _, l := range fresh {
		part += model.Cents(l.PatientRespCents)
	}
	if total > 0 {
		return amount * part / total
	}
	return amount * int64(len(fresh)) / int64(n)
}

// Summarize totals allocated savings overall, by severity, and by rule.
func Summarize(ds []model.Detection) model.SavingsSummary {
	s := model.SavingsSummary{BySeverityCents: map[model.Severity]int64{
		model.SeverityHigh: 0, model.SeverityWarn: 0, model.SeverityInfo: 0,
	}}
	byRule := make(map[string]int64)
	for _, d := range ds {
		s.TotalCents += d.SavingsCents
		s.BySeverityCents[d.Severity] += d.SavingsCents
		if d.SavingsCents > 0 {
			byRule[d.RuleKey] += d.SavingsCents
		}
	}
	for k, v := range byRule {
		s.TopRules = append(s.TopRules, model.RuleSavings{RuleKey: k, SavingsCents: v})
	}
	slices.SortFunc(s.TopRules, func(a, b model.RuleSavings) int {
		if c := cmp.Compare(b.SavingsCents, a.SavingsCents); c != 0 {
			return c
		}
		return cmp.Compare(a.RuleKey, b.RuleKey)
	})
	if len(s.TopRules) > TopRulesLimit {
		s.TopRules = s.TopRules[:TopRulesLimit]
	}
	return s
}

// CheckNoDoubleCount verifies no line is credited to two findings and every
// credited line is part of its finding's evidence.
func CheckNoDoubleCount(ds []model.Detection) error {
	owner := make(map[string]string)
	for _, d := range ds {
		if d.SavingsCents == 0 {
			if len(d.SavingsLineRefs) > 0 {
				return fmt.Errorf("detection %s credits lines without savings", d.DetectionID)
			}
			continue
		}
		evidence := make(map[string]bool, len(d.Evidence.LineRefs))
		for _, ref := range d.Evidence.LineRefs {
			evidence[ref] = true
		}
		for _, ref := range d.SavingsLineRefs {
			if !evidence[ref] {
				return fmt.Errorf("detection %s (%s) credits line %s outside its evidence", d.DetectionID, d.RuleKey, ref)
			}
			if prev, ok := owner[ref]; ok {
				return fmt.Errorf("line %s credited to both %s and %s (%s)", ref, prev, d.DetectionID, d.RuleKey)
			}
			owner[ref] = d.DetectionID
		}
	}
	return nil
}
