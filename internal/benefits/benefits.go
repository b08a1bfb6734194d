// Package benefits recomputes expected patient responsibility from the
// user's plan parameters and flags cost sharing that does not add up.
package benefits

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
	"github.com/gyeh/billcheck/internal/rules"
)

// Rule keys emitted by the engine.
const (
	KeyOOPMax          = "oop_max"
	KeyDeductible      = "deductible_coinsurance"
	KeyCopay           = "copay"
	KeyNetworkMismatch = "network_mismatch"
)

// Thresholds beyond which a deductible/coinsurance difference is reported.
const (
	AggregateThresholdCents = 500
	LineThresholdCents      = 200

	// networkRatioFloor is the allowed/charge ratio below which an
	// in-network claim looks like it was priced out of network.
	networkRatioFloor = 0.5
)

var (
	citeSBC = model.Citation{
		Title:     "Summary of Benefits and Coverage",
		Authority: model.AuthorityPayerPolicy,
		Citation:  "Plan cost-sharing terms (deductible, coinsurance, copayment) as stated in the SBC",
	}
	citeOOPLimit = model.Citation{
		Title:     "Annual limitation on cost sharing",
		Authority: model.AuthorityFederal,
		Citation:  "42 U.S.C. 18022(c); 45 CFR 156.130",
		URL:       "https://www.ecfr.gov/current/title-45/subtitle-A/subchapter-B/part-156/subpart-B/section-156.130",
	}
	citeNetwork = model.Citation{
		Title:     "Network adequacy and in-network reimbursement",
		Authority: model.AuthorityStateDOI,
		Citation:  "State network adequacy and prompt-pay requirements for contracted providers",
	}
)

// Engine holds no state; the zero value is ready to use.
type Engine struct{}

// Evaluate returns benefits findings for c. The out-of-pocket maximum check
// is emitted first since it caps every other cost-sharing model. Without a
// BenefitsContext it returns nothing.
func (Engine) Evaluate(c *model.Case) []model.Detection {
	b := c.Benefits
	if b == nil {
		return nil
	}
	owed := c.ResponsibilityLines()
	adjudicated := c.AdjudicatedLines()

	var out []model.Detection
	out = append(out, checkOOPMax(b, owed)...)
	_, rest := splitCopay(b, adjudicated)
	out = append(out, checkDeductible(b, rest)...)
	copayLines, _ := splitCopay(b, owed)
	out = append(out, checkCopay(b, copayLines)...)
	out = append(out, checkNetwork(b, adjudicated)...)
	return out
}

func newDetection(key string, cat model.Category, sev model.Severity, explanation string, lines []model.LineItem, cites ...model.Citation) model.Detection {
	return model.Detection{
		RuleKey:     key,
		Category:    cat,
		Severity:    sev,
		Explanation: explanation,
		Evidence:    rules.EvidenceOf(lines),
		Citations:   cites,
		Confidence:  1,
	}
}

func delta(expected, observed int64, breakdown ...model.DeltaComponent) *model.MathDelta {
	return &model.MathDelta{ExpectedCents: expected, ObservedCents: observed, Breakdown: breakdown}
}

func term(label string, cents int64) model.DeltaComponent {
	return model.DeltaComponent{Label: label, Cents: cents}
}

func remaining(limit, met *int64) (int64, bool) {
	if limit == nil {
		return 0, false
	}
	return max(0, *limit-model.Cents(met)), true
}

// RemainingOOP is the smaller of the individual and family out-of-pocket
// room left for the year.
func RemainingOOP(b *model.BenefitsContext) (int64, bool) {
	ind, okInd := remaining(b.OOPMaxIndividualCents, b.OOPMetCents)
	fam, okFam := remaining(b.OOPMaxFamilyCents, b.OOPMetCents)
	switch {
	case okInd && okFam:
		return min(ind, fam), true
	case okInd:
		return ind, true
	case okFam:
		return fam, true
	}
	return 0, false
}

// RemainingDeductible is the smaller of the individual and family
// deductible left to satisfy.
func RemainingDeductible(b *model.BenefitsContext) (int64, bool) {
	ind, okInd := remaining(b.DeductibleIndividualCents, b.DeductibleMetCents)
	fam, okFam := remaining(b.DeductibleFamilyCents, b.DeductibleMetCents)
	switch {
	case okInd && okFam:
		return min(ind, fam), true
	case okInd:
		return ind, true
	case okFam:
		return fam, true
	}
	return 0, false
}

func checkOOPMax(b *model.BenefitsContext, lines []model.LineItem) []model.Detection {
	room, ok := RemainingOOP(b)
	if !ok {
		return nil
	}
	var owed []model.LineItem
	var total int64
	for _, l := range lines {
		if r := model.Cents(l.PatientRespCents); r > 0 {
			owed = append(owed, l)
			total += r
		}
	}
	if total <= room {
		return nil
	}
	d := newDetection(KeyOOPMax, model.CategoryBenefitsMath, model.SeverityHigh,
		fmt.Sprintf("Patient responsibility of %s exceeds the %s left on the out-of-pocket maximum by %s. Cost sharing above the maximum is not owed.",
			normalize.FormatCents(total), normalize.FormatCents(room), normalize.FormatCents(total-room)),
		owed, citeOOPLimit, citeSBC)
	d.MathDelta = delta(min(total, room), total,
		term("remaining out-of-pocket maximum", room), term("total patient responsibility", total))
	d.SuggestedQuestions = []string{"How much have I paid toward my out-of-pocket maximum this plan year?"}
	return []model.Detection{d}
}

// expectedShare applies the deductible then coinsurance to allowed.
// It returns the expected patient share and the deductible consumed.
func expectedShare(allowed, deductibleLeft int64, pct float64) (share, dedPortion int64) {
	dedPortion = min(deductibleLeft, allowed)
	post := allowed - dedPortion
	return dedPortion + normalize.ApplyPercent(post, pct), dedPortion
}

func checkDeductible(b *model.BenefitsContext, lines []model.LineItem) []model.Detection {
	ded, hasDed := RemainingDeductible(b)
	if !hasDed && b.CoinsurancePct == nil {
		return nil
	}
	pct := 0.0
	if b.CoinsurancePct != nil {
		pct = *b.CoinsurancePct
	}

	var scored []model.LineItem
	var totalAllowed, observed int64
	for _, l := range lines {
		if l.AllowedCents == nil || l.PatientRespCents == nil {
			continue
		}
		scored = append(scored, l)
		totalAllowed += *l.AllowedCents
		observed += *l.PatientRespCents
	}
	if len(scored) == 0 {
		return nil
	}

	expected, dedPortion := expectedShare(totalAllowed, ded, pct)
	if diff := observed - expected; diff > AggregateThresholdCents || -diff > AggregateThresholdCents {
		d := newDetection(KeyDeductible, model.CategoryBenefitsMath, severityFor(diff),
			fmt.Sprintf("With %s of deductible remaining and %.0f%% coinsurance, %s allowed should leave the patient %s, but %s was assigned (%s difference).",
				normalize.FormatCents(ded), pct, normalize.FormatCents(totalAllowed),
				normalize.FormatCents(expected), normalize.FormatCents(observed), normalize.FormatCents(abs(diff))),
			scored, citeSBC)
		d.MathDelta = delta(expected, observed,
			term("deductible portion", dedPortion),
			term("coinsurance portion", expected-dedPortion),
			term("allowed", totalAllowed))
		d.SuggestedQuestions = []string{
			"How much of my deductible had been met when this claim processed?",
			"What coinsurance rate was applied to these services?",
		}
		return []model.Detection{d}
	}

	// Within the aggregate threshold: walk lines by date of service,
	// consuming the deductible, and report individual outliers.
	slices.SortStableFunc(scored, func(a, b model.LineItem) int { return cmp.Compare(a.DOS, b.DOS) })
	var out []model.Detection
	left := ded
	for _, l := range scored {
		want, used := expectedShare(*l.AllowedCents, left, pct)
		left -= used
		got := *l.PatientRespCents
		diff := got - want
		if diff <= LineThresholdCents && -diff <= LineThresholdCents {
			continue
		}
		d := newDetection(KeyDeductible, model.CategoryBenefitsMath, severityFor(diff),
			fmt.Sprintf("Line %s (%s): expected patient share %s after deductible and coinsurance, billed %s.",
				l.LineID, l.Code, normalize.FormatCents(want), normalize.FormatCents(got)),
			[]model.LineItem{l}, citeSBC)
		d.MathDelta = delta(want, got,
			term("deductible portion", used),
			term("coinsurance portion", want-used),
			term("allowed", *l.AllowedCents))
		out = append(out, d)
	}
	return out
}

func severityFor(diff int64) model.Severity {
	if diff > 0 {
		return model.SeverityHigh
	}
	return model.SeverityInfo
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func checkCopay(b *model.BenefitsContext, lines []model.LineItem) []model.Detection {
	var out []model.Detection
	for _, l := range lines {
		if l.PatientRespCents == nil {
			continue
		}
		cat, copay, _ := copayFor(b, &l)
		want := copay
		if l.AllowedCents != nil {
			want = min(copay, *l.AllowedCents)
		}
		got := *l.PatientRespCents
		if got == want {
			continue
		}
		d := newDetection(KeyCopay, model.CategoryBenefitsMath, severityFor(got-want),
			fmt.Sprintf("Line %s is a %s service with a %s copay, but the patient was assigned %s.",
				l.LineID, cat, normalize.FormatCents(copay), normalize.FormatCents(got)),
			[]model.LineItem{l}, citeSBC)
		d.MathDelta = delta(want, got, term(cat+" copay", copay), term("patient responsibility", got))
		out = append(out, d)
	}
	return out
}

func checkNetwork(b *model.BenefitsContext, lines []model.LineItem) []model.Detection {
	if b.Network != model.NetworkIn {
		return nil
	}
	var out []model.Detection
	for _, l := range lines {
		if l.ChargeCents == nil || l.AllowedCents == nil || *l.ChargeCents <= 0 {
			continue
		}
		charge, allowed := *l.ChargeCents, *l.AllowedCents
		if float64(allowed)/float64(charge) >= networkRatioFloor {
			continue
		}
		d := newDetection(KeyNetworkMismatch, model.CategoryNetwork, model.SeverityWarn,
			fmt.Sprintf("The plan is in network, but line %s (%s) was allowed only %s of a %s charge; the claim may have been processed as out of network.",
				l.LineID, l.Code, normalize.FormatCents(allowed), normalize.FormatCents(charge)),
			[]model.LineItem{l}, citeNetwork, citeSBC)
		floor := normalize.ApplyRate(charge, networkRatioFloor)
		d.MathDelta = delta(floor, allowed, term("charge", charge), term("allowed", allowed))
		d.SuggestedQuestions = []string{"Was this provider treated as in network when the claim was processed?"}
		out = append(out, d)
	}
	return out
}
