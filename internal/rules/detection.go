package rules

import (
	"sort"

	"github.com/gyeh/billcheck/internal/model"
)

// Rule keys.
const (
	KeyMathError      = "math_error"
	KeyDuplicate      = "duplicate"
	KeyUnbundling     = "unbundling"
	KeyFacilityFee    = "facility_fee"
	KeyNSAAncillary   = "nsa_ancillary"
	KeyNSAEmergency   = "nsa_emergency"
	KeyPreventive     = "preventive"
	KeyGlobalSurgery  = "global_surgery"
	KeyModifier       = "modifier"
	KeyTimelyFiling   = "timely_filing"
	KeyCOB            = "coordination_of_benefits"
	KeyZeroBilled     = "zero_billed"
	KeyNonProviderFee = "non_provider_fee"
	KeyObservation    = "observation_inpatient"
	KeyItemizedBill   = "missing_itemized_bill"
	KeyUnitSanity     = "unit_sanity"
	KeyProTech        = "pro_tech_split"
	KeyBillEOB        = "bill_eob_mismatch"
)

const (
	fullConfidence     = 1.0
	degradedConfidence = 0.4
	tableCheckPrefix   = "Requires table check: "
)

// newDetection builds a finding over lines. Evidence line refs keep the
// order given; page refs are distinct and sorted.
func newDetection(key string, cat model.Category, sev model.Severity, explanation string, lines []model.LineItem, cites ...model.Citation) model.Detection {
	return model.Detection{
		RuleKey:     key,
		Category:    cat,
		Severity:    sev,
		Explanation: explanation,
		Evidence:    EvidenceOf(lines),
		Citations:   cites,
		Confidence:  fullConfidence,
	}
}

// degraded marks a finding emitted without the reference table it needs.
func degraded(d model.Detection) model.Detection {
	d.Severity = model.SeverityInfo
	d.Confidence = degradedConfidence
	d.RequiresTableCheck = true
	d.Explanation = tableCheckPrefix + d.Explanation
	return d
}

// EvidenceOf collects distinct line and page references for lines.
func EvidenceOf(lines []model.LineItem) model.Evidence {
	ev := model.Evidence{LineRefs: make([]string, 0, len(lines))}
	seenLine := make(map[string]bool, len(lines))
	seenPage := make(map[int]bool)
	for _, l := range lines {
		if !seenLine[l.LineID] {
			seenLine[l.LineID] = true
			ev.LineRefs = append(ev.LineRefs, l.LineID)
		}
		if p := l.Page(); p > 0 && !seenPage[p] {
			seenPage[p] = true
			ev.PageRefs = append(ev.PageRefs, p)
		}
	}
	sort.Ints(ev.PageRefs)
	return ev
}

func withDelta(d model.Detection, expected, observed int64, breakdown ...model.DeltaComponent) model.Detection {
	d.MathDelta = &model.MathDelta{ExpectedCents: expected, ObservedCents: observed, Breakdown: breakdown}
	return d
}

func withQuestions(d model.Detection, qs ...string) model.Detection {
	d.SuggestedQuestions = qs
	return d
}

func term(label string, cents int64) model.DeltaComponent {
	return model.DeltaComponent{Label: label, Cents: cents}
}

func sumCharges(lines []model.LineItem) int64 {
	var total int64
	for _, l := range lines {
		total += model.Cents(l.ChargeCents)
	}
	return total
}

func sumResp(lines []model.LineItem) int64 {
	var total int64
	for _, l := range lines {
		total += model.Cents(l.PatientRespCents)
	}
	return total
}
