package rules

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/match"
	"github.com/gyeh/billcheck/internal/model"
)

func i64(v int64) *int64 { return &v }

// billCase puts every line on a single bill artifact.
func billCase(lines ...model.LineItem) *model.Case {
	for i := range lines {
		if lines[i].ArtifactID == "" {
			lines[i].ArtifactID = "bill"
		}
	}
	return &model.Case{
		CaseID: "c1",
		Artifacts: []model.DocumentArtifact{
			{ArtifactID: "bill", DocType: model.DocBill, Pages: 2, OCRConfidence: 0.95},
			{ArtifactID: "eob", DocType: model.DocEOB, Pages: 1, OCRConfidence: 0.95},
		},
		LineItems: lines,
	}
}

func inputFor(c *model.Case, cfg config.RuleConfig) *Input {
	matches := match.Align(c)
	return NewInput(c, matches, match.InferNetwork(c.LineItems), cfg)
}

func byKey(ds []model.Detection, key string) []model.Detection {
	var out []model.Detection
	for _, d := range ds {
		if d.RuleKey == key {
			out = append(out, d)
		}
	}
	return out
}

func TestDuplicates(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "99213", DOS: "2024-03-01", Units: 1, ChargeCents: i64(15000)},
		model.LineItem{LineID: "l2", Code: "99213", DOS: "2024-03-01", Units: 1, ChargeCents: i64(15000)},
		model.LineItem{LineID: "l3", Code: "99213", DOS: "2024-03-02", Units: 1, ChargeCents: i64(15000)},
	)
	got := checkDuplicates(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 duplicate finding, got %d", len(got))
	}
	d := got[0]
	if d.Severity != model.SeverityHigh {
		t.Errorf("severity = %s, want high", d.Severity)
	}
	if !reflect.DeepEqual(d.Evidence.LineRefs, []string{"l1", "l2"}) {
		t.Errorf("evidence = %v", d.Evidence.LineRefs)
	}
	if d.SavingsCents != 0 {
		t.Errorf("rules must not assign savings, got %d", d.SavingsCents)
	}
}

func TestDuplicates_RepeatModifierSkipped(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "71046", DOS: "2024-03-01", ChargeCents: i64(9000)},
		model.LineItem{LineID: "l2", Code: "71046", DOS: "2024-03-01", Modifiers: []string{"76"}, ChargeCents: i64(9000)},
	)
	if got := checkDuplicates(inputFor(c, config.DefaultRules())); len(got) != 0 {
		t.Errorf("expected no findings for a documented repeat, got %d", len(got))
	}
}

func TestUnbundling(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "80053", DOS: "2024-03-01", ChargeCents: i64(12000)},
		model.LineItem{LineID: "l2", Code: "82040", DOS: "2024-03-01", ChargeCents: i64(3000)},
		model.LineItem{LineID: "l3", Code: "85025", DOS: "2024-03-01", ChargeCents: i64(4000)},
	)
	got := checkUnbundling(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"l2"}) {
		t.Errorf("evidence = %v, want [l2]", got[0].Evidence.LineRefs)
	}
	if got[0].Severity != model.SeverityHigh || got[0].RequiresTableCheck {
		t.Errorf("unexpected finding: %+v", got[0])
	}
}

func TestUnbundling_NoTableDegrades(t *testing.T) {
	cfg := config.DefaultRules()
	cfg.BundlingEdits = nil
	c := billCase(
		model.LineItem{LineID: "l1", Code: "45380", DOS: "2024-03-01", ChargeCents: i64(120000)},
		model.LineItem{LineID: "l2", Code: "45378", DOS: "2024-03-01", ChargeCents: i64(90000)},
	)
	got := checkUnbundling(inputFor(c, cfg))
	if len(got) != 1 {
		t.Fatalf("expected a degraded finding, got %d", len(got))
	}
	d := got[0]
	if !d.RequiresTableCheck || d.Severity != model.SeverityInfo || d.Confidence != degradedConfidence {
		t.Errorf("finding not degraded: %+v", d)
	}
	if !strings.HasPrefix(d.Explanation, "Requires table check: ") {
		t.Errorf("explanation = %q", d.Explanation)
	}
}

func TestPreventive(t *testing.T) {
	c := billCase(model.LineItem{LineID: "l1", Code: "99401", DOS: "2024-03-01",
		ChargeCents: i64(6000), AllowedCents: i64(4000), PlanPaidCents: i64(0), PatientRespCents: i64(4000)})
	got := checkPreventive(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	d := got[0]
	if d.Severity != model.SeverityHigh || d.MathDelta == nil {
		t.Fatalf("unexpected finding: %+v", d)
	}
	if d.MathDelta.ExpectedCents != 0 || d.MathDelta.ObservedCents != 4000 {
		t.Errorf("delta = %+v", d.MathDelta)
	}
}

func TestPreventive_NoTableUsesKeywords(t *testing.T) {
	cfg := config.DefaultRules()
	cfg.PreventiveCodes = nil
	c := billCase(model.LineItem{LineID: "l1", Code: "99999", Description: "Annual wellness screening",
		AllowedCents: i64(4000), PatientRespCents: i64(2500)})
	got := checkPreventive(inputFor(c, cfg))
	if len(got) != 1 || !got[0].RequiresTableCheck {
		t.Fatalf("expected one degraded finding, got %+v", got)
	}
}

func TestPreventive_LineWithoutAllowedAmount(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "b1", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000),
			AllowedCents: i64(9000), PlanPaidCents: i64(5000), PatientRespCents: i64(4000)},
		model.LineItem{LineID: "b2", Code: "99401", DOS: "2024-03-01", ChargeCents: i64(6000), PatientRespCents: i64(4000)},
	)
	got := checkPreventive(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || got[0].Evidence.LineRefs[0] != "b2" {
		t.Fatalf("expected one finding on b2, got %+v", got)
	}
	if got[0].MathDelta.ObservedCents != 4000 {
		t.Errorf("delta = %+v", got[0].MathDelta)
	}
}

func TestPreventive_UnmatchedBillLineBesideEOB(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "b1", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000), PatientRespCents: i64(4000)},
		model.LineItem{LineID: "b2", Code: "99401", DOS: "2024-03-02", ChargeCents: i64(6000), PatientRespCents: i64(4000)},
		model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000),
			AllowedCents: i64(9000), PlanPaidCents: i64(5000), PatientRespCents: i64(4000)},
	)
	got := checkPreventive(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || got[0].Evidence.LineRefs[0] != "b2" {
		t.Fatalf("expected one finding on b2, got %+v", got)
	}
}

func TestMathError(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "ok", AllowedCents: i64(10000), PlanPaidCents: i64(8000), PatientRespCents: i64(2000)},
		model.LineItem{LineID: "bad", AllowedCents: i64(10000), PlanPaidCents: i64(8000), PatientRespCents: i64(3500)},
		model.LineItem{LineID: "partial", AllowedCents: i64(10000), PatientRespCents: i64(9000)},
	)
	got := checkMathError(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].MathDelta.ExpectedCents != 2000 || got[0].MathDelta.ObservedCents != 3500 {
		t.Errorf("delta = %+v", got[0].MathDelta)
	}
	if got[0].MathDelta.DeltaCents() != 1500 {
		t.Errorf("DeltaCents = %d, want 1500", got[0].MathDelta.DeltaCents())
	}
}

func TestModifiers(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "71046", DOS: "2024-03-01", Modifiers: []string{"25"}},
		model.LineItem{LineID: "l2", Code: "99214", DOS: "2024-03-01", Modifiers: []string{"25"}},
		model.LineItem{LineID: "l3", Code: "69210", DOS: "2024-03-01", Modifiers: []string{"50"}, Units: 1},
	)
	got := checkModifiers(inputFor(c, config.DefaultRules()))
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(got), got)
	}
	if got[0].Severity != model.SeverityWarn || got[0].Evidence.LineRefs[0] != "l1" {
		t.Errorf("modifier 25 finding = %+v", got[0])
	}
	if got[1].Severity != model.SeverityInfo || got[1].Evidence.LineRefs[0] != "l3" {
		t.Errorf("bilateral finding = %+v", got[1])
	}
}

func TestGlobalSurgery(t *testing.T) {
	lines := []model.LineItem{
		{LineID: "s", Code: "47562", DOS: "2024-01-10", ChargeCents: i64(500000)},
		{LineID: "pre", Code: "99213", DOS: "2024-01-09", ChargeCents: i64(15000)},
		{LineID: "post", Code: "99213", DOS: "2024-02-01", ChargeCents: i64(15000)},
		{LineID: "unrelated", Code: "99213", DOS: "2024-02-15", Modifiers: []string{"24"}, ChargeCents: i64(15000)},
		{LineID: "late", Code: "99213", DOS: "2024-06-01", ChargeCents: i64(15000)},
	}
	got := checkGlobalSurgery(inputFor(billCase(lines...), config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"pre", "post"}) {
		t.Errorf("evidence = %v", got[0].Evidence.LineRefs)
	}
	if got[0].Severity != model.SeverityWarn {
		t.Errorf("severity = %s", got[0].Severity)
	}
}

func TestGlobalSurgery_NoTableDegrades(t *testing.T) {
	cfg := config.DefaultRules()
	cfg.MajorSurgeryCodes = nil
	c := billCase(
		model.LineItem{LineID: "s", Code: "47562", DOS: "2024-01-10", ChargeCents: i64(500000)},
		model.LineItem{LineID: "post", Code: "99213", DOS: "2024-02-01", ChargeCents: i64(15000)},
	)
	got := checkGlobalSurgery(inputFor(c, cfg))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	d := got[0]
	if !d.RequiresTableCheck || d.Severity != model.SeverityInfo || !strings.HasPrefix(d.Explanation, "Requires table check: ") {
		t.Errorf("expected degraded finding, got %+v", d)
	}
}

func TestObservation(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "obs", Code: "G0378", RevenueCode: "0762", DOS: "2024-03-01", Units: 60, ChargeCents: i64(120000)},
		model.LineItem{LineID: "room", RevenueCode: "0120", Description: "Room and board semi-private", DOS: "2024-03-02", ChargeCents: i64(300000)},
	)
	got := checkObservation(inputFor(c, config.DefaultRules()))
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(got), got)
	}
	if got[0].Severity != model.SeverityWarn || !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"obs", "room"}) {
		t.Errorf("status finding = %+v", got[0])
	}
	if got[1].Severity != model.SeverityInfo || got[1].Evidence.LineRefs[0] != "obs" {
		t.Errorf("hours finding = %+v", got[1])
	}
}

func TestObservation_ShortStayAlone(t *testing.T) {
	c := billCase(model.LineItem{LineID: "obs", Code: "G0378", DOS: "2024-03-01", Units: 20, ChargeCents: i64(40000)})
	if got := checkObservation(inputFor(c, config.DefaultRules())); len(got) != 0 {
		t.Errorf("unexpected findings: %+v", got)
	}
}

func TestNonProviderFees(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "visit", Code: "99213", Description: "Office visit", ChargeCents: i64(15000)},
		model.LineItem{LineID: "fee", Description: "Late fee", ChargeCents: i64(2500)},
		model.LineItem{LineID: "stmt", Description: "STATEMENT FEE", ChargeCents: i64(500)},
	)
	got := checkNonProviderFees(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Severity != model.SeverityWarn || !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"fee", "stmt"}) {
		t.Errorf("finding = %+v", got[0])
	}
}

func TestProTechSplit(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "global", Code: "71046", DOS: "2024-03-01", ChargeCents: i64(9000)},
		model.LineItem{LineID: "pro", Code: "71046", DOS: "2024-03-01", Modifiers: []string{"26"}, ChargeCents: i64(3000)},
		model.LineItem{LineID: "tc-only", Code: "93000", DOS: "2024-03-01", Modifiers: []string{"TC"}, ChargeCents: i64(2000)},
	)
	got := checkProTechSplit(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(got), got)
	}
	if got[0].Severity != model.SeverityHigh || !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"pro"}) {
		t.Errorf("finding = %+v", got[0])
	}
}

func TestFacilityFee(t *testing.T) {
	fee := model.LineItem{LineID: "f", Code: "G0463", DOS: "2024-03-01", ChargeCents: i64(35000)}
	visit := model.LineItem{LineID: "v", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000)}

	got := checkFacilityFee(inputFor(billCase(fee), config.DefaultRules()))
	if len(got) != 1 || got[0].Severity != model.SeverityInfo {
		t.Fatalf("fee alone should be info, got %+v", got)
	}
	got = checkFacilityFee(inputFor(billCase(fee, visit), config.DefaultRules()))
	if len(got) != 1 || got[0].Severity != model.SeverityHigh {
		t.Fatalf("fee with professional visit should be high, got %+v", got)
	}
	if !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"f"}) {
		t.Errorf("evidence = %v", got[0].Evidence.LineRefs)
	}
}

func TestNSA_Gating(t *testing.T) {
	anesthesia := model.LineItem{LineID: "a", Code: "00790", DOS: "2024-03-01", ChargeCents: i64(200000)}

	c := billCase(anesthesia)
	if got := checkNSAAncillary(inputFor(c, config.DefaultRules())); len(got) != 0 {
		t.Fatalf("expected no finding without a narrative signal, got %d", len(got))
	}

	c = billCase(anesthesia)
	c.Narrative.Tags = []string{"anesthesia"}
	got := checkNSAAncillary(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].MathDelta.ExpectedCents != 130000 || got[0].MathDelta.ObservedCents != 200000 {
		t.Errorf("delta = %+v", got[0].MathDelta)
	}
	if got[0].Category != model.CategoryNSA || got[0].Severity != model.SeverityHigh {
		t.Errorf("unexpected finding: %+v", got[0])
	}
}

func TestNSA_EmergencyInferred(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "ed", Code: "99285", RevenueCode: "0450", DOS: "2024-03-01", ChargeCents: i64(300000)},
		model.LineItem{LineID: "lab", Code: "85025", DOS: "2024-03-01", ChargeCents: i64(5000)},
	)
	got := checkNSAEmergency(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"ed"}) {
		t.Fatalf("unexpected findings: %+v", got)
	}
}

func TestTimelyFiling_CARC29(t *testing.T) {
	c := billCase(model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213", DOS: "2023-01-05",
		AllowedCents: i64(10000), PlanPaidCents: i64(0), PatientRespCents: i64(10000)})
	c.Meta = []model.DocumentMeta{{ArtifactID: "eob", RemarkCodes: []string{"CO-29"}}}
	got := checkTimelyFiling(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || got[0].Severity != model.SeverityHigh {
		t.Fatalf("unexpected findings: %+v", got)
	}
	if got[0].MathDelta.ObservedCents != 10000 || got[0].MathDelta.ExpectedCents != 0 {
		t.Errorf("delta = %+v", got[0].MathDelta)
	}
}

func TestBillEOBMismatch(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "b1", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(20000), PatientRespCents: i64(20000)},
		model.LineItem{LineID: "b2", Code: "36415", DOS: "2024-03-01", ChargeCents: i64(900)},
		model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(20000),
			AllowedCents: i64(11000), PlanPaidCents: i64(8000), PatientRespCents: i64(3000)},
	)
	got := checkBillEOB(inputFor(c, config.DefaultRules()))
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(got), got)
	}
	if got[0].Severity != model.SeverityHigh || got[0].MathDelta.DeltaCents() != 17000 {
		t.Errorf("mismatch finding = %+v", got[0])
	}
	if !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"b1", "e1"}) {
		t.Errorf("evidence = %v", got[0].Evidence.LineRefs)
	}
	if got[1].Severity != model.SeverityInfo || got[1].Evidence.LineRefs[0] != "b2" {
		t.Errorf("unmatched finding = %+v", got[1])
	}
}

func TestBillEOB_NotFoundOnEOB(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "b1", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(20000), PatientRespCents: i64(3000)},
		model.LineItem{LineID: "b2", Code: "85025", DOS: "2024-03-05", ChargeCents: i64(4500)},
		model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(20000),
			AllowedCents: i64(11000), PlanPaidCents: i64(8000), PatientRespCents: i64(3000)},
	)
	got := checkBillEOB(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(got), got)
	}
	d := got[0]
	if d.Severity != model.SeverityInfo || d.MathDelta != nil || !reflect.DeepEqual(d.Evidence.LineRefs, []string{"b2"}) {
		t.Errorf("finding = %+v", d)
	}
	if !strings.Contains(d.Explanation, "no matching line on the EOB") {
		t.Errorf("explanation = %q", d.Explanation)
	}
}

func TestCOB(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213", DOS: "2024-03-01",
			AllowedCents: i64(10000), PlanPaidCents: i64(0), PatientRespCents: i64(10000)},
		model.LineItem{LineID: "e2", ArtifactID: "eob", Code: "36415", DOS: "2024-03-01",
			AllowedCents: i64(900), PlanPaidCents: i64(900), PatientRespCents: i64(0)},
	)
	c.Meta = []model.DocumentMeta{{ArtifactID: "eob", RemarkCodes: []string{"OA-22"}}}
	got := checkCOB(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].Severity != model.SeverityWarn || !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"e1"}) {
		t.Errorf("finding = %+v", got[0])
	}

	c.Meta = []model.DocumentMeta{{ArtifactID: "eob", Remarks: []string{"Denied: other insurance is primary"}}}
	if got := checkCOB(inputFor(c, config.DefaultRules())); len(got) != 1 {
		t.Errorf("remark text should trigger the rule, got %d findings", len(got))
	}

	c.Meta = []model.DocumentMeta{{ArtifactID: "eob", RemarkCodes: []string{"CO-45"}}}
	if got := checkCOB(inputFor(c, config.DefaultRules())); len(got) != 0 {
		t.Errorf("unexpected findings: %+v", got)
	}
}

func TestItemizedBill_EOBOnly(t *testing.T) {
	c := billCase(model.LineItem{LineID: "e1", ArtifactID: "eob", Code: "99213",
		AllowedCents: i64(10000), PatientRespCents: i64(2000)})
	got := checkItemizedBill(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || got[0].Severity != model.SeverityInfo {
		t.Fatalf("unexpected findings: %+v", got)
	}
	if len(got[0].Evidence.LineRefs) != 0 {
		t.Errorf("evidence = %v", got[0].Evidence.LineRefs)
	}
}

func TestItemizedBill_SummaryLines(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "coded", Code: "99213", Description: "Office visit", ChargeCents: i64(15000)},
		model.LineItem{LineID: "bucket", Description: "Miscellaneous supplies", ChargeCents: i64(80000)},
		model.LineItem{LineID: "blank", ChargeCents: i64(1200)},
	)
	got := checkItemizedBill(inputFor(c, config.DefaultRules()))
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Evidence.LineRefs, []string{"bucket", "blank"}) {
		t.Errorf("evidence = %v", got[0].Evidence.LineRefs)
	}
}

func TestZeroBilled(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "z", ChargeCents: i64(0), PatientRespCents: i64(2500)},
		model.LineItem{LineID: "n", PatientRespCents: i64(2500)},
	)
	got := checkZeroBilled(inputFor(c, config.DefaultRules()))
	if len(got) != 1 || got[0].Evidence.LineRefs[0] != "z" {
		t.Fatalf("unexpected findings: %+v", got)
	}
}

func TestUnitSanity(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "drug", Code: "J1885", Units: 400},
		model.LineItem{LineID: "t1", Code: "97110", DOS: "2024-03-01", Units: 6},
		model.LineItem{LineID: "t2", Code: "97140", DOS: "2024-03-01", Units: 4},
	)
	got := checkUnitSanity(inputFor(c, config.DefaultRules()))
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	if !reflect.DeepEqual(got[1].Evidence.LineRefs, []string{"t1", "t2"}) {
		t.Errorf("therapy evidence = %v", got[1].Evidence.LineRefs)
	}
}

func TestSuite_FaultIsolation(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000)},
		model.LineItem{LineID: "l2", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000)},
	)
	s := &Suite{Workers: 4, Rules: []Rule{
		{Key: "boom", Category: model.CategoryModifier, Check: func(*Input) []model.Detection { panic("table corrupt") }},
		{Key: KeyDuplicate, Category: model.CategoryDuplicate, Check: checkDuplicates},
	}}
	ds, faults := s.Run(inputFor(c, config.DefaultRules()))
	if len(faults) != 1 || faults[0].RuleKey != "boom" {
		t.Fatalf("faults = %+v", faults)
	}
	if len(ds) != 1 || ds[0].RuleKey != KeyDuplicate {
		t.Errorf("surviving detections = %+v", ds)
	}
}

func TestSuite_OrderIndependentOfWorkers(t *testing.T) {
	c := billCase(
		model.LineItem{LineID: "l1", Code: "99213", DOS: "2024-03-01", Modifiers: []string{"25"}, ChargeCents: i64(15000)},
		model.LineItem{LineID: "l2", Code: "99213", DOS: "2024-03-01", ChargeCents: i64(15000)},
		model.LineItem{LineID: "l3", Code: "71046", DOS: "2024-03-01", Modifiers: []string{"25"}, ChargeCents: i64(9000)},
		model.LineItem{LineID: "l4", Code: "G0463", DOS: "2024-03-01", ChargeCents: i64(30000)},
		model.LineItem{LineID: "l5", ChargeCents: i64(0), PatientRespCents: i64(500), Description: "Statement fee"},
	)
	in := inputFor(c, config.DefaultRules())
	serial, _ := NewSuite(1).Run(in)
	parallel, _ := NewSuite(8).Run(in)
	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("parallel output differs from serial output")
	}
	if len(serial) == 0 {
		t.Fatal("expected findings")
	}

	ids := make(map[string]bool)
	for _, l := range c.LineItems {
		ids[l.LineID] = true
	}
	for _, d := range serial {
		if len(d.Citations) == 0 {
			t.Errorf("%s: no citation", d.RuleKey)
		}
		for _, cite := range d.Citations {
			if !cite.Authority.Valid() || cite.Citation == "" {
				t.Errorf("%s: bad citation %+v", d.RuleKey, cite)
			}
		}
		for _, ref := range d.Evidence.LineRefs {
			if !ids[ref] {
				t.Errorf("%s: evidence references unknown line %s", d.RuleKey, ref)
			}
		}
	}
}
