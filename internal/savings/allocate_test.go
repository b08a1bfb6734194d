package savings

import (
	"reflect"
	"testing"

	"github.com/gyeh/billcheck/internal/model"
)

func i64(v int64) *int64 { return &v }

func det(key string, cat model.Category, sev model.Severity, refs ...string) model.Detection {
	return model.Detection{DetectionID: key, RuleKey: key, Category: cat, Severity: sev, Evidence: model.Evidence{LineRefs: refs}}
}

func TestAllocate_Duplicate(t *testing.T) {
	lines := []model.LineItem{
		{LineID: "l1", Code: "99213", ChargeCents: i64(15000)},
		{LineID: "l2", Code: "99213", ChargeCents: i64(15000)},
	}
	out, sum := Allocate([]model.Detection{det("duplicate", model.CategoryDuplicate, model.SeverityHigh, "l1", "l2")}, lines)
	if out[0].SavingsCents != 15000 {
		t.Errorf("savings = %d, want 15000", out[0].SavingsCents)
	}
	if sum.TotalCents != 15000 || sum.BySeverityCents[model.SeverityHigh] != 15000 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAllocate_Preventive(t *testing.T) {
	lines := []model.LineItem{{LineID: "l1", Code: "99401", ChargeCents: i64(6000), PatientRespCents: i64(4000)}}
	d := det("preventive", model.CategoryPreventive, model.SeverityHigh, "l1")
	d.MathDelta = &model.MathDelta{ExpectedCents: 0, ObservedCents: 4000}
	out, _ := Allocate([]model.Detection{d}, lines)
	if out[0].SavingsCents != 4000 {
		t.Errorf("savings = %d, want 4000", out[0].SavingsCents)
	}
}

func TestAllocate_OOPMaxClaimsBeforeDeductible(t *testing.T) {
	lines := []model.LineItem{
		{LineID: "l1", AllowedCents: i64(30000), PatientRespCents: i64(20000)},
		{LineID: "l2", AllowedCents: i64(30000), PatientRespCents: i64(15000)},
	}
	ded := det("deductible_coinsurance", model.CategoryBenefitsMath, model.SeverityHigh, "l1", "l2")
	ded.MathDelta = &model.MathDelta{ExpectedCents: 12000, ObservedCents: 35000}
	oop := det(oopMaxKey, model.CategoryBenefitsMath, model.SeverityHigh, "l1", "l2")
	oop.MathDelta = &model.MathDelta{ExpectedCents: 20000, ObservedCents: 35000}

	out, sum := Allocate([]model.Detection{ded, oop}, lines)
	if out[0].RuleKey != oopMaxKey {
		t.Fatalf("out-of-pocket finding must be allocated first, got order %s, %s", out[0].RuleKey, out[1].RuleKey)
	}
	if out[0].SavingsCents != 15000 || out[1].SavingsCents != 0 {
		t.Errorf("savings = %d, %d; want 15000, 0", out[0].SavingsCents, out[1].SavingsCents)
	}
	if sum.TotalCents != 15000 {
		t.Errorf("total = %d", sum.TotalCents)
	}
	if err := CheckNoDoubleCount(out); err != nil {
		t.Error(err)
	}
}

func TestAllocate_PriorityOrder(t *testing.T) {
	lines := []model.LineItem{{LineID: "l1", ChargeCents: i64(10000), AllowedCents: i64(8000), PlanPaidCents: i64(6000), PatientRespCents: i64(3000)}}
	mathErr := det("math_error", model.CategoryMathError, model.SeverityHigh, "l1")
	mathErr.MathDelta = &model.MathDelta{ExpectedCents: 2000, ObservedCents: 3000}
	in := []model.Detection{
		det("modifier", model.CategoryModifier, model.SeverityWarn, "l1"),
		det("facility_fee", model.CategoryFacilityFee, model.SeverityHigh, "l1"),
		mathErr,
	}
	out, _ := Allocate(in, lines)
	var keys []string
	for _, d := range out {
		keys = append(keys, d.RuleKey)
	}
	if !reflect.DeepEqual(keys, []string{"math_error", "facility_fee", "modifier"}) {
		t.Errorf("order = %v", keys)
	}
	if out[0].SavingsCents != 1000 || out[1].SavingsCents != 0 || out[2].SavingsCents != 0 {
		t.Errorf("savings = %d, %d, %d", out[0].SavingsCents, out[1].SavingsCents, out[2].SavingsCents)
	}
	if in[0].SavingsCents != 0 || in[0].RuleKey != "modifier" {
		t.Error("input slice was modified")
	}
}

func TestAllocate_PartialCredit(t *testing.T) {
	lines := []model.LineItem{
		{LineID: "a", ChargeCents: i64(10000)},
		{LineID: "b", ChargeCents: i64(20000)},
		{LineID: "c", ChargeCents: i64(40000)},
	}
	out, _ := Allocate([]model.Detection{
		det("facility_fee", model.CategoryFacilityFee, model.SeverityHigh, "a"),
		det("non_provider_fee", model.CategoryNonProviderFee, model.SeverityWarn, "a", "b", "c"),
	}, lines)
	if out[0].SavingsCents != 2000 {
		t.Errorf("facility fee savings = %d, want 2000", out[0].SavingsCents)
	}
	if out[1].SavingsCents != 6000 || !reflect.DeepEqual(out[1].SavingsLineRefs, []string{"b", "c"}) {
		t.Errorf("second finding = %d over %v; want 6000 over [b c]", out[1].SavingsCents, out[1].SavingsLineRefs)
	}
}

func TestAllocate_FallbackBySeverity(t *testing.T) {
	for _, tc := range []struct {
		sev  model.Severity
		want int64
	}{
		{model.SeverityHigh, 2000},
		{model.SeverityWarn, 1000},
		{model.SeverityInfo, 500},
	} {
		lines := []model.LineItem{{LineID: "l1", ChargeCents: i64(10000)}}
		out, _ := Allocate([]model.Detection{det("global_surgery", model.CategoryGlobalSurgery, tc.sev, "l1")}, lines)
		if out[0].SavingsCents != tc.want {
			t.Errorf("%s: savings = %d, want %d", tc.sev, out[0].SavingsCents, tc.want)
		}
	}
}

func TestAllocate_NegativeDeltaEarnsNothing(t *testing.T) {
	lines := []model.LineItem{{LineID: "l1", ChargeCents: i64(10000), AllowedCents: i64(3000)}}
	d := det("network_mismatch", model.CategoryNetwork, model.SeverityWarn, "l1")
	d.MathDelta = &model.MathDelta{ExpectedCents: 5000, ObservedCents: 3000}
	out, _ := Allocate([]model.Detection{d}, lines)
	if out[0].SavingsCents != 0 || out[0].SavingsLineRefs != nil {
		t.Errorf("unexpected credit: %+v", out[0])
	}
}

func TestSummarize_TopRules(t *testing.T) {
	ds := []model.Detection{
		{RuleKey: "b", Severity: model.SeverityWarn, SavingsCents: 500},
		{RuleKey: "a", Severity: model.SeverityHigh, SavingsCents: 500},
		{RuleKey: "c", Severity: model.SeverityHigh, SavingsCents: 900},
		{RuleKey: "a", Severity: model.SeverityHigh, SavingsCents: 100},
		{RuleKey: "d", Severity: model.SeverityInfo},
	}
	s := Summarize(ds)
	want := []model.RuleSavings{{RuleKey: "c", SavingsCents: 900}, {RuleKey: "a", SavingsCents: 600}, {RuleKey: "b", SavingsCents: 500}}
	if !reflect.DeepEqual(s.TopRules, want) {
		t.Errorf("TopRules = %+v", s.TopRules)
	}
	if s.TotalCents != 2000 || s.BySeverityCents[model.SeverityHigh] != 1500 {
		t.Errorf("summary = %+v", s)
	}
}

func TestCheckNoDoubleCount(t *testing.T) {
	ds := []model.Detection{
		{DetectionID: "d1", SavingsCents: 100, Evidence: model.Evidence{LineRefs: []string{"l1"}}, SavingsLineRefs: []string{"l1"}},
		{DetectionID: "d2", SavingsCents: 100, Evidence: model.Evidence{LineRefs: []string{"l1"}}, SavingsLineRefs: []string{"l1"}},
	}
	if err := CheckNoDoubleCount(ds); err == nil {
		t.Error("expected double count to be reported")
	}
	ds[1].SavingsLineRefs = []string{"l2"}
	if err := CheckNoDoubleCount(ds); err == nil {
		t.Error("expected credit outside evidence to be reported")
	}
	ds[1] = model.Detection{DetectionID: "d2", Evidence: model.Evidence{LineRefs: []string{"l1"}}}
	if err := CheckNoDoubleCount(ds); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
