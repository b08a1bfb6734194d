package normalize

import (
	"testing"
	"time"

	"github.com/gyeh/billcheck/internal/model"
)

func strPtr(s string) *string    { return &s }
func f64Ptr(v float64) *float64 { return &v }
func i32Ptr(v int32) *int32     { return &v }

func TestDollarsToCents_Rounds(t *testing.T) {
	got := DollarsToCents(f64Ptr(19.999))
	if got == nil || *got != 2000 {
		t.Fatalf("expected 2000, got %v", got)
	}
	if DollarsToCents(nil) != nil {
		t.Error("nil in should be nil out")
	}
	// 0.1+0.2 style drift must not truncate
	got = DollarsToCents(f64Ptr(0.1 + 0.2))
	if *got != 30 {
		t.Errorf("expected 30, got %d", *got)
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		150000:    "$1,500.00",
		123456789: "$1,234,567.89",
		-4000:     "-$40.00",
	}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Errorf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestModifiers(t *testing.T) {
	got := Modifiers(" 25, lt;LT 59 ")
	want := []string{"25", "LT", "59"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("modifier %d = %q, want %q", i, got[i], want[i])
		}
	}
	if Modifiers("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestRevenueCode(t *testing.T) {
	if got := RevenueCode("450"); got != "0450" {
		t.Errorf("got %q", got)
	}
	if got := RevenueCode(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestISODate(t *testing.T) {
	if got := ISODate("03/15/2024"); got != "2024-03-15" {
		t.Errorf("got %q", got)
	}
	if got := ISODate("not a date"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 60 {
		t.Errorf("expected 60 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -60 {
		t.Errorf("expected -60 days, got %d", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("COMPREHENSIVE METABOLIC PANEL", 10); got != "COMPREH..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestToLineItem(t *testing.T) {
	row := &model.LineItemRow{
		LineID:      "L1",
		ArtifactID:  "A1",
		Code:        strPtr(" 99213 "),
		CodeSystem:  strPtr("cpt"),
		Modifiers:   strPtr("25"),
		Units:       i32Ptr(1),
		ServiceDate: strPtr("01/05/2024"),
		RevenueCode: strPtr("510"),
		Charge:      f64Ptr(150.00),
		Allowed:     f64Ptr(92.41),
		Page:        i32Ptr(2),
	}
	l, err := ToLineItem(row)
	if err != nil {
		t.Fatalf("ToLineItem: %v", err)
	}
	if l.Code != "99213" || l.CodeSystem != "CPT" {
		t.Errorf("code = %q/%q", l.Code, l.CodeSystem)
	}
	if l.DOS != "2024-01-05" {
		t.Errorf("dos = %q", l.DOS)
	}
	if l.RevenueCode != "0510" {
		t.Errorf("revenue code = %q", l.RevenueCode)
	}
	if *l.ChargeCents != 15000 || *l.AllowedCents != 9241 {
		t.Errorf("money = %d/%d", *l.ChargeCents, *l.AllowedCents)
	}
	if l.PlanPaidCents != nil {
		t.Error("absent plan paid should stay nil")
	}
	if l.OCR == nil || l.OCR.Page != 2 {
		t.Errorf("ocr provenance = %+v", l.OCR)
	}
}

func TestToLineItem_Rejects(t *testing.T) {
	if _, err := ToLineItem(&model.LineItemRow{ArtifactID: "A1"}); err == nil {
		t.Error("expected error for missing line id")
	}
	if _, err := ToLineItem(&model.LineItemRow{LineID: "L1", ArtifactID: "A1", ServiceDate: strPtr("garbage")}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestCaseFingerprint_Stable(t *testing.T) {
	c := &model.Case{
		CaseID:    "c1",
		Artifacts: []model.DocumentArtifact{{ArtifactID: "A1", DocType: model.DocBill}},
		LineItems: []model.LineItem{{LineID: "L1", ArtifactID: "A1", Code: "99213"}},
	}
	a, err := CaseFingerprint(c)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	c.CaseID = "renamed"
	b, _ := CaseFingerprint(c)
	if a != b {
		t.Error("case id must not affect the fingerprint")
	}
	c.LineItems[0].Code = "99214"
	d, _ := CaseFingerprint(c)
	if a == d {
		t.Error("line content must affect the fingerprint")
	}
}

func TestApplyRate(t *testing.T) {
	if got := ApplyPercent(50000, 20); got != 10000 {
		t.Errorf("20%% of 50000 = %d", got)
	}
	if got := ApplyRate(333, 0.65); got != 216 {
		t.Errorf("0.65 of 333 = %d, want 216", got)
	}
	// 0.5 cent rounds away from zero
	if got := ApplyRate(1, 0.5); got != 1 {
		t.Errorf("0.5 of 1 = %d, want 1", got)
	}
}
