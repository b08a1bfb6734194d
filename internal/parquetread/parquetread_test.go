package parquetread

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gyeh/billcheck/internal/model"
)

func i64(v int64) *int64 { return &v }

func TestWriteThenReadLines(t *testing.T) {
	want := []model.LineItem{
		{LineID: "l1", ArtifactID: "bill", Code: "99213", CodeSystem: "CPT", Description: "Office visit",
			Modifiers: []string{"25", "GT"}, Units: 1, DOS: "2024-03-01", POS: "11",
			ChargeCents: i64(15099), AllowedCents: i64(9001), OCR: &model.OCRProvenance{Page: 2, Confidence: 0.93}},
		{LineID: "l2", ArtifactID: "bill", Code: "J1885", Units: 4, RevenueCode: "0636", ChargeCents: i64(4210)},
	}
	rows := make([]model.LineItemRow, len(want))
	for i := range want {
		rows[i] = ToRow(&want[i])
	}

	path := filepath.Join(t.TempDir(), "lines.parquet")
	if err := WriteRows(path, rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	got, rejects, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(rejects) != 0 {
		t.Fatalf("unexpected rejects: %v", rejects)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestReadLines_Rejects(t *testing.T) {
	bad := "not a date"
	rows := []model.LineItemRow{
		{LineID: "ok", ArtifactID: "bill"},
		{LineID: "bad", ArtifactID: "bill", ServiceDate: &bad},
		{LineID: "orphan"},
	}
	path := filepath.Join(t.TempDir(), "lines.parquet")
	if err := WriteRows(path, rows); err != nil {
		t.Fatal(err)
	}
	got, rejects, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].LineID != "ok" {
		t.Errorf("lines = %+v", got)
	}
	if len(rejects) != 2 {
		t.Errorf("rejects = %v", rejects)
	}
}
