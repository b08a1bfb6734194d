package parquetread

import (
	"fmt"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/billcheck/internal/model"
)

// WriteRows writes rows to a new Parquet file at path.
func WriteRows(path string, rows []model.LineItemRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[model.LineItemRow](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

// ToRow is the inverse of normalize.ToLineItem: cents become dollars and
// modifiers are joined with commas.
func ToRow(l *model.LineItem) model.LineItemRow {
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	dollars := func(c *int64) *float64 {
		if c == nil {
			return nil
		}
		v := float64(*c) / 100
		return &v
	}
	row := model.LineItemRow{
		LineID:      l.LineID,
		ArtifactID:  l.ArtifactID,
		Code:        str(l.Code),
		CodeSystem:  str(l.CodeSystem),
		Description: str(l.Description),
		ServiceDate: str(l.DOS),
		POS:         str(l.POS),
		RevenueCode: str(l.RevenueCode),
		NPI:         str(l.NPI),
		Charge:      dollars(l.ChargeCents),
		Allowed:     dollars(l.AllowedCents),
		PlanPaid:    dollars(l.PlanPaidCents),
		PatientResp: dollars(l.PatientRespCents),
	}
	if len(l.Modifiers) > 0 {
		joined := strings.Join(l.Modifiers, ",")
		row.Modifiers = &joined
	}
	if l.Units != 0 {
		u := int32(l.Units)
		row.Units = &u
	}
	if l.OCR != nil {
		p := int32(l.OCR.Page)
		c := l.OCR.Confidence
		row.Page, row.OCRConfidence = &p, &c
	}
	return row
}
