package normalize

import (
	"fmt"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
)

// ToLineItem converts a Parquet-read LineItemRow into a normalized LineItem:
// codes uppercased, modifiers split, dates rendered ISO, dollars turned into cents.
func ToLineItem(row *model.LineItemRow) (*model.LineItem, error) {
	if row.LineID == "" {
		return nil, fmt.Errorf("row has no line_id")
	}
	if row.ArtifactID == "" {
		return nil, fmt.Errorf("line %s has no artifact_id", row.LineID)
	}

	l := &model.LineItem{
		LineID:      row.LineID,
		ArtifactID:  row.ArtifactID,
		Code:        Code(derefStr(row.Code)),
		CodeSystem:  strings.ToUpper(strings.TrimSpace(derefStr(row.CodeSystem))),
		Description: derefStr(row.Description),
		Modifiers:   Modifiers(derefStr(row.Modifiers)),
		POS:         Code(derefStr(row.POS)),
		RevenueCode: RevenueCode(derefStr(row.RevenueCode)),
		NPI:         Code(derefStr(row.NPI)),

		ChargeCents:      DollarsToCents(row.Charge),
		AllowedCents:     DollarsToCents(row.Allowed),
		PlanPaidCents:    DollarsToCents(row.PlanPaid),
		PatientRespCents: DollarsToCents(row.PatientResp),
	}

	if row.Units != nil {
		l.Units = int(*row.Units)
	}
	if row.ServiceDate != nil && *row.ServiceDate != "" {
		l.DOS = ISODate(*row.ServiceDate)
		if l.DOS == "" {
			return nil, fmt.Errorf("line %s: unparseable service date %q", row.LineID, *row.ServiceDate)
		}
	}
	if l.CodeSystem != "" {
		if _, ok := model.CodeSystemByName(l.CodeSystem); !ok {
			l.CodeSystem = "UNKNOWN"
		}
	}
	if row.Page != nil || row.OCRConfidence != nil {
		l.OCR = &model.OCRProvenance{}
		if row.Page != nil {
			l.OCR.Page = int(*row.Page)
		}
		if row.OCRConfidence != nil {
			l.OCR.Confidence = *row.OCRConfidence
		}
	}
	return l, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
