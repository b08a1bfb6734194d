package model

// LineItemRow mirrors the Parquet schema an upstream parser emits for one
// line. Money fields are float64 dollars matching the Parquet representation;
// they get converted to integer cents during normalization.
type LineItemRow struct {
	LineID      string  `parquet:"line_id"`
	ArtifactID  string  `parquet:"artifact_id"`
	Code        *string `parquet:"code,optional"`
	CodeSystem  *string `parquet:"code_system,optional"`
	Description *string `parquet:"description,optional"`
	Modifiers   *string `parquet:"modifiers,optional"` // comma or space separated
	Units       *int32  `parquet:"units,optional"`
	ServiceDate *string `parquet:"service_date,optional"`
	POS         *string `parquet:"place_of_service,optional"`
	RevenueCode *string `parquet:"revenue_code,optional"`
	NPI         *string `parquet:"npi,optional"`

	Charge      *float64 `parquet:"charge,optional"`
	Allowed     *float64 `parquet:"allowed,optional"`
	PlanPaid    *float64 `parquet:"plan_paid,optional"`
	PatientResp *float64 `parquet:"patient_responsibility,optional"`

	// OCR provenance
	Page          *int32   `parquet:"page,optional"`
	OCRConfidence *float64 `parquet:"ocr_confidence,optional"`
}

// LineItemColumns lists the Parquet columns a line-item file must carry.
func LineItemColumns() []string {
	return []string{"line_id", "artifact_id"}
}

// LineItemAmountColumns lists the money columns; at least one must be present.
func LineItemAmountColumns() []string {
	return []string{"charge", "allowed", "plan_paid", "patient_responsibility"}
}
