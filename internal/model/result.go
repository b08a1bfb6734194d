package model

// MatchType describes how a bill line was aligned to an EOB line.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchFuzzy     MatchType = "fuzzy"
	MatchManual    MatchType = "manual"
	MatchUnmatched MatchType = "unmatched"
)

// Match aligns one bill line to at most one EOB line.
type Match struct {
	BillLineID      string    `json:"billLineId"`
	EOBLineID       string    `json:"eobLineId,omitempty"`
	MatchConfidence float64   `json:"matchConfidence"`
	MatchType       MatchType `json:"matchType"`
}

// Totals are exact integer-cent sums over every line in the case.
type Totals struct {
	ChargeCents      int64 `json:"chargeCents"`
	AllowedCents     int64 `json:"allowedCents"`
	PlanPaidCents    int64 `json:"planPaidCents"`
	PatientRespCents int64 `json:"patientRespCents"`
}

// Header is the merged document header shown above the line table.
type Header struct {
	ProviderName     string `json:"providerName,omitempty"`
	ProviderNPI      string `json:"providerNpi,omitempty"`
	PayerName        string `json:"payerName,omitempty"`
	ClaimID          string `json:"claimId,omitempty"`
	AccountID        string `json:"accountId,omitempty"`
	ServiceDateStart string `json:"serviceDateStart,omitempty"`
	ServiceDateEnd   string `json:"serviceDateEnd,omitempty"`
	AppealDeadline   string `json:"appealDeadline,omitempty"`
}

// SummaryLine is one display row of the priced summary.
type SummaryLine struct {
	LineID           string `json:"lineId"`
	Code             string `json:"code,omitempty"`
	Description      string `json:"description,omitempty"`
	DOS              string `json:"dos,omitempty"`
	Units            int    `json:"units,omitempty"`
	ChargeCents      int64  `json:"chargeCents"`
	AllowedCents     *int64 `json:"allowedCents,omitempty"`
	PlanPaidCents    *int64 `json:"planPaidCents,omitempty"`
	PatientRespCents *int64 `json:"patientRespCents,omitempty"`
}

// PricedSummary describes the case's money; it never flags anything.
type PricedSummary struct {
	Header  Header        `json:"header"`
	Totals  Totals        `json:"totals"`
	Lines   []SummaryLine `json:"lines"`
	Notes   []string      `json:"notes"`
	Network Network       `json:"network"`
}

// Confidence blends OCR quality, parsing completeness and detection density, 0-100.
type Confidence struct {
	Overall   float64 `json:"overall"`
	OCR       float64 `json:"ocr"`
	Parsing   float64 `json:"parsing"`
	Detection float64 `json:"detection"`
}

// RuleSavings is one entry of the top-rules list.
type RuleSavings struct {
	RuleKey      string `json:"ruleKey"`
	SavingsCents int64  `json:"savingsCents"`
}

// SavingsSummary aggregates allocated savings for a run.
type SavingsSummary struct {
	TotalCents      int64              `json:"totalCents"`
	BySeverityCents map[Severity]int64 `json:"bySeverityCents"`
	TopRules        []RuleSavings      `json:"topRules"`
}

// AnalyzerResult is the payload handed to report composition.
type AnalyzerResult struct {
	CaseID        string         `json:"caseId"`
	DocumentMeta  []DocumentMeta `json:"documentMeta"`
	LineItems     []LineItem     `json:"lineItems"`
	Matches       []Match        `json:"matches"`
	PricedSummary PricedSummary  `json:"pricedSummary"`
	Detections    []Detection    `json:"detections"`
	Savings       SavingsSummary `json:"savings"`
	Confidence    Confidence     `json:"confidence"`
	Diagnostics   []Diagnostic   `json:"diagnostics,omitempty"`
}
