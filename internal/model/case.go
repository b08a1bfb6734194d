package model

import (
	"strings"
	"time"
)

// DocType classifies an uploaded document.
type DocType string

const (
	DocBill    DocType = "bill"
	DocEOB     DocType = "eob"
	DocLetter  DocType = "letter"
	DocPortal  DocType = "portal"
	DocUnknown DocType = "unknown"
)

// Valid reports whether d is one of the known document types.
func (d DocType) Valid() bool {
	switch d {
	case DocBill, DocEOB, DocLetter, DocPortal, DocUnknown:
		return true
	}
	return false
}

// Network is an in/out-of-network assertion, declared or inferred.
type Network string

const (
	NetworkIn      Network = "in_network"
	NetworkOut     Network = "out_of_network"
	NetworkUnknown Network = "unknown"
)

// DocumentArtifact identifies one uploaded file. Immutable once created.
type DocumentArtifact struct {
	ArtifactID    string  `json:"artifactId"`
	DocType       DocType `json:"docType"`
	Filename      string  `json:"filename,omitempty"`
	Pages         int     `json:"pages"`
	OCRConfidence float64 `json:"ocrConfidence"` // 0..1, zero when unknown
}

// OCRProvenance locates a line on the source page.
type OCRProvenance struct {
	Page       int        `json:"page"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

// LineItem is one billed or adjudicated service. Money fields are integer
// cents; nil means the document did not carry the value.
type LineItem struct {
	LineID           string         `json:"lineId"`
	ArtifactID       string         `json:"artifactId"`
	Code             string         `json:"code,omitempty"`
	CodeSystem       string         `json:"codeSystem,omitempty"`
	Description      string         `json:"description,omitempty"`
	Modifiers        []string       `json:"modifiers,omitempty"`
	Units            int            `json:"units,omitempty"`
	DOS              string         `json:"dos,omitempty"` // ISO-8601 calendar date
	POS              string         `json:"pos,omitempty"`
	RevenueCode      string         `json:"revenueCode,omitempty"`
	NPI              string         `json:"npi,omitempty"`
	ChargeCents      *int64         `json:"chargeCents,omitempty"`
	AllowedCents     *int64         `json:"allowedCents,omitempty"`
	PlanPaidCents    *int64         `json:"planPaidCents,omitempty"`
	PatientRespCents *int64         `json:"patientRespCents,omitempty"`
	OCR              *OCRProvenance `json:"ocr,omitempty"`
}

// ServiceDate parses DOS. ok is false when the date is absent or malformed.
func (l *LineItem) ServiceDate() (time.Time, bool) {
	if l.DOS == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, l.DOS)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasModifier reports whether the line carries modifier m (case-insensitive).
func (l *LineItem) HasModifier(m string) bool {
	for _, have := range l.Modifiers {
		if strings.EqualFold(have, m) {
			return true
		}
	}
	return false
}

// HasAnyModifier reports whether the line carries at least one of ms.
func (l *LineItem) HasAnyModifier(ms ...string) bool {
	for _, m := range ms {
		if l.HasModifier(m) {
			return true
		}
	}
	return false
}

// Page returns the OCR page number, or 0 when provenance is absent.
func (l *LineItem) Page() int {
	if l.OCR == nil {
		return 0
	}
	return l.OCR.Page
}

// Cents dereferences a nullable money field, treating nil as zero.
func Cents(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// DocumentMeta holds header-level facts extracted from one artifact.
type DocumentMeta struct {
	ArtifactID       string   `json:"artifactId"`
	ProviderName     string   `json:"providerName,omitempty"`
	ProviderNPI      string   `json:"providerNpi,omitempty"`
	PayerName        string   `json:"payerName,omitempty"`
	ClaimID          string   `json:"claimId,omitempty"`
	AccountID        string   `json:"accountId,omitempty"`
	ServiceDateStart string   `json:"serviceDateStart,omitempty"`
	ServiceDateEnd   string   `json:"serviceDateEnd,omitempty"`
	StatementDate    string   `json:"statementDate,omitempty"`
	AppealDeadline   string   `json:"appealDeadline,omitempty"`
	RemarkCodes      []string `json:"remarkCodes,omitempty"` // CARC/RARC codes printed on an EOB
	Remarks          []string `json:"remarks,omitempty"`
	OtherCoverage    bool     `json:"otherCoverage,omitempty"`
}

// BenefitsContext is the user's plan parameters. Every field is optional.
type BenefitsContext struct {
	DeductibleIndividualCents *int64           `json:"deductibleIndividualCents,omitempty"`
	DeductibleFamilyCents     *int64           `json:"deductibleFamilyCents,omitempty"`
	DeductibleMetCents        *int64           `json:"deductibleMetCents,omitempty"`
	CoinsurancePct            *float64         `json:"coinsurancePct,omitempty"` // 0..100
	CopayCents                map[string]int64 `json:"copayCents,omitempty"`     // by service category
	OOPMaxIndividualCents     *int64           `json:"oopMaxIndividualCents,omitempty"`
	OOPMaxFamilyCents         *int64           `json:"oopMaxFamilyCents,omitempty"`
	OOPMetCents               *int64           `json:"oopMetCents,omitempty"`
	Network                   Network          `json:"network,omitempty"`
}

// Narrative carries tags inferred from the user's description of the case.
type Narrative struct {
	Tags             []string `json:"tags,omitempty"` // e.g. "anesthesia", "surpriseBill", "ER"
	Emergency        bool     `json:"emergency,omitempty"`
	NSACandidate     bool     `json:"nsaCandidate,omitempty"`
	AncillaryVendors []string `json:"ancillaryVendors,omitempty"`
}

// HasTag reports whether tag is present, ignoring case.
func (n Narrative) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Case is the unit of work for one analysis request.
type Case struct {
	CaseID        string             `json:"caseId"`
	Artifacts     []DocumentArtifact `json:"artifacts"`
	Meta          []DocumentMeta     `json:"documentMeta,omitempty"`
	LineItems     []LineItem         `json:"lineItems"`
	Benefits      *BenefitsContext   `json:"benefits,omitempty"`
	Narrative     Narrative          `json:"narrative"`
	ManualMatches map[string]string  `json:"manualMatches,omitempty"` // bill line id -> EOB line id

	// LineItemsParquet optionally names a Parquet file whose rows are appended
	// to LineItems when the case is loaded from disk.
	LineItemsParquet string `json:"lineItemsParquet,omitempty"`
}

// DocTypes maps artifact id to its document type.
func (c *Case) DocTypes() map[string]DocType {
	m := make(map[string]DocType, len(c.Artifacts))
	for _, a := range c.Artifacts {
		m[a.ArtifactID] = a.DocType
	}
	return m
}

// LinesOf returns the lines whose artifact has document type dt, in input order.
func (c *Case) LinesOf(dt DocType) []LineItem {
	types := c.DocTypes()
	var out []LineItem
	for _, l := range c.LineItems {
		if types[l.ArtifactID] == dt {
			out = append(out, l)
		}
	}
	return out
}

// ChargeLines returns the lines charge-basis rules scan. When a case carries
// both a bill and an EOB the same service appears twice, so only the bill
// lines are used; otherwise every line is.
func (c *Case) ChargeLines() []LineItem {
	bill := c.LinesOf(DocBill)
	if len(bill) > 0 && len(c.LinesOf(DocEOB)) > 0 {
		return bill
	}
	return c.LineItems
}

// ResponsibilityLines returns lines carrying a patient-responsibility amount.
// EOB lines are used when any EOB line carries one; otherwise the
// charge-basis lines are.
func (c *Case) ResponsibilityLines() []LineItem {
	types := c.DocTypes()
	var eob []LineItem
	for _, l := range c.LineItems {
		if l.PatientRespCents != nil && types[l.ArtifactID] == DocEOB {
			eob = append(eob, l)
		}
	}
	if len(eob) > 0 {
		return eob
	}
	var out []LineItem
	for _, l := range c.ChargeLines() {
		if l.PatientRespCents != nil {
			out = append(out, l)
		}
	}
	return out
}

// AdjudicatedLines returns lines with an allowed amount, preferring EOB lines
// when any EOB line carries one.
func (c *Case) AdjudicatedLines() []LineItem {
	var eob, all []LineItem
	types := c.DocTypes()
	for _, l := range c.LineItems {
		if l.AllowedCents == nil {
			continue
		}
		all = append(all, l)
		if types[l.ArtifactID] == DocEOB {
			eob = append(eob, l)
		}
	}
	if len(eob) > 0 {
		return eob
	}
	return all
}
