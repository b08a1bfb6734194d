package model

// Severity ranks a finding.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
	SeverityHigh Severity = "high"
)

// Authority is the closed set of sources a policy citation may name.
type Authority string

const (
	AuthorityFederal     Authority = "Federal"
	AuthorityCMS         Authority = "CMS"
	AuthorityStateDOI    Authority = "StateDOI"
	AuthorityPayerPolicy Authority = "PayerPolicy"
)

// Valid reports whether a is in the closed authority set.
func (a Authority) Valid() bool {
	switch a {
	case AuthorityFederal, AuthorityCMS, AuthorityStateDOI, AuthorityPayerPolicy:
		return true
	}
	return false
}

// Category groups rule keys for savings allocation priority.
type Category string

const (
	CategoryMathError      Category = "MathError"
	CategoryDuplicate      Category = "Duplicate"
	CategoryUnbundling     Category = "Unbundling"
	CategoryFacilityFee    Category = "FacilityFee"
	CategoryNSA            Category = "NSA"
	CategoryPreventive     Category = "Preventive"
	CategoryBenefitsMath   Category = "BenefitsMath"
	CategoryNetwork        Category = "NetworkMismatch"
	CategoryModifier       Category = "Modifier"
	CategoryGlobalSurgery  Category = "GlobalSurgery"
	CategoryTimelyFiling   Category = "TimelyFiling"
	CategoryCOB            Category = "COB"
	CategoryZeroBilled     Category = "ZeroBilled"
	CategoryNonProviderFee Category = "NonProviderFee"
	CategoryObservation    Category = "ObservationStatus"
	CategoryItemizedBill   Category = "ItemizedBill"
	CategoryUnits          Category = "UnitSanity"
	CategoryProTech        Category = "ProTechSplit"
	CategoryBillEOB        Category = "BillEOBMismatch"
)

// Citation is a policy reference attached to a finding.
type Citation struct {
	Title     string    `json:"title"`
	Authority Authority `json:"authority"`
	Citation  string    `json:"citation"`
	URL       string    `json:"url,omitempty"`
}

// Evidence points at the lines and pages a finding is based on.
type Evidence struct {
	LineRefs []string `json:"lineRefs"`
	PageRefs []int    `json:"pageRefs,omitempty"`
}

// DeltaComponent is one labelled term of a math delta breakdown.
type DeltaComponent struct {
	Label string `json:"label"`
	Cents int64  `json:"cents"`
}

// MathDelta records expected vs observed cents so a finding can be re-derived.
type MathDelta struct {
	ExpectedCents int64            `json:"expectedCents"`
	ObservedCents int64            `json:"observedCents"`
	Breakdown     []DeltaComponent `json:"breakdown,omitempty"`
}

// DeltaCents is observed minus expected.
func (m *MathDelta) DeltaCents() int64 {
	return m.ObservedCents - m.ExpectedCents
}

// Detection is one finding. SavingsCents and SavingsLineRefs are assigned by
// the savings allocator and never changed afterwards.
type Detection struct {
	DetectionID        string     `json:"detectionId"`
	RuleKey            string     `json:"ruleKey"`
	Category           Category   `json:"category"`
	Severity           Severity   `json:"severity"`
	Explanation        string     `json:"explanation"`
	Evidence           Evidence   `json:"evidence"`
	Citations          []Citation `json:"citations"`
	MathDelta          *MathDelta `json:"mathDelta,omitempty"`
	SuggestedQuestions []string   `json:"suggestedQuestions,omitempty"`
	Confidence         float64    `json:"confidence"`
	RequiresTableCheck bool       `json:"requiresTableCheck,omitempty"`
	SavingsCents       int64      `json:"savingsCents"`
	SavingsLineRefs    []string   `json:"savingsLineRefs,omitempty"`
}

// Diagnostic is an internal note about a run: a faulted rule, dropped evidence.
type Diagnostic struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
