package model

// CodeSystem is a billing code vocabulary a line item's procedure code belongs to.
type CodeSystem struct {
	Name        string // e.g. "CPT"
	Description string
}

// AllCodeSystems lists the code systems accepted on line items, in canonical order.
var AllCodeSystems = []CodeSystem{
	{Name: "CPT", Description: "Current Procedural Terminology"},
	{Name: "HCPCS", Description: "Healthcare Common Procedure Coding System Level II"},
	{Name: "REV", Description: "UB-04 revenue code"},
	{Name: "NDC", Description: "National Drug Code"},
	{Name: "CDT", Description: "Current Dental Terminology"},
	{Name: "MS-DRG", Description: "Medicare Severity Diagnosis Related Group"},
	{Name: "UNKNOWN", Description: "code system not identified by the parser"},
}

// CodeSystemByName returns the CodeSystem for the given name, or ok=false.
func CodeSystemByName(name string) (CodeSystem, bool) {
	for _, cs := range AllCodeSystems {
		if cs.Name == name {
			return cs, true
		}
	}
	return CodeSystem{}, false
}
