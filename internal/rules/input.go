package rules

import (
	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/model"
)

// Input is the shared, read-only view every rule scans. Rules must not
// modify anything reachable from it.
type Input struct {
	Case     *model.Case
	Lines    []model.LineItem // every line in the case
	Charge   []model.LineItem // charge-basis lines (bill lines when a bill and an EOB are both present)
	Resp     []model.LineItem // lines carrying patient responsibility, EOB copy first
	ByID     map[string]*model.LineItem
	DocTypes map[string]model.DocType
	Matches  []model.Match
	Network  model.Network // inferred
	Cfg      config.RuleConfig
}

// NewInput builds the rule view of a case.
func NewInput(c *model.Case, matches []model.Match, network model.Network, cfg config.RuleConfig) *Input {
	in := &Input{
		Case:     c,
		Lines:    c.LineItems,
		Charge:   c.ChargeLines(),
		ByID:     make(map[string]*model.LineItem, len(c.LineItems)),
		DocTypes: c.DocTypes(),
		Matches:  matches,
		Network:  network,
		Cfg:      cfg,
	}
	for i := range c.LineItems {
		in.ByID[c.LineItems[i].LineID] = &c.LineItems[i]
	}
	in.Resp = respLines(c, matches, in.DocTypes)
	return in
}

// respLines picks, per service, the line whose patient responsibility
// counts: EOB lines when the case has them, plus bill lines with no EOB
// counterpart. A case without EOB amounts uses the charge-basis lines.
func respLines(c *model.Case, matches []model.Match, types map[string]model.DocType) []model.LineItem {
	var eob []model.LineItem
	for _, l := range c.LineItems {
		if l.PatientRespCents != nil && types[l.ArtifactID] == model.DocEOB {
			eob = append(eob, l)
		}
	}
	if len(eob) == 0 {
		return c.ResponsibilityLines()
	}
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.EOBLineID != "" {
			matched[m.BillLineID] = true
		}
	}
	out := eob
	for _, l := range c.LineItems {
		if l.PatientRespCents == nil || types[l.ArtifactID] != model.DocBill || matched[l.LineID] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// linesOfArtifact returns the lines belonging to one artifact.
func (in *Input) linesOfArtifact(id string) []model.LineItem {
	var out []model.LineItem
	for _, l := range in.Lines {
		if l.ArtifactID == id {
			out = append(out, l)
		}
	}
	return out
}

// hasDoc reports whether the case has at least one line from a document of type dt.
func (in *Input) hasDoc(dt model.DocType) bool {
	for _, l := range in.Lines {
		if in.DocTypes[l.ArtifactID] == dt {
			return true
		}
	}
	return false
}
