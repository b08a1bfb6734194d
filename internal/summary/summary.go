// Package summary builds the priced summary: totals, a display table and
// descriptive notes. It describes the data and never flags it.
package summary

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/match"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// Note thresholds.
const (
	lowOCRConfidence  = 0.8
	lowAllowedRatio   = 0.3
	highAllowedRatio  = 0.9
	highRespToAllowed = 0.5
	manyLines         = 10
)

// Build summarizes c. Totals always cover every line; the display table is
// sorted by date of service then descending charge and capped at
// cfg.SummaryMaxLines rows.
func Build(c *model.Case, cfg config.RuleConfig) model.PricedSummary {
	s := model.PricedSummary{
		Header:  mergeHeader(c),
		Totals:  Totals(c.LineItems),
		Network: match.InferNetwork(c.LineItems),
	}

	rows := make([]model.SummaryLine, 0, len(c.LineItems))
	for _, l := range c.LineItems {
		rows = append(rows, model.SummaryLine{
			LineID:           l.LineID,
			Code:             l.Code,
			Description:      normalize.Truncate(l.Description, cfg.SummaryDescriptionWidth),
			DOS:              l.DOS,
			Units:            l.Units,
			ChargeCents:      model.Cents(l.ChargeCents),
			AllowedCents:     l.AllowedCents,
			PlanPaidCents:    l.PlanPaidCents,
			PatientRespCents: l.PatientRespCents,
		})
	}
	slices.SortStableFunc(rows, func(a, b model.SummaryLine) int {
		if c := cmp.Compare(a.DOS, b.DOS); c != 0 {
			return c
		}
		return cmp.Compare(b.ChargeCents, a.ChargeCents)
	})
	if cfg.SummaryMaxLines > 0 && len(rows) > cfg.SummaryMaxLines {
		rows = rows[:cfg.SummaryMaxLines]
	}
	s.Lines = rows
	s.Notes = notes(c, s)
	return s
}

// Totals sums the four money fields. Absent amounts count as zero.
func Totals(lines []model.LineItem) model.Totals {
	var t model.Totals
	for _, l := range lines {
		t.ChargeCents += model.Cents(l.ChargeCents)
		t.AllowedCents += model.Cents(l.AllowedCents)
		t.PlanPaidCents += model.Cents(l.PlanPaidCents)
		t.PatientRespCents += model.Cents(l.PatientRespCents)
	}
	return t
}

func notes(c *model.Case, s model.PricedSummary) []string {
	out := []string{}

	for _, a := range c.Artifacts {
		if a.OCRConfidence > 0 && a.OCRConfidence < lowOCRConfidence {
			out = append(out, fmt.Sprintf("Text recognition confidence for %s is %.0f%%; verify amounts against the original document.",
				artifactName(a), a.OCRConfidence*100))
		}
	}

	if ratio, n := match.AllowedRatio(c.LineItems); n > 0 {
		switch {
		case ratio < lowAllowedRatio:
			out = append(out, fmt.Sprintf("The plan allowed only %.0f%% of billed charges on average, which is typical of out-of-network pricing.", ratio*100))
		case ratio > highAllowedRatio:
			out = append(out, fmt.Sprintf("The plan allowed %.0f%% of billed charges on average; little contractual discount was applied.", ratio*100))
		}
	}

	if t := s.Totals; t.AllowedCents > 0 && float64(t.PatientRespCents)/float64(t.AllowedCents) > highRespToAllowed {
		out = append(out, fmt.Sprintf("Patient responsibility of %s is more than half of the %s allowed.",
			normalize.FormatCents(t.PatientRespCents), normalize.FormatCents(t.AllowedCents)))
	}

	if len(c.Artifacts) > 1 {
		out = append(out, fmt.Sprintf("%d documents were combined for this analysis.", len(c.Artifacts)))
	}

	if first, last := dateRange(c.LineItems); first != "" {
		if first == last {
			out = append(out, fmt.Sprintf("All services are dated %s.", first))
		} else {
			out = append(out, fmt.Sprintf("Services span %s to %s.", first, last))
		}
	}

	if len(c.LineItems) > manyLines {
		out = append(out, fmt.Sprintf("The case has %d line items.", len(c.LineItems)))
	}
	return out
}

func artifactName(a model.DocumentArtifact) string {
	if a.Filename != "" {
		return a.Filename
	}
	return a.ArtifactID
}

func dateRange(lines []model.LineItem) (first, last string) {
	for _, l := range lines {
		if l.DOS == "" {
			continue
		}
		if first == "" || l.DOS < first {
			first = l.DOS
		}
		if last == "" || l.DOS > last {
			last = l.DOS
		}
	}
	return first, last
}

// mergeHeader takes each field from the first document that has it, bills
// before EOBs before anything else. The service date range is widened to
// cover every document and line.
func mergeHeader(c *model.Case) model.Header {
	types := c.DocTypes()
	metas := slices.Clone(c.Meta)
	rank := func(m model.DocumentMeta) int {
		switch types[m.ArtifactID] {
		case model.DocBill:
			return 0
		case model.DocEOB:
			return 1
		}
		return 2
	}
	slices.SortStableFunc(metas, func(a, b model.DocumentMeta) int { return cmp.Compare(rank(a), rank(b)) })

	var h model.Header
	first := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	for _, m := range metas {
		first(&h.ProviderName, m.ProviderName)
		first(&h.ProviderNPI, m.ProviderNPI)
		first(&h.PayerName, m.PayerName)
		first(&h.ClaimID, m.ClaimID)
		first(&h.AccountID, m.AccountID)
		first(&h.AppealDeadline, m.AppealDeadline)
		h.ServiceDateStart = earlier(h.ServiceDateStart, m.ServiceDateStart)
		h.ServiceDateEnd = later(h.ServiceDateEnd, m.ServiceDateEnd)
	}
	lo, hi := dateRange(c.LineItems)
	h.ServiceDateStart = earlier(h.ServiceDateStart, lo)
	h.ServiceDateEnd = later(h.ServiceDateEnd, hi)
	return h
}

func earlier(a, b string) string {
	if a == "" || (b != "" && b < a) {
		return b
	}
	return a
}

func later(a, b string) string {
	if a == "" || b > a {
		return b
	}
	return a
}
