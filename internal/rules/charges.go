package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// checkDuplicates groups charge lines by (code, date of service). Lines with
// a repeat/distinct-procedure modifier are legitimate repeats and skipped.
func checkDuplicates(in *Input) []model.Detection {
	groups := make(map[string][]model.LineItem)
	var order []string
	for _, l := range in.Charge {
		if l.Code == "" || l.DOS == "" || l.HasAnyModifier(repeatModifiers...) {
			continue
		}
		k := l.Code + "|" + l.DOS
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], l)
	}

	var out []model.Detection
	for _, k := range order {
		g := groups[k]
		if len(g) < 2 {
			continue
		}
		d := newDetection(KeyDuplicate, model.CategoryDuplicate, model.SeverityHigh,
			fmt.Sprintf("Code %s was billed %d times on %s for a combined %s. Only one charge is expected unless the service was repeated and documented.",
				g[0].Code, len(g), g[0].DOS, normalize.FormatCents(sumCharges(g))),
			g, citeClaimsManualDup, citeNCCIManual)
		out = append(out, withQuestions(d,
			fmt.Sprintf("Was service %s really performed %d times on %s?", g[0].Code, len(g), g[0].DOS),
			"Can you provide the medical record documenting each repeated service?"))
	}
	return out
}

// checkUnbundling flags component codes billed alongside their comprehensive
// parent. Without an edit table it falls back to a table-check finding for
// dates carrying several distinct procedure codes.
func checkUnbundling(in *Input) []model.Detection {
	table := in.Cfg.BundlingEdits
	if len(table) == 0 {
		return unbundlingTableCheck(in)
	}

	present := make(map[string]bool)
	for _, l := range in.Charge {
		if l.Code != "" {
			present[l.Code] = true
		}
	}
	parents := make([]string, 0, len(table))
	for p := range table {
		if present[p] {
			parents = append(parents, p)
		}
	}
	sort.Strings(parents)

	var out []model.Detection
	for _, parent := range parents {
		comps := set(table[parent]...)
		var flagged []model.LineItem
		var codes []string
		for _, l := range in.Charge {
			if l.Code != parent && comps[l.Code] {
				flagged = append(flagged, l)
				codes = append(codes, l.Code)
			}
		}
		if len(flagged) == 0 {
			continue
		}
		d := newDetection(KeyUnbundling, model.CategoryUnbundling, model.SeverityHigh,
			fmt.Sprintf("Component code(s) %s were billed separately although comprehensive code %s already includes them (%s in component charges).",
				strings.Join(codes, ", "), parent, normalize.FormatCents(sumCharges(flagged))),
			flagged, citeNCCIEdits, citeNCCIManual)
		out = append(out, withQuestions(d,
			fmt.Sprintf("Why were %s billed in addition to %s?", strings.Join(codes, ", "), parent)))
	}
	return out
}

func unbundlingTableCheck(in *Input) []model.Detection {
	byDate := make(map[string][]model.LineItem)
	var dates []string
	for _, l := range in.Charge {
		n, ok := cptNumber(l.Code)
		if !ok || l.DOS == "" || isEM(l.Code) || n < 10004 {
			continue
		}
		if _, ok := byDate[l.DOS]; !ok {
			dates = append(dates, l.DOS)
		}
		byDate[l.DOS] = append(byDate[l.DOS], l)
	}
	sort.Strings(dates)

	var out []model.Detection
	for _, dos := range dates {
		g := byDate[dos]
		distinct := make(map[string]bool)
		for _, l := range g {
			distinct[l.Code] = true
		}
		if len(distinct) < 2 {
			continue
		}
		d := newDetection(KeyUnbundling, model.CategoryUnbundling, model.SeverityHigh,
			fmt.Sprintf("%d distinct procedure codes were billed on %s; no procedure-to-procedure edit table was supplied to confirm they may be billed together.",
				len(distinct), dos),
			g, citeNCCIEdits)
		out = append(out, degraded(d))
	}
	return out
}

// checkZeroBilled flags lines billed at $0 that still carry a patient balance.
func checkZeroBilled(in *Input) []model.Detection {
	var out []model.Detection
	for _, l := range in.Lines {
		if l.ChargeCents == nil || *l.ChargeCents != 0 || model.Cents(l.PatientRespCents) <= 0 {
			continue
		}
		resp := *l.PatientRespCents
		d := newDetection(KeyZeroBilled, model.CategoryZeroBilled, model.SeverityHigh,
			fmt.Sprintf("Line %s shows a $0.00 charge but assigns %s to the patient.", l.LineID, normalize.FormatCents(resp)),
			[]model.LineItem{l}, citeAdjudication)
		out = append(out, withDelta(d, 0, resp, term("charge", 0), term("patient responsibility", resp)))
	}
	return out
}

var nonProviderFeeKeywords = []string{
	"statement fee", "billing fee", "late fee", "late charge", "convenience fee",
	"processing fee", "administrative fee", "admin fee", "finance charge",
	"interest charge", "collection fee", "paper bill fee", "service charge",
}

// checkNonProviderFees flags administrative fees that are not medical services.
func checkNonProviderFees(in *Input) []model.Detection {
	var hits []model.LineItem
	for _, l := range in.Charge {
		if normalize.ContainsAny(l.Description, nonProviderFeeKeywords...) {
			hits = append(hits, l)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	d := newDetection(KeyNonProviderFee, model.CategoryNonProviderFee, model.SeverityWarn,
		fmt.Sprintf("%d line(s) totaling %s are administrative or finance fees rather than medical services.",
			len(hits), normalize.FormatCents(sumCharges(hits))),
		hits, citeNonProviderFee)
	return []model.Detection{withQuestions(d, "What agreement authorizes these administrative fees?")}
}

// checkProTechSplit flags a professional (26) or technical (TC) component
// billed alongside the global service for the same code and date.
func checkProTechSplit(in *Input) []model.Detection {
	type bucket struct {
		global     bool
		components []model.LineItem
	}
	groups := make(map[string]*bucket)
	var order []string
	for _, l := range in.Charge {
		if l.Code == "" || l.DOS == "" {
			continue
		}
		k := l.Code + "|" + l.DOS
		b, ok := groups[k]
		if !ok {
			b = &bucket{}
			groups[k] = b
			order = append(order, k)
		}
		if l.HasAnyModifier("26", "TC") {
			b.components = append(b.components, l)
		} else {
			b.global = true
		}
	}

	var out []model.Detection
	for _, k := range order {
		b := groups[k]
		if !b.global || len(b.components) == 0 {
			continue
		}
		c := b.components[0]
		out = append(out, newDetection(KeyProTech, model.CategoryProTech, model.SeverityHigh,
			fmt.Sprintf("Code %s on %s was billed globally and again as a professional/technical component; the global charge already includes both components.",
				c.Code, c.DOS),
			b.components, citeProTech))
	}
	return out
}

// checkUnitSanity flags implausible unit counts: J-code drugs above the
// configured ceiling, timed therapy above the daily ceiling, and E/M visits
// billed with more than one unit.
func checkUnitSanity(in *Input) []model.Detection {
	var out []model.Detection
	therapyByDate := make(map[string][]model.LineItem)
	var dates []string

	for _, l := range in.Charge {
		switch {
		case isDrug(l.Code) && l.Units > in.Cfg.DrugUnitMax:
			out = append(out, newDetection(KeyUnitSanity, model.CategoryUnits, model.SeverityWarn,
				fmt.Sprintf("Drug code %s was billed with %d units, above the %d-unit plausibility ceiling.", l.Code, l.Units, in.Cfg.DrugUnitMax),
				[]model.LineItem{l}, citeMUE))
		case isEM(l.Code) && l.Units > 1:
			out = append(out, newDetection(KeyUnitSanity, model.CategoryUnits, model.SeverityWarn,
				fmt.Sprintf("Visit code %s was billed with %d units; an evaluation and management visit is one unit per encounter.", l.Code, l.Units),
				[]model.LineItem{l}, citeMUE))
		case therapyTimedCodes[l.Code] && l.DOS != "":
			if _, ok := therapyByDate[l.DOS]; !ok {
				dates = append(dates, l.DOS)
			}
			therapyByDate[l.DOS] = append(therapyByDate[l.DOS], l)
		}
	}

	sort.Strings(dates)
	for _, dos := range dates {
		g := therapyByDate[dos]
		units := 0
		for _, l := range g {
			units += max(l.Units, 1)
		}
		if units <= in.Cfg.TherapyUnitsPerDayMax {
			continue
		}
		out = append(out, newDetection(KeyUnitSanity, model.CategoryUnits, model.SeverityWarn,
			fmt.Sprintf("%d timed therapy units (%d minutes) were billed on %s, above the %d-unit daily ceiling.",
				units, units*15, dos, in.Cfg.TherapyUnitsPerDayMax),
			g, citeMUE))
	}
	return out
}
