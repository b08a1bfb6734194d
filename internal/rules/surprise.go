package rules

import (
	"fmt"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// checkFacilityFee flags facility or clinic fees. The finding is high when
// professional services were billed on the same claim, since the patient
// then pays twice for one visit.
func checkFacilityFee(in *Input) []model.Detection {
	codes := set(in.Cfg.FacilityFeeCodes...)
	var fees []model.LineItem
	professional := false
	for _, l := range in.Charge {
		switch {
		case codes[l.Code] || revenuePrefix(&l, "051", "052") ||
			normalize.ContainsAny(l.Description, "facility fee", "facility charge", "clinic fee", "hospital outpatient clinic"):
			fees = append(fees, l)
		case isEM(l.Code) || isSurgery(l.Code):
			professional = true
		}
	}
	if len(fees) == 0 {
		return nil
	}
	sev := model.SeverityInfo
	explanation := fmt.Sprintf("%d facility fee line(s) totaling %s were billed. Hospital-owned clinics may add this charge on top of the physician's fee.",
		len(fees), normalize.FormatCents(sumCharges(fees)))
	if professional {
		sev = model.SeverityHigh
		explanation = fmt.Sprintf("A facility fee of %s was billed alongside the professional visit charge on the same claim; the visit is being billed twice under two fee schedules.",
			normalize.FormatCents(sumCharges(fees)))
	}
	d := newDetection(KeyFacilityFee, model.CategoryFacilityFee, sev, explanation, fees, citeFacilityFee, citeStateFacilityFee)
	return []model.Detection{withQuestions(d,
		"Was this visit at a hospital outpatient department, and was I told about the facility fee in advance?",
		"Does my state limit facility fees for office-based services?")}
}

// nsaGated reports whether the No Surprises Act rules should look at the
// case at all: there must be a surprise-bill signal and no evidence that
// the care was in network.
func nsaGated(in *Input) bool {
	n := in.Case.Narrative
	signal := n.Emergency || n.NSACandidate || len(n.AncillaryVendors) > 0 ||
		n.HasTag("anesthesia") || n.HasTag("surpriseBill") || n.HasTag("ER") ||
		len(emergencyLines(in)) > 0
	if !signal {
		return false
	}
	declaredIn := in.Case.Benefits != nil && in.Case.Benefits.Network == model.NetworkIn
	if declaredIn && in.Network == model.NetworkIn && !n.HasTag("surpriseBill") {
		return false
	}
	return true
}

func isAncillary(l *model.LineItem) bool {
	return isAnesthesia(l.Code) || isPathology(l.Code) || isRadiology(l.Code) ||
		l.HasAnyModifier(anesthesiaModifiers...) || l.HasAnyModifier(assistantModifiers...)
}

func isEmergencyLine(l *model.LineItem) bool {
	return revenuePrefix(l, "045") || l.POS == "23" || isEDVisit(l.Code) ||
		inRangeHCPCS(l.Code, 'G', 380, 384) ||
		normalize.ContainsAny(l.Description, "emergency")
}

func inRangeHCPCS(code string, prefix byte, lo, hi int) bool {
	if len(code) != 5 || code[0] != prefix {
		return false
	}
	n := 0
	for _, c := range code[1:] {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= lo && n <= hi
}

func emergencyLines(in *Input) []model.LineItem {
	var out []model.LineItem
	for _, l := range in.Charge {
		if isEmergencyLine(&l) {
			out = append(out, l)
		}
	}
	return out
}

// nsaDetection carries the in-network-equivalent estimate as its math delta.
func nsaDetection(in *Input, key, explanation string, lines []model.LineItem, cites ...model.Citation) model.Detection {
	charge := sumCharges(lines)
	expected := normalize.ApplyRate(charge, in.Cfg.NSAInNetworkRatio)
	d := newDetection(key, model.CategoryNSA, model.SeverityHigh, explanation, lines, cites...)
	return withDelta(d, expected, charge,
		term("billed charges", charge),
		term(fmt.Sprintf("in-network equivalent (%.0f%%)", in.Cfg.NSAInNetworkRatio*100), expected))
}

// checkNSAAncillary flags anesthesia, pathology, radiology and assistant
// services, which are protected from balance billing at in-network facilities.
func checkNSAAncillary(in *Input) []model.Detection {
	if !nsaGated(in) {
		return nil
	}
	var hits []model.LineItem
	for _, l := range in.Charge {
		if isAncillary(&l) {
			hits = append(hits, l)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	d := nsaDetection(in, KeyNSAAncillary,
		fmt.Sprintf("%d ancillary service line(s) totaling %s (anesthesia, pathology, radiology or assistant services) may be protected by the No Surprises Act; out-of-network ancillary providers at an in-network facility cannot balance bill.",
			len(hits), normalize.FormatCents(sumCharges(hits))),
		hits, citeNSAAncillary, citeBalanceBilling)
	return []model.Detection{withQuestions(d,
		"Was the facility in my plan's network?",
		"Did I sign a written notice-and-consent form waiving No Surprises Act protections for these providers?")}
}

// checkNSAEmergency flags emergency department lines, which must be billed
// at in-network cost sharing regardless of network status.
func checkNSAEmergency(in *Input) []model.Detection {
	if !nsaGated(in) {
		return nil
	}
	hits := emergencyLines(in)
	if len(hits) == 0 {
		return nil
	}
	d := nsaDetection(in, KeyNSAEmergency,
		fmt.Sprintf("%d emergency line(s) totaling %s are covered by the No Surprises Act; emergency care must be charged at in-network cost sharing.",
			len(hits), normalize.FormatCents(sumCharges(hits))),
		hits, citeNSAEmergency, citeBalanceBilling)
	return []model.Detection{withQuestions(d,
		"Was my cost sharing for this emergency visit calculated at the in-network rate?")}
}

var preventiveKeywords = []string{
	"preventive", "annual physical", "well visit", "wellness", "screening",
	"immunization", "vaccine", "counseling",
}

// checkPreventive flags patient cost sharing on ACA preventive services.
// Without a code list it falls back to description keywords.
func checkPreventive(in *Input) []model.Detection {
	codes := set(in.Cfg.PreventiveCodes...)
	tableMissing := len(codes) == 0

	var out []model.Detection
	for _, l := range in.Resp {
		resp := model.Cents(l.PatientRespCents)
		if resp <= 0 {
			continue
		}
		match := codes[l.Code] || l.HasModifier("33")
		if tableMissing {
			match = l.HasModifier("33") || normalize.ContainsAny(l.Description, preventiveKeywords...)
		}
		if !match {
			continue
		}
		d := newDetection(KeyPreventive, model.CategoryPreventive, model.SeverityHigh,
			fmt.Sprintf("Preventive service %s was assigned %s in patient cost sharing; covered preventive services must be provided without cost sharing in network.",
				l.Code, normalize.FormatCents(resp)),
			[]model.LineItem{l}, citePreventive)
		d = withDelta(d, 0, resp, term("patient responsibility", resp))
		d = withQuestions(d, "Was this visit coded as preventive, or was a diagnostic service added?")
		if tableMissing {
			d = degraded(d)
		}
		out = append(out, d)
	}
	return out
}
