package rules

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// checkModifiers flags modifier 25 on non-E/M codes and laterality
// combinations that need documentation.
func checkModifiers(in *Input) []model.Detection {
	var out []model.Detection
	var bilateral []model.LineItem
	sides := make(map[string]map[string]bool) // code|dos -> modifiers seen

	for _, l := range in.Charge {
		if l.HasModifier("25") && l.Code != "" && !isEM(l.Code) {
			d := newDetection(KeyModifier, model.CategoryModifier, model.SeverityWarn,
				fmt.Sprintf("Modifier 25 is only valid on evaluation and management codes but was appended to %s.", l.Code),
				[]model.LineItem{l}, citeModifier25, citeNCCIManual)
			out = append(out, d)
		}
		if l.HasModifier("LT") && l.HasModifier("RT") {
			out = append(out, newDetection(KeyModifier, model.CategoryModifier, model.SeverityWarn,
				fmt.Sprintf("Line %s (%s) carries both LT and RT; a bilateral procedure is reported once with modifier 50.", l.LineID, l.Code),
				[]model.LineItem{l}, citeBilateral))
		}
		if l.HasModifier("50") && l.Units > 1 {
			out = append(out, newDetection(KeyModifier, model.CategoryModifier, model.SeverityWarn,
				fmt.Sprintf("Bilateral code %s (modifier 50) was billed with %d units; bilateral procedures are one unit.", l.Code, l.Units),
				[]model.LineItem{l}, citeBilateral))
		} else if l.HasModifier("50") {
			bilateral = append(bilateral, l)
		}
		if l.Code != "" && l.DOS != "" && l.HasAnyModifier("50", "LT", "RT") {
			k := l.Code + "|" + l.DOS
			if sides[k] == nil {
				sides[k] = make(map[string]bool)
			}
			for _, m := range []string{"50", "LT", "RT"} {
				if l.HasModifier(m) {
					sides[k][m] = true
				}
			}
		}
	}

	keys := make([]string, 0, len(sides))
	for k, s := range sides {
		if s["50"] && (s["LT"] || s["RT"]) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		code, dos, _ := strings.Cut(k, "|")
		var g []model.LineItem
		for _, l := range in.Charge {
			if l.Code == code && l.DOS == dos && l.HasAnyModifier("50", "LT", "RT") {
				g = append(g, l)
			}
		}
		out = append(out, newDetection(KeyModifier, model.CategoryModifier, model.SeverityWarn,
			fmt.Sprintf("Code %s on %s was billed as bilateral (50) and again with a side modifier, which can pay the same side twice.", code, dos),
			g, citeBilateral))
	}

	if len(bilateral) > 0 {
		out = append(out, newDetection(KeyModifier, model.CategoryModifier, model.SeverityInfo,
			fmt.Sprintf("%d line(s) use bilateral modifier 50; the operative report should document both sides.", len(bilateral)),
			bilateral, citeBilateral))
	}
	return out
}

// checkGlobalSurgery flags E/M visits inside a major surgery's global period
// (the day before through the configured number of days after).
func checkGlobalSurgery(in *Input) []model.Detection {
	major := set(in.Cfg.MajorSurgeryCodes...)
	tableMissing := len(major) == 0
	window := in.Cfg.GlobalPeriodDays

	var out []model.Detection
	for _, s := range in.Charge {
		if tableMissing && !isSurgery(s.Code) || !tableMissing && !major[s.Code] {
			continue
		}
		sd, ok := s.ServiceDate()
		if !ok {
			continue
		}
		var visits []model.LineItem
		for _, v := range in.Charge {
			if !isEM(v.Code) || isPreventiveEM(v.Code) || v.HasAnyModifier(globalExemptModifiers...) {
				continue
			}
			vd, ok := v.ServiceDate()
			if !ok {
				continue
			}
			if days := normalize.DaysBetween(sd, vd); days >= -1 && days <= window {
				visits = append(visits, v)
			}
		}
		if len(visits) == 0 {
			continue
		}
		d := newDetection(KeyGlobalSurgery, model.CategoryGlobalSurgery, model.SeverityWarn,
			fmt.Sprintf("%d visit(s) were billed within the %d-day global period of surgery %s on %s; routine pre- and post-operative care is included in the surgical fee.",
				len(visits), window, s.Code, sd.Format(time.DateOnly)),
			visits, citeGlobalSurgery)
		d = withQuestions(d, "Was each visit for a problem unrelated to the surgery (modifier 24 or 25)?")
		if tableMissing {
			d = degraded(d)
		}
		out = append(out, d)
	}
	return out
}

// checkObservation flags claims mixing observation status with inpatient
// room and board, and observation stays beyond the configured hours.
func checkObservation(in *Input) []model.Detection {
	var obs, room []model.LineItem
	hours := 0
	for _, l := range in.Charge {
		switch {
		case revenuePrefix(&l, "0760", "0762") || l.Code == "G0378" || l.Code == "G0379" ||
			normalize.ContainsAny(l.Description, "observation"):
			obs = append(obs, l)
			if l.Code == "G0378" || l.RevenueCode == "0762" {
				hours += l.Units
			}
		case revenuePrefix(&l, "010", "011", "012", "013", "014", "015", "016", "017", "018", "019", "020", "021") ||
			normalize.ContainsAny(l.Description, "room and board", "room & board", "semi-private", "semi private"):
			room = append(room, l)
		}
	}

	var out []model.Detection
	if len(obs) > 0 && len(room) > 0 {
		d := newDetection(KeyObservation, model.CategoryObservation, model.SeverityWarn,
			"The claim bills outpatient observation and inpatient room and board together; a stay is either observation or an inpatient admission, and the status changes the patient's cost sharing.",
			append(append([]model.LineItem{}, obs...), room...), citeObservation)
		out = append(out, withQuestions(d, "Was I formally admitted as an inpatient, and on what date?"))
	}
	if hours > in.Cfg.ObservationHoursMax {
		out = append(out, newDetection(KeyObservation, model.CategoryObservation, model.SeverityInfo,
			fmt.Sprintf("%d observation hours were billed, beyond the %d hours after which an admission decision is expected.", hours, in.Cfg.ObservationHoursMax),
			obs, citeObservation))
	}
	return out
}
