package rules

import (
	"strconv"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
)

// cptNumber returns the numeric value of a five-digit CPT code.
func cptNumber(code string) (int, bool) {
	if len(code) != 5 {
		return 0, false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, false
	}
	return n, true
}

func inRange(code string, lo, hi int) bool {
	n, ok := cptNumber(code)
	return ok && n >= lo && n <= hi
}

func isEM(code string) bool         { return inRange(code, 99202, 99499) }
func isEDVisit(code string) bool    { return inRange(code, 99281, 99285) }
func isAnesthesia(code string) bool { return inRange(code, 100, 1999) }
func isSurgery(code string) bool    { return inRange(code, 10004, 69990) }
func isRadiology(code string) bool  { return inRange(code, 70010, 79999) }
func isPathology(code string) bool  { return inRange(code, 80047, 89398) }

// isPreventiveEM covers the preventive medicine visit range, which is not
// subject to the global surgery package.
func isPreventiveEM(code string) bool {
	return inRange(code, 99381, 99429)
}

// isDrug reports whether code is a HCPCS J-code (drugs administered other than oral).
func isDrug(code string) bool {
	if len(code) != 5 || code[0] != 'J' {
		return false
	}
	_, err := strconv.Atoi(code[1:])
	return err == nil
}

// Timed physical medicine codes, billed in 15-minute units.
var therapyTimedCodes = set(
	"97110", "97112", "97113", "97116", "97140", "97530", "97533", "97535",
	"97537", "97542", "97750", "97755", "97760", "97761", "97763", "92526",
)

// Modifiers indicating a legitimate repeat or distinct service.
var repeatModifiers = []string{"76", "77", "91", "59", "XE", "XS", "XP", "XU"}

// Modifiers that take an E/M out of the global surgery package.
var globalExemptModifiers = []string{"24", "25", "57", "79"}

var anesthesiaModifiers = []string{"AA", "AD", "QK", "QX", "QY", "QZ"}

var assistantModifiers = []string{"80", "81", "82", "AS"}

func revenuePrefix(l *model.LineItem, prefixes ...string) bool {
	if l.RevenueCode == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(l.RevenueCode, p) {
			return true
		}
	}
	return false
}

func set(codes ...string) map[string]bool {
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// normalizeRemark reduces "CO-29", "co 29" and "29" to "29".
func normalizeRemark(r string) string {
	r = strings.ToUpper(strings.TrimSpace(r))
	r = strings.NewReplacer("-", "", " ", "").Replace(r)
	for _, group := range []string{"CO", "PR", "OA", "PI", "CR"} {
		if strings.HasPrefix(r, group) {
			return strings.TrimPrefix(r, group)
		}
	}
	return r
}

func hasRemark(m *model.DocumentMeta, codes ...string) bool {
	for _, r := range m.RemarkCodes {
		n := normalizeRemark(r)
		for _, c := range codes {
			if n == c {
				return true
			}
		}
	}
	return false
}
