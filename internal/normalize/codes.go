package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

var modifierSplit = regexp.MustCompile(`[\s,;|/]+`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric characters.
// Returns nil if the input is nil or the result is empty.
func NormalizeCode(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToUpper(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	return &s
}

// Code is NormalizeCode for a plain string; empty in, empty out.
func Code(s string) string {
	if n := NormalizeCode(&s); n != nil {
		return *n
	}
	return ""
}

// Modifiers splits a modifier list ("25, LT" or "25 LT") into distinct
// normalized two-character codes, preserving first-seen order.
func Modifiers(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range modifierSplit.Split(raw, -1) {
		m := Code(part)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// RevenueCode left-pads a revenue code to its canonical four digits ("450" -> "0450").
func RevenueCode(s string) string {
	s = Code(s)
	if s == "" {
		return ""
	}
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
