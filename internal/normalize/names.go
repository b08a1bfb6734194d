package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, collapses whitespace, and trims the input.
// Returns nil if the input is nil or the result is empty.
func NormalizeName(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToLower(s)
	s = multiSpace.ReplaceAllString(s, " ")
	return &s
}

// Text is NormalizeName for a plain string, used for keyword matching on descriptions.
func Text(s string) string {
	if n := NormalizeName(&s); n != nil {
		return *n
	}
	return ""
}

// ContainsAny reports whether the normalized text contains any of the keywords.
func ContainsAny(text string, keywords ...string) bool {
	t := Text(text)
	if t == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most width runes, ending in "..." when cut.
func Truncate(s string, width int) string {
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
