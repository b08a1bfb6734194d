package benefits

import (
	"strconv"

	"github.com/gyeh/billcheck/internal/model"
)

// ServiceCategory classifies a line for copay lookup. The first key found
// in the plan's copay table wins, so specific categories come first.
func ServiceCategory(l *model.LineItem) []string {
	n, numeric := 0, false
	if len(l.Code) == 5 {
		if v, err := strconv.Atoi(l.Code); err == nil {
			n, numeric = v, true
		}
	}
	switch {
	case l.POS == "23" || (numeric && n >= 99281 && n <= 99285) ||
		(len(l.RevenueCode) >= 3 && l.RevenueCode[:3] == "045"):
		return []string{"emergency", "er"}
	case l.POS == "20" || l.Code == "S9083" || l.Code == "S9088":
		return []string{"urgentCare", "urgent_care"}
	case l.POS == "02" || l.POS == "10" || l.HasAnyModifier("95", "GT"):
		return []string{"telehealth", "office", "primaryCare"}
	case numeric && n >= 99241 && n <= 99245:
		return []string{"specialist", "office"}
	case numeric && n >= 99202 && n <= 99215:
		return []string{"office", "primaryCare", "pcp"}
	case l.Code != "" && l.Code[0] == 'J' || l.Code != "" && l.Code[0] == 'N':
		return []string{"pharmacy", "drug"}
	}
	return nil
}

func copayFor(b *model.BenefitsContext, l *model.LineItem) (string, int64, bool) {
	for _, cat := range ServiceCategory(l) {
		if c, ok := b.CopayCents[cat]; ok {
			return cat, c, true
		}
	}
	return "", 0, false
}

// splitCopay separates lines governed by a copay from lines that go through
// the deductible and coinsurance.
func splitCopay(b *model.BenefitsContext, lines []model.LineItem) (copay, rest []model.LineItem) {
	for _, l := range lines {
		if _, _, ok := copayFor(b, &l); ok {
			copay = append(copay, l)
		} else {
			rest = append(rest, l)
		}
	}
	return copay, rest
}
