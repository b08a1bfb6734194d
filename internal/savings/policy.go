package savings

import "github.com/gyeh/billcheck/internal/model"

// Priority tiers, lowest allocated first. Larger, more certain recoveries
// claim their lines before speculative findings can.
const (
	TierMathError = iota
	TierDuplicate
	TierUnbundling
	TierSurpriseBilling // facility fees and No Surprises Act
	TierPreventive
	TierOOPMax
	TierBenefits
	TierOther
)

// oopMaxKey is the benefits rule that caps every other cost-sharing model.
const oopMaxKey = "oop_max"

// Priority returns the allocation tier of d.
func Priority(d *model.Detection) int {
	switch d.Category {
	case model.CategoryMathError:
		return TierMathError
	case model.CategoryDuplicate:
		return TierDuplicate
	case model.CategoryUnbundling:
		return TierUnbundling
	case model.CategoryFacilityFee, model.CategoryNSA:
		return TierSurpriseBilling
	case model.CategoryPreventive:
		return TierPreventive
	case model.CategoryBenefitsMath:
		if d.RuleKey == oopMaxKey {
			return TierOOPMax
		}
		return TierBenefits
	case model.CategoryNetwork:
		return TierBenefits
	}
	return TierOther
}

// fallbackRate is the share of affected charges assumed recoverable when a
// finding has no rule-specific estimator.
func fallbackRate(s model.Severity) float64 {
	switch s {
	case model.SeverityHigh:
		return 0.20
	case model.SeverityWarn:
		return 0.10
	}
	return 0.05
}
