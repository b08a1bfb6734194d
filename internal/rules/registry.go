// Package rules holds the detection rule catalog. Each rule is a pure
// function over a shared Input returning zero or more findings with no
// savings assigned; the Suite runs them and concatenates results in
// catalog order.
package rules

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/gyeh/billcheck/internal/model"
)

// Rule is one entry of the catalog.
type Rule struct {
	Key      string
	Category model.Category
	Check    func(in *Input) []model.Detection
}

// Catalog returns every rule in canonical order: larger, more certain
// recoveries first so the savings allocator credits them before
// speculative findings.
func Catalog() []Rule {
	return []Rule{
		{KeyMathError, model.CategoryMathError, checkMathError},
		{KeyDuplicate, model.CategoryDuplicate, checkDuplicates},
		{KeyUnbundling, model.CategoryUnbundling, checkUnbundling},
		{KeyFacilityFee, model.CategoryFacilityFee, checkFacilityFee},
		{KeyNSAAncillary, model.CategoryNSA, checkNSAAncillary},
		{KeyNSAEmergency, model.CategoryNSA, checkNSAEmergency},
		{KeyPreventive, model.CategoryPreventive, checkPreventive},
		{KeyGlobalSurgery, model.CategoryGlobalSurgery, checkGlobalSurgery},
		{KeyModifier, model.CategoryModifier, checkModifiers},
		{KeyTimelyFiling, model.CategoryTimelyFiling, checkTimelyFiling},
		{KeyCOB, model.CategoryCOB, checkCOB},
		{KeyZeroBilled, model.CategoryZeroBilled, checkZeroBilled},
		{KeyNonProviderFee, model.CategoryNonProviderFee, checkNonProviderFees},
		{KeyObservation, model.CategoryObservation, checkObservation},
		{KeyItemizedBill, model.CategoryItemizedBill, checkItemizedBill},
		{KeyUnitSanity, model.CategoryUnits, checkUnitSanity},
		{KeyProTech, model.CategoryProTech, checkProTechSplit},
		{KeyBillEOB, model.CategoryBillEOB, checkBillEOB},
	}
}

// Fault records a rule that panicked; its findings are dropped.
type Fault struct {
	RuleKey string
	Err     error
}

// Suite evaluates a rule list. Workers > 1 evaluates rules concurrently;
// output order is always the rule order.
type Suite struct {
	Rules   []Rule
	Workers int
}

// NewSuite returns a suite over the full catalog.
func NewSuite(workers int) *Suite {
	return &Suite{Rules: Catalog(), Workers: workers}
}

// Run applies every rule to in. A rule that panics contributes no findings
// and one Fault; the remaining rules are unaffected.
func (s *Suite) Run(in *Input) ([]model.Detection, []Fault) {
	results := make([][]model.Detection, len(s.Rules))
	faults := make([]error, len(s.Rules))

	if s.Workers <= 1 {
		for i, r := range s.Rules {
			results[i], faults[i] = safeCheck(r, in)
		}
	} else {
		sem := make(chan struct{}, s.Workers)
		var wg sync.WaitGroup
		for i, r := range s.Rules {
			wg.Add(1)
			go func(idx int, r Rule) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[idx], faults[idx] = safeCheck(r, in)
			}(i, r)
		}
		wg.Wait()
	}

	var out []model.Detection
	var fs []Fault
	for i, r := range s.Rules {
		if faults[i] != nil {
			fs = append(fs, Fault{RuleKey: r.Key, Err: faults[i]})
			continue
		}
		for _, d := range results[i] {
			if d.RuleKey == "" {
				d.RuleKey = r.Key
			}
			if d.Category == "" {
				d.Category = r.Category
			}
			out = append(out, d)
		}
	}
	return out, fs
}

func safeCheck(r Rule, in *Input) (out []model.Detection, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("rule %s panicked: %v\n%s", r.Key, p, debug.Stack())
		}
	}()
	return r.Check(in), nil
}
