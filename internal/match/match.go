// Package match aligns bill lines to EOB lines and infers network status
// from allowed-to-charge ratios. Everything here is a pure function of its
// inputs.
package match

import (
	"math"

	"github.com/gyeh/billcheck/internal/model"
)

const (
	inNetworkRatio  = 0.65
	outNetworkRatio = 0.45

	// amountTolerance is the largest relative charge difference a fuzzy
	// amount match accepts.
	amountTolerance = 0.10
)

// Align matches every bill line to at most one EOB line. Manual matches are
// honored first, then exact (code + date of service), then fuzzy (same code
// on another date, or charge proximity). The output has one entry per bill
// line, in input order.
func Align(c *model.Case) []model.Match {
	bill := c.LinesOf(model.DocBill)
	eob := c.LinesOf(model.DocEOB)
	if len(bill) == 0 {
		return nil
	}

	matches := make([]model.Match, len(bill))
	used := make(map[string]bool, len(eob))
	eobIDs := make(map[string]bool, len(eob))
	for _, e := range eob {
		eobIDs[e.LineID] = true
	}

	for i, b := range bill {
		matches[i] = model.Match{BillLineID: b.LineID, MatchType: model.MatchUnmatched}
		if target, ok := c.ManualMatches[b.LineID]; ok && eobIDs[target] && !used[target] {
			matches[i] = model.Match{BillLineID: b.LineID, EOBLineID: target, MatchConfidence: 1, MatchType: model.MatchManual}
			used[target] = true
		}
	}

	for i, b := range bill {
		if matches[i].MatchType != model.MatchUnmatched || b.Code == "" || b.DOS == "" {
			continue
		}
		for _, e := range eob {
			if used[e.LineID] || e.Code != b.Code || e.DOS != b.DOS {
				continue
			}
			conf := 0.9
			if b.ChargeCents != nil && e.ChargeCents != nil && *b.ChargeCents == *e.ChargeCents {
				conf = 1
			}
			matches[i] = model.Match{BillLineID: b.LineID, EOBLineID: e.LineID, MatchConfidence: conf, MatchType: model.MatchExact}
			used[e.LineID] = true
			break
		}
	}

	for i, b := range bill {
		if matches[i].MatchType != model.MatchUnmatched {
			continue
		}
		best, bestScore := -1, 0.0
		for j, e := range eob {
			if used[e.LineID] {
				continue
			}
			if s := fuzzyScore(&b, &eob[j]); s > bestScore {
				best, bestScore = j, s
			}
		}
		if best >= 0 {
			id := eob[best].LineID
			matches[i] = model.Match{BillLineID: b.LineID, EOBLineID: id, MatchConfidence: round2(bestScore), MatchType: model.MatchFuzzy}
			used[id] = true
		}
	}

	return matches
}

// fuzzyScore rates a candidate pair in (0, 0.85]; zero means no match.
func fuzzyScore(b, e *model.LineItem) float64 {
	var score float64
	if b.Code != "" && b.Code == e.Code {
		score = 0.7
	}
	if b.ChargeCents != nil && e.ChargeCents != nil {
		hi := max(*b.ChargeCents, *e.ChargeCents)
		if hi > 0 {
			diff := math.Abs(float64(*b.ChargeCents-*e.ChargeCents)) / float64(hi)
			if diff <= amountTolerance {
				s := 0.4 + 0.4*(1-diff/amountTolerance)
				if b.DOS != "" && b.DOS == e.DOS {
					s += 0.1
				}
				score = max(score, s)
			}
		}
	}
	return min(score, 0.85)
}

// AllowedRatio returns the mean allowed/charge ratio over lines carrying both
// values with a positive charge, and how many lines contributed.
func AllowedRatio(lines []model.LineItem) (float64, int) {
	var sum float64
	n := 0
	for _, l := range lines {
		if l.ChargeCents == nil || l.AllowedCents == nil || *l.ChargeCents <= 0 {
			continue
		}
		sum += float64(*l.AllowedCents) / float64(*l.ChargeCents)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// InferNetwork classifies network status from the mean allowed/charge ratio:
// above 0.65 in-network, below 0.45 out-of-network, otherwise unknown.
func InferNetwork(lines []model.LineItem) model.Network {
	ratio, n := AllowedRatio(lines)
	switch {
	case n == 0:
		return model.NetworkUnknown
	case ratio > inNetworkRatio:
		return model.NetworkIn
	case ratio < outNetworkRatio:
		return model.NetworkOut
	}
	return model.NetworkUnknown
}

// Unmatched returns the bill line ids without an EOB counterpart.
func Unmatched(matches []model.Match) []string {
	var ids []string
	for _, m := range matches {
		if m.MatchType == model.MatchUnmatched {
			ids = append(ids, m.BillLineID)
		}
	}
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
