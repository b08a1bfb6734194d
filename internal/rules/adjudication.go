package rules

import (
	"fmt"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// checkMathError verifies patient responsibility equals allowed minus plan
// paid on every line that carries all three amounts.
func checkMathError(in *Input) []model.Detection {
	var out []model.Detection
	for _, l := range in.Lines {
		if l.AllowedCents == nil || l.PlanPaidCents == nil || l.PatientRespCents == nil {
			continue
		}
		allowed, paid, resp := *l.AllowedCents, *l.PlanPaidCents, *l.PatientRespCents
		expected := max(allowed-paid, 0)
		diff := resp - expected
		if diff < 0 {
			diff = -diff
		}
		if diff <= in.Cfg.MathToleranceCents {
			continue
		}
		d := newDetection(KeyMathError, model.CategoryMathError, model.SeverityHigh,
			fmt.Sprintf("Line %s: allowed %s minus plan paid %s leaves %s, but the patient was assigned %s (a %s difference).",
				l.LineID, normalize.FormatCents(allowed), normalize.FormatCents(paid),
				normalize.FormatCents(expected), normalize.FormatCents(resp), normalize.FormatCents(diff)),
			[]model.LineItem{l}, citeAdjudication)
		d = withDelta(d, expected, resp,
			term("allowed", allowed), term("plan paid", -paid), term("patient responsibility", resp))
		out = append(out, withQuestions(d, "Can you explain how the patient responsibility on this line was calculated?"))
	}
	return out
}

// checkTimelyFiling flags patient balances on claims denied for late filing
// (CARC 29), which the provider must write off, and bills issued long after
// the date of service.
func checkTimelyFiling(in *Input) []model.Detection {
	var out []model.Detection
	for i := range in.Case.Meta {
		m := &in.Case.Meta[i]
		switch in.DocTypes[m.ArtifactID] {
		case model.DocEOB:
			if !hasRemark(m, "29") {
				continue
			}
			var owed []model.LineItem
			for _, l := range in.linesOfArtifact(m.ArtifactID) {
				if model.Cents(l.PatientRespCents) > 0 {
					owed = append(owed, l)
				}
			}
			if len(owed) == 0 {
				continue
			}
			resp := sumResp(owed)
			d := newDetection(KeyTimelyFiling, model.CategoryTimelyFiling, model.SeverityHigh,
				fmt.Sprintf("The claim was denied for timely filing (CARC 29) yet %s was assigned to the patient. A network provider that files late must write the balance off.",
					normalize.FormatCents(resp)),
				owed, citeTimelyFiling, citeTimelyFilingContract)
			out = append(out, withDelta(d, 0, resp, term("patient responsibility", resp)))

		case model.DocBill:
			stmt := normalize.ParseDate(m.StatementDate)
			if stmt == nil {
				continue
			}
			var late []model.LineItem
			for _, l := range in.linesOfArtifact(m.ArtifactID) {
				if sd, ok := l.ServiceDate(); ok && normalize.DaysBetween(sd, *stmt) > in.Cfg.TimelyFilingDays {
					late = append(late, l)
				}
			}
			if len(late) == 0 {
				continue
			}
			d := newDetection(KeyTimelyFiling, model.CategoryTimelyFiling, model.SeverityWarn,
				fmt.Sprintf("The statement dated %s bills %d service(s) more than %d days old; a claim filed past the payer's deadline cannot be billed to the patient.",
					m.StatementDate, len(late), in.Cfg.TimelyFilingDays),
				late, citeTimelyFiling, citeTimelyFilingContract)
			out = append(out, withQuestions(d, "When was this claim first submitted to my insurance?"))
		}
	}
	return out
}

// checkCOB flags patient balances when the payer denied or reduced the claim
// pending coordination with other coverage.
func checkCOB(in *Input) []model.Detection {
	var out []model.Detection
	for i := range in.Case.Meta {
		m := &in.Case.Meta[i]
		if !hasRemark(m, "22") && !m.OtherCoverage && !remarksMention(m, "coordination of benefits", "other insurance", "other coverage", "primary insurance") {
			continue
		}
		var owed []model.LineItem
		for _, l := range in.linesOfArtifact(m.ArtifactID) {
			if model.Cents(l.PatientRespCents) > 0 {
				owed = append(owed, l)
			}
		}
		if len(owed) == 0 {
			continue
		}
		d := newDetection(KeyCOB, model.CategoryCOB, model.SeverityWarn,
			fmt.Sprintf("The claim references coordination of benefits and assigns %s to the patient. Once the other coverage is resolved the claim should be reprocessed before the patient pays.",
				normalize.FormatCents(sumResp(owed))),
			owed, citeCOB)
		out = append(out, withQuestions(d,
			"Which plan do you have on file as primary for this date of service?",
			"Will you reprocess the claim once I confirm I have no other coverage?"))
	}
	return out
}

func remarksMention(m *model.DocumentMeta, phrases ...string) bool {
	for _, r := range m.Remarks {
		if normalize.ContainsAny(r, phrases...) {
			return true
		}
	}
	return false
}

var summaryKeywords = []string{
	"balance forward", "previous balance", "total charges", "amount due",
	"summary of charges", "hospital services", "miscellaneous", "supplies",
}

// checkItemizedBill flags cases that cannot be audited line by line: an EOB
// with no bill, or bill lines that are summary buckets without codes.
func checkItemizedBill(in *Input) []model.Detection {
	if in.hasDoc(model.DocEOB) && !in.hasDoc(model.DocBill) {
		d := newDetection(KeyItemizedBill, model.CategoryItemizedBill, model.SeverityInfo,
			"Only an Explanation of Benefits was provided. Request an itemized bill with procedure codes to check the provider's charges.",
			nil, citeItemizedBill)
		return []model.Detection{withQuestions(d, "Please send an itemized bill with CPT/HCPCS codes for every charge.")}
	}

	var vague []model.LineItem
	for _, l := range in.Lines {
		if in.DocTypes[l.ArtifactID] != model.DocBill {
			continue
		}
		if strings.TrimSpace(l.Code) == "" || normalize.ContainsAny(l.Description, summaryKeywords...) {
			vague = append(vague, l)
		}
	}
	if len(vague) == 0 {
		return nil
	}
	d := newDetection(KeyItemizedBill, model.CategoryItemizedBill, model.SeverityInfo,
		fmt.Sprintf("%d bill line(s) totaling %s are summary charges without procedure codes; an itemized bill is needed to check them.",
			len(vague), normalize.FormatCents(sumCharges(vague))),
		vague, citeItemizedBill)
	return []model.Detection{withQuestions(d, "Please send an itemized bill with CPT/HCPCS codes for every charge.")}
}

// checkBillEOB compares each matched bill line with its EOB line. A bill
// asking for more than the EOB's patient responsibility is balance billing.
func checkBillEOB(in *Input) []model.Detection {
	if !in.hasDoc(model.DocEOB) || !in.hasDoc(model.DocBill) {
		return nil
	}
	var out []model.Detection
	var unmatched []model.LineItem
	for _, m := range in.Matches {
		b := in.ByID[m.BillLineID]
		if b == nil {
			continue
		}
		if m.MatchType == model.MatchUnmatched {
			unmatched = append(unmatched, *b)
			continue
		}
		e := in.ByID[m.EOBLineID]
		if e == nil || b.PatientRespCents == nil || e.PatientRespCents == nil {
			continue
		}
		billed, owed := *b.PatientRespCents, *e.PatientRespCents
		if billed <= owed+in.Cfg.MathToleranceCents {
			continue
		}
		d := newDetection(KeyBillEOB, model.CategoryBillEOB, model.SeverityHigh,
			fmt.Sprintf("The bill asks %s for %s on %s, but the EOB limits patient responsibility to %s; the %s difference is balance billing.",
				normalize.FormatCents(billed), b.Code, b.DOS, normalize.FormatCents(owed), normalize.FormatCents(billed-owed)),
			[]model.LineItem{*b, *e}, citeBalanceBilling, citeAdjudication)
		d = withDelta(d, owed, billed, term("EOB patient responsibility", owed), term("billed to patient", billed))
		out = append(out, withQuestions(d, "Why does the bill differ from the amount my insurer says I owe?"))
	}
	if len(unmatched) > 0 {
		out = append(out, newDetection(KeyBillEOB, model.CategoryBillEOB, model.SeverityInfo,
			fmt.Sprintf("%d bill line(s) totaling %s have no matching line on the EOB and may not have been submitted to insurance.",
				len(unmatched), normalize.FormatCents(sumCharges(unmatched))),
			unmatched, citeAdjudication))
	}
	return out
}
