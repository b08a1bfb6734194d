package rules

import "github.com/gyeh/billcheck/internal/model"

// Static policy citations. They are the audit trail appeal letters quote,
// so every finding carries at least one.
var (
	citeNCCIManual = model.Citation{
		Title:     "National Correct Coding Initiative Policy Manual",
		Authority: model.AuthorityCMS,
		Citation:  "NCCI Policy Manual for Medicare Services, Ch. I, General Correct Coding Policies",
		URL:       "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits",
	}
	citeNCCIEdits = model.Citation{
		Title:     "NCCI Procedure-to-Procedure Edits",
		Authority: model.AuthorityCMS,
		Citation:  "CMS NCCI PTP edit tables, column one / column two code pairs",
		URL:       "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-procedure-procedure-ptp-edits",
	}
	citeClaimsManualDup = model.Citation{
		Title:     "Medicare Claims Processing Manual, duplicate claims",
		Authority: model.AuthorityCMS,
		Citation:  "Pub. 100-04, Ch. 1, §120",
	}
	citeModifier25 = model.Citation{
		Title:     "Modifier 25 significant, separately identifiable E/M service",
		Authority: model.AuthorityCMS,
		Citation:  "Medicare Claims Processing Manual, Pub. 100-04, Ch. 12, §30.6.6",
	}
	citeBilateral = model.Citation{
		Title:     "Bilateral procedure payment indicators",
		Authority: model.AuthorityCMS,
		Citation:  "Medicare Claims Processing Manual, Pub. 100-04, Ch. 12, §40.7",
	}
	citeFacilityFee = model.Citation{
		Title:     "Provider-based status and facility fees",
		Authority: model.AuthorityCMS,
		Citation:  "42 CFR 413.65",
	}
	citeStateFacilityFee = model.Citation{
		Title:     "State facility fee disclosure requirements",
		Authority: model.AuthorityStateDOI,
		Citation:  "State facility fee notice statute (jurisdiction-specific)",
	}
	citeNSAEmergency = model.Citation{
		Title:     "No Surprises Act, emergency services",
		Authority: model.AuthorityFederal,
		Citation:  "42 U.S.C. 300gg-111(a); 45 CFR 149.110",
		URL:       "https://www.cms.gov/nosurprises",
	}
	citeNSAAncillary = model.Citation{
		Title:     "No Surprises Act, non-emergency services by nonparticipating providers at participating facilities",
		Authority: model.AuthorityFederal,
		Citation:  "42 U.S.C. 300gg-132; 45 CFR 149.120, 149.420(b)",
		URL:       "https://www.cms.gov/nosurprises",
	}
	citePreventive = model.Citation{
		Title:     "ACA coverage of preventive health services without cost sharing",
		Authority: model.AuthorityFederal,
		Citation:  "42 U.S.C. 300gg-13; 45 CFR 147.130",
		URL:       "https://www.healthcare.gov/coverage/preventive-care-benefits/",
	}
	citeGlobalSurgery = model.Citation{
		Title:     "Global surgical package",
		Authority: model.AuthorityCMS,
		Citation:  "Medicare Claims Processing Manual, Pub. 100-04, Ch. 12, §40",
	}
	citeAdjudication = model.Citation{
		Title:     "Plan adjudication: patient responsibility equals allowed less plan payment",
		Authority: model.AuthorityPayerPolicy,
		Citation:  "Summary Plan Description, cost-sharing provisions",
	}
	citeClaimsAppeal = model.Citation{
		Title:     "Internal claims and appeals",
		Authority: model.AuthorityFederal,
		Citation:  "29 CFR 2560.503-1; 45 CFR 147.136",
	}
	citeTimelyFiling = model.Citation{
		Title:     "Time limits for filing claims",
		Authority: model.AuthorityCMS,
		Citation:  "42 CFR 424.44",
	}
	citeTimelyFilingContract = model.Citation{
		Title:     "Participating provider timely filing hold-harmless",
		Authority: model.AuthorityPayerPolicy,
		Citation:  "Provider agreement timely filing provision (CARC 29)",
	}
	citeCOB = model.Citation{
		Title:     "Coordination of benefits",
		Authority: model.AuthorityStateDOI,
		Citation:  "NAIC Coordination of Benefits Model Regulation (MDL-120) as adopted by the state",
	}
	citeBalanceBilling = model.Citation{
		Title:     "Balance billing protections",
		Authority: model.AuthorityStateDOI,
		Citation:  "State balance billing statute (jurisdiction-specific)",
	}
	citeNonProviderFee = model.Citation{
		Title:     "Charges for non-medical administrative fees",
		Authority: model.AuthorityStateDOI,
		Citation:  "State consumer billing and collection practice rules (jurisdiction-specific)",
	}
	citeObservation = model.Citation{
		Title:     "Outpatient observation services and the two-midnight rule",
		Authority: model.AuthorityCMS,
		Citation:  "Medicare Benefit Policy Manual, Pub. 100-02, Ch. 6, §20.6; 42 CFR 412.3",
	}
	citeItemizedBill = model.Citation{
		Title:     "Right to an itemized bill",
		Authority: model.AuthorityStateDOI,
		Citation:  "State patient itemized statement statute (jurisdiction-specific)",
	}
	citeMUE = model.Citation{
		Title:     "Medically Unlikely Edits",
		Authority: model.AuthorityCMS,
		Citation:  "CMS NCCI Medically Unlikely Edits (MUE) unit limits",
		URL:       "https://www.cms.gov/medicare/coding-billing/national-correct-coding-initiative-ncci-edits/medicare-ncci-medically-unlikely-edits",
	}
	citeProTech = model.Citation{
		Title:     "Professional and technical component billing",
		Authority: model.AuthorityCMS,
		Citation:  "Medicare Claims Processing Manual, Pub. 100-04, Ch. 13, §20",
	}
)
