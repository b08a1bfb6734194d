package config

// DefaultRules returns the built-in thresholds and reference tables.
func DefaultRules() RuleConfig {
	return RuleConfig{
		MathToleranceCents:      1,
		GlobalPeriodDays:        90,
		NSAInNetworkRatio:       0.65,
		TimelyFilingDays:        365,
		DrugUnitMax:             100,
		TherapyUnitsPerDayMax:   8,
		ObservationHoursMax:     48,
		SummaryDescriptionWidth: 40,
		SummaryMaxLines:         50,
		BundlingEdits:           defaultBundlingEdits(),
		PreventiveCodes:         defaultPreventiveCodes(),
		MajorSurgeryCodes:       defaultMajorSurgeryCodes(),
		FacilityFeeCodes:        []string{"G0463", "G0378", "99070"},
	}
}

// Common column-one/column-two pairs. A full procedure-to-procedure edit
// table can replace this through bundling_edits in the config file.
func defaultBundlingEdits() map[string][]string {
	return map[string][]string{
		"80053": {"80048", "82040", "82247", "82310", "82374", "82435", "82565", "82947", "84075", "84132", "84155", "84295", "84450", "84460", "84520"},
		"80048": {"82310", "82374", "82435", "82565", "82947", "84132", "84295", "84520"},
		"80061": {"82465", "83718", "84478"},
		"85025": {"85027", "85004", "85014", "85018", "85041", "85048"},
		"93000": {"93005", "93010"},
		"45380": {"45378"},
		"45385": {"45378"},
		"43239": {"43235"},
		"29881": {"29877", "29880"},
		"47562": {"49320"},
		"58661": {"49320"},
		"36556": {"36000", "36410"},
		"99291": {"36000", "36410", "71045", "94002", "94760", "94761"},
	}
}

func defaultPreventiveCodes() []string {
	return []string{
		// preventive medicine visits
		"99381", "99382", "99383", "99384", "99385", "99386", "99387",
		"99391", "99392", "99393", "99394", "99395", "99396", "99397",
		// risk-factor counseling
		"99401", "99402", "99403", "99404", "99406", "99407", "99408", "99409",
		// Medicare wellness and screenings
		"G0402", "G0438", "G0439", "G0442", "G0443", "G0444",
		"G0105", "G0121", "G0104", "G0328", "77067", "76706",
		// immunization administration
		"90460", "90461", "90471", "90472", "90473", "90474",
	}
}

func defaultMajorSurgeryCodes() []string {
	return []string{
		"19303", "27130", "27236", "27447", "29881", "33533", "35301",
		"44140", "44950", "44970", "47562", "47600", "49505", "49650",
		"58150", "58571", "59510", "60240", "63030", "63047", "66984",
	}
}
