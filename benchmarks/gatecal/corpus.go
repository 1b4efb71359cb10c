// ABOUTME: Calibration scenario data for the numeric leak gate
// ABOUTME: Defines facts, draft templates, planted leaks, and expected detections

package gatecal

// Scenario is one calibration case: a set of registered facts, a draft
// template, and the literals the scanner is expected to flag.
type Scenario struct {
	ID          string
	Name        string
	Description string

	// Facts and derivations registered before the draft is finalized
	Facts       []FactSpec
	Derivations []DerivationSpec

	// Template is the deterministic draft. In composed mode the topic is
	// handed to the LLM instead and only Composable scenarios run that way.
	Template   string
	Topic      string
	Composable bool

	// InjectLiterals are appended to the draft as planted leaks
	InjectLiterals []string

	// Scanner allow-list configuration for this scenario
	AllowLiterals    []string
	AllowListMarkers bool

	// ExpectedLeaks is the exact multiset of literals the scanner must
	// flag for the deterministic template
	ExpectedLeaks []string

	// ExpectedWarnings is the number of malformed-placeholder warnings
	// the render should produce
	ExpectedWarnings int
}

// FactSpec is a tool fact to register during scenario setup
type FactSpec struct {
	Key    string
	Value  float64
	Unit   string
	Source string
	RawRef string
}

// DerivationSpec is a derived value to register during scenario setup
type DerivationSpec struct {
	Key     string
	Value   float64
	Unit    string
	Parents []string
	Formula string
	Method  string
}

// GetCleanRender returns a draft where every numeral comes from a
// placeholder, so nothing should be flagged.
func GetCleanRender() Scenario {
	return Scenario{
		ID:          "clean_render",
		Name:        "Clean Render (No Leaks)",
		Description: "All numerals substituted from the registry; the scanner must stay silent",
		Facts: []FactSpec{
			{Key: "sample_count", Value: 148, Source: "xrd_loader", RawRef: "xrd_batch_012"},
			{Key: "band_gap", Value: 2.7, Unit: "eV", Source: "dft_scan", RawRef: "dft_run_0042"},
		},
		Template: "Analysis of <<T:sample_count>> diffraction samples gives an average " +
			"band gap of <<T:band_gap>> eV for the cathode series.",
		Topic:      "summarize the diffraction sample analysis and measured band gap",
		Composable: true,
	}
}

// GetApproximateClaim returns a draft that restates a registered value as
// a rounded figure outside any placeholder.
func GetApproximateClaim() Scenario {
	return Scenario{
		ID:          "approximate_claim",
		Name:        "Approximate Restatement",
		Description: "A rounded paraphrase of a registered value must still be flagged",
		Facts: []FactSpec{
			{Key: "voltage_licoo2", Value: 2.92, Unit: "V", Source: "mace", RawRef: "mace_run_007"},
		},
		Template: "The computed open-circuit voltage is <<T:voltage_licoo2>> V, " +
			"which is roughly 3.0 V nominal.",
		ExpectedLeaks: []string{"3.0"},
	}
}

// GetInjectedIntermediates returns a clean draft with planted leak
// sentences appended, simulating scratch values copied into prose.
func GetInjectedIntermediates() Scenario {
	return Scenario{
		ID:          "injected_intermediates",
		Name:        "Injected Intermediate Values",
		Description: "Planted bare numerals appended to a clean draft must all be caught",
		Facts: []FactSpec{
			{Key: "yield_pct", Value: 87.5, Unit: "percent", Source: "synthesis_log", RawRef: "synth_2026_08"},
		},
		Template:       "Yield reached <<T:yield_pct>> percent across the final synthesis run.",
		Topic:          "report the final synthesis yield",
		Composable:     true,
		InjectLiterals: []string{"42", "19.6"},
		ExpectedLeaks:  []string{"42", "19.6"},
	}
}

// GetIdentifierNegatives returns a draft full of digit-bearing identifiers
// that are not numeric claims and must not be flagged.
func GetIdentifierNegatives() Scenario {
	return Scenario{
		ID:          "identifier_negatives",
		Name:        "Identifier Negatives",
		Description: "Chemical formulas, hash names, and architectures carry digits but are not leaks",
		Facts: []FactSpec{
			{Key: "cell_temp", Value: 295.4, Unit: "K", Source: "thermocouple", RawRef: "probe_3_log"},
		},
		Template: "The LiCoO2 cathode and H2O reference were measured at <<T:cell_temp>> K " +
			"on x86_64 hosts; artifacts are addressed by sha256 digest.",
	}
}

// GetSeparatorsAndRanges returns a draft with a thousands-separated
// literal and a hyphenated range, exercising tokenizer extent rules.
func GetSeparatorsAndRanges() Scenario {
	return Scenario{
		ID:          "separators_and_ranges",
		Name:        "Separators and Ranges",
		Description: "Grouped literals stay whole; a range splits into two detections",
		Facts: []FactSpec{
			{Key: "capacity_meas", Value: 152.3, Unit: "mAh/g", Source: "cycler", RawRef: "cycle_report_9"},
		},
		Template: "Measured capacity <<T:capacity_meas>> mAh/g; an earlier memo cited " +
			"1,234.56 cycles and a window of 1.9-2.2 V.",
		ExpectedLeaks: []string{"1,234.56", "1.9", "2.2"},
	}
}

// GetListMarkers returns an enumerated draft with the list-marker
// exemption enabled, so the enumerators pass while facts stay safe.
func GetListMarkers() Scenario {
	return Scenario{
		ID:          "list_markers",
		Name:        "List Markers Allowed",
		Description: "Line-leading enumerators are excused when the exemption is on",
		Facts: []FactSpec{
			{Key: "sample_count", Value: 148, Source: "xrd_loader", RawRef: "xrd_batch_012"},
		},
		Template: "Findings for <<T:sample_count>> samples:\n" +
			"1. Diffraction peaks sharpened.\n" +
			"2. No secondary phase appeared.",
		AllowListMarkers: true,
	}
}

// GetAllowedLiterals returns a draft using a whitelisted constant that
// must not be flagged.
func GetAllowedLiterals() Scenario {
	return Scenario{
		ID:          "allowed_literals",
		Name:        "Allow-Listed Constant",
		Description: "An explicitly allowed literal is exempt from detection",
		Facts: []FactSpec{
			{Key: "aperture_area", Value: 12.57, Unit: "mm2", Source: "profilometer", RawRef: "scan_0815"},
		},
		Template: "The aperture area is <<T:aperture_area>> mm2, computed with " +
			"pi truncated to 3.14.",
		AllowLiterals: []string{"3.14"},
	}
}

// GetMixedProvenance returns a draft mixing tool facts and a derived
// value with one stray scratch estimate.
func GetMixedProvenance() Scenario {
	return Scenario{
		ID:          "mixed_provenance",
		Name:        "Mixed Tool and Derived Facts",
		Description: "Tool facts and a derived value render safely; the scratch estimate leaks",
		Facts: []FactSpec{
			{Key: "mace_energy_licoo2", Value: -21.96, Unit: "eV", Source: "mace", RawRef: "mace_run_007"},
			{Key: "mace_energy_coo2", Value: -15.44, Unit: "eV", Source: "mace", RawRef: "mace_run_008"},
			{Key: "mace_energy_li", Value: -3.6, Unit: "eV", Source: "mace", RawRef: "mace_run_009"},
		},
		Derivations: []DerivationSpec{
			{
				Key:     "voltage_licoo2",
				Value:   2.92,
				Unit:    "V",
				Parents: []string{"mace_energy_licoo2", "mace_energy_coo2", "mace_energy_li"},
				Formula: "V = -(E_LiCoO2 - E_CoO2 - E_Li)",
				Method:  "mace_relaxation",
			},
		},
		Template: "From total energies <<T:mace_energy_licoo2>>, <<T:mace_energy_coo2>>, and " +
			"<<T:mace_energy_li>> eV, the derived voltage is <<T:voltage_licoo2>> V. " +
			"A scratch estimate of 2.9 V was noted during review.",
		ExpectedLeaks: []string{"2.9"},
	}
}

// GetUnterminatedPlaceholder returns a draft with a broken token under
// the warn policy: the token passes through and its digits stay visible
// to the scanner.
func GetUnterminatedPlaceholder() Scenario {
	return Scenario{
		ID:          "unterminated_placeholder",
		Name:        "Unterminated Placeholder (Warn)",
		Description: "A broken token is warned about, and numerals inside it are still detected",
		Facts: []FactSpec{
			{Key: "band_gap", Value: 2.7, Unit: "eV", Source: "dft_scan", RawRef: "dft_run_0042"},
		},
		Template:         "The gap is <<T:band_gap 2.7 eV wide.",
		ExpectedLeaks:    []string{"2.7"},
		ExpectedWarnings: 1,
	}
}

// GetAllScenarios returns the full calibration pack in run order
func GetAllScenarios() []Scenario {
	return []Scenario{
		GetCleanRender(),
		GetApproximateClaim(),
		GetInjectedIntermediates(),
		GetIdentifierNegatives(),
		GetSeparatorsAndRanges(),
		GetListMarkers(),
		GetAllowedLiterals(),
		GetMixedProvenance(),
		GetUnterminatedPlaceholder(),
	}
}
