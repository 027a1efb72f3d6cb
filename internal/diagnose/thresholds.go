package diagnose

// Thresholds collects every tunable constant of the diagnosis pipeline
// so alternate profiles can be injected in tests instead of patching
// package state. All percentage fields are 0-100; noise thresholds are
// fractional (0-1) bounds on |relative delta|.
type Thresholds struct {
	// Decomposition completeness gates.
	CompletenessPassPct float64
	CompletenessWarnPct float64

	// Mix-shift share at which composition becomes a significant factor.
	MixShiftInvestigatePct float64

	// Confidence gates.
	HighExplainedPct    float64
	HighEvidenceLines   int
	MediumExplainedPct  float64
	MediumEvidenceLines int

	// A segment contributing at least this much is a multi-cause candidate.
	MultiCauseContributionPct float64

	// A segment explaining more than this share makes drill-down worthwhile
	// and blocks the inferred false-alarm path.
	DominantContributionPct float64

	// A mix-shift diagnosis with at least this compositional share is a
	// clear signal and is never left at Low confidence.
	MixShiftConfidenceFloorPct float64

	// Per-metric noise bounds for the inferred false-alarm path. Metrics
	// not listed use DefaultNoiseThreshold. Hand-tuned from historical
	// variance, not statistically derived; treat as configuration.
	NoiseThresholds       map[string]float64
	DefaultNoiseThreshold float64
}

// DefaultThresholds returns the standing production profile.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CompletenessPassPct:        90,
		CompletenessWarnPct:        70,
		MixShiftInvestigatePct:     30,
		HighExplainedPct:           90,
		HighEvidenceLines:          3,
		MediumExplainedPct:         80,
		MediumEvidenceLines:        2,
		MultiCauseContributionPct:  30,
		DominantContributionPct:    50,
		MixShiftConfidenceFloorPct: 50,
		NoiseThresholds: map[string]float64{
			"click_quality_value":          0.04,
			"search_quality_success_value": 0.03,
		},
		DefaultNoiseThreshold: 0.03,
	}
}

func (t Thresholds) noiseFor(metricName string) float64 {
	if v, ok := t.NoiseThresholds[metricName]; ok {
		return v
	}
	return t.DefaultNoiseThreshold
}
