package decompose

import (
	"math"

	"driftwatch/internal/metric"
)

// MixShiftFlagThreshold marks the mix-shift share at which composition
// change becomes a significant factor in the movement.
const MixShiftFlagThreshold = 30.0

// MixShift splits one dimension's total effect into a behavioral
// component (per-segment metric change) and a composition component
// (traffic share change).
type MixShift struct {
	Dimension                 string  `json:"dimension"`
	MixShiftContributionPct   float64 `json:"mix_shift_contribution_pct"`
	BehavioralContributionPct float64 `json:"behavioral_contribution_pct"`
	TotalEffect               float64 `json:"total_effect"`
	BehavioralEffect          float64 `json:"behavioral_effect"`
	CompositionEffect         float64 `json:"composition_effect"`
	MixShiftDominant          bool    `json:"mix_shift_dominant"`
}

// ComputeMixShift runs the symmetric Kitagawa-Oaxaca decomposition over
// one dimension. Per segment, the behavioral term weights the metric
// change by the average of the two periods' traffic shares and the
// composition term weights the share change by the average metric
// level; the symmetric weighting avoids favoring either period. The
// contribution split uses absolute magnitudes because the two effects
// can carry opposite signs.
func ComputeMixShift(baseline, current []metric.Row, metricField, dimension string) MixShift {
	baselineGroups := groupBy(baseline, dimension)
	currentGroups := groupBy(current, dimension)

	totalBaseline := math.Max(float64(len(baseline)), 1)
	totalCurrent := math.Max(float64(len(current)), 1)

	var behavioralEffect, compositionEffect float64
	for _, seg := range segmentUnion(baselineGroups, currentGroups) {
		blRows := baselineGroups[seg]
		curRows := currentGroups[seg]

		blMean := meanOf(blRows, metricField)
		curMean := meanOf(curRows, metricField)
		blShare := float64(len(blRows)) / totalBaseline
		curShare := float64(len(curRows)) / totalCurrent

		avgShare := (blShare + curShare) / 2
		behavioralEffect += (curMean - blMean) * avgShare

		avgMetric := (blMean + curMean) / 2
		compositionEffect += (curShare - blShare) * avgMetric
	}

	totalEffect := behavioralEffect + compositionEffect
	if math.Abs(totalEffect) < 1e-10 {
		return MixShift{Dimension: dimension}
	}

	mixPct := math.Abs(compositionEffect) /
		(math.Abs(behavioralEffect) + math.Abs(compositionEffect)) * 100

	return MixShift{
		Dimension:                 dimension,
		MixShiftContributionPct:   round(mixPct, 1),
		BehavioralContributionPct: round(100-mixPct, 1),
		TotalEffect:               round(totalEffect, 6),
		BehavioralEffect:          round(behavioralEffect, 6),
		CompositionEffect:         round(compositionEffect, 6),
		MixShiftDominant:          mixPct >= MixShiftFlagThreshold,
	}
}
