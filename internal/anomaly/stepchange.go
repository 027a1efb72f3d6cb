// Package anomaly holds the detectors that run beside the decomposition:
// step-change classification, the data quality gate, co-movement
// signature matching, and the z-score baseline check.
package anomaly

import "math"

// DefaultStepChangeThresholdPct is the minimum day-over-day percent
// change considered for a step.
const DefaultStepChangeThresholdPct = 2.0

// stepDominanceRatio: the single-day jump must account for at least
// this share of the pre/post average shift to count as a step rather
// than one noisy day on a gradual slope.
const stepDominanceRatio = 0.6

// StepChange is the verdict on a daily series: a sudden sustained shift
// (the signature of a deploy or config change) versus gradual drift.
// ChangeDayIndex is -1 when no step was detected.
type StepChange struct {
	Detected       bool    `json:"detected"`
	ChangeDayIndex int     `json:"change_day_index"`
	MagnitudePct   float64 `json:"magnitude_pct"`
}

// DetectStepChange scans chronologically ordered daily averages for the
// largest day-over-day percent change. It reports a step only when that
// jump exceeds thresholdPct AND dominates the shift between the
// pre-jump and post-jump period averages.
func DetectStepChange(daily []float64, thresholdPct float64) StepChange {
	none := StepChange{ChangeDayIndex: -1}
	if len(daily) < 2 {
		return none
	}

	maxChangePct := 0.0
	maxIdx := -1
	for i := 1; i < len(daily); i++ {
		prev := daily[i-1]
		if math.Abs(prev) < 1e-12 {
			continue
		}
		changePct := math.Abs((daily[i]-prev)/prev) * 100.0
		if changePct > maxChangePct {
			maxChangePct = changePct
			maxIdx = i
		}
	}

	if maxIdx >= 0 && maxChangePct > thresholdPct {
		preAvg := mean(daily[:maxIdx])
		postAvg := mean(daily[maxIdx:])
		totalChange := math.Abs(postAvg - preAvg)
		singleDay := math.Abs(daily[maxIdx] - daily[maxIdx-1])

		if totalChange > 0 && singleDay/totalChange >= stepDominanceRatio {
			return StepChange{
				Detected:       true,
				ChangeDayIndex: maxIdx,
				MagnitudePct:   roundTo(maxChangePct, 2),
			}
		}
	}

	none.MagnitudePct = roundTo(maxChangePct, 2)
	return none
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundTo(x float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(x*factor) / factor
}
