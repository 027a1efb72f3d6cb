package anomaly

import "math"

// ZScoreAnomalyThreshold: two standard deviations covers ~95% of normal
// weekly variation; anything beyond is worth a look.
const ZScoreAnomalyThreshold = 2.0

// Baseline check statuses.
const (
	BaselineNormal    = "normal"
	BaselineAnomalous = "anomalous"
)

// BaselineStats describe the expected distribution of a metric.
type BaselineStats struct {
	Mean      float64 `json:"mean"`
	WeeklyStd float64 `json:"weekly_std"`
}

// BaselineCheck answers "is this value unusual?" for a single
// observation against its historical distribution.
type BaselineCheck struct {
	Status       string  `json:"status"`
	ZScore       float64 `json:"z_score"`
	MetricName   string  `json:"metric_name"`
	Segment      string  `json:"segment,omitempty"`
	CurrentValue float64 `json:"current_value"`
	BaselineMean float64 `json:"baseline_mean"`
	BaselineStd  float64 `json:"baseline_std"`
}

// CheckAgainstBaseline computes the z-score of the current value. A
// zero standard deviation means the metric never varies, so any
// deviation at all is anomalous (z goes to +Inf).
func CheckAgainstBaseline(currentValue float64, metricName, segment string, stats BaselineStats) BaselineCheck {
	var z float64
	if stats.WeeklyStd < 1e-12 {
		if math.Abs(currentValue-stats.Mean) < 1e-12 {
			z = 0
		} else {
			z = math.Inf(1)
		}
	} else {
		z = (currentValue - stats.Mean) / stats.WeeklyStd
	}

	status := BaselineNormal
	if math.Abs(z) >= ZScoreAnomalyThreshold {
		status = BaselineAnomalous
	}

	if !math.IsInf(z, 0) {
		z = roundTo(z, 4)
	}
	return BaselineCheck{
		Status:       status,
		ZScore:       z,
		MetricName:   metricName,
		Segment:      segment,
		CurrentValue: currentValue,
		BaselineMean: stats.Mean,
		BaselineStd:  stats.WeeklyStd,
	}
}
