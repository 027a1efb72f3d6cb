// Package decompose breaks an aggregate metric movement into
// per-dimension segment contributions and separates behavioral change
// from traffic mix-shift. All functions are pure: they read rows,
// return records, and never touch I/O.
package decompose

import (
	"errors"
	"fmt"
	"math"

	"driftwatch/internal/metric"
)

var (
	// ErrEmptyInput means one of the comparison periods has no rows.
	ErrEmptyInput = errors.New("empty input: need both baseline and current rows")
	// ErrZeroBaseline guards the relative-delta division.
	ErrZeroBaseline = errors.New("baseline mean is zero")
)

// SeverityThresholds are the fractional |relative delta| cutoffs for
// each urgency tier. P0 pages, P1 goes to standup, P2 is monitored.
type SeverityThresholds struct {
	P0 float64
	P1 float64
	P2 float64
}

// DefaultSeverityThresholds returns the standing triage cutoffs:
// 5% / 2% / 0.5% relative movement.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{P0: 0.05, P1: 0.02, P2: 0.005}
}

// Classify maps a relative delta percentage to a severity tier. The
// absolute value is used because spikes can be as alarming as drops.
func (t SeverityThresholds) Classify(relativeDeltaPct float64) metric.Severity {
	magnitude := math.Abs(relativeDeltaPct) / 100.0
	switch {
	case magnitude >= t.P0:
		return metric.SeverityP0
	case magnitude >= t.P1:
		return metric.SeverityP1
	case magnitude >= t.P2:
		return metric.SeverityP2
	}
	return metric.SeverityNormal
}

// AggregateDelta is the headline movement between the two periods.
type AggregateDelta struct {
	Metric           string           `json:"metric"`
	BaselineMean     float64          `json:"baseline_mean"`
	CurrentMean      float64          `json:"current_mean"`
	AbsoluteDelta    float64          `json:"absolute_delta"`
	RelativeDeltaPct float64          `json:"relative_delta_pct"`
	Direction        metric.Direction `json:"direction"`
	Severity         metric.Severity  `json:"severity"`
	BaselineCount    int              `json:"baseline_count"`
	CurrentCount     int              `json:"current_count"`
}

// AggregateDeltaOf computes the headline before/after movement for one
// metric field. Both periods must be non-empty and the baseline mean
// non-zero; these are the only fatal conditions in the engine.
func AggregateDeltaOf(baseline, current []metric.Row, metricField string, th SeverityThresholds) (*AggregateDelta, error) {
	if len(baseline) == 0 || len(current) == 0 {
		return nil, ErrEmptyInput
	}

	baselineMean := meanOf(baseline, metricField)
	currentMean := meanOf(current, metricField)
	if baselineMean == 0 {
		return nil, fmt.Errorf("%w for %s", ErrZeroBaseline, metricField)
	}

	absoluteDelta := currentMean - baselineMean
	relativeDeltaPct := absoluteDelta / baselineMean * 100.0

	direction := metric.DirectionStable
	if absoluteDelta > 0 {
		direction = metric.DirectionUp
	} else if absoluteDelta < 0 {
		direction = metric.DirectionDown
	}

	return &AggregateDelta{
		Metric:           metricField,
		BaselineMean:     round(baselineMean, 6),
		CurrentMean:      round(currentMean, 6),
		AbsoluteDelta:    round(absoluteDelta, 6),
		RelativeDeltaPct: round(relativeDeltaPct, 2),
		Direction:        direction,
		Severity:         th.Classify(relativeDeltaPct),
		BaselineCount:    len(baseline),
		CurrentCount:     len(current),
	}, nil
}

// meanOf averages a metric field over rows, treating missing or
// non-numeric values as zero. CSV-sourced rows carry parsed floats, so
// the zero default only fires on genuinely absent fields.
func meanOf(rows []metric.Row, field string) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += r.FloatOr(field, 0)
	}
	return sum / float64(len(rows))
}

func round(x float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(x*factor) / factor
}
