package decompose

import (
	"math"

	"driftwatch/internal/metric"
)

// DefaultDimensions are the standing segmentation axes for enterprise
// search traffic, used when the caller does not request specific ones.
var DefaultDimensions = []string{
	"tenant_tier", "ai_enablement", "industry_vertical",
	"connector_type", "query_type", "position_bucket",
}

// drillDownThreshold: one segment explaining more than half the
// movement is a strong enough concentration to focus the investigation.
const drillDownThreshold = 50.0

// Result is the full decomposition of one metric movement: headline
// delta, per-dimension breakdowns, and the mix-shift split for the
// primary dimension.
type Result struct {
	Aggregate            *AggregateDelta               `json:"aggregate"`
	Breakdowns           map[string]DimensionBreakdown `json:"dimensional_breakdown"`
	MixShift             MixShift                      `json:"mix_shift"`
	DominantDimension    string                        `json:"dominant_dimension,omitempty"`
	DrillDownRecommended bool                          `json:"drill_down_recommended"`
}

// Options tune a decomposition run. Zero values select the defaults.
type Options struct {
	Dimensions     []string
	BaselinePeriod string
	CurrentPeriod  string
	PeriodField    string
	Severity       SeverityThresholds
}

func (o *Options) fill() {
	if len(o.Dimensions) == 0 {
		o.Dimensions = DefaultDimensions
	}
	if o.BaselinePeriod == "" {
		o.BaselinePeriod = metric.PeriodBaseline
	}
	if o.CurrentPeriod == "" {
		o.CurrentPeriod = metric.PeriodCurrent
	}
	if o.PeriodField == "" {
		o.PeriodField = metric.PeriodField
	}
	if o.Severity == (SeverityThresholds{}) {
		o.Severity = DefaultSeverityThresholds()
	}
}

// Run executes the full decomposition pipeline: split rows by period,
// compute the headline delta, decompose by every requested dimension
// present in the data, and run mix-shift on the primary dimension.
// The dominant dimension is the one whose top segment explains the
// most movement; drill-down is recommended when that segment explains
// more than half of it.
func Run(rows []metric.Row, metricField string, opts Options) (*Result, error) {
	opts.fill()

	var baseline, current []metric.Row
	for _, r := range rows {
		switch label, _ := r.String(opts.PeriodField); label {
		case opts.BaselinePeriod:
			baseline = append(baseline, r)
		case opts.CurrentPeriod:
			current = append(current, r)
		}
	}

	aggregate, err := AggregateDeltaOf(baseline, current, metricField, opts.Severity)
	if err != nil {
		return nil, err
	}

	breakdowns := make(map[string]DimensionBreakdown)
	for _, dim := range opts.Dimensions {
		if dimensionPresent(rows, dim) {
			breakdowns[dim] = ByDimension(baseline, current, metricField, dim, opts.Severity)
		}
	}

	// Mix-shift is computed for the primary dimension only: it is most
	// meaningful at the top segmentation level (tenant tier).
	var mixShift MixShift
	if primary := opts.Dimensions[0]; dimensionPresent(rows, primary) {
		mixShift = ComputeMixShift(baseline, current, metricField, primary)
	}

	var maxContribution float64
	var dominantDimension string
	for name, breakdown := range breakdowns {
		if len(breakdown.Segments) == 0 {
			continue
		}
		top := math.Abs(breakdown.Segments[0].ContributionPct)
		if top > maxContribution {
			maxContribution = top
			dominantDimension = name
		}
	}

	return &Result{
		Aggregate:            aggregate,
		Breakdowns:           breakdowns,
		MixShift:             mixShift,
		DominantDimension:    dominantDimension,
		DrillDownRecommended: maxContribution > drillDownThreshold,
	}, nil
}

func dimensionPresent(rows []metric.Row, dim string) bool {
	for _, r := range rows {
		if r.Has(dim) {
			return true
		}
	}
	return false
}
