package decompose

import (
	"math"
	"sort"

	"driftwatch/internal/metric"
)

// unknownSegment buckets rows missing the requested dimension.
const unknownSegment = "unknown"

// Segment is one dimension value's share of the aggregate movement.
type Segment struct {
	SegmentValue    string  `json:"segment_value"`
	BaselineMean    float64 `json:"baseline_mean"`
	CurrentMean     float64 `json:"current_mean"`
	Delta           float64 `json:"delta"`
	BaselineCount   int     `json:"baseline_count"`
	CurrentCount    int     `json:"current_count"`
	TrafficSharePct float64 `json:"traffic_share_pct"`
	ContributionPct float64 `json:"contribution_pct"`
}

// DimensionBreakdown holds all segments of one dimension, sorted by
// descending absolute contribution so the dominant segment leads.
type DimensionBreakdown struct {
	Dimension               string    `json:"dimension"`
	OverallDelta            float64   `json:"overall_delta"`
	Segments                []Segment `json:"segments"`
	DominantSegment         string    `json:"dominant_segment,omitempty"`
	DominantContributionPct float64   `json:"dominant_contribution_pct"`
}

// ByDimension attributes the aggregate delta to the segments of one
// dimension. Each segment's delta is weighted by its share of CURRENT
// traffic, so the attribution reflects today's composition rather than
// the baseline's. A zero overall delta yields zero contributions for
// every segment instead of an error.
func ByDimension(baseline, current []metric.Row, metricField, dimension string, th SeverityThresholds) DimensionBreakdown {
	baselineGroups := groupBy(baseline, dimension)
	currentGroups := groupBy(current, dimension)

	var overallDelta float64
	if overall, err := AggregateDeltaOf(baseline, current, metricField, th); err == nil {
		overallDelta = overall.AbsoluteDelta
	}

	segments := make([]Segment, 0, len(baselineGroups)+len(currentGroups))
	for _, segValue := range segmentUnion(baselineGroups, currentGroups) {
		blRows := baselineGroups[segValue]
		curRows := currentGroups[segValue]

		blMean := meanOf(blRows, metricField)
		curMean := meanOf(curRows, metricField)
		delta := curMean - blMean

		curShare := float64(len(curRows)) / math.Max(float64(len(current)), 1)

		contributionPct := 0.0
		if overallDelta != 0 {
			contributionPct = delta * curShare / overallDelta * 100.0
		}

		segments = append(segments, Segment{
			SegmentValue:    segValue,
			BaselineMean:    round(blMean, 6),
			CurrentMean:     round(curMean, 6),
			Delta:           round(delta, 6),
			BaselineCount:   len(blRows),
			CurrentCount:    len(curRows),
			TrafficSharePct: round(curShare*100, 1),
			ContributionPct: round(contributionPct, 1),
		})
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return math.Abs(segments[i].ContributionPct) > math.Abs(segments[j].ContributionPct)
	})

	breakdown := DimensionBreakdown{
		Dimension:    dimension,
		OverallDelta: overallDelta,
		Segments:     segments,
	}
	if len(segments) > 0 {
		breakdown.DominantSegment = segments[0].SegmentValue
		breakdown.DominantContributionPct = segments[0].ContributionPct
	}
	return breakdown
}

// groupBy buckets rows by a dimension value, with missing values going
// to the "unknown" bucket.
func groupBy(rows []metric.Row, dimension string) map[string][]metric.Row {
	groups := make(map[string][]metric.Row)
	for _, r := range rows {
		value, ok := r.String(dimension)
		if !ok {
			value = unknownSegment
		}
		groups[value] = append(groups[value], r)
	}
	return groups
}

// segmentUnion returns the sorted union of segment values seen in
// either period, so segments that vanished or appeared still show up.
func segmentUnion(a, b map[string][]metric.Row) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for k := range seen {
		values = append(values, k)
	}
	sort.Strings(values)
	return values
}
