package diagnose

import (
	"fmt"
	"sort"

	"driftwatch/internal/decompose"
)

// CauseSegment is one candidate cause in a multi-cause hypothesis.
type CauseSegment struct {
	Dimension       string  `json:"dimension"`
	Segment         string  `json:"segment"`
	ContributionPct float64 `json:"contribution_pct"`
}

// Hypothesis names the most likely root cause of the movement.
type Hypothesis struct {
	Dimension       string  `json:"dimension,omitempty"`
	Segment         string  `json:"segment,omitempty"`
	ContributionPct float64 `json:"contribution_pct"`
	Description     string  `json:"description"`

	Archetype  string `json:"archetype"`
	Category   Kind   `json:"category"`
	IsPositive bool   `json:"is_positive"`

	// PriorityHypotheses carries the ordered follow-up ideas from the
	// matched co-movement signature.
	PriorityHypotheses []string `json:"priority_hypotheses,omitempty"`

	// MultiCause is set when two uncorrelated dimensions each carry a
	// large share of the movement and no single cause is defensible.
	MultiCause []CauseSegment `json:"multi_cause,omitempty"`
}

// topSegment returns the dominant dimension's leading segment, if any.
func topSegment(dec *decompose.Result) (dim string, seg decompose.Segment, ok bool) {
	if dec == nil || dec.DominantDimension == "" {
		return "", decompose.Segment{}, false
	}
	b, ok := dec.Breakdowns[dec.DominantDimension]
	if !ok || len(b.Segments) == 0 {
		return "", decompose.Segment{}, false
	}
	return dec.DominantDimension, b.Segments[0], true
}

// buildHypothesis renders the narrative for the selected archetype over
// the dominant segment of the decomposition.
func buildHypothesis(dec *decompose.Result, arch Archetype, priorities []string, mixShiftPct float64) Hypothesis {
	h := Hypothesis{
		Archetype:          arch.Name,
		Category:           arch.Kind,
		IsPositive:         arch.IsPositive,
		PriorityHypotheses: priorities,
	}

	if arch.Kind == KindFalseAlarm {
		h.Description = "Movement is within normal variance for this metric. No root cause to pursue; resume normal monitoring."
		return h
	}

	dim, seg, ok := topSegment(dec)
	if !ok {
		h.Description = "No dominant dimension identified from decomposition."
		return h
	}
	h.Dimension = dim
	h.Segment = seg.SegmentValue
	h.ContributionPct = seg.ContributionPct

	switch {
	case arch.Kind == KindMixShift:
		h.Description = fmt.Sprintf(
			"The %s movement is compositional: mix-shift accounts for %.1f%% of the change. "+
				"Traffic moved between segments of %s while per-segment behavior held; "+
				"%s='%s' leads the share change.",
			dec.Aggregate.Metric, mixShiftPct, dim, dim, seg.SegmentValue)
	case arch.DescriptionTemplate != "":
		h.Description = fmt.Sprintf(arch.DescriptionTemplate, dim, seg.SegmentValue, seg.ContributionPct)
	default:
		h.Description = fmt.Sprintf(
			"The %s movement is concentrated in %s='%s' (contributing %.1f%% of total change). "+
				"Segment %s from %.4f to %.4f.",
			dec.Aggregate.Metric, dim, seg.SegmentValue, seg.ContributionPct,
			dec.Aggregate.Direction, seg.BaselineMean, seg.CurrentMean)
	}
	return h
}

// detectMultiCause flags a second independent cause: top segments of
// two different dimensions each above the contribution threshold.
// Correlated dimensions are proxies for one effect and never count as
// two causes.
func detectMultiCause(dec *decompose.Result, arch Archetype, th Thresholds) []CauseSegment {
	if dec == nil || arch.Kind == KindFalseAlarm || arch.Kind == KindMixShift {
		return nil
	}
	var candidates []CauseSegment
	for _, dim := range sortedDimensions(dec.Breakdowns) {
		b := dec.Breakdowns[dim]
		if len(b.Segments) == 0 {
			continue
		}
		top := b.Segments[0]
		if abs(top.ContributionPct) >= th.MultiCauseContributionPct {
			candidates = append(candidates, CauseSegment{
				Dimension:       dim,
				Segment:         top.SegmentValue,
				ContributionPct: top.ContributionPct,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return abs(candidates[i].ContributionPct) > abs(candidates[j].ContributionPct)
	})
	if len(candidates) < 2 {
		return nil
	}
	if len(candidates) == 2 && arch.correlates(candidates[0].Dimension, candidates[1].Dimension) {
		return nil
	}
	return candidates
}

func sortedDimensions(breakdowns map[string]decompose.DimensionBreakdown) []string {
	dims := make([]string, 0, len(breakdowns))
	for dim := range breakdowns {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
