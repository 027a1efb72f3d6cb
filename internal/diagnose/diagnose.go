// Package diagnose turns decomposition and anomaly-detector output into
// a committed diagnosis: an archetype, a confidence level, action items,
// and a decision status, with post-hoc coherence warnings attached.
package diagnose

import (
	"errors"
	"fmt"
	"math"

	"driftwatch/internal/anomaly"
	"driftwatch/internal/decompose"
	"driftwatch/internal/metric"
)

// ErrNoDecomposition means Run was called without the one required input.
var ErrNoDecomposition = errors.New("diagnosis requires a decomposition result")

// Decision statuses. Blocked and insufficient-evidence diagnoses still
// carry the full analysis; the status tells the consumer how much to
// trust it.
const (
	DecisionDiagnosed            = "diagnosed"
	DecisionBlockedByDataQuality = "blocked_by_data_quality"
	DecisionInsufficientEvidence = "insufficient_evidence"
)

// Input bundles the upstream detector results for one diagnosis run.
// Only Decomposition is required; absent detectors degrade gracefully
// (the matching checks PASS on defaults).
type Input struct {
	Decomposition *decompose.Result
	StepChange    *anomaly.StepChange
	CoMovement    *anomaly.CoMovement
	TrustGate     *anomaly.QualityReport

	// Day indices for the temporal consistency check; both default to
	// zero, which passes trivially.
	CauseDayIndex        int
	MetricChangeDayIndex int

	// HistoricalPrecedent is set when the history store has seen this
	// pattern before; it is a hard requirement for High confidence.
	HistoricalPrecedent bool

	// Thresholds overrides the default tuning profile when non-nil.
	Thresholds *Thresholds
}

// AggregateSummary is the headline movement plus any severity override
// applied by the selected archetype or the trust gate.
type AggregateSummary struct {
	decompose.AggregateDelta
	OriginalSeverity       metric.Severity `json:"original_severity,omitempty"`
	SeverityOverrideReason string          `json:"severity_override_reason,omitempty"`
}

// Diagnosis is the committed verdict on one metric movement.
type Diagnosis struct {
	Aggregate            AggregateSummary                        `json:"aggregate"`
	PrimaryHypothesis    Hypothesis                              `json:"primary_hypothesis"`
	Confidence           Confidence                              `json:"confidence"`
	ValidationChecks     []Check                                 `json:"validation_checks"`
	Breakdowns           map[string]decompose.DimensionBreakdown `json:"dimensional_breakdown"`
	MixShift             decompose.MixShift                      `json:"mix_shift"`
	ActionItems          []ActionItem                            `json:"action_items"`
	VerificationWarnings []Warning                               `json:"verification_warnings"`
	DecisionStatus       string                                  `json:"decision_status"`
	ExplainedPct         float64                                 `json:"explained_pct"`
	RawExplainedPct      float64                                 `json:"raw_explained_pct"`
}

// Run executes the diagnosis pipeline: validation checks, archetype
// selection, severity and confidence overrides, action items, decision
// status, and finally the coherence verifier. It never aborts on a
// failing check; advisory findings ride along on the result.
func Run(in Input) (*Diagnosis, error) {
	if in.Decomposition == nil || in.Decomposition.Aggregate == nil {
		return nil, ErrNoDecomposition
	}
	th := DefaultThresholds()
	if in.Thresholds != nil {
		th = *in.Thresholds
	}
	dec := in.Decomposition

	// Explained percentage: the best dimension's summed absolute
	// contributions. Overlapping segments can push the raw figure past
	// 100; the capped value drives the checks, the raw value is kept
	// for operators who want to see the overlap.
	rawExplained := rawExplainedPct(dec)
	explained := math.Min(rawExplained, 100)
	mixPct := dec.MixShift.MixShiftContributionPct

	var sc anomaly.StepChange
	if in.StepChange != nil {
		sc = *in.StepChange
	}
	checks := []Check{
		checkLoggingArtifact(sc),
		checkCompleteness(explained, th),
		checkTemporal(in.CauseDayIndex, in.MetricChangeDayIndex),
		checkMixShiftThreshold(mixPct, th),
	}
	halted := false
	for _, c := range checks {
		if c.Status == StatusHalt {
			halted = true
		}
	}

	co := in.CoMovement
	matched := co != nil && co.Matched()

	arch, inferredFalseAlarm := selectArchetype(dec, co, checks[3], th)

	// Severity override: archetypes only ever lower severity, and the
	// original tier is retained for the audit trail.
	agg := AggregateSummary{AggregateDelta: *dec.Aggregate}
	originalSeverity := agg.Severity
	if arch.SeverityCap != "" && agg.Severity.MoreSevereThan(arch.SeverityCap) {
		agg.OriginalSeverity = agg.Severity
		agg.Severity = arch.SeverityCap
		agg.SeverityOverrideReason = arch.OverrideReason
	}

	// Independent evidence lines, counted against the pre-override
	// severity so an archetype cap cannot erase its own evidence.
	evidence := 0
	if dec.DrillDownRecommended {
		evidence++
	}
	if mixPct < th.MixShiftInvestigatePct {
		evidence++
	}
	if originalSeverity.Actionable() {
		evidence++
	}
	if matched {
		evidence++
	}

	var priorities []string
	if matched {
		priorities = co.PriorityHypotheses
	}
	hypothesis := buildHypothesis(dec, arch, priorities, mixPct)
	hypothesis.MultiCause = detectMultiCause(dec, arch, th)

	conf := computeConfidence(checks, explained, evidence, in.HistoricalPrecedent, th)

	// Confidence overrides, in fixed order.
	if arch.Kind == KindMixShift && mixPct >= th.MixShiftConfidenceFloorPct && conf.Level == ConfidenceLow {
		conf.Level = ConfidenceMedium
		conf.Reasoning += fmt.Sprintf(" Raised to Medium: mix-shift explains %.1f%% of the movement, a clear compositional signal.", mixPct)
	}
	if arch.Kind == KindFalseAlarm && !(halted && inferredFalseAlarm) {
		conf.Level = ConfidenceHigh
		conf.Reasoning = "High confidence: movement is within normal variance across all observed signals. " + conf.Reasoning
		conf.WouldUpgradeIf = ""
	}
	if len(hypothesis.MultiCause) > 0 && conf.Level == ConfidenceHigh {
		conf.Level = ConfidenceMedium
		conf.Reasoning += fmt.Sprintf(" Capped at Medium: %d competing causes remain unresolved.", len(hypothesis.MultiCause))
	}

	actions := buildActionItems(arch, checks, conf, decompositionView{
		drillDownRecommended: dec.DrillDownRecommended,
		dominantDimension:    dec.DominantDimension,
	})

	// Decision status. A failed trust gate blocks the diagnosis
	// outright; unresolved multi-cause downgrades it to a lead.
	decision := DecisionDiagnosed
	switch {
	case in.TrustGate != nil && in.TrustGate.Status == anomaly.QualityFail:
		decision = DecisionBlockedByDataQuality
		if agg.OriginalSeverity == "" {
			agg.OriginalSeverity = agg.Severity
		}
		agg.Severity = metric.SeverityBlocked
		agg.SeverityOverrideReason = "Trust gate failed: " + in.TrustGate.Reason
		hypothesis.Description = fmt.Sprintf("Diagnosis blocked by data quality (%s). Preliminary read, do not act on it: %s",
			in.TrustGate.Reason, hypothesis.Description)
		if conf.Level == ConfidenceHigh {
			conf.Level = ConfidenceMedium
			conf.Reasoning += " Capped at Medium: the trust gate failed, so the inputs themselves are suspect."
		}
	case len(hypothesis.MultiCause) > 0:
		decision = DecisionInsufficientEvidence
	}

	d := &Diagnosis{
		Aggregate:         agg,
		PrimaryHypothesis: hypothesis,
		Confidence:        conf,
		ValidationChecks:  checks,
		Breakdowns:        dec.Breakdowns,
		MixShift:          dec.MixShift,
		ActionItems:       actions,
		DecisionStatus:    decision,
		ExplainedPct:      explained,
		RawExplainedPct:   rawExplained,
	}
	d.VerificationWarnings = Verify(d)
	return d, nil
}

// selectArchetype maps the detector outputs to a diagnostic archetype.
// Order matters: a compositional movement takes priority over both the
// unknown-pattern fallback and a stable co-movement reading, because
// mix-shift moves the aggregate without moving any per-segment signal.
// The second return value marks a false alarm that was inferred from
// thresholds rather than confirmed by co-movement.
func selectArchetype(dec *decompose.Result, co *anomaly.CoMovement, mixCheck Check, th Thresholds) (Archetype, bool) {
	matched := co != nil && co.Matched()
	stable := co != nil && co.LikelyCause == anomaly.NoSignificantMovement

	if mixCheck.Status == StatusInvestigate && (!matched || stable) {
		return mixShiftArchetype(), false
	}

	// Confirmed false alarm: every related signal reads stable.
	if stable {
		return falseAlarmArchetype(), false
	}

	// Inferred false alarm: minor severity, no recognized pattern, no
	// dominant segment, and the movement sits within the metric's
	// noise band.
	if !matched &&
		(dec.Aggregate.Severity == metric.SeverityP2 || dec.Aggregate.Severity == metric.SeverityNormal) &&
		topContributionPct(dec) < th.DominantContributionPct &&
		math.Abs(dec.Aggregate.RelativeDeltaPct)/100 <= th.noiseFor(dec.Aggregate.Metric) {
		return falseAlarmArchetype(), true
	}

	if matched {
		if arch, ok := archetypeByCause(co.LikelyCause); ok {
			return arch, false
		}
	}
	return genericArchetype(), false
}

// rawExplainedPct is the highest per-dimension sum of absolute segment
// contributions: how much of the movement the best dimension accounts
// for, uncapped.
func rawExplainedPct(dec *decompose.Result) float64 {
	var best float64
	for _, b := range dec.Breakdowns {
		var total float64
		for _, s := range b.Segments {
			total += math.Abs(s.ContributionPct)
		}
		if total > best {
			best = total
		}
	}
	return best
}

// topContributionPct is the largest absolute single-segment
// contribution across all dimensions.
func topContributionPct(dec *decompose.Result) float64 {
	var best float64
	for _, b := range dec.Breakdowns {
		if len(b.Segments) == 0 {
			continue
		}
		if c := math.Abs(b.Segments[0].ContributionPct); c > best {
			best = c
		}
	}
	return best
}
