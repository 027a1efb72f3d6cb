package diagnose

import (
	"fmt"

	"driftwatch/internal/metric"
)

// Verification check names.
const (
	VerifyArchetypeSegment     = "archetype_segment_consistency"
	VerifySeverityAction       = "severity_action_consistency"
	VerifyConfidenceCheck      = "confidence_check_consistency"
	VerifyFalseAlarmCoherence  = "false_alarm_coherence"
	VerifyMultiCauseConfidence = "multi_cause_confidence_consistency"
)

// Warning severities.
const (
	WarnError   = "error"
	WarnWarning = "warning"
)

// Warning is one coherence finding from Verify. Warnings are advisory;
// a diagnosis ships with them attached rather than being withheld.
type Warning struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Verify runs post-hoc coherence checks on a completed diagnosis. The
// orchestrator assembles the diagnosis from several independent stages;
// these checks catch the cases where the stages disagree with each
// other. An empty slice means the diagnosis is internally coherent.
func Verify(d *Diagnosis) []Warning {
	warnings := []Warning{}
	h := d.PrimaryHypothesis

	// 1. The dominant segment should sit in a dimension the archetype
	// expects. A ranking regression concentrated in ai_enablement says
	// the archetype and the decomposition are telling different stories.
	if arch, ok := ArchetypeByName(h.Archetype); ok && h.Dimension != "" {
		if !arch.expectsDimension(h.Dimension) {
			warnings = append(warnings, Warning{
				Check:    VerifyArchetypeSegment,
				Severity: WarnWarning,
				Detail: fmt.Sprintf("Archetype '%s' expects the movement in %v, but the dominant segment is %s='%s'.",
					h.Archetype, arch.ExpectedDimensions, h.Dimension, h.Segment),
			})
		}
	}

	// 2. Actionable severity needs actions; a calm severity with a
	// to-do list is asking someone to act on nothing.
	switch {
	case (d.Aggregate.Severity == metric.SeverityP0 || d.Aggregate.Severity == metric.SeverityP1) && len(d.ActionItems) == 0:
		warnings = append(warnings, Warning{
			Check:    VerifySeverityAction,
			Severity: WarnError,
			Detail: fmt.Sprintf("Severity %s diagnosis has no action items; an actionable severity requires next steps.",
				d.Aggregate.Severity),
		})
	case d.Aggregate.Severity == metric.SeverityNormal && len(d.ActionItems) > 0 && h.Archetype != ArchetypeFalseAlarm:
		warnings = append(warnings, Warning{
			Check:    VerifySeverityAction,
			Severity: WarnWarning,
			Detail: fmt.Sprintf("Severity is normal but %d action item(s) are attached; either the severity or the actions are wrong.",
				len(d.ActionItems)),
		})
	}

	// 3. High confidence with a HALT check is contradictory unless the
	// diagnosis is a confirmed false alarm, where the multi-metric
	// signal outweighs the single suspect input.
	if d.Confidence.Level == ConfidenceHigh && h.Archetype != ArchetypeFalseAlarm {
		for _, c := range d.ValidationChecks {
			if c.Status == StatusHalt {
				warnings = append(warnings, Warning{
					Check:    VerifyConfidenceCheck,
					Severity: WarnWarning,
					Detail: fmt.Sprintf("Confidence is High but check '%s' is in HALT state; a halted check should cap confidence.",
						c.Check),
				})
				break
			}
		}
	}

	// 4. A false alarm must be internally consistent: positive framing
	// and nothing to do.
	if h.Archetype == ArchetypeFalseAlarm {
		if len(d.ActionItems) > 0 {
			warnings = append(warnings, Warning{
				Check:    VerifyFalseAlarmCoherence,
				Severity: WarnError,
				Detail:   fmt.Sprintf("False alarm diagnosis carries %d action item(s); a false alarm requires none.", len(d.ActionItems)),
			})
		}
		if !h.IsPositive {
			warnings = append(warnings, Warning{
				Check:    VerifyFalseAlarmCoherence,
				Severity: WarnError,
				Detail:   "False alarm diagnosis has is_positive=false; declaring noise is always a positive outcome.",
			})
		}
	}

	// 5. Two competing causes and High confidence cannot both be true.
	if len(h.MultiCause) > 0 && d.Confidence.Level == ConfidenceHigh {
		warnings = append(warnings, Warning{
			Check:    VerifyMultiCauseConfidence,
			Severity: WarnWarning,
			Detail: fmt.Sprintf("Confidence is High but %d competing causes remain unresolved; multi-cause should cap confidence at Medium.",
				len(h.MultiCause)),
		})
	}

	return warnings
}
