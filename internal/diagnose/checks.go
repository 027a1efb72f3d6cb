package diagnose

import (
	"fmt"

	"driftwatch/internal/anomaly"
)

// CheckStatus is the outcome of one validation check. HALT and WARN are
// advisory: the pipeline always completes and returns a Diagnosis.
type CheckStatus string

const (
	StatusPass        CheckStatus = "PASS"
	StatusWarn        CheckStatus = "WARN"
	StatusHalt        CheckStatus = "HALT"
	StatusInvestigate CheckStatus = "INVESTIGATE"
)

// The four fixed validation checks, run on every diagnosis.
const (
	CheckLoggingArtifact = "logging_artifact"
	CheckCompleteness    = "decomposition_completeness"
	CheckTemporal        = "temporal_consistency"
	CheckMixShift        = "mix_shift"
)

// Check is one validation result carried on the Diagnosis.
type Check struct {
	Check  string      `json:"check"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail"`
}

// checkLoggingArtifact runs first: an overnight step-change is the most
// common false alarm in search metrics, usually a deploy or an
// instrumentation change rather than a quality regression.
func checkLoggingArtifact(sc anomaly.StepChange) Check {
	if sc.Detected {
		return Check{
			Check:  CheckLoggingArtifact,
			Status: StatusHalt,
			Detail: fmt.Sprintf(
				"Overnight step-change detected at day index %d with %v%% magnitude. "+
					"Verify logging/instrumentation before proceeding with diagnosis.",
				sc.ChangeDayIndex, sc.MagnitudePct),
		}
	}
	return Check{
		Check:  CheckLoggingArtifact,
		Status: StatusPass,
		Detail: "No overnight step-change detected. Movement appears organic.",
	}
}

// checkCompleteness verifies the segments account for enough of the
// total movement. A large unexplained residual means a key dimension is
// missing and the diagnosis is unreliable.
func checkCompleteness(explainedPct float64, th Thresholds) Check {
	switch {
	case explainedPct >= th.CompletenessPassPct:
		return Check{
			Check:  CheckCompleteness,
			Status: StatusPass,
			Detail: fmt.Sprintf("Segments explain %.1f%% of the total movement. Decomposition is complete.", explainedPct),
		}
	case explainedPct >= th.CompletenessWarnPct:
		return Check{
			Check:  CheckCompleteness,
			Status: StatusWarn,
			Detail: fmt.Sprintf("Segments explain only %.1f%% of the total movement. "+
				"Consider adding more dimensions to improve coverage.", explainedPct),
		}
	}
	return Check{
		Check:  CheckCompleteness,
		Status: StatusHalt,
		Detail: fmt.Sprintf("Segments explain only %.1f%% of the total movement. "+
			"Decomposition is incomplete; add more dimensions or check data quality.", explainedPct),
	}
}

// checkTemporal enforces basic causal ordering: the proposed cause must
// precede or coincide with the metric change.
func checkTemporal(causeDay, metricChangeDay int) Check {
	if causeDay <= metricChangeDay {
		return Check{
			Check:  CheckTemporal,
			Status: StatusPass,
			Detail: fmt.Sprintf("Cause (day %d) precedes metric change (day %d) by %d day(s). "+
				"Temporal ordering is consistent.", causeDay, metricChangeDay, metricChangeDay-causeDay),
		}
	}
	return Check{
		Check:  CheckTemporal,
		Status: StatusHalt,
		Detail: fmt.Sprintf("Metric changed (day %d) BEFORE proposed cause (day %d) by %d day(s). "+
			"Temporal ordering is inconsistent; revise hypothesis.", metricChangeDay, causeDay, causeDay-metricChangeDay),
	}
}

// checkMixShiftThreshold flags movements that may be compositional
// (traffic mix changed) rather than behavioral.
func checkMixShiftThreshold(mixShiftPct float64, th Thresholds) Check {
	if mixShiftPct >= th.MixShiftInvestigatePct {
		return Check{
			Check:  CheckMixShift,
			Status: StatusInvestigate,
			Detail: fmt.Sprintf("Mix-shift accounts for %.1f%% of the movement (threshold: %v%%). "+
				"Investigate whether this is compositional, not behavioral.", mixShiftPct, th.MixShiftInvestigatePct),
		}
	}
	return Check{
		Check:  CheckMixShift,
		Status: StatusPass,
		Detail: fmt.Sprintf("Mix-shift accounts for only %.1f%% of the movement. "+
			"Behavioral change dominates.", mixShiftPct),
	}
}
