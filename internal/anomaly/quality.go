package anomaly

import (
	"fmt"
	"strings"

	"driftwatch/internal/metric"
)

// Quality gate statuses.
const (
	QualityPass = "pass"
	QualityWarn = "warn"
	QualityFail = "fail"
)

// QualityThresholds gate the diagnosis on data trustworthiness.
// Completeness is a 0-1 ratio, freshness is minutes of lag.
type QualityThresholds struct {
	CompletenessFail float64
	CompletenessWarn float64
	FreshnessFailMin float64
	FreshnessWarnMin float64
}

// DefaultQualityThresholds returns the standing trust gate cutoffs.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		CompletenessFail: 0.96,
		CompletenessWarn: 0.98,
		FreshnessFailMin: 60,
		FreshnessWarnMin: 30,
	}
}

// QualityReport is the trust gate verdict. A fail means any observed
// movement could be a logging artifact and diagnosis should not commit.
type QualityReport struct {
	Status          string  `json:"status"`
	Reason          string  `json:"reason"`
	AvgCompleteness float64 `json:"avg_completeness"`
	AvgFreshnessMin float64 `json:"avg_freshness_min"`
}

// CheckDataQuality averages the trust fields across rows and applies
// the gate. Hard-fail thresholds are evaluated before warn thresholds;
// a single bad row does not fail the gate, a bad average does.
func CheckDataQuality(rows []metric.Row, th QualityThresholds) QualityReport {
	if len(rows) == 0 {
		return QualityReport{
			Status: QualityFail,
			Reason: "No data rows provided",
		}
	}

	var completenessSum, freshnessSum float64
	for _, r := range rows {
		completenessSum += r.FloatOr(metric.FieldCompleteness, 0)
		freshnessSum += r.FloatOr(metric.FieldFreshnessMin, 0)
	}
	avgCompleteness := completenessSum / float64(len(rows))
	avgFreshness := freshnessSum / float64(len(rows))

	report := QualityReport{
		AvgCompleteness: avgCompleteness,
		AvgFreshnessMin: avgFreshness,
	}

	if avgCompleteness < th.CompletenessFail {
		report.Status = QualityFail
		report.Reason = fmt.Sprintf("Data completeness too low: %.3f (threshold: %v)",
			avgCompleteness, th.CompletenessFail)
		return report
	}
	if avgFreshness > th.FreshnessFailMin {
		report.Status = QualityFail
		report.Reason = fmt.Sprintf("Data freshness too stale: %.1f min (threshold: %v min)",
			avgFreshness, th.FreshnessFailMin)
		return report
	}

	var warnings []string
	if avgCompleteness < th.CompletenessWarn {
		warnings = append(warnings, fmt.Sprintf("completeness borderline: %.3f", avgCompleteness))
	}
	if avgFreshness > th.FreshnessWarnMin {
		warnings = append(warnings, fmt.Sprintf("freshness borderline: %.1f min", avgFreshness))
	}
	if len(warnings) > 0 {
		report.Status = QualityWarn
		report.Reason = strings.Join(warnings, "; ")
		return report
	}

	report.Status = QualityPass
	report.Reason = "Data quality checks passed"
	return report
}
