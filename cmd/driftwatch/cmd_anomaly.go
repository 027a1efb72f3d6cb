package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/anomaly"
	"driftwatch/internal/ingest"
)

var anomalyFlags struct {
	input        string
	metricName   string
	check        string
	directions   string
	signatures   string
	baselineMean float64
	baselineStd  float64
	thresholdPct float64
}

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Run anomaly detectors on a metric CSV",
	Long: `Runs the selected detectors and prints their verdicts as JSON:

  data_quality   trust gate on completeness and freshness
  step_change    single-day discontinuity in the daily series
  co_movement    cross-metric direction signature matching
  baseline       z-score of the period average against a known baseline

--check all (the default) runs every detector whose inputs are present.`,
	RunE: runAnomaly,
}

func init() {
	f := anomalyCmd.Flags()
	f.StringVarP(&anomalyFlags.input, "input", "i", "", "Path to the metric CSV file")
	f.StringVarP(&anomalyFlags.metricName, "metric", "m", "", "Metric column to analyze (default "+defaultMetric+")")
	f.StringVar(&anomalyFlags.check, "check", "all", "Detector to run (all, data_quality, step_change, co_movement, baseline)")
	f.StringVar(&anomalyFlags.directions, "directions", "", `Observed metric directions as JSON, e.g. {"click_quality":"down"}`)
	f.StringVar(&anomalyFlags.signatures, "signatures", "", "Co-movement signature YAML (default embedded table)")
	f.Float64Var(&anomalyFlags.baselineMean, "baseline-mean", 0, "Expected baseline mean for the z-score check")
	f.Float64Var(&anomalyFlags.baselineStd, "baseline-std", 0, "Expected baseline weekly standard deviation")
	f.Float64Var(&anomalyFlags.thresholdPct, "threshold-pct", anomaly.DefaultStepChangeThresholdPct, "Step-change threshold in percent")
	_ = anomalyCmd.MarkFlagRequired("input")
}

func runAnomaly(cmd *cobra.Command, _ []string) error {
	check := anomalyFlags.check
	switch check {
	case "all", "data_quality", "step_change", "co_movement", "baseline":
	default:
		return fmt.Errorf("unknown check: %s (available: all, data_quality, step_change, co_movement, baseline)", check)
	}

	rows, err := ingest.ReadFile(anomalyFlags.input)
	if err != nil {
		return err
	}
	metricField := resolveMetric(anomalyFlags.metricName)
	out := make(map[string]any)

	if check == "all" || check == "data_quality" {
		out["data_quality"] = anomaly.CheckDataQuality(rows, anomaly.DefaultQualityThresholds())
	}

	if check == "all" || check == "step_change" {
		daily := ingest.DailyAverages(rows, metricField)
		out["step_change"] = anomaly.DetectStepChange(daily, anomalyFlags.thresholdPct)
	}

	if check == "all" || check == "co_movement" {
		observed, err := parseDirectionsFlag(anomalyFlags.directions)
		if err != nil {
			return err
		}
		if check == "co_movement" && observed == nil {
			return fmt.Errorf("--directions is required for the co_movement check")
		}
		if observed != nil {
			sigs, err := loadSignaturesFlag(anomalyFlags.signatures)
			if err != nil {
				return err
			}
			out["co_movement"] = anomaly.MatchCoMovement(observed, sigs)
		}
	}

	if check == "all" || check == "baseline" {
		meanSet := cmd.Flags().Changed("baseline-mean")
		stdSet := cmd.Flags().Changed("baseline-std")
		if check == "baseline" && (!meanSet || !stdSet) {
			return fmt.Errorf("--baseline-mean and --baseline-std are required for the baseline check")
		}
		if meanSet && stdSet {
			var sum float64
			for _, r := range rows {
				sum += r.FloatOr(metricField, 0)
			}
			current := 0.0
			if len(rows) > 0 {
				current = sum / float64(len(rows))
			}
			out["baseline"] = anomaly.CheckAgainstBaseline(current, metricField, "", anomaly.BaselineStats{
				Mean:      anomalyFlags.baselineMean,
				WeeklyStd: anomalyFlags.baselineStd,
			})
		}
	}

	return printJSON(cmd, out)
}
