package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"driftwatch/internal/anomaly"
	"driftwatch/internal/decompose"
	"driftwatch/internal/diagnose"
	"driftwatch/internal/history"
	"driftwatch/internal/ingest"
	"driftwatch/internal/knowledge"
	"driftwatch/internal/logging"
	"driftwatch/internal/metric"
)

var diagnoseFlags struct {
	inputs          []string
	metricName      string
	dimensions      []string
	directions      string
	signatures      string
	historyPath     string
	record          bool
	causeDay        int
	metricChangeDay int
	parallel        int
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the full diagnosis pipeline on one or more metric CSVs",
	Long: `Runs decomposition, the trust gate, step-change detection, and
co-movement matching on each input, then commits a diagnosis with
validation checks, confidence scoring, action items, and coherence
warnings. Multiple inputs are diagnosed concurrently; results are
printed as a JSON array in input order.

With --history, prior diagnoses inform the historical-precedent signal
and --record persists each committed diagnosis for future runs.`,
	RunE: runDiagnose,
}

func init() {
	f := diagnoseCmd.Flags()
	f.StringSliceVarP(&diagnoseFlags.inputs, "input", "i", nil, "Metric CSV file (repeatable)")
	f.StringVarP(&diagnoseFlags.metricName, "metric", "m", "", "Metric column to analyze (default "+defaultMetric+")")
	f.StringSliceVar(&diagnoseFlags.dimensions, "dimensions", nil, "Dimensions to decompose (default standing set)")
	f.StringVar(&diagnoseFlags.directions, "directions", "", `Observed metric directions as JSON, e.g. {"click_quality":"down"}`)
	f.StringVar(&diagnoseFlags.signatures, "signatures", "", "Co-movement signature YAML (default embedded table)")
	f.StringVar(&diagnoseFlags.historyPath, "history", "", "Diagnosis history DB path (enables precedent lookups)")
	f.BoolVar(&diagnoseFlags.record, "record", false, "Persist committed diagnoses to the history DB")
	f.IntVar(&diagnoseFlags.causeDay, "cause-day", 0, "Day index of the proposed cause")
	f.IntVar(&diagnoseFlags.metricChangeDay, "metric-change-day", 0, "Day index of the metric change")
	f.IntVar(&diagnoseFlags.parallel, "parallel", 4, "Max inputs diagnosed concurrently")
	_ = diagnoseCmd.MarkFlagRequired("input")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	observed, err := parseDirectionsFlag(diagnoseFlags.directions)
	if err != nil {
		return err
	}
	sigs, err := loadSignaturesFlag(diagnoseFlags.signatures)
	if err != nil {
		return err
	}

	var store *history.Store
	if diagnoseFlags.historyPath != "" {
		store, err = history.Open(diagnoseFlags.historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}
	if diagnoseFlags.record && store == nil {
		return fmt.Errorf("--record requires --history")
	}

	parallel := diagnoseFlags.parallel
	if parallel < 1 {
		parallel = 1
	}

	results := make([]*diagnose.Diagnosis, len(diagnoseFlags.inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	for i, path := range diagnoseFlags.inputs {
		g.Go(func() error {
			d, err := diagnoseOne(ctx, path, observed, sigs, store)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(results) == 1 {
		return printJSON(cmd, results[0])
	}
	return printJSON(cmd, results)
}

func diagnoseOne(ctx context.Context, path string, observed map[string]metric.DirectionSet, sigs []knowledge.Signature, store *history.Store) (*diagnose.Diagnosis, error) {
	logger := logging.New("diagnose")

	rows, err := ingest.ReadFile(path)
	if err != nil {
		return nil, err
	}
	metricField := resolveMetric(diagnoseFlags.metricName)

	result, err := decompose.Run(rows, metricField, decompose.Options{Dimensions: diagnoseFlags.dimensions})
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}

	quality := anomaly.CheckDataQuality(rows, anomaly.DefaultQualityThresholds())
	step := anomaly.DetectStepChange(ingest.DailyAverages(rows, metricField), anomaly.DefaultStepChangeThresholdPct)

	var co *anomaly.CoMovement
	if len(observed) > 0 {
		matched := anomaly.MatchCoMovement(observed, sigs)
		co = &matched
	}

	precedent := false
	if store != nil && co != nil && co.Matched() {
		if arch, ok := diagnose.ArchetypeForCause(co.LikelyCause); ok {
			precedent, err = store.HasPrecedent(ctx, metricField, arch.Name)
			if err != nil {
				return nil, err
			}
		}
	}

	d, err := diagnose.Run(diagnose.Input{
		Decomposition:        result,
		StepChange:           &step,
		CoMovement:           co,
		TrustGate:            &quality,
		CauseDayIndex:        diagnoseFlags.causeDay,
		MetricChangeDayIndex: diagnoseFlags.metricChangeDay,
		HistoricalPrecedent:  precedent,
	})
	if err != nil {
		return nil, err
	}

	if diagnoseFlags.record && store != nil {
		if err := store.Record(ctx, d); err != nil {
			return nil, fmt.Errorf("record diagnosis: %w", err)
		}
	}

	logger.Info("diagnosis complete",
		"input", path,
		"metric", metricField,
		"archetype", d.PrimaryHypothesis.Archetype,
		"severity", string(d.Aggregate.Severity),
		"confidence", string(d.Confidence.Level),
		"decision", d.DecisionStatus)
	return d, nil
}
