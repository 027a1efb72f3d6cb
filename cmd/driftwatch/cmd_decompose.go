package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/decompose"
	"driftwatch/internal/ingest"
)

var decomposeFlags struct {
	input      string
	metricName string
	dimensions []string
}

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Decompose a metric movement into per-dimension segment contributions",
	Long: `Splits the input CSV into baseline and current periods, computes the
headline delta, breaks it down by every requested dimension, and runs a
mix-shift split on the primary dimension. Output is JSON on stdout.`,
	RunE: runDecompose,
}

func init() {
	f := decomposeCmd.Flags()
	f.StringVarP(&decomposeFlags.input, "input", "i", "", "Path to the metric CSV file")
	f.StringVarP(&decomposeFlags.metricName, "metric", "m", "", "Metric column to analyze (default "+defaultMetric+")")
	f.StringSliceVar(&decomposeFlags.dimensions, "dimensions", nil, "Dimensions to decompose (default standing set)")
	_ = decomposeCmd.MarkFlagRequired("input")
}

func runDecompose(cmd *cobra.Command, _ []string) error {
	rows, err := ingest.ReadFile(decomposeFlags.input)
	if err != nil {
		return err
	}
	result, err := decompose.Run(rows, resolveMetric(decomposeFlags.metricName), decompose.Options{
		Dimensions: decomposeFlags.dimensions,
	})
	if err != nil {
		return fmt.Errorf("decompose: %w", err)
	}
	return printJSON(cmd, result)
}
