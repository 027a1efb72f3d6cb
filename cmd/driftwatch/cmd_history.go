package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/history"
)

var historyFlags struct {
	dbPath     string
	metricName string
	limit      int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent committed diagnoses for a metric",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.dbPath, "db", "", "Diagnosis history DB path")
	f.StringVarP(&historyFlags.metricName, "metric", "m", "", "Metric to list (default "+defaultMetric+")")
	f.IntVar(&historyFlags.limit, "limit", 10, "Max entries to return")
	_ = historyCmd.MarkFlagRequired("db")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := history.Open(historyFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), resolveMetric(historyFlags.metricName), historyFlags.limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return printJSON(cmd, entries)
}
