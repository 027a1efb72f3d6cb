package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/knowledge"
	"driftwatch/internal/metric"
)

// defaultMetric is the headline metric when no column is named.
const defaultMetric = "click_quality_value"

func resolveMetric(name string) string {
	if name == "" {
		return defaultMetric
	}
	return metric.CanonicalField(name)
}

// parseDirectionsFlag decodes the --directions JSON value, e.g.
// {"click_quality":"down","result_volume":"flat"}.
func parseDirectionsFlag(raw string) (map[string]metric.DirectionSet, error) {
	if raw == "" {
		return nil, nil
	}
	var observed map[string]string
	if err := json.Unmarshal([]byte(raw), &observed); err != nil {
		return nil, fmt.Errorf("parse --directions: %w", err)
	}
	return metric.ParseDirections(observed)
}

func loadSignaturesFlag(path string) ([]knowledge.Signature, error) {
	if path != "" {
		return knowledge.LoadFile(path)
	}
	return knowledge.Load()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
