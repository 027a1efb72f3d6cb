package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"driftwatch/internal/investigate"
)

var investigateFlags struct {
	archetype  string
	hypothesis string
	findings   string
	maxQueries int
	budget     time.Duration
}

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Probe an archetype's verification hints and report a verdict",
	Long: `Runs the archetype's confirms_if queries in order, within a query and
time budget, and reports confirmed, rejected, or inconclusive. The
archetype is named directly with --archetype or taken from a diagnosis
hypothesis JSON via --hypothesis.

Probe answers are read from the --findings JSON file, a map from query
text to {"evidence": "...", "supports": true}. Queries with no entry
count as unsupported. This suits offline review workflows where an
analyst (or another tool) has already pulled the connector evidence.`,
	RunE: runInvestigate,
}

func init() {
	f := investigateCmd.Flags()
	f.StringVar(&investigateFlags.archetype, "archetype", "", "Archetype name to verify (e.g. ranking_regression)")
	f.StringVar(&investigateFlags.hypothesis, "hypothesis", "", "Hypothesis JSON file from a diagnosis (archetype is read from it)")
	f.StringVar(&investigateFlags.findings, "findings", "", "JSON file mapping query text to evidence")
	f.IntVar(&investigateFlags.maxQueries, "max-queries", 0, "Max probes to run (default 3)")
	f.DurationVar(&investigateFlags.budget, "budget", 0, "Wall-clock budget across all probes (default 2m)")
}

func runInvestigate(cmd *cobra.Command, _ []string) error {
	archetype := investigateFlags.archetype
	if archetype == "" && investigateFlags.hypothesis != "" {
		data, err := os.ReadFile(investigateFlags.hypothesis)
		if err != nil {
			return fmt.Errorf("read hypothesis: %w", err)
		}
		var hyp struct {
			Archetype string `json:"archetype"`
		}
		if err := json.Unmarshal(data, &hyp); err != nil {
			return fmt.Errorf("parse hypothesis: %w", err)
		}
		archetype = hyp.Archetype
	}
	if archetype == "" {
		return fmt.Errorf("either --archetype or --hypothesis is required")
	}

	answers := make(map[string]investigate.Finding)
	if investigateFlags.findings != "" {
		data, err := os.ReadFile(investigateFlags.findings)
		if err != nil {
			return fmt.Errorf("read findings: %w", err)
		}
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("parse findings: %w", err)
		}
	}

	inv := investigate.Investigator{
		MaxQueries: investigateFlags.maxQueries,
		Budget:     investigateFlags.budget,
		Probe: func(_ context.Context, query string) (investigate.Finding, error) {
			if f, ok := answers[query]; ok {
				return f, nil
			}
			return investigate.Finding{Evidence: "no evidence collected", Supports: false}, nil
		},
	}

	report, err := inv.Run(cmd.Context(), archetype)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
