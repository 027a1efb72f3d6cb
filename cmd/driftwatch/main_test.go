package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFixtureCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metric.csv")
	data := `period,metric_ts,tenant_tier,click_quality_value,data_completeness,data_freshness_min
baseline,2026-08-01T00:00:00Z,enterprise,0.30,0.99,5
baseline,2026-08-01T06:00:00Z,enterprise,0.30,0.99,5
baseline,2026-08-01T12:00:00Z,smb,0.28,0.99,5
baseline,2026-08-01T18:00:00Z,smb,0.28,0.99,5
current,2026-08-02T00:00:00Z,enterprise,0.24,0.99,5
current,2026-08-02T06:00:00Z,enterprise,0.24,0.99,5
current,2026-08-02T12:00:00Z,smb,0.28,0.99,5
current,2026-08-02T18:00:00Z,smb,0.28,0.99,5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDecomposeCommand(t *testing.T) {
	out, err := execute("decompose", "-i", writeFixtureCSV(t))
	if err != nil {
		t.Fatalf("decompose: %v\n%s", err, out)
	}

	var result struct {
		DominantDimension    string `json:"dominant_dimension"`
		DrillDownRecommended bool   `json:"drill_down_recommended"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if result.DominantDimension != "tenant_tier" {
		t.Errorf("dominant_dimension = %q, want tenant_tier", result.DominantDimension)
	}
	if !result.DrillDownRecommended {
		t.Error("expected a drill-down recommendation for a concentrated movement")
	}
}

func TestDiagnoseCommand_RecordsHistory(t *testing.T) {
	csv := writeFixtureCSV(t)
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute("diagnose", "-i", csv, "--history", db, "--record")
	if err != nil {
		t.Fatalf("diagnose: %v\n%s", err, out)
	}

	var d struct {
		DecisionStatus    string `json:"decision_status"`
		PrimaryHypothesis struct {
			Dimension string `json:"dimension"`
		} `json:"primary_hypothesis"`
	}
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if d.DecisionStatus != "diagnosed" {
		t.Errorf("decision_status = %q, want diagnosed", d.DecisionStatus)
	}
	if d.PrimaryHypothesis.Dimension != "tenant_tier" {
		t.Errorf("hypothesis dimension = %q, want tenant_tier", d.PrimaryHypothesis.Dimension)
	}

	histOut, err := execute("history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v\n%s", err, histOut)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(histOut), &entries); err != nil {
		t.Fatalf("parse history output: %v\n%s", err, histOut)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
}

func TestDiagnoseCommand_RecordRequiresHistory(t *testing.T) {
	// Flag variables persist across in-process executions.
	diagnoseFlags.historyPath = ""
	if _, err := execute("diagnose", "-i", writeFixtureCSV(t), "--record"); err == nil {
		t.Fatal("expected error for --record without --history")
	}
	diagnoseFlags.record = false
}

func TestAnomalyCommand_UnknownCheck(t *testing.T) {
	if _, err := execute("anomaly", "-i", writeFixtureCSV(t), "--check", "vibes"); err == nil {
		t.Fatal("expected error for unknown check")
	}
	anomalyFlags.check = "all"
}

func TestInvestigateCommand_UnknownArchetype(t *testing.T) {
	if _, err := execute("investigate", "--archetype", "not_a_thing"); err == nil {
		t.Fatal("expected error for unknown archetype")
	}
	investigateFlags.archetype = ""
}

func TestInvestigateCommand_HypothesisAndFindings(t *testing.T) {
	dir := t.TempDir()
	hypPath := filepath.Join(dir, "hypothesis.json")
	if err := os.WriteFile(hypPath, []byte(`{"archetype":"ranking_regression"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	findings := `{
		"a ranking deploy or experiment ramp lands within one day of the change": {"evidence": "deploy 2026-08-14", "supports": true},
		"offline relevance metrics regressed for the affected segment": {"evidence": "ndcg -4pts", "supports": true}
	}`
	findingsPath := filepath.Join(dir, "findings.json")
	if err := os.WriteFile(findingsPath, []byte(findings), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute("investigate", "--hypothesis", hypPath, "--findings", findingsPath)
	if err != nil {
		t.Fatalf("investigate: %v\n%s", err, out)
	}
	var report struct {
		Archetype string `json:"archetype"`
		Verdict   string `json:"verdict"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if report.Archetype != "ranking_regression" {
		t.Errorf("archetype = %q, want ranking_regression", report.Archetype)
	}
	if report.Verdict != "confirmed" {
		t.Errorf("verdict = %q, want confirmed", report.Verdict)
	}
}
