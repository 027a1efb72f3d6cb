package ingest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"driftwatch/internal/metric"
)

func TestReadParsesTypesAndBridgesLegacyNames(t *testing.T) {
	input := strings.Join([]string{
		"period,tenant_tier,dlctr_value,completeness_pct,data_freshness_min",
		"baseline,standard,0.28,99.5,12",
		"current,premium,0.31,98.0,8",
	}, "\n")

	rows, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	want := metric.Row{
		"period":              "baseline",
		"tenant_tier":         "standard",
		"click_quality_value": 0.28,
		"data_completeness":   0.995,
		"data_freshness_min":  12.0,
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if rows[1].Period() != metric.PeriodCurrent {
		t.Errorf("period = %q, want current", rows[1].Period())
	}
}

func TestReadRejectsHeaderlessInput(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatal("empty input should fail")
	}
}

func TestDailyAveragesOrdersByDay(t *testing.T) {
	rows := []metric.Row{
		{"metric_ts": "2026-03-02T08:00:00Z", "click_quality_value": 0.30},
		{"metric_ts": "2026-03-01T09:00:00Z", "click_quality_value": 0.28},
		{"metric_ts": "2026-03-01T17:00:00Z", "click_quality_value": 0.26},
		{"metric_ts": "2026-03-03T10:00:00Z", "click_quality_value": 0.24},
	}
	got := DailyAverages(rows, "click_quality_value")
	want := []float64{0.27, 0.30, 0.24}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("daily averages (-want +got):\n%s", diff)
	}
}

func TestDailyAveragesFallbackTimestampColumns(t *testing.T) {
	rows := []metric.Row{
		{"date": "2026-03-01", "v": 1.0},
		{"date": "2026-03-02", "v": 3.0},
	}
	got := DailyAverages(rows, "v")
	want := []float64{1.0, 3.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("daily averages (-want +got):\n%s", diff)
	}
}
