package anomaly

import (
	"testing"

	"driftwatch/internal/knowledge"
	"driftwatch/internal/metric"
)

func loadTable(t *testing.T) []knowledge.Signature {
	t.Helper()
	table, err := knowledge.Load()
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func observe(t *testing.T, directions map[string]string) map[string]metric.DirectionSet {
	t.Helper()
	observed, err := metric.ParseDirections(directions)
	if err != nil {
		t.Fatal(err)
	}
	return observed
}

func TestMatchCoMovement(t *testing.T) {
	table := loadTable(t)
	tests := []struct {
		name       string
		directions map[string]string
		wantCause  string
		wantPos    bool
	}{
		{
			name: "ranking regression",
			directions: map[string]string{
				"click_quality": "down", "search_quality_success": "down",
				"ai_trigger": "stable", "ai_success": "stable",
			},
			wantCause: "ranking_relevance_regression",
		},
		{
			name: "ai answers working",
			directions: map[string]string{
				"click_quality": "down", "search_quality_success": "stable_or_up",
				"ai_trigger": "up", "ai_success": "up",
			},
			wantCause: "ai_answers_working",
			wantPos:   true,
		},
		{
			name: "click behavior change",
			directions: map[string]string{
				"click_quality": "down", "search_quality_success": "stable",
				"ai_trigger": "stable", "ai_success": "stable",
			},
			wantCause: "click_behavior_change",
		},
		{
			name: "all stable",
			directions: map[string]string{
				"click_quality": "stable", "search_quality_success": "stable",
				"ai_trigger": "stable", "ai_success": "stable",
			},
			wantCause: "no_significant_movement",
			wantPos:   true,
		},
		{
			name: "everything up matches nothing",
			directions: map[string]string{
				"click_quality": "up", "search_quality_success": "up",
				"ai_trigger": "up", "ai_success": "up",
			},
			wantCause: UnknownPattern,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchCoMovement(observe(t, tt.directions), table)
			if got.LikelyCause != tt.wantCause {
				t.Errorf("likely cause = %q, want %q", got.LikelyCause, tt.wantCause)
			}
			if got.IsPositive != tt.wantPos {
				t.Errorf("is_positive = %v, want %v", got.IsPositive, tt.wantPos)
			}
		})
	}
}

func TestMatchCoMovementLegacyMetricNames(t *testing.T) {
	table := loadTable(t)
	got := MatchCoMovement(observe(t, map[string]string{
		"dlctr": "down", "qsr": "down",
		"sain_trigger": "stable", "sain_success": "stable",
	}), table)
	if got.LikelyCause != "ranking_relevance_regression" {
		t.Errorf("legacy names should bridge to canonical: got %q", got.LikelyCause)
	}
}

func TestMatchCoMovementMissingMetricIsNonMatch(t *testing.T) {
	table := loadTable(t)
	got := MatchCoMovement(observe(t, map[string]string{"click_quality": "down"}), table)
	if got.LikelyCause != UnknownPattern {
		t.Errorf("partial observation matched %q, want unknown_pattern", got.LikelyCause)
	}
	if got.Matched() {
		t.Error("unknown pattern should not report as matched")
	}
	if len(got.PriorityHypotheses) != 0 {
		t.Errorf("unknown pattern hypotheses = %v, want empty", got.PriorityHypotheses)
	}
}

func TestMatchCoMovementEmptyObservation(t *testing.T) {
	table := loadTable(t)
	got := MatchCoMovement(nil, table)
	if got.LikelyCause != UnknownPattern {
		t.Errorf("empty observation matched %q", got.LikelyCause)
	}
}
