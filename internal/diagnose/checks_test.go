package diagnose

import (
	"strings"
	"testing"

	"driftwatch/internal/anomaly"
)

func TestCheckLoggingArtifact(t *testing.T) {
	halt := checkLoggingArtifact(anomaly.StepChange{Detected: true, ChangeDayIndex: 4, MagnitudePct: 12.5})
	if halt.Status != StatusHalt {
		t.Fatalf("detected step-change: status = %s, want HALT", halt.Status)
	}
	if !strings.Contains(halt.Detail, "day index 4") {
		t.Errorf("detail should name the change day, got %q", halt.Detail)
	}

	pass := checkLoggingArtifact(anomaly.StepChange{Detected: false, ChangeDayIndex: -1})
	if pass.Status != StatusPass {
		t.Fatalf("no step-change: status = %s, want PASS", pass.Status)
	}
}

func TestCheckCompletenessBoundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		explained float64
		want      CheckStatus
	}{
		{95, StatusPass},
		{90, StatusPass},
		{89.9, StatusWarn},
		{70, StatusWarn},
		{69.9, StatusHalt},
		{0, StatusHalt},
	}
	for _, tt := range tests {
		if got := checkCompleteness(tt.explained, th); got.Status != tt.want {
			t.Errorf("checkCompleteness(%.1f) = %s, want %s", tt.explained, got.Status, tt.want)
		}
	}
}

func TestCheckTemporalOrdering(t *testing.T) {
	if got := checkTemporal(2, 5); got.Status != StatusPass {
		t.Errorf("cause before change: status = %s, want PASS", got.Status)
	}
	if got := checkTemporal(3, 3); got.Status != StatusPass {
		t.Errorf("same day: status = %s, want PASS", got.Status)
	}
	got := checkTemporal(6, 4)
	if got.Status != StatusHalt {
		t.Fatalf("cause after change: status = %s, want HALT", got.Status)
	}
	if !strings.Contains(got.Detail, "BEFORE") {
		t.Errorf("detail should call out the inversion, got %q", got.Detail)
	}
}

func TestCheckMixShiftThreshold(t *testing.T) {
	th := DefaultThresholds()
	if got := checkMixShiftThreshold(45, th); got.Status != StatusInvestigate {
		t.Errorf("45%% mix-shift: status = %s, want INVESTIGATE", got.Status)
	}
	if got := checkMixShiftThreshold(30, th); got.Status != StatusInvestigate {
		t.Errorf("30%% mix-shift (boundary): status = %s, want INVESTIGATE", got.Status)
	}
	if got := checkMixShiftThreshold(29.9, th); got.Status != StatusPass {
		t.Errorf("29.9%% mix-shift: status = %s, want PASS", got.Status)
	}
}
