package metric

import "testing"

func TestSeverityActionable(t *testing.T) {
	for _, s := range []Severity{SeverityP0, SeverityP1, SeverityP2} {
		if !s.Actionable() {
			t.Errorf("%s should be actionable", s)
		}
	}
	for _, s := range []Severity{SeverityNormal, SeverityBlocked, Severity("")} {
		if s.Actionable() {
			t.Errorf("%s should not be actionable", s)
		}
	}
}

func TestSeverityMoreSevereThan(t *testing.T) {
	order := []Severity{SeverityP0, SeverityP1, SeverityP2, SeverityNormal, SeverityBlocked}
	for i, higher := range order {
		for _, lower := range order[i+1:] {
			if !higher.MoreSevereThan(lower) {
				t.Errorf("%s should outrank %s", higher, lower)
			}
			if lower.MoreSevereThan(higher) {
				t.Errorf("%s should not outrank %s", lower, higher)
			}
		}
		if higher.MoreSevereThan(higher) {
			t.Errorf("%s should not outrank itself", higher)
		}
	}
	if Severity("P9").MoreSevereThan(SeverityBlocked) {
		t.Error("unknown tiers rank below everything")
	}
}
