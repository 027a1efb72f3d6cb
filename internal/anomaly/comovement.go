package anomaly

import (
	"driftwatch/internal/knowledge"
	"driftwatch/internal/metric"
)

// UnknownPattern is returned when no signature matches the observation.
const UnknownPattern = "unknown_pattern"

// NoSignificantMovement is the all-stable signature's cause name; the
// orchestrator treats it as a co-movement-confirmed false alarm.
const NoSignificantMovement = "no_significant_movement"

// CoMovement is the result of matching observed metric directions
// against the signature table.
type CoMovement struct {
	LikelyCause        string   `json:"likely_cause"`
	Description        string   `json:"description"`
	PriorityHypotheses []string `json:"priority_hypotheses"`
	IsPositive         bool     `json:"is_positive"`
}

// Matched reports whether a known signature was recognized.
func (c CoMovement) Matched() bool {
	return c.LikelyCause != "" && c.LikelyCause != UnknownPattern
}

// MatchCoMovement walks the signature table in order and returns the
// first entry where every pattern metric matches the observed
// direction for that metric. A metric missing from the observation is
// a non-match for that entry, not a wildcard: an unconfirmable pattern
// must not be claimed. No match yields the unknown-pattern result.
func MatchCoMovement(observed map[string]metric.DirectionSet, table []knowledge.Signature) CoMovement {
	for _, sig := range table {
		if patternMatches(sig.Pattern, observed) {
			return CoMovement{
				LikelyCause:        sig.LikelyCause,
				Description:        sig.Description,
				PriorityHypotheses: sig.PriorityHypotheses,
				IsPositive:         sig.IsPositive,
			}
		}
	}
	return CoMovement{
		LikelyCause:        UnknownPattern,
		Description:        "Observed metric directions do not match any known co-movement pattern.",
		PriorityHypotheses: []string{},
		IsPositive:         false,
	}
}

func patternMatches(pattern, observed map[string]metric.DirectionSet) bool {
	for name, expected := range pattern {
		got, ok := observed[name]
		if !ok {
			return false
		}
		if !expected.Matches(got) {
			return false
		}
	}
	return true
}
