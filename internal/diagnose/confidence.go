package diagnose

import (
	"fmt"
	"strings"
)

// ConfidenceLevel is the summary judgment on a diagnosis.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// Confidence carries the level plus the conditions that would move it
// up or down one step. The upgrade and downgrade strings are meant to
// be actionable, not decorative; the action builder reuses them.
type Confidence struct {
	Level            ConfidenceLevel `json:"level"`
	Reasoning        string          `json:"reasoning"`
	WouldUpgradeIf   string          `json:"would_upgrade_if,omitempty"`
	WouldDowngradeIf string          `json:"would_downgrade_if,omitempty"`
}

// computeConfidence scores a diagnosis from its validation checks,
// explained percentage, independent evidence lines, and whether the
// pattern has historical precedent.
//
//	High:   all checks PASS, >=90% explained, >=3 evidence lines, precedent
//	Low:    <2 evidence lines, or <80% explained, or >=2 non-PASS checks
//	Medium: everything in between
func computeConfidence(checks []Check, explainedPct float64, evidenceLines int, precedent bool, th Thresholds) Confidence {
	var nonPass []Check
	for _, c := range checks {
		if c.Status != StatusPass {
			nonPass = append(nonPass, c)
		}
	}

	allPass := len(nonPass) == 0
	highExplained := explainedPct >= th.HighExplainedPct
	highEvidence := evidenceLines >= th.HighEvidenceLines

	if allPass && highExplained && highEvidence && precedent {
		var down []string
		if explainedPct < 95 {
			down = append(down, fmt.Sprintf("explained_pct drops below %.0f%%", th.HighExplainedPct))
		}
		if evidenceLines == th.HighEvidenceLines {
			down = append(down, "losing one evidence line")
		}
		return Confidence{
			Level: ConfidenceHigh,
			Reasoning: fmt.Sprintf("All %d validation checks passed. %.1f%% of movement explained. %d evidence lines with historical precedent.",
				len(checks), explainedPct, evidenceLines),
			WouldDowngradeIf: strings.Join(down, "; "),
		}
	}

	lowEvidence := evidenceLines < th.MediumEvidenceLines
	lowExplained := explainedPct < th.MediumExplainedPct
	multipleNonPass := len(nonPass) >= 2

	if lowEvidence || lowExplained || multipleNonPass {
		var up []string
		var why strings.Builder
		why.WriteString("Low confidence due to:")
		if lowEvidence {
			up = append(up, fmt.Sprintf("increase evidence lines from %d to >=%d", evidenceLines, th.MediumEvidenceLines))
			fmt.Fprintf(&why, " only %d evidence line(s).", evidenceLines)
		}
		if lowExplained {
			up = append(up, fmt.Sprintf("increase explained_pct from %.1f%% to >=%.0f%%", explainedPct, th.MediumExplainedPct))
			fmt.Fprintf(&why, " %.1f%% explained (need >=%.0f%%).", explainedPct, th.MediumExplainedPct)
		}
		if multipleNonPass {
			up = append(up, fmt.Sprintf("resolve %d of %d failing checks", len(nonPass)-1, len(nonPass)))
			fmt.Fprintf(&why, " %d non-PASS checks.", len(nonPass))
		}
		return Confidence{
			Level:          ConfidenceLow,
			Reasoning:      why.String(),
			WouldUpgradeIf: strings.Join(up, "; "),
		}
	}

	var up []string
	if !highExplained {
		up = append(up, fmt.Sprintf("increase explained_pct from %.1f%% to >=%.0f%%", explainedPct, th.HighExplainedPct))
	}
	if !highEvidence {
		up = append(up, fmt.Sprintf("add %d more evidence line(s)", th.HighEvidenceLines-evidenceLines))
	}
	if !precedent {
		up = append(up, "find historical precedent for this pattern")
	}
	if !allPass {
		names := make([]string, len(nonPass))
		for i, c := range nonPass {
			names[i] = c.Check
		}
		up = append(up, "resolve non-PASS check(s): "+strings.Join(names, ", "))
	}

	var down []string
	if evidenceLines == th.MediumEvidenceLines {
		down = append(down, "losing one evidence line")
	}
	if explainedPct < 85 {
		down = append(down, fmt.Sprintf("explained_pct drops below %.0f%%", th.MediumExplainedPct))
	}

	return Confidence{
		Level: ConfidenceMedium,
		Reasoning: fmt.Sprintf("Medium confidence: %.1f%% explained, %d evidence line(s), %d non-PASS check(s), historical precedent: %t.",
			explainedPct, evidenceLines, len(nonPass), precedent),
		WouldUpgradeIf:   strings.Join(up, "; "),
		WouldDowngradeIf: strings.Join(down, "; "),
	}
}
