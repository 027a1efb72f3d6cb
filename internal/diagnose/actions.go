package diagnose

import "fmt"

// Default owners for remediation items not tied to an archetype.
const (
	ownerDataPlatform  = "Data Platform team"
	ownerSearchQuality = "Search Quality team"
	ownerAnalytics     = "Analytics team"
)

// buildActionItems assembles the recommended next steps: archetype
// playbook first, then remediation for each non-PASS check, then
// confidence and drill-down follow-ups. A false alarm gets no actions
// at all; telling someone to act on noise trains them to ignore us.
func buildActionItems(arch Archetype, checks []Check, conf Confidence, dec decompositionView) []ActionItem {
	if arch.Kind == KindFalseAlarm {
		return []ActionItem{}
	}

	actions := make([]ActionItem, 0, len(arch.ActionItems)+len(checks)+2)
	actions = append(actions, arch.ActionItems...)

	for _, c := range checks {
		switch c.Status {
		case StatusHalt:
			switch c.Check {
			case CheckLoggingArtifact:
				actions = append(actions, ActionItem{
					Action: "PRIORITY: Verify logging and instrumentation pipeline before proceeding. " +
						"Check recent deploys and config changes.",
					Owner: ownerDataPlatform,
				})
			case CheckCompleteness:
				actions = append(actions, ActionItem{
					Action: "Add more decomposition dimensions (e.g., connector_type, query_type) " +
						"to improve coverage of the unexplained residual.",
					Owner: ownerAnalytics,
				})
			case CheckTemporal:
				actions = append(actions, ActionItem{
					Action: "Revise the causal hypothesis -- the proposed cause does not precede " +
						"the metric change. Look for earlier events.",
					Owner: ownerSearchQuality,
				})
			}
		case StatusWarn:
			actions = append(actions, ActionItem{
				Action: fmt.Sprintf("Check '%s' is in WARN state: %s Consider investigating further.", c.Check, c.Detail),
				Owner:  ownerSearchQuality,
			})
		case StatusInvestigate:
			if c.Check == CheckMixShift {
				actions = append(actions, ActionItem{
					Action: "Investigate mix-shift: the movement may be driven by traffic composition " +
						"change rather than quality regression. Compare per-segment metrics to confirm.",
					Owner: ownerAnalytics,
				})
			}
		}
	}

	switch conf.Level {
	case ConfidenceLow:
		action := "Low confidence diagnosis -- gather more evidence before acting."
		if conf.WouldUpgradeIf != "" {
			action += " To raise confidence: " + conf.WouldUpgradeIf + "."
		}
		actions = append(actions, ActionItem{Action: action, Owner: ownerSearchQuality})
	case ConfidenceMedium:
		actions = append(actions, ActionItem{
			Action: "Medium confidence -- directionally useful but verify with additional data before escalating.",
			Owner:  ownerSearchQuality,
		})
	}

	if dec.drillDownRecommended && dec.dominantDimension != "" {
		actions = append(actions, ActionItem{
			Action: fmt.Sprintf("Drill down into '%s' dimension for segment-level root cause analysis.", dec.dominantDimension),
			Owner:  ownerAnalytics,
		})
	}

	return actions
}

// decompositionView is the slice of decomposition state the action
// builder needs, so it stays testable without a full Result.
type decompositionView struct {
	drillDownRecommended bool
	dominantDimension    string
}
