package metric

// Severity is the urgency tier of a metric movement. P0 pages the
// on-call, P1 goes to the next standup, P2 is monitored, normal needs
// nothing. Blocked marks a diagnosis the trust gate refused to commit.
type Severity string

const (
	SeverityP0      Severity = "P0"
	SeverityP1      Severity = "P1"
	SeverityP2      Severity = "P2"
	SeverityNormal  Severity = "normal"
	SeverityBlocked Severity = "blocked"
)

// Actionable reports whether the tier warrants action items.
func (s Severity) Actionable() bool {
	return s == SeverityP0 || s == SeverityP1 || s == SeverityP2
}

var severityRank = map[Severity]int{
	SeverityP0:      4,
	SeverityP1:      3,
	SeverityP2:      2,
	SeverityNormal:  1,
	SeverityBlocked: 0,
}

// MoreSevereThan reports whether s outranks other. Unknown tiers rank
// below everything.
func (s Severity) MoreSevereThan(other Severity) bool {
	return severityRank[s] > severityRank[other]
}
