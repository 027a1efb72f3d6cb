package diagnose

import (
	"driftwatch/internal/anomaly"
	"driftwatch/internal/metric"
)

// Kind tags the archetype family; it doubles as the hypothesis
// category on the wire.
type Kind string

const (
	KindQualityRegression Kind = "quality_regression"
	KindExpectedEffect    Kind = "expected_effect"
	KindBehaviorShift     Kind = "behavior_shift"
	KindDataArtifact      Kind = "data_artifact"
	KindMixShift          Kind = "mix_shift"
	KindFalseAlarm        Kind = "false_alarm"
	KindGeneric           Kind = "generic"
)

// Well-known archetype names.
const (
	ArchetypeRankingRegression  = "ranking_regression"
	ArchetypeAIAdoption         = "ai_adoption"
	ArchetypeQueryUnderstanding = "query_understanding_regression"
	ArchetypeAIQuality          = "ai_quality_regression"
	ArchetypeAICoverage         = "ai_coverage_regression"
	ArchetypeClickBehavior      = "click_behavior_shift"
	ArchetypeInstrumentation    = "instrumentation_artifact"
	ArchetypeMixShift           = "mix_shift_composition"
	ArchetypeFalseAlarm         = "false_alarm"
	ArchetypeGeneric            = "generic"
)

// ActionItem is one recommended next step with a responsible owner.
type ActionItem struct {
	Action string `json:"action"`
	Owner  string `json:"owner"`
}

// Archetype is a named diagnostic pattern: a severity policy, a
// narrative template, recommended actions, and structured verification
// hints for downstream investigators.
type Archetype struct {
	Name string
	Kind Kind

	// Cause is the co-movement likely_cause that selects this archetype.
	// Empty for archetypes selected by rule (mix-shift, false alarm,
	// generic fallback).
	Cause string

	// SeverityCap, when set, replaces a harsher computed severity and
	// OverrideReason explains why. Caps only ever lower severity.
	SeverityCap    metric.Severity
	OverrideReason string

	// DescriptionTemplate renders the hypothesis narrative with
	// %[1]s = dimension, %[2]s = segment, %[3].1f = contribution pct.
	DescriptionTemplate string

	ActionItems []ActionItem
	IsPositive  bool

	// ExpectedDimensions lists where this archetype's movement should
	// concentrate; the verifier flags a dominant segment elsewhere.
	// Empty means any dimension is plausible.
	ExpectedDimensions []string

	// CorrelatedDimensions are proxies for the same underlying effect;
	// a multi-cause split across two of them is noise, not two causes.
	CorrelatedDimensions []string

	// Structured verification hints for the connector investigator.
	ConfirmsIf []string
	RejectsIf  []string
}

// expectsDimension reports whether a dominant segment in dim is
// consistent with this archetype.
func (a Archetype) expectsDimension(dim string) bool {
	if len(a.ExpectedDimensions) == 0 {
		return true
	}
	for _, d := range a.ExpectedDimensions {
		if d == dim {
			return true
		}
	}
	return false
}

func (a Archetype) correlates(dimA, dimB string) bool {
	var hasA, hasB bool
	for _, d := range a.CorrelatedDimensions {
		if d == dimA {
			hasA = true
		}
		if d == dimB {
			hasB = true
		}
	}
	return hasA && hasB
}

// registry is the static archetype table, ordered for readability only;
// selection is by Cause.
var registry = []Archetype{
	{
		Name:  ArchetypeRankingRegression,
		Kind:  KindQualityRegression,
		Cause: "ranking_relevance_regression",
		DescriptionTemplate: "Ranking relevance regression: click quality and search success dropped together, " +
			"concentrated in %[1]s='%[2]s' (%[3].1f%% of the movement).",
		ActionItems: []ActionItem{
			{Action: "Check ranking model deploys and experiment ramps in the change window", Owner: "Search Ranking team"},
			{Action: "Compare relevance judgments for the affected segment before and after the change", Owner: "Search Quality team"},
		},
		ExpectedDimensions: []string{"tenant_tier", "industry_vertical", "connector_type", "query_type"},
		ConfirmsIf: []string{
			"a ranking deploy or experiment ramp lands within one day of the change",
			"offline relevance metrics regressed for the affected segment",
		},
		RejectsIf: []string{
			"no ranking change shipped in the window",
			"the drop is uniform across all query types",
		},
	},
	{
		Name:           ArchetypeAIAdoption,
		Kind:           KindExpectedEffect,
		Cause:          "ai_answers_working",
		SeverityCap:    metric.SeverityP2,
		OverrideReason: "AI answers absorbing clicks is an expected adoption effect, not a regression; capped at P2 for monitoring.",
		DescriptionTemplate: "AI answers are resolving queries that previously required clicks; " +
			"%[1]s='%[2]s' explains %[3].1f%% of the click-quality movement.",
		ActionItems: []ActionItem{
			{Action: "Confirm AI answer success rate holds for the affected tenants", Owner: "AI Answers team"},
			{Action: "Annotate the click-quality dashboard with the adoption effect", Owner: "Analytics team"},
		},
		IsPositive:           true,
		ExpectedDimensions:   []string{"ai_enablement"},
		CorrelatedDimensions: []string{"ai_enablement", "tenant_tier"},
		ConfirmsIf: []string{
			"ai_trigger and ai_success rose for the affected segment",
			"click loss concentrates in queries with AI answers shown",
		},
		RejectsIf: []string{
			"ai_success fell while ai_trigger rose",
			"click loss concentrates in queries without AI answers",
		},
	},
	{
		Name:  ArchetypeQueryUnderstanding,
		Kind:  KindQualityRegression,
		Cause: "query_understanding_regression",
		DescriptionTemplate: "Query understanding regression: all engagement signals fell together, " +
			"concentrated in %[1]s='%[2]s' (%[3].1f%% of the movement).",
		ActionItems: []ActionItem{
			{Action: "Check query parser, spell correction, and intent classifier deploys", Owner: "Query Understanding team"},
			{Action: "Sample failed queries in the affected segment for parse errors", Owner: "Search Quality team"},
		},
		ConfirmsIf: []string{
			"a query pipeline deploy lands within the change window",
			"zero-result rate rose alongside the engagement drop",
		},
		RejectsIf: []string{
			"no query pipeline change shipped in the window",
		},
	},
	{
		Name:  ArchetypeAIQuality,
		Kind:  KindQualityRegression,
		Cause: "ai_quality_regression",
		DescriptionTemplate: "AI answer quality regression: answers still trigger but succeed less, " +
			"concentrated in %[1]s='%[2]s' (%[3].1f%% of the movement).",
		ActionItems: []ActionItem{
			{Action: "Check answer generation model and prompt changes in the window", Owner: "AI Answers team"},
			{Action: "Audit retrieval corpus freshness behind the answer layer", Owner: "AI Answers team"},
		},
		ExpectedDimensions: []string{"ai_enablement", "tenant_tier"},
		ConfirmsIf: []string{
			"ai_success fell while ai_trigger held steady",
			"answer abandonment rose for the affected segment",
		},
		RejectsIf: []string{
			"ai_success is stable and the drop sits in classic results",
		},
	},
	{
		Name:  ArchetypeAICoverage,
		Kind:  KindQualityRegression,
		Cause: "ai_coverage_drop",
		DescriptionTemplate: "AI answer coverage drop: answers stopped triggering and users fell back to classic results; " +
			"%[1]s='%[2]s' explains %[3].1f%% of the movement.",
		ActionItems: []ActionItem{
			{Action: "Check answer trigger threshold and eligibility config changes", Owner: "AI Answers team"},
			{Action: "Check answer service availability and error rates", Owner: "AI Answers team"},
		},
		ExpectedDimensions: []string{"ai_enablement"},
		ConfirmsIf: []string{
			"ai_trigger fell sharply with stable query volume",
			"an eligibility or threshold config change shipped in the window",
		},
		RejectsIf: []string{
			"ai_trigger is stable for the affected segment",
		},
	},
	{
		Name:  ArchetypeClickBehavior,
		Kind:  KindBehaviorShift,
		Cause: "click_behavior_change",
		DescriptionTemplate: "Click behavior change: click quality moved alone while relevance and AI signals held; " +
			"%[1]s='%[2]s' explains %[3].1f%% of the movement.",
		ActionItems: []ActionItem{
			{Action: "Check UI deploys affecting result layout or click targets", Owner: "Search Frontend team"},
			{Action: "Compare click instrumentation versions across the change window", Owner: "Data Platform team"},
		},
		ExpectedDimensions: []string{"query_type", "position_bucket", "tenant_tier"},
		ConfirmsIf: []string{
			"a frontend deploy lands within the change window",
			"click position distribution shifted without a relevance change",
		},
		RejectsIf: []string{
			"search success moved together with click quality",
		},
	},
	{
		Name:  ArchetypeInstrumentation,
		Kind:  KindDataArtifact,
		Cause: "click_inflation_artifact",
		DescriptionTemplate: "Click counting artifact: click quality rose in isolation, which usually means " +
			"double-counting; %[1]s='%[2]s' explains %[3].1f%% of the movement.",
		ActionItems: []ActionItem{
			{Action: "Diff click event schema and dedup logic across the change window", Owner: "Data Platform team"},
			{Action: "Check for bot or synthetic traffic counted as engagement", Owner: "Data Platform team"},
		},
		ConfirmsIf: []string{
			"duplicate click events appear after a logging deploy",
			"the rise has no matching movement in downstream engagement",
		},
		RejectsIf: []string{
			"raw event volume and dedup rates are unchanged",
		},
	},
	{
		Name: ArchetypeMixShift,
		Kind: KindMixShift,
		ActionItems: []ActionItem{
			{Action: "Compare per-segment metrics to confirm behavior is stable within segments", Owner: "Analytics team"},
			{Action: "Check tenant onboarding and tier migration volumes in the change window", Owner: "Customer Success team"},
		},
		ExpectedDimensions: nil, // composition change can surface anywhere
		ConfirmsIf: []string{
			"per-segment means are stable while segment shares moved",
			"onboarding or migration volume matches the share change",
		},
		RejectsIf: []string{
			"per-segment means moved as much as the aggregate",
		},
	},
	{
		Name:           ArchetypeFalseAlarm,
		Kind:           KindFalseAlarm,
		Cause:          anomaly.NoSignificantMovement,
		SeverityCap:    metric.SeverityNormal,
		OverrideReason: "Movement is within normal noise for this metric; no regression to diagnose.",
		ActionItems:    []ActionItem{},
		IsPositive:     true,
		ConfirmsIf: []string{
			"all related metrics are stable over the window",
			"the delta is within the metric's historical weekly variance",
		},
		RejectsIf: []string{
			"any related metric shows a sustained move",
		},
	},
	{
		Name: ArchetypeGeneric,
		Kind: KindGeneric,
		ActionItems: []ActionItem{
			{Action: "Review deploys, experiments, and config changes in the change window", Owner: "Search Quality team"},
		},
		ConfirmsIf: []string{
			"a concrete change event aligns with the movement",
		},
		RejectsIf: []string{
			"no change event aligns with the movement",
		},
	},
}

var (
	byCause = map[string]*Archetype{}
	byName  = map[string]*Archetype{}
)

func init() {
	for i := range registry {
		a := &registry[i]
		if a.Cause != "" {
			byCause[a.Cause] = a
		}
		byName[a.Name] = a
	}
}

// archetypeByCause looks up the archetype selected by a co-movement
// likely_cause.
func archetypeByCause(cause string) (Archetype, bool) {
	if a, ok := byCause[cause]; ok {
		return *a, true
	}
	return Archetype{}, false
}

// ArchetypeForCause exposes the cause lookup to callers that key
// history records by archetype.
func ArchetypeForCause(cause string) (Archetype, bool) {
	return archetypeByCause(cause)
}

// ArchetypeByName exposes the registry to the verifier and the
// connector investigator.
func ArchetypeByName(name string) (Archetype, bool) {
	if a, ok := byName[name]; ok {
		return *a, true
	}
	return Archetype{}, false
}

func mixShiftArchetype() Archetype   { return *byName[ArchetypeMixShift] }
func falseAlarmArchetype() Archetype { return *byName[ArchetypeFalseAlarm] }
func genericArchetype() Archetype    { return *byName[ArchetypeGeneric] }
