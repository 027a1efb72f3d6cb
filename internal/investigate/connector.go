// Package investigate runs a bounded probe sequence against an
// archetype's verification hints. It is an orchestration helper around
// whatever can answer a probe (connector logs, a SQL warehouse, a
// human); the engine itself stays pure.
package investigate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driftwatch/internal/diagnose"
)

// Verdicts. Budget exhaustion yields rejected, not an error: a
// hypothesis we could not verify in time is not one we act on.
const (
	VerdictConfirmed    = "confirmed"
	VerdictRejected     = "rejected"
	VerdictInconclusive = "inconclusive"
)

// ErrUnknownArchetype means the hypothesis names no registered archetype.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Finding is the outcome of one probe.
type Finding struct {
	Query    string `json:"query"`
	Evidence string `json:"evidence"`
	Supports bool   `json:"supports"`
}

// ProbeFunc answers one verification query. Implementations own their
// transport; the investigator only budgets and sequences the calls.
type ProbeFunc func(ctx context.Context, query string) (Finding, error)

// Report is the investigation outcome, including partial evidence when
// the budget ran out mid-sequence.
type Report struct {
	Archetype       string    `json:"archetype"`
	Verdict         string    `json:"verdict"`
	Findings        []Finding `json:"findings"`
	QueriesRun      int       `json:"queries_run"`
	BudgetExhausted bool      `json:"budget_exhausted"`
}

// Investigator sequences bounded probes for one hypothesis.
type Investigator struct {
	// MaxQueries caps the number of probes; zero means the default of 3.
	MaxQueries int
	// Budget is the wall-clock allowance across all probes, checked
	// before each call; zero means the default of 120s.
	Budget time.Duration
	// Probe answers the queries. Required.
	Probe ProbeFunc

	// Now is the clock, replaceable in tests. Nil means time.Now.
	Now func() time.Time
}

const (
	defaultMaxQueries = 3
	defaultBudget     = 120 * time.Second
)

// Run probes the named archetype's confirms_if hints in order, within
// the query and time budget. Exhausting the budget returns a rejected
// report carrying whatever evidence was gathered; probe failures are
// real errors and abort.
func (inv Investigator) Run(ctx context.Context, archetypeName string) (*Report, error) {
	arch, ok := diagnose.ArchetypeByName(archetypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArchetype, archetypeName)
	}
	if inv.Probe == nil {
		return nil, errors.New("investigator needs a probe function")
	}

	maxQueries := inv.MaxQueries
	if maxQueries <= 0 {
		maxQueries = defaultMaxQueries
	}
	budget := inv.Budget
	if budget <= 0 {
		budget = defaultBudget
	}
	now := inv.Now
	if now == nil {
		now = time.Now
	}

	queries := arch.ConfirmsIf
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}

	report := &Report{Archetype: arch.Name, Findings: []Finding{}}
	start := now()
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if now().Sub(start) >= budget {
			report.Verdict = VerdictRejected
			report.BudgetExhausted = true
			return report, nil
		}
		finding, err := inv.Probe(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("probe %q: %w", query, err)
		}
		finding.Query = query
		report.Findings = append(report.Findings, finding)
		report.QueriesRun++
	}

	report.Verdict = verdictOf(report.Findings)
	return report, nil
}

func verdictOf(findings []Finding) string {
	if len(findings) == 0 {
		return VerdictInconclusive
	}
	supporting := 0
	for _, f := range findings {
		if f.Supports {
			supporting++
		}
	}
	switch supporting {
	case len(findings):
		return VerdictConfirmed
	case 0:
		return VerdictRejected
	}
	return VerdictInconclusive
}
