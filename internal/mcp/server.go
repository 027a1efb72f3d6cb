// Package mcp exposes the diagnostic tools over the Model Context
// Protocol so agent frontends can call the engine directly.
package mcp

import (
	"context"
	"fmt"

	"driftwatch/internal/anomaly"
	"driftwatch/internal/decompose"
	"driftwatch/internal/diagnose"
	"driftwatch/internal/history"
	"driftwatch/internal/ingest"
	"driftwatch/internal/knowledge"
	"driftwatch/internal/logging"
	"driftwatch/internal/metric"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultMetric is assumed when a tool call does not name a column.
const DefaultMetric = "click_quality_value"

// Options configure the server.
type Options struct {
	// SignaturesPath overrides the embedded co-movement table.
	SignaturesPath string
	// HistoryPath enables diagnosis persistence and precedent lookups.
	HistoryPath string
	// Version is stamped into the MCP implementation info.
	Version string
}

// Server wraps the MCP SDK server around the diagnosis engine. Calls
// are stateless; the only shared state is the signature table and the
// optional history store.
type Server struct {
	MCPServer  *sdkmcp.Server
	signatures []knowledge.Signature
	store      *history.Store
}

// NewServer loads configuration and registers the diagnostic tools.
func NewServer(opts Options) (*Server, error) {
	sigs, err := loadSignatures(opts.SignaturesPath)
	if err != nil {
		return nil, err
	}
	s := &Server{signatures: sigs}
	if opts.HistoryPath != "" {
		store, err := history.Open(opts.HistoryPath)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "driftwatch", Version: version},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Shutdown releases the history store, if any.
func (s *Server) Shutdown() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func loadSignatures(path string) ([]knowledge.Signature, error) {
	if path != "" {
		return knowledge.LoadFile(path)
	}
	return knowledge.Load()
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_decomposition",
		Description: "Decompose a metric movement between baseline and current periods into per-dimension segment contributions with a mix-shift split.",
	}, s.handleRunDecomposition)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "detect_anomalies",
		Description: "Run anomaly detectors on a metric CSV: data quality gate, step-change detection, co-movement signature matching, and z-score baseline comparison.",
	}, s.handleDetectAnomalies)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_diagnosis",
		Description: "Run the full diagnosis pipeline on a metric CSV and return the committed diagnosis with confidence, actions, and coherence warnings.",
	}, s.handleRunDiagnosis)
}

// --- Tool input/output types ---

type decompositionInput struct {
	CSVPath    string   `json:"csv_path" jsonschema:"path to the metric CSV file"`
	Metric     string   `json:"metric,omitempty" jsonschema:"metric column to analyze (default click_quality_value)"`
	Dimensions []string `json:"dimensions,omitempty" jsonschema:"dimensions to decompose (default standing set)"`
}

type decompositionOutput struct {
	Result *decompose.Result `json:"result"`
}

type anomaliesInput struct {
	CSVPath      string            `json:"csv_path" jsonschema:"path to the metric CSV file"`
	Metric       string            `json:"metric,omitempty" jsonschema:"metric column to analyze (default click_quality_value)"`
	Directions   map[string]string `json:"directions,omitempty" jsonschema:"observed metric directions for co-movement matching, e.g. {\"click_quality\":\"down\"}"`
	BaselineMean *float64          `json:"baseline_mean,omitempty" jsonschema:"expected baseline mean for the z-score check"`
	BaselineStd  *float64          `json:"baseline_std,omitempty" jsonschema:"expected baseline weekly standard deviation"`
	ThresholdPct float64           `json:"threshold_pct,omitempty" jsonschema:"step-change threshold in percent (default 2.0)"`
}

type anomaliesOutput struct {
	DataQuality *anomaly.QualityReport `json:"data_quality"`
	StepChange  *anomaly.StepChange    `json:"step_change"`
	CoMovement  *anomaly.CoMovement    `json:"co_movement,omitempty"`
	Baseline    *anomaly.BaselineCheck `json:"baseline,omitempty"`
}

type diagnosisInput struct {
	CSVPath         string            `json:"csv_path" jsonschema:"path to the metric CSV file"`
	Metric          string            `json:"metric,omitempty" jsonschema:"metric column to analyze (default click_quality_value)"`
	Dimensions      []string          `json:"dimensions,omitempty" jsonschema:"dimensions to decompose (default standing set)"`
	Directions      map[string]string `json:"directions,omitempty" jsonschema:"observed metric directions for co-movement matching"`
	CauseDay        int               `json:"cause_day,omitempty" jsonschema:"day index of the proposed cause"`
	MetricChangeDay int               `json:"metric_change_day,omitempty" jsonschema:"day index of the metric change"`
	Record          bool              `json:"record,omitempty" jsonschema:"persist the diagnosis to the history store"`
}

type diagnosisOutput struct {
	Diagnosis *diagnose.Diagnosis `json:"diagnosis"`
	Recorded  bool                `json:"recorded,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleRunDecomposition(ctx context.Context, _ *sdkmcp.CallToolRequest, input decompositionInput) (*sdkmcp.CallToolResult, decompositionOutput, error) {
	rows, err := ingest.ReadFile(input.CSVPath)
	if err != nil {
		return nil, decompositionOutput{}, err
	}
	result, err := decompose.Run(rows, metricOrDefault(input.Metric), decompose.Options{Dimensions: input.Dimensions})
	if err != nil {
		return nil, decompositionOutput{}, fmt.Errorf("run decomposition: %w", err)
	}
	return nil, decompositionOutput{Result: result}, nil
}

func (s *Server) handleDetectAnomalies(ctx context.Context, _ *sdkmcp.CallToolRequest, input anomaliesInput) (*sdkmcp.CallToolResult, anomaliesOutput, error) {
	rows, err := ingest.ReadFile(input.CSVPath)
	if err != nil {
		return nil, anomaliesOutput{}, err
	}
	metricField := metricOrDefault(input.Metric)

	quality := anomaly.CheckDataQuality(rows, anomaly.DefaultQualityThresholds())

	thresholdPct := input.ThresholdPct
	if thresholdPct <= 0 {
		thresholdPct = anomaly.DefaultStepChangeThresholdPct
	}
	step := anomaly.DetectStepChange(ingest.DailyAverages(rows, metricField), thresholdPct)

	out := anomaliesOutput{DataQuality: &quality, StepChange: &step}

	if len(input.Directions) > 0 {
		observed, err := metric.ParseDirections(input.Directions)
		if err != nil {
			return nil, anomaliesOutput{}, fmt.Errorf("parse directions: %w", err)
		}
		co := anomaly.MatchCoMovement(observed, s.signatures)
		out.CoMovement = &co
	}

	if input.BaselineMean != nil && input.BaselineStd != nil {
		var sum float64
		for _, r := range rows {
			sum += r.FloatOr(metricField, 0)
		}
		current := 0.0
		if len(rows) > 0 {
			current = sum / float64(len(rows))
		}
		check := anomaly.CheckAgainstBaseline(current, metricField, "", anomaly.BaselineStats{
			Mean:      *input.BaselineMean,
			WeeklyStd: *input.BaselineStd,
		})
		out.Baseline = &check
	}

	return nil, out, nil
}

func (s *Server) handleRunDiagnosis(ctx context.Context, _ *sdkmcp.CallToolRequest, input diagnosisInput) (*sdkmcp.CallToolResult, diagnosisOutput, error) {
	logger := logging.New("mcp-diagnosis")
	rows, err := ingest.ReadFile(input.CSVPath)
	if err != nil {
		return nil, diagnosisOutput{}, err
	}
	metricField := metricOrDefault(input.Metric)

	result, err := decompose.Run(rows, metricField, decompose.Options{Dimensions: input.Dimensions})
	if err != nil {
		return nil, diagnosisOutput{}, fmt.Errorf("run decomposition: %w", err)
	}

	quality := anomaly.CheckDataQuality(rows, anomaly.DefaultQualityThresholds())
	step := anomaly.DetectStepChange(ingest.DailyAverages(rows, metricField), anomaly.DefaultStepChangeThresholdPct)

	var co *anomaly.CoMovement
	if len(input.Directions) > 0 {
		observed, err := metric.ParseDirections(input.Directions)
		if err != nil {
			return nil, diagnosisOutput{}, fmt.Errorf("parse directions: %w", err)
		}
		matched := anomaly.MatchCoMovement(observed, s.signatures)
		co = &matched
	}

	precedent := false
	if s.store != nil {
		if matched := co; matched != nil && matched.Matched() {
			if arch, ok := diagnose.ArchetypeForCause(matched.LikelyCause); ok {
				precedent, err = s.store.HasPrecedent(ctx, metricField, arch.Name)
				if err != nil {
					return nil, diagnosisOutput{}, err
				}
			}
		}
	}

	d, err := diagnose.Run(diagnose.Input{
		Decomposition:        result,
		StepChange:           &step,
		CoMovement:           co,
		TrustGate:            &quality,
		CauseDayIndex:        input.CauseDay,
		MetricChangeDayIndex: input.MetricChangeDay,
		HistoricalPrecedent:  precedent,
	})
	if err != nil {
		return nil, diagnosisOutput{}, fmt.Errorf("run diagnosis: %w", err)
	}

	out := diagnosisOutput{Diagnosis: d}
	if input.Record && s.store != nil {
		if err := s.store.Record(ctx, d); err != nil {
			return nil, diagnosisOutput{}, err
		}
		out.Recorded = true
	}

	logger.Info("diagnosis complete",
		"metric", metricField,
		"archetype", d.PrimaryHypothesis.Archetype,
		"severity", string(d.Aggregate.Severity),
		"confidence", string(d.Confidence.Level),
		"decision", d.DecisionStatus)
	return nil, out, nil
}

func metricOrDefault(name string) string {
	if name == "" {
		return DefaultMetric
	}
	return metric.CanonicalField(name)
}
