package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcpserver "driftwatch/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestServer(t *testing.T, opts mcpserver.Options) *mcpserver.Server {
	t.Helper()
	srv, err := mcpserver.NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatal("no text content in tool result")
	return nil
}

// writeMetricCSV writes a small two-period fixture where the enterprise
// tier drives the movement. Quality fields are healthy so the trust
// gate passes.
func writeMetricCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metric.csv")
	data := `period,metric_ts,tenant_tier,click_quality_value,data_completeness,data_freshness_min
baseline,2026-08-01T00:00:00Z,enterprise,0.30,0.99,5
baseline,2026-08-01T06:00:00Z,enterprise,0.30,0.99,5
baseline,2026-08-01T12:00:00Z,smb,0.28,0.99,5
baseline,2026-08-01T18:00:00Z,smb,0.28,0.99,5
current,2026-08-02T00:00:00Z,enterprise,0.24,0.99,5
current,2026-08-02T06:00:00Z,enterprise,0.24,0.99,5
current,2026-08-02T12:00:00Z,smb,0.28,0.99,5
current,2026-08-02T18:00:00Z,smb,0.28,0.99,5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := newTestServer(t, mcpserver.Options{})
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"run_decomposition": false,
		"detect_anomalies":  false,
		"run_diagnosis":     false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestServer_RunDecomposition(t *testing.T) {
	srv := newTestServer(t, mcpserver.Options{})
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	out := callTool(t, ctx, session, "run_decomposition", map[string]any{
		"csv_path": writeMetricCSV(t),
	})

	result, ok := out["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object, got %v", out)
	}
	if result["dominant_dimension"] != "tenant_tier" {
		t.Errorf("dominant_dimension = %v, want tenant_tier", result["dominant_dimension"])
	}
	agg, ok := result["aggregate"].(map[string]any)
	if !ok {
		t.Fatalf("expected aggregate in result, got %v", result)
	}
	if delta, _ := agg["absolute_delta"].(float64); delta >= 0 {
		t.Errorf("expected negative delta, got %v", delta)
	}
}

func TestServer_DetectAnomalies(t *testing.T) {
	srv := newTestServer(t, mcpserver.Options{})
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	out := callTool(t, ctx, session, "detect_anomalies", map[string]any{
		"csv_path":      writeMetricCSV(t),
		"baseline_mean": 0.29,
		"baseline_std":  0.005,
	})

	quality, ok := out["data_quality"].(map[string]any)
	if !ok {
		t.Fatalf("expected data_quality, got %v", out)
	}
	if quality["status"] != "pass" {
		t.Errorf("data_quality status = %v, want pass", quality["status"])
	}

	step, ok := out["step_change"].(map[string]any)
	if !ok {
		t.Fatalf("expected step_change, got %v", out)
	}
	if detected, _ := step["detected"].(bool); !detected {
		t.Error("expected a detected step change across the day-over-day drop")
	}

	baseline, ok := out["baseline"].(map[string]any)
	if !ok {
		t.Fatalf("expected baseline check, got %v", out)
	}
	if baseline["status"] != "anomalous" {
		t.Errorf("baseline status = %v, want anomalous", baseline["status"])
	}
}

func TestServer_RunDiagnosis_RecordsHistory(t *testing.T) {
	srv := newTestServer(t, mcpserver.Options{
		HistoryPath: filepath.Join(t.TempDir(), "history.db"),
	})
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	out := callTool(t, ctx, session, "run_diagnosis", map[string]any{
		"csv_path": writeMetricCSV(t),
		"record":   true,
	})

	if recorded, _ := out["recorded"].(bool); !recorded {
		t.Errorf("expected recorded=true, got %v", out["recorded"])
	}
	diagnosis, ok := out["diagnosis"].(map[string]any)
	if !ok {
		t.Fatalf("expected diagnosis object, got %v", out)
	}
	if diagnosis["decision_status"] != "diagnosed" {
		t.Errorf("decision_status = %v, want diagnosed", diagnosis["decision_status"])
	}
	hyp, ok := diagnosis["primary_hypothesis"].(map[string]any)
	if !ok {
		t.Fatalf("expected primary_hypothesis, got %v", diagnosis)
	}
	if hyp["dimension"] != "tenant_tier" {
		t.Errorf("hypothesis dimension = %v, want tenant_tier", hyp["dimension"])
	}
}

func TestServer_MissingFileIsToolError(t *testing.T) {
	srv := newTestServer(t, mcpserver.Options{})
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "run_decomposition",
		Arguments: map[string]any{"csv_path": "/nonexistent/metric.csv"},
	})
	if err != nil {
		t.Fatalf("expected tool error, got transport error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError=true for missing CSV")
	}
}

func TestNewServer_BadSignaturesPath(t *testing.T) {
	_, err := mcpserver.NewServer(mcpserver.Options{SignaturesPath: "/nonexistent/signatures.yaml"})
	if err == nil {
		t.Fatal("expected error for missing signatures file")
	}
}
