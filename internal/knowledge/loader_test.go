package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedTable(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(table) < 8 {
		t.Errorf("table has %d entries, want at least 8", len(table))
	}

	causes := make(map[string]bool)
	for _, sig := range table {
		causes[sig.LikelyCause] = true
		if len(sig.Pattern) == 0 {
			t.Errorf("signature %q has an empty pattern", sig.LikelyCause)
		}
	}
	for _, required := range []string{
		"ranking_relevance_regression",
		"ai_answers_working",
		"click_behavior_change",
		"no_significant_movement",
	} {
		if !causes[required] {
			t.Errorf("missing required signature %q", required)
		}
	}
}

func TestLoadEmbeddedPositiveFlags(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, sig := range table {
		switch sig.LikelyCause {
		case "ai_answers_working", "no_significant_movement":
			if !sig.IsPositive {
				t.Errorf("signature %q should be positive", sig.LikelyCause)
			}
		case "ranking_relevance_regression":
			if sig.IsPositive {
				t.Errorf("signature %q should not be positive", sig.LikelyCause)
			}
		}
	}
}

func TestLoadFileRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing likely_cause",
			yaml: "co_movement_diagnostic_table:\n  - pattern: {click_quality: down}\n",
		},
		{
			name: "empty pattern",
			yaml: "co_movement_diagnostic_table:\n  - likely_cause: something\n",
		},
		{
			name: "empty table",
			yaml: "co_movement_diagnostic_table: []\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sigs.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !errors.Is(err, ErrMalformedSignature) {
				t.Errorf("got %v, want ErrMalformedSignature", err)
			}
		})
	}
}

func TestLoadFileRejectsBadDirectionToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.yaml")
	bad := "co_movement_diagnostic_table:\n  - likely_cause: x\n    pattern: {click_quality: sideways}\n"
	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error for unknown direction token")
	}
}
