package metric

import (
	"testing"
)

func TestParseDirectionSet(t *testing.T) {
	tests := []struct {
		token   string
		want    string
		wantErr bool
	}{
		{token: "up", want: "up"},
		{token: "stable_or_up", want: "up_or_stable"},
		{token: "up_or_stable", want: "up_or_stable"},
		{token: "down_or_flat", want: "down_or_flat"},
		{token: "", wantErr: true},
		{token: "sideways", wantErr: true},
		{token: "up_or_sideways", wantErr: true},
	}
	for _, tt := range tests {
		set, err := ParseDirectionSet(tt.token)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDirectionSet(%q): expected error, got %v", tt.token, set)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDirectionSet(%q): %v", tt.token, err)
		}
		if got := set.String(); got != tt.want {
			t.Errorf("ParseDirectionSet(%q).String() = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestDirectionSetMatches(t *testing.T) {
	tests := []struct {
		name     string
		observed string
		pattern  string
		want     bool
	}{
		{"exact simple", "stable", "stable", true},
		{"observed in compound pattern", "up", "stable_or_up", true},
		{"stable in compound pattern", "stable", "stable_or_up", true},
		{"compound vs same compound", "stable_or_up", "stable_or_up", true},
		{"down misses compound pattern", "down", "stable_or_up", false},
		{"compound observed vs simple pattern", "stable_or_up", "stable", true},
		{"compound observed misses simple pattern", "stable_or_up", "down", false},
		{"disjoint compounds", "up_or_down", "stable_or_flat", false},
		{"overlapping compounds", "up_or_down", "down_or_flat", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed, err := ParseDirectionSet(tt.observed)
			if err != nil {
				t.Fatal(err)
			}
			pattern, err := ParseDirectionSet(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if got := pattern.Matches(observed); got != tt.want {
				t.Errorf("pattern %q vs observed %q = %v, want %v", tt.pattern, tt.observed, got, tt.want)
			}
		})
	}
}

func TestParseDirectionsCanonicalizesKeys(t *testing.T) {
	observed, err := ParseDirections(map[string]string{
		"dlctr":        "down",
		"qsr":          "down",
		"sain_trigger": "stable",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"click_quality", "search_quality_success", "ai_trigger"} {
		if _, ok := observed[key]; !ok {
			t.Errorf("missing canonical key %q in %v", key, observed)
		}
	}
	if _, ok := observed["dlctr"]; ok {
		t.Error("legacy key dlctr should have been bridged")
	}
}
