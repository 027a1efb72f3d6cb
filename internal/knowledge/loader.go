// Package knowledge holds the static diagnostic tables: the ordered
// co-movement signature table that maps observed metric direction
// patterns to likely causes. The default table is embedded; callers can
// override it with an external YAML file.
package knowledge

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"driftwatch/internal/metric"
)

//go:embed signatures.yaml
var signatureFS embed.FS

// ErrMalformedSignature marks a table entry missing its pattern or cause.
var ErrMalformedSignature = errors.New("malformed co-movement signature")

// Signature is one entry of the co-movement diagnostic table. Pattern
// maps canonical metric names to the direction set that metric must
// show for the entry to match.
type Signature struct {
	LikelyCause        string                         `yaml:"likely_cause" json:"likely_cause"`
	Description        string                         `yaml:"description" json:"description"`
	Pattern            map[string]metric.DirectionSet `yaml:"pattern" json:"pattern"`
	PriorityHypotheses []string                       `yaml:"priority_hypotheses" json:"priority_hypotheses"`
	IsPositive         bool                           `yaml:"is_positive" json:"is_positive"`
}

type signatureFile struct {
	Table []Signature `yaml:"co_movement_diagnostic_table"`
}

// Load returns the embedded default signature table.
func Load() ([]Signature, error) {
	data, err := signatureFS.ReadFile("signatures.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded signature table: %w", err)
	}
	return parse(data)
}

// LoadFile reads a signature table from an external YAML file, for
// deployments that maintain their own pattern catalog.
func LoadFile(path string) ([]Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signature table %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) ([]Signature, error) {
	var file signatureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse signature table: %w", err)
	}
	if len(file.Table) == 0 {
		return nil, fmt.Errorf("%w: table is empty", ErrMalformedSignature)
	}
	for i, sig := range file.Table {
		if sig.LikelyCause == "" {
			return nil, fmt.Errorf("%w: entry %d has no likely_cause", ErrMalformedSignature, i)
		}
		if len(sig.Pattern) == 0 {
			return nil, fmt.Errorf("%w: entry %q has an empty pattern", ErrMalformedSignature, sig.LikelyCause)
		}
	}
	return file.Table, nil
}
