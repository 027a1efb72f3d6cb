package metric

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction is the qualitative movement of one metric between periods.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
	DirectionFlat   Direction = "flat"
)

// directionOrder fixes the rendering order for compound tokens.
var directionOrder = []Direction{DirectionUp, DirectionDown, DirectionStable, DirectionFlat}

// DirectionSet is the set of directions a co-movement signature accepts
// for one metric. Wire tokens join alternatives with "_or_"
// ("stable_or_up" accepts either stable or up); the set form keeps the
// matching logic free of string splitting.
type DirectionSet map[Direction]struct{}

// ParseDirectionSet parses a wire token, compound or simple, into a set.
// An empty token yields an error rather than an empty set.
func ParseDirectionSet(token string) (DirectionSet, error) {
	if token == "" {
		return nil, fmt.Errorf("empty direction token")
	}
	set := make(DirectionSet)
	for _, part := range strings.Split(token, "_or_") {
		switch d := Direction(part); d {
		case DirectionUp, DirectionDown, DirectionStable, DirectionFlat:
			set[d] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown direction %q in token %q", part, token)
		}
	}
	return set, nil
}

// DirectionOf wraps a single direction as a one-element set.
func DirectionOf(d Direction) DirectionSet {
	return DirectionSet{d: {}}
}

// Matches reports whether the observed set satisfies this pattern set.
// A pattern is satisfied when the two sets share at least one direction,
// which reproduces compound-token matching on both sides: an exact
// match, an observed alternative allowed by a compound pattern, and a
// compound observation covering a simple pattern all intersect.
func (s DirectionSet) Matches(observed DirectionSet) bool {
	for d := range observed {
		if _, ok := s[d]; ok {
			return true
		}
	}
	return false
}

// String renders the canonical wire token for the set.
func (s DirectionSet) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range directionOrder {
		if _, ok := s[d]; ok {
			parts = append(parts, string(d))
		}
	}
	return strings.Join(parts, "_or_")
}

// UnmarshalYAML decodes a scalar direction token into a set, so the
// signature table YAML can keep the compact "stable_or_up" form.
func (s *DirectionSet) UnmarshalYAML(node *yaml.Node) error {
	var token string
	if err := node.Decode(&token); err != nil {
		return err
	}
	set, err := ParseDirectionSet(token)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalYAML renders the set back to its wire token.
func (s DirectionSet) MarshalYAML() (any, error) {
	return s.String(), nil
}

// ParseDirections parses a metric-name -> token map, canonicalizing
// legacy metric names along the way.
func ParseDirections(observed map[string]string) (map[string]DirectionSet, error) {
	out := make(map[string]DirectionSet, len(observed))
	for name, token := range observed {
		set, err := ParseDirectionSet(token)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		out[CanonicalField(name)] = set
	}
	return out, nil
}
