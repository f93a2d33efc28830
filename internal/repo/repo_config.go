package repo

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dnswlt/omcat/internal/api"
	"gopkg.in/yaml.v3"
)

// ValueRegexp is a wrapper around regexp.Regexp to allow for custom YAML unmarshaling.
type ValueRegexp regexp.Regexp

// ValueRule defines a validation rule for a string value.
// It can enforce a specific list of values or a set of regular expressions.
type ValueRule struct {
	Values  []string       `yaml:"values"`
	Matches []*ValueRegexp `yaml:"matches"`
}

// ValidationRules restrict the instances accepted into a repository.
// Nil rules accept any value.
type ValidationRules struct {
	// Entity type names.
	EntityTypes *ValueRule `yaml:"entityTypes"`
	// Relationship type names.
	RelationshipTypes *ValueRule `yaml:"relationshipTypes"`
	// The qualifiedName property of entities. Entities without a
	// qualifiedName are only checked if RequireQualifiedName is set.
	QualifiedName        *ValueRule `yaml:"qualifiedName"`
	RequireQualifiedName bool       `yaml:"requireQualifiedName"`
	// Provenance of all instances. An empty provenance is not checked.
	Provenance *ValueRule `yaml:"provenance"`
}

// Config holds repository-specific application configuration.
type Config struct {
	// If set, relationships must only connect entities that exist in the repository.
	// Otherwise, unknown ends are kept as proxies.
	StrictRelationships bool             `yaml:"strictRelationships"`
	Validation          *ValidationRules `yaml:"validation"`
}

func (r *ValidationRules) acceptHeader(h *api.InstanceHeader) error {
	if h.Provenance != "" && !r.Provenance.Accept(h.Provenance) {
		return fmt.Errorf("invalid provenance %q (allowed: %s)", h.Provenance, r.Provenance.Describe())
	}
	return nil
}

// Accept checks inst against the rules.
func (r *ValidationRules) Accept(inst api.Instance) error {
	if r == nil {
		return nil
	}
	if err := r.acceptHeader(inst.GetHeader()); err != nil {
		return err
	}
	switch v := inst.(type) {
	case *api.EntityDetail:
		if !r.EntityTypes.Accept(v.Type.Name()) {
			return fmt.Errorf("invalid entity type %q (allowed: %s)", v.Type.Name(), r.EntityTypes.Describe())
		}
		qn, ok := v.Properties["qualifiedName"].(string)
		if !ok {
			if r.RequireQualifiedName {
				return fmt.Errorf("missing qualifiedName")
			}
			return nil
		}
		if !r.QualifiedName.Accept(qn) {
			return fmt.Errorf("invalid qualifiedName %q (allowed: %s)", qn, r.QualifiedName.Describe())
		}
	case *api.Relationship:
		if !r.RelationshipTypes.Accept(v.Type.Name()) {
			return fmt.Errorf("invalid relationship type %q (allowed: %s)", v.Type.Name(), r.RelationshipTypes.Describe())
		}
	}
	// If no specific rules failed, the instance is considered valid.
	return nil
}

// Describe returns a human-readable description of the allowed values.
func (r *ValueRule) Describe() string {
	if r == nil {
		return "any value"
	}
	if len(r.Values) > 0 {
		// e.g. "one of [service, library]"
		return fmt.Sprintf("one of [%s]", strings.Join(r.Values, ", "))
	}
	if len(r.Matches) > 0 {
		// e.g. "matching patterns [^[a-z]+$, ^[0-9]+$]"
		patterns := make([]string, len(r.Matches))
		for i, re := range r.Matches {
			patterns[i] = (*regexp.Regexp)(re).String()
		}
		if len(patterns) == 1 {
			return fmt.Sprintf("matching pattern %s", patterns[0])
		}
		return fmt.Sprintf("matching any of patterns [%s]", strings.Join(patterns, ", "))
	}
	return "any value"
}

// Accept checks if a given value is valid according to the rule.
func (r *ValueRule) Accept(val string) bool {
	if r == nil {
		// If no rule is defined, all values are accepted.
		return true
	}
	if r.Values != nil {
		// If an explicit list of values is provided, check against it.
		return slices.Contains(r.Values, val)
	}
	if r.Matches != nil {
		// If regex patterns are provided, check if any of them match.
		for _, re := range r.Matches {
			// Cast the *ValueRegexp back to a *regexp.Regexp to access its methods.
			if (*regexp.Regexp)(re).MatchString(val) {
				return true
			}
		}
		// If there are regexes but none matched, the value is not accepted.
		return false
	}
	// If the rule is empty (e.g., "type:"), all values are accepted.
	return true
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for ValueRegexp.
// This allows converting a string from a YAML file directly into a compiled regexp.
func (vr *ValueRegexp) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("regexp pattern in validation rule cannot be empty")
	}

	fullMatchPattern := "^(?:" + s + ")$"

	re, err := regexp.Compile(fullMatchPattern)
	if err != nil {
		// Return a more informative error message.
		return fmt.Errorf("failed to compile validation regexp %q: %w", s, err)
	}

	// Assign the compiled regexp to the ValueRegexp.
	*vr = ValueRegexp(*re)
	return nil
}
