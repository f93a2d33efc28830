package repo

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/query"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const governanceInstances = `
kind: Entity
guid: g-1
type:
  typeDefName: GovernancePolicy
provenance: LOCAL_COHORT
properties:
  qualifiedName: policy-retention
---
kind: Entity
guid: g-2
type:
  typeDefName: GovernanceControl
properties:
  qualifiedName: control-archive
---
kind: Entity
guid: m-1
type:
  typeDefName: GovernanceMetric
properties:
  qualifiedName: metric-archived-ratio
---
kind: Relationship
guid: r-2
type:
  typeDefName: GovernanceDefinitionMetric
end1:
  guid: g-1
  type:
    typeDefName: GovernancePolicy
end2:
  guid: m-1
---
kind: Relationship
guid: r-1
type:
  typeDefName: GovernanceImplementation
end1:
  guid: g-1
end2:
  guid: g-2
`

func loadTestRepo(t *testing.T, config Config, files map[string]string) (*Repository, error) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return Load(store.NewDiskStore(dir), config, ".")
}

func guids[T api.Instance](is []T) []string {
	var result []string
	for _, i := range is {
		result = append(result, i.GetGUID())
	}
	return result
}

func TestLoad(t *testing.T) {
	r, err := loadTestRepo(t, Config{}, map[string]string{
		"governance.yml": governanceInstances,
		"nested/more.yaml": `
kind: Entity
guid: a-1
type:
  typeDefName: DataSet
`,
		"README.md": "not an instance file",
	})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if r.Size() != 6 {
		t.Errorf("Size() = %d, want 6", r.Size())
	}
	if diff := cmp.Diff([]string{"a-1", "g-1", "g-2", "m-1"}, guids(r.Entities())); diff != "" {
		t.Errorf("Entities() mismatch (-want +got):\n%s", diff)
	}
	e, err := r.Entity("a-1")
	if err != nil {
		t.Fatalf("Entity(a-1) failed: %v", err)
	}
	if si := e.GetSourceInfo(); si == nil || si.Path != "nested/more.yaml" {
		t.Errorf("SourceInfo = %+v, want path nested/more.yaml", si)
	}
}

func TestLookups(t *testing.T) {
	r, err := loadTestRepo(t, Config{}, map[string]string{"governance.yml": governanceInstances})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if _, err := r.Entity("x-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Entity(x-1) error = %v, want ErrNotFound", err)
	}
	if _, err := r.Relationship("g-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Relationship(g-1) error = %v, want ErrNotFound", err)
	}
	rel, err := r.Relationship("r-2")
	if err != nil {
		t.Fatalf("Relationship(r-2) failed: %v", err)
	}
	if rel.Type.Name() != "GovernanceDefinitionMetric" {
		t.Errorf("Relationship(r-2) has type %q", rel.Type.Name())
	}

	tests := []struct {
		guid string
		want []string
	}{
		{"g-1", []string{"r-1", "r-2"}},
		{"g-2", []string{"r-1"}},
		{"m-1", []string{"r-2"}},
		{"x-1", nil},
	}
	for _, tc := range tests {
		t.Run("RelationshipsOf "+tc.guid, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, guids(r.RelationshipsOf(tc.guid))); diff != "" {
				t.Errorf("RelationshipsOf(%s) mismatch (-want +got):\n%s", tc.guid, diff)
			}
		})
	}
}

func TestNeighborhood(t *testing.T) {
	r, err := loadTestRepo(t, Config{}, map[string]string{
		"governance.yml": governanceInstances,
		"dangling.yml": `
kind: Relationship
guid: r-3
type:
  typeDefName: GovernancePolicyLink
end1:
  guid: g-9
end2:
  guid: g-1
`,
	})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	primary, others, rels, err := r.Neighborhood("g-1")
	if err != nil {
		t.Fatalf("Neighborhood(g-1) failed: %v", err)
	}
	if primary.GUID != "g-1" {
		t.Errorf("primary = %s, want g-1", primary.GUID)
	}
	// g-9 is unknown and only reachable as a proxy.
	if diff := cmp.Diff([]string{"g-2", "m-1"}, guids(others)); diff != "" {
		t.Errorf("others mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"r-1", "r-2", "r-3"}, guids(rels)); diff != "" {
		t.Errorf("relationships mismatch (-want +got):\n%s", diff)
	}

	if _, _, _, err := r.Neighborhood("x-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Neighborhood(x-1) error = %v, want ErrNotFound", err)
	}
}

func TestSelfRelationship(t *testing.T) {
	r := NewRepository()
	if err := r.AddEntity(api.MustEntity("kind: Entity\nguid: p-1\ntype:\n  typeDefName: Person\n")); err != nil {
		t.Fatal(err)
	}
	if err := r.AddRelationship(api.MustRelationship("kind: Relationship\nguid: r-1\ntype:\n  typeDefName: Peer\nend1:\n  guid: p-1\nend2:\n  guid: p-1\n")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r-1"}, guids(r.RelationshipsOf("p-1"))); diff != "" {
		t.Errorf("RelationshipsOf(p-1) mismatch (-want +got):\n%s", diff)
	}
}

func TestFind(t *testing.T) {
	r, err := loadTestRepo(t, Config{}, map[string]string{"governance.yml": governanceInstances})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"g-1", "g-2", "m-1"}},
		{`typeName == "GovernanceMetric"`, []string{"m-1"}},
		{`qualifiedName.startsWith("policy") || qualifiedName.startsWith("control")`, []string{"g-1", "g-2"}},
		// Only g-1 has a provenance.
		{`provenance == "LOCAL_COHORT"`, []string{"g-1"}},
		// Evaluation errors do not match.
		{`properties.missing == "x"`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			q, err := query.Compile(tc.query, nil)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tc.query, err)
			}
			if diff := cmp.Diff(tc.want, guids(r.Find(q))); diff != "" {
				t.Errorf("Find(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	mustRule := func(s string) *ValidationRules {
		var v ValidationRules
		if err := yaml.Unmarshal([]byte(s), &v); err != nil {
			t.Fatalf("Invalid rules: %v", err)
		}
		return &v
	}
	tests := []struct {
		name    string
		config  Config
		files   map[string]string
		wantErr string
	}{
		{
			name: "duplicate guid",
			files: map[string]string{
				"a.yml": "kind: Entity\nguid: g-1\ntype:\n  typeDefName: Asset\n",
				"b.yml": "kind: Relationship\nguid: g-1\ntype:\n  typeDefName: Peer\nend1:\n  guid: g-1\nend2:\n  guid: g-1\n",
			},
			wantErr: "already exists",
		},
		{
			name:    "entity without type",
			files:   map[string]string{"a.yml": "kind: Entity\nguid: g-1\n"},
			wantErr: "entity has no type",
		},
		{
			name: "unnamed classification",
			files: map[string]string{
				"a.yml": "kind: Entity\nguid: g-1\ntype:\n  typeDefName: Asset\nclassifications:\n  - properties:\n      a: b\n",
			},
			wantErr: "classification without name",
		},
		{
			name: "relationship without end",
			files: map[string]string{
				"a.yml": "kind: Relationship\nguid: r-1\ntype:\n  typeDefName: Peer\nend1:\n  guid: g-1\n",
			},
			wantErr: "end2 has no GUID",
		},
		{
			name:   "strict relationships",
			config: Config{StrictRelationships: true},
			files: map[string]string{
				"a.yml": governanceInstances + "---\nkind: Relationship\nguid: r-9\ntype:\n  typeDefName: Peer\nend1:\n  guid: g-1\nend2:\n  guid: g-9\n",
			},
			wantErr: `unknown entity "g-9"`,
		},
		{
			name: "proxy type mismatch",
			files: map[string]string{
				"a.yml": governanceInstances + "---\nkind: Relationship\nguid: r-9\ntype:\n  typeDefName: Peer\nend1:\n  guid: g-1\n  type:\n    typeDefName: Person\nend2:\n  guid: g-2\n",
			},
			wantErr: `end1 has type "Person"`,
		},
		{
			name:    "entity type rule",
			config:  Config{Validation: mustRule("entityTypes:\n  matches: ['Governance.*']\n")},
			files:   map[string]string{"a.yml": governanceInstances},
			wantErr: "", // all entity types match
		},
		{
			name:   "relationship type rule",
			config: Config{Validation: mustRule("relationshipTypes:\n  values: [GovernanceDefinitionMetric]\n")},
			files:  map[string]string{"a.yml": governanceInstances},
			// r-1 is a GovernanceImplementation
			wantErr: `invalid relationship type "GovernanceImplementation"`,
		},
		{
			name:    "qualifiedName rule",
			config:  Config{Validation: mustRule("qualifiedName:\n  matches: ['(policy|metric)-.+']\n")},
			files:   map[string]string{"a.yml": governanceInstances},
			wantErr: `invalid qualifiedName "control-archive"`,
		},
		{
			name:   "required qualifiedName",
			config: Config{Validation: mustRule("requireQualifiedName: true\n")},
			files: map[string]string{
				"a.yml": "kind: Entity\nguid: g-1\ntype:\n  typeDefName: Asset\n",
			},
			wantErr: "missing qualifiedName",
		},
		{
			name:    "provenance rule",
			config:  Config{Validation: mustRule("provenance:\n  values: [EXPORT_ARCHIVE]\n")},
			files:   map[string]string{"a.yml": governanceInstances},
			wantErr: `invalid provenance "LOCAL_COHORT"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadTestRepo(t, tc.config, tc.files)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Load() failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Load() succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

// Helper to create ValueRegexp for tests. It mimics the UnmarshalYAML logic
// by wrapping the pattern with anchors to enforce a full match.
func mustValueRegexp(s string) *ValueRegexp {
	re := regexp.MustCompile("^(?:" + s + ")$")
	return (*ValueRegexp)(re)
}

func TestValueRule(t *testing.T) {
	tests := []struct {
		name     string
		rule     *ValueRule
		value    string
		want     bool
		describe string
	}{
		{"nil rule", nil, "anything", true, "any value"},
		{"empty rule", &ValueRule{}, "anything", true, "any value"},
		{"value match", &ValueRule{Values: []string{"a", "b"}}, "b", true, "one of [a, b]"},
		{"value mismatch", &ValueRule{Values: []string{"a", "b"}}, "c", false, "one of [a, b]"},
		{"regexp match", &ValueRule{Matches: []*ValueRegexp{mustValueRegexp("policy-.+")}}, "policy-x", true, "matching pattern ^(?:policy-.+)$"},
		{"partial match rejected", &ValueRule{Matches: []*ValueRegexp{mustValueRegexp("policy")}}, "policy-x", false, "matching pattern ^(?:policy)$"},
		{"second regexp", &ValueRule{Matches: []*ValueRegexp{mustValueRegexp("a"), mustValueRegexp("b+")}}, "bbb", true, "matching any of patterns [^(?:a)$, ^(?:b+)$]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Accept(tc.value); got != tc.want {
				t.Errorf("Accept(%q) = %v, want %v", tc.value, got, tc.want)
			}
			if got := tc.rule.Describe(); got != tc.describe {
				t.Errorf("Describe() = %q, want %q", got, tc.describe)
			}
		})
	}
}

func TestValueRegexpUnmarshal(t *testing.T) {
	var rule ValueRule
	if err := yaml.Unmarshal([]byte("matches: ['[a-z]+']\n"), &rule); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !rule.Accept("abc") || rule.Accept("abc1") {
		t.Errorf("unmarshaled rule does not enforce a full match")
	}
	for _, bad := range []string{"matches: ['']\n", "matches: ['(']\n"} {
		if err := yaml.Unmarshal([]byte(bad), &rule); err == nil {
			t.Errorf("Unmarshal(%q) succeeded, want error", bad)
		}
	}
}
