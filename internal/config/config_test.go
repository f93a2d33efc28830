package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/convert"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/google/go-cmp/cmp"
)

const testConfig = `
serverName: governance-server
typeDefsFile: types/extra.yml
categories:
  metrics: [GovernanceDefinitionMetric, ScorecardLink]
repository:
  strictRelationships: true
  validation:
    qualifiedName:
      matches: ['[a-z][a-z0-9-]*']
docs:
  title: Governance handbook
  excludeTypes: [ActorProfile]
`

const extraTypeDefs = `
typeDefs:
  - name: DataPrivacyPolicy
    category: entity
    superType: GovernancePolicy
  - name: ScorecardLink
    category: relationship
`

func writeTempFiles(t *testing.T, files map[string]string) *store.DiskStore {
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
	return store.NewDiskStore(dir)
}

func TestLoad(t *testing.T) {
	st := writeTempFiles(t, map[string]string{
		"omcat.yml":       testConfig,
		"types/extra.yml": extraTypeDefs,
	})
	b, err := Load(st, "omcat.yml")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if b.ServerName != "governance-server" {
		t.Errorf("ServerName = %q, want governance-server", b.ServerName)
	}
	if !b.Repository.StrictRelationships {
		t.Error("StrictRelationships = false, want true")
	}
	if !b.Repository.Validation.QualifiedName.Accept("policy-1") || b.Repository.Validation.QualifiedName.Accept("Policy 1") {
		t.Error("qualifiedName rule not applied as configured")
	}
	if diff := cmp.Diff([]string{"ActorProfile"}, b.Docs.ExcludeTypes); diff != "" {
		t.Errorf("Docs.ExcludeTypes mismatch (-want +got):\n%s", diff)
	}

	reg, err := b.Registry(st)
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}
	if !reg.IsTypeOf("DataPrivacyPolicy", "GovernanceDefinition") {
		t.Error("DataPrivacyPolicy is not a GovernanceDefinition")
	}

	conv := b.Converter(reg)
	cats := conv.Categories()
	if diff := cmp.Diff([]string{"GovernanceDefinitionMetric", "ScorecardLink"}, cats.Metrics); diff != "" {
		t.Errorf("Metrics categories mismatch (-want +got):\n%s", diff)
	}
	// Unconfigured categories keep their defaults.
	if diff := cmp.Diff(convert.DefaultCategories().Peers, cats.Peers); diff != "" {
		t.Errorf("Peers categories mismatch (-want +got):\n%s", diff)
	}

	g, err := convert.Simple(conv, convert.GovernanceDefinitions, api.MustEntity(`
kind: Entity
guid: g-1
type:
  typeDefName: DataPrivacyPolicy
`))
	if err != nil {
		t.Fatalf("Simple() failed: %v", err)
	}
	if got := g.Header.Origin.SourceServer; got != "governance-server" {
		t.Errorf("SourceServer = %q, want governance-server", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	st := writeTempFiles(t, map[string]string{"omcat.yml": "repository:\n  strictRelationships: false\n"})
	b, err := Load(st, "omcat.yml")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if b.ServerName != DefaultServerName {
		t.Errorf("ServerName = %q, want %q", b.ServerName, DefaultServerName)
	}
	if _, err := b.Registry(st); err != nil {
		t.Errorf("Registry() without typeDefsFile failed: %v", err)
	}
	if diff := cmp.Diff(Default(), b); diff != "" {
		t.Errorf("Load() mismatch with Default() (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{"missing file", nil, "could not read config"},
		{"unknown field", map[string]string{"omcat.yml": "svg: {}\n"}, "field svg not found"},
		{"invalid regexp", map[string]string{"omcat.yml": "repository:\n  validation:\n    provenance:\n      matches: ['(']\n"}, "failed to compile validation regexp"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempFiles(t, tc.files), "omcat.yml")
			if err == nil {
				t.Fatalf("Load() succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestRegistryErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing file", nil},
		{"invalid category", map[string]string{"types.yml": "typeDefs:\n  - name: X\n    category: attribute\n"}},
		{"unknown supertype", map[string]string{"types.yml": "typeDefs:\n  - name: X\n    category: entity\n    superType: Y\n"}},
		{"duplicate", map[string]string{"types.yml": "typeDefs:\n  - name: Asset\n    category: entity\n"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &Bundle{TypeDefsFile: "types.yml"}
			if _, err := b.Registry(writeTempFiles(t, tc.files)); err == nil {
				t.Error("Registry() succeeded, want error")
			}
		})
	}
}
