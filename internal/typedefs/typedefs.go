// Package typedefs holds the type definitions known to the converters and
// answers is-a questions about them.
package typedefs

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// Categories of type definitions.
const (
	CategoryEntity         = "entity"
	CategoryRelationship   = "relationship"
	CategoryClassification = "classification"
)

// DefaultCacheSize is the number of is-a answers kept by a Registry.
const DefaultCacheSize = 4096

//go:embed defaults.yml
var defaultDefs []byte

// TypeDef is a single type definition.
type TypeDef struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	SuperType string `yaml:"superType"`
	// Short description, for documentation only.
	Description string `yaml:"description"`
}

// File is the YAML structure of a type definition file.
type File struct {
	TypeDefs []*TypeDef `yaml:"typeDefs"`
}

type isAKey struct {
	typeName string
	ancestor string
}

// Registry is an immutable set of type definitions.
// It is safe for concurrent use.
type Registry struct {
	defs  map[string]*TypeDef
	cache *lru.Cache[isAKey, bool]
}

// NewRegistry builds a registry from defs. It fails on duplicate names,
// unknown supertypes, and inheritance cycles.
func NewRegistry(defs []*TypeDef) (*Registry, error) {
	cache, err := lru.New[isAKey, bool](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create type cache: %v", err)
	}
	r := &Registry{
		defs:  make(map[string]*TypeDef, len(defs)),
		cache: cache,
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("type definition without name")
		}
		if _, ok := r.defs[d.Name]; ok {
			return nil, fmt.Errorf("duplicate type definition %q", d.Name)
		}
		r.defs[d.Name] = d
	}
	for _, d := range defs {
		if d.SuperType == "" {
			continue
		}
		sup, ok := r.defs[d.SuperType]
		if !ok {
			return nil, fmt.Errorf("type %q has unknown supertype %q", d.Name, d.SuperType)
		}
		if sup.Category != d.Category {
			return nil, fmt.Errorf("type %q (%s) cannot extend %q (%s)", d.Name, d.Category, sup.Name, sup.Category)
		}
	}
	for _, d := range defs {
		if _, err := r.superTypes(d.Name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Parse reads a type definition file.
func Parse(bs []byte) ([]*TypeDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid type definition YAML: %v", err)
	}
	for _, d := range f.TypeDefs {
		switch d.Category {
		case CategoryEntity, CategoryRelationship, CategoryClassification:
		default:
			return nil, fmt.Errorf("type %q has invalid category %q", d.Name, d.Category)
		}
	}
	return f.TypeDefs, nil
}

// Defaults returns the built-in type definitions.
func Defaults() []*TypeDef {
	defs, err := Parse(defaultDefs)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in type definitions: %v", err))
	}
	return defs
}

// NewDefaultRegistry returns a registry of the built-in type definitions
// extended by extra.
func NewDefaultRegistry(extra ...*TypeDef) (*Registry, error) {
	return NewRegistry(append(Defaults(), extra...))
}

func (r *Registry) superTypes(name string) ([]string, error) {
	var result []string
	seen := map[string]bool{name: true}
	d := r.defs[name]
	for d != nil && d.SuperType != "" {
		if seen[d.SuperType] {
			return nil, fmt.Errorf("inheritance cycle at type %q", d.SuperType)
		}
		seen[d.SuperType] = true
		result = append(result, d.SuperType)
		d = r.defs[d.SuperType]
	}
	return result, nil
}

// SuperTypes returns the supertypes of name, nearest first.
// Unknown types have no supertypes.
func (r *Registry) SuperTypes(name string) []string {
	s, _ := r.superTypes(name)
	return s
}

// IsTypeOf reports whether typeName is ancestor or one of its subtypes.
// Unknown types are only compatible with themselves.
func (r *Registry) IsTypeOf(typeName, ancestor string) bool {
	if typeName == "" || ancestor == "" {
		return false
	}
	if typeName == ancestor {
		return true
	}
	key := isAKey{typeName, ancestor}
	if v, ok := r.cache.Get(key); ok {
		return v
	}
	v := slices.Contains(r.SuperTypes(typeName), ancestor)
	r.cache.Add(key, v)
	return v
}
