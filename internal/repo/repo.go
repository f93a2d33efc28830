// Package repo is the in-memory repository access layer. It holds the
// entities and relationships of an instance snapshot, keyed by GUID, and
// answers the lookups the converters need.
package repo

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/query"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("instance not found")

type Repository struct {
	entities      map[string]*api.EntityDetail
	relationships map[string]*api.Relationship
	// Relationships by the GUIDs of both of their ends.
	byEnd map[string][]*api.Relationship

	// Repository configuration
	config Config
}

func NewRepositoryWithConfig(config Config) *Repository {
	return &Repository{
		entities:      make(map[string]*api.EntityDetail),
		relationships: make(map[string]*api.Relationship),
		byEnd:         make(map[string][]*api.Relationship),
		config:        config,
	}
}

func NewRepository() *Repository {
	return NewRepositoryWithConfig(Config{})
}

// Size returns the number of entities and relationships in the repository.
func (r *Repository) Size() int {
	return len(r.entities) + len(r.relationships)
}

func (r *Repository) exists(guid string) bool {
	if _, ok := r.entities[guid]; ok {
		return true
	}
	_, ok := r.relationships[guid]
	return ok
}

// AddEntity adds an entity to the repository *during construction*.
// GUIDs must be unique across entities and relationships.
func (r *Repository) AddEntity(e *api.EntityDetail) error {
	if e == nil || e.GUID == "" {
		return fmt.Errorf("entity has no GUID")
	}
	if r.exists(e.GUID) {
		return fmt.Errorf("instance %q already exists in the repository", e.GUID)
	}
	r.entities[e.GUID] = e
	return nil
}

// AddRelationship adds a relationship to the repository *during construction*.
// Its ends are only checked by Validate.
func (r *Repository) AddRelationship(rel *api.Relationship) error {
	if rel == nil || rel.GUID == "" {
		return fmt.Errorf("relationship has no GUID")
	}
	if r.exists(rel.GUID) {
		return fmt.Errorf("instance %q already exists in the repository", rel.GUID)
	}
	r.relationships[rel.GUID] = rel
	for _, end := range []*api.EntityProxy{rel.End1, rel.End2} {
		if end != nil && end.GUID != "" {
			r.byEnd[end.GUID] = append(r.byEnd[end.GUID], rel)
		}
	}
	return nil
}

// Add adds an entity or relationship.
func (r *Repository) Add(inst api.Instance) error {
	switch v := inst.(type) {
	case *api.EntityDetail:
		return r.AddEntity(v)
	case *api.Relationship:
		return r.AddRelationship(v)
	}
	return fmt.Errorf("invalid instance type: %T", inst)
}

// Entity returns the entity with the given GUID.
func (r *Repository) Entity(guid string) (*api.EntityDetail, error) {
	e, ok := r.entities[guid]
	if !ok {
		return nil, fmt.Errorf("entity %q: %w", guid, ErrNotFound)
	}
	return e, nil
}

// Relationship returns the relationship with the given GUID.
func (r *Repository) Relationship(guid string) (*api.Relationship, error) {
	rel, ok := r.relationships[guid]
	if !ok {
		return nil, fmt.Errorf("relationship %q: %w", guid, ErrNotFound)
	}
	return rel, nil
}

func compareByGUID[T api.Instance](a, b T) int {
	return cmp.Compare(a.GetGUID(), b.GetGUID())
}

// Entities returns all entities, sorted by GUID.
func (r *Repository) Entities() []*api.EntityDetail {
	result := make([]*api.EntityDetail, 0, len(r.entities))
	for _, e := range r.entities {
		result = append(result, e)
	}
	slices.SortFunc(result, compareByGUID[*api.EntityDetail])
	return result
}

// RelationshipsOf returns all relationships that have the entity guid at
// either end, sorted by GUID.
func (r *Repository) RelationshipsOf(guid string) []*api.Relationship {
	rels := slices.Clone(r.byEnd[guid])
	// A relationship from an entity to itself is indexed twice.
	slices.SortFunc(rels, compareByGUID[*api.Relationship])
	return slices.CompactFunc(rels, func(a, b *api.Relationship) bool {
		return a.GUID == b.GUID
	})
}

// Neighborhood returns the entity guid, its relationships, and the entities
// at the other ends of those relationships that exist in the repository.
// The result is what a complex conversion of guid needs.
func (r *Repository) Neighborhood(guid string) (*api.EntityDetail, []*api.EntityDetail, []*api.Relationship, error) {
	e, err := r.Entity(guid)
	if err != nil {
		return nil, nil, nil, err
	}
	rels := r.RelationshipsOf(guid)
	var others []*api.EntityDetail
	seen := make(map[string]bool)
	for _, rel := range rels {
		end := rel.OtherEnd(guid)
		if end == nil || seen[end.GUID] {
			continue
		}
		seen[end.GUID] = true
		if other, ok := r.entities[end.GUID]; ok {
			others = append(others, other)
		}
	}
	slices.SortFunc(others, compareByGUID[*api.EntityDetail])
	return e, others, rels, nil
}

// Find returns all entities matching q, sorted by GUID.
// Entities for which q fails to evaluate (e.g. because a property it
// accesses is missing) do not match.
func (r *Repository) Find(q *query.Query) []*api.EntityDetail {
	var result []*api.EntityDetail
	for _, e := range r.Entities() {
		ok, err := q.Matches(e)
		if err != nil {
			log.Debug().Err(err).Str("guid", e.GUID).Msg("query evaluation failed")
			continue
		}
		if ok {
			result = append(result, e)
		}
	}
	return result
}

func sourceOf(inst api.Instance) string {
	si := inst.GetSourceInfo()
	if si == nil {
		return "unknown source"
	}
	return fmt.Sprintf("%s:%d", si.Path, si.Line)
}

func (r *Repository) validateEntity(e *api.EntityDetail) error {
	if e.Type.Name() == "" {
		return fmt.Errorf("entity has no type")
	}
	for _, c := range e.Classifications {
		if c == nil || c.Name == "" {
			return fmt.Errorf("classification without name")
		}
	}
	return r.config.Validation.Accept(e)
}

func (r *Repository) validateRelationship(rel *api.Relationship) error {
	if rel.Type.Name() == "" {
		return fmt.Errorf("relationship has no type")
	}
	for i, end := range []*api.EntityProxy{rel.End1, rel.End2} {
		if end == nil || end.GUID == "" {
			return fmt.Errorf("end%d has no GUID", i+1)
		}
		e, ok := r.entities[end.GUID]
		if !ok {
			if r.config.StrictRelationships {
				return fmt.Errorf("end%d refers to unknown entity %q", i+1, end.GUID)
			}
			continue
		}
		if t := end.Type.Name(); t != "" && t != e.Type.Name() {
			return fmt.Errorf("end%d has type %q, but entity %q has type %q", i+1, t, e.GUID, e.Type.Name())
		}
	}
	return r.config.Validation.Accept(rel)
}

// Validate checks all instances for consistency and against the
// configured validation rules.
func (r *Repository) Validate() error {
	for _, e := range r.Entities() {
		if err := r.validateEntity(e); err != nil {
			return fmt.Errorf("invalid entity %q (%s): %v", e.GUID, sourceOf(e), err)
		}
	}
	rels := make([]*api.Relationship, 0, len(r.relationships))
	for _, rel := range r.relationships {
		rels = append(rels, rel)
	}
	slices.SortFunc(rels, compareByGUID[*api.Relationship])
	for _, rel := range rels {
		if err := r.validateRelationship(rel); err != nil {
			return fmt.Errorf("invalid relationship %q (%s): %v", rel.GUID, sourceOf(rel), err)
		}
	}
	return nil
}

// Load reads all instance files below dir in st into a new repository
// and validates it.
func Load(st store.Store, config Config, dir string) (*Repository, error) {
	repo := NewRepositoryWithConfig(config)
	err := repo.initialize(st, dir)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) initialize(st store.Store, dir string) error {
	if r.Size() != 0 {
		return fmt.Errorf("initialize called on a non-empty repo (size: %d)", r.Size())
	}
	paths, err := store.InstanceFiles(st, dir)
	if err != nil {
		return fmt.Errorf("initialize: cannot retrieve instance files: %v", err)
	}
	for _, p := range paths {
		log.Info().Str("path", p).Msg("Reading instance file")
		instances, err := store.ReadInstances(st, p)
		if err != nil {
			return fmt.Errorf("failed to read instances from %s: %v", p, err)
		}
		for _, inst := range instances {
			if err := r.Add(inst); err != nil {
				return fmt.Errorf("failed to add instance (source: %s) to the repo: %v", sourceOf(inst), err)
			}
		}
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("repository validation failed: %v", err)
	}
	log.Info().Int("entities", len(r.entities)).Int("relationships", len(r.relationships)).Msg("Loaded repository")
	return nil
}
