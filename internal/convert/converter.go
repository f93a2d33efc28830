// Package convert builds beans from repository instances.
//
// Each kind of bean is described by a Family, which knows how to create
// the bean and how to fill it from an entity's properties. The generic
// functions Simple, WithRelationship and Complex drive the conversion:
// they validate the input, build the element header, merge classifications
// and compute the extended properties from whatever the family did not consume.
//
// Conversions are pure functions of their inputs. A Converter holds only
// read-only configuration and can be shared between goroutines.
package convert

import (
	"slices"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/classify"
	"github.com/dnswlt/omcat/internal/props"
	"github.com/rs/zerolog/log"
)

const (
	opSimple       = "simple"
	opRelationship = "relationship"
	opComplex      = "complex"
)

// TypeOracle answers whether a type is a subtype of another.
// *typedefs.Registry implements it.
type TypeOracle interface {
	IsTypeOf(typeName, ancestor string) bool
}

// superTyper is optionally implemented by a TypeOracle to fill in the
// supertypes of instances that do not carry them.
type superTyper interface {
	SuperTypes(typeName string) []string
}

// Categories assign relationship types to the buckets of graph beans.
// A relationship falls into a category if its type is a subtype of any of
// the category's types.
type Categories struct {
	Metrics            []string `yaml:"metrics,omitempty"`
	ExternalReferences []string `yaml:"externalReferences,omitempty"`
	// Hierarchy relationships point from parent (end1) to child (end2).
	Hierarchy []string `yaml:"hierarchy,omitempty"`
	Peers     []string `yaml:"peers,omitempty"`

	ContactMethods []string `yaml:"contactMethods,omitempty"`
	UserIdentities []string `yaml:"userIdentities,omitempty"`
	ProfilePeers   []string `yaml:"profilePeers,omitempty"`
}

// DefaultCategories returns the relationship categories of the open metadata types.
func DefaultCategories() Categories {
	return Categories{
		Metrics:            []string{"GovernanceDefinitionMetric"},
		ExternalReferences: []string{"ExternalReferenceLink"},
		Hierarchy:          []string{"GovernanceResponse", "GovernanceImplementation"},
		Peers:              []string{"GovernancePolicyLink", "GovernanceControlLink", "GovernanceDriverLink"},
		ContactMethods:     []string{"ContactThrough"},
		UserIdentities:     []string{"ProfileIdentity"},
		ProfilePeers:       []string{"Peer"},
	}
}

// Merge returns c with all empty categories replaced by those of defaults.
func (c Categories) Merge(defaults Categories) Categories {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return Categories{
		Metrics:            pick(c.Metrics, defaults.Metrics),
		ExternalReferences: pick(c.ExternalReferences, defaults.ExternalReferences),
		Hierarchy:          pick(c.Hierarchy, defaults.Hierarchy),
		Peers:              pick(c.Peers, defaults.Peers),
		ContactMethods:     pick(c.ContactMethods, defaults.ContactMethods),
		UserIdentities:     pick(c.UserIdentities, defaults.UserIdentities),
		ProfilePeers:       pick(c.ProfilePeers, defaults.ProfilePeers),
	}
}

// Converter holds the configuration shared by all conversions.
type Converter struct {
	serverName string
	oracle     TypeOracle
	categories Categories
}

// Options for NewConverter.
type Options struct {
	// Name of the server reported as the source of all beans.
	ServerName string
	// Oracle is consulted for is-a checks that cannot be answered from the
	// supertypes carried by the instances. May be nil.
	Oracle     TypeOracle
	Categories Categories
}

func NewConverter(opts Options) *Converter {
	return &Converter{
		serverName: opts.ServerName,
		oracle:     opts.Oracle,
		categories: opts.Categories.Merge(DefaultCategories()),
	}
}

// IsA reports whether t is the type ancestor or one of its subtypes.
func (c *Converter) IsA(t *api.InstanceType, ancestor string) bool {
	if t == nil || ancestor == "" {
		return false
	}
	if t.HasSuperType(ancestor) {
		return true
	}
	return c.oracle != nil && c.oracle.IsTypeOf(t.TypeDefName, ancestor)
}

// IsAny reports whether t is a subtype of any of the given types.
func (c *Converter) IsAny(t *api.InstanceType, ancestors []string) bool {
	for _, a := range ancestors {
		if c.IsA(t, a) {
			return true
		}
	}
	return false
}

// Categories returns the relationship categories used by the converter.
func (c *Converter) Categories() Categories {
	return c.categories
}

func originCategory(provenance string) bean.OriginCategory {
	switch provenance {
	case api.ProvenanceLocalCohort:
		return bean.OriginLocalCohort
	case api.ProvenanceExportArchive:
		return bean.OriginExportArchive
	case api.ProvenanceContentPack:
		return bean.OriginContentPack
	case api.ProvenanceDeregisteredRepository:
		return bean.OriginDeregisteredRepository
	case api.ProvenanceConfiguration:
		return bean.OriginConfiguration
	case api.ProvenanceExternalSource:
		return bean.OriginExternalSource
	}
	return bean.OriginUnknown
}

func (c *Converter) elementType(t *api.InstanceType) *bean.ElementType {
	if t == nil {
		return nil
	}
	supers := t.TypeDefSuperTypes
	if len(supers) == 0 {
		if st, ok := c.oracle.(superTyper); ok {
			supers = st.SuperTypes(t.TypeDefName)
		}
	}
	return &bean.ElementType{
		TypeID:         t.TypeDefGUID,
		TypeName:       t.TypeDefName,
		TypeVersion:    t.TypeDefVersion,
		SuperTypeNames: slices.Clone(supers),
	}
}

// header builds the element header of an instance.
func (c *Converter) header(h *api.InstanceHeader, classifications []*bean.ElementClassification) *bean.ElementHeader {
	versions := &bean.ElementVersions{
		CreatedBy: h.CreatedBy,
		UpdatedBy: h.UpdatedBy,
		Version:   h.Version,
	}
	if !h.CreateTime.IsZero() {
		t := h.CreateTime
		versions.CreateTime = &t
	}
	if !h.UpdateTime.IsZero() {
		t := h.UpdateTime
		versions.UpdateTime = &t
	}
	status := h.Status
	if status == "" {
		status = "ACTIVE"
	}
	return &bean.ElementHeader{
		GUID: h.GUID,
		Type: c.elementType(h.Type),
		Origin: &bean.ElementOrigin{
			SourceServer:               c.serverName,
			OriginCategory:             originCategory(h.Provenance),
			HomeMetadataCollectionID:   h.MetadataCollectionID,
			HomeMetadataCollectionName: h.MetadataCollectionName,
			License:                    h.InstanceLicense,
		},
		Versions:        versions,
		Status:          status,
		Classifications: classifications,
	}
}

// stub describes the entity at the end of a relationship. If the entity
// itself is known, its display name is filled in as well.
func (c *Converter) stub(p *api.EntityProxy, e *api.EntityDetail) *bean.ElementStub {
	s := &bean.ElementStub{
		GUID: p.GUID,
		Type: c.elementType(p.Type),
	}
	if qn, ok := p.UniqueProperties["qualifiedName"].(string); ok {
		s.UniqueName = qn
	}
	if e == nil {
		return s
	}
	if s.Type == nil {
		s.Type = c.elementType(e.Type)
	}
	b := props.NewBag(e.Properties)
	if s.UniqueName == "" {
		s.UniqueName = b.String("qualifiedName")
	}
	for _, name := range []string{"displayName", "name", "title"} {
		if v := b.String(name); v != "" {
			s.DisplayName = v
			break
		}
	}
	return s
}

// Extraction is handed to a family to fill a bean's properties.
type Extraction struct {
	c      *Converter
	entity *api.EntityDetail
	bag    *props.Bag
}

// Bag returns the entity's properties. Everything the family does not
// consume ends up in the bean's extended properties.
func (x *Extraction) Bag() *props.Bag { return x.bag }

// Entity returns the entity being converted. It must not be modified.
func (x *Extraction) Entity() *api.EntityDetail { return x.entity }

// IsA reports whether the entity is of type ancestor or one of its subtypes.
func (x *Extraction) IsA(ancestor string) bool {
	return x.c.IsA(x.entity.Type, ancestor)
}

// Referenceable consumes the properties shared by all referenceable elements.
func (x *Extraction) Referenceable() bean.ReferenceableProperties {
	return bean.ReferenceableProperties{
		QualifiedName:        x.bag.String("qualifiedName"),
		AdditionalProperties: x.bag.StringMap("additionalProperties"),
		TypeName:             x.entity.Type.Name(),
	}
}

// Family describes how to build one kind of bean.
type Family[B bean.Bean] struct {
	// Name of the family, used in errors.
	Name string
	// Entities must be of this type or one of its subtypes.
	EntityType string
	// New returns an empty bean. It must not return nil.
	New func() B
	// Legacy is true if the deprecated flat owner and zone properties
	// are merged into the classifications.
	Legacy bool
	// Extract fills the bean's properties and returns their referenceable
	// part, which receives the extended properties.
	Extract func(x *Extraction, b B) *bean.ReferenceableProperties
	// Link folds the properties of the relationship through which the
	// entity was retrieved into the bean. May be nil.
	Link *Link[B]
}

// Link describes the relationship-scoped properties of a bean.
type Link[B bean.Bean] struct {
	// Only relationships of this type are folded in. Empty matches all.
	RelationshipType string
	Fold             func(b B, bag *props.Bag)
}

func isNil[B bean.Bean](b B) bool {
	var zero B
	return any(b) == any(zero)
}

func build[B bean.Bean](c *Converter, f *Family[B], op string, e *api.EntityDetail) (B, error) {
	var zero B
	if f == nil || f.New == nil || f.Extract == nil {
		name := "<nil>"
		if f != nil {
			name = f.Name
		}
		return zero, invalidBean(name, op, "family has no factory")
	}
	if e == nil {
		return zero, missingInstance(f.Name, op, "no entity")
	}
	if e.GUID == "" {
		return zero, missingInstance(f.Name, op, "entity has no header")
	}
	if f.EntityType != "" && !c.IsA(e.Type, f.EntityType) {
		return zero, invalidBean(f.Name, op, "entity %s of type %q is not a %s", e.GUID, e.Type.Name(), f.EntityType)
	}
	b := f.New()
	if isNil(b) {
		return zero, invalidBean(f.Name, op, "factory returned nil")
	}

	bag := props.NewBag(e.Properties)
	var legacy classify.Legacy
	if f.Legacy {
		legacy = classify.ReadLegacy(bag)
	}
	b.SetHeader(c.header(&e.InstanceHeader, classify.Merge(e.Classifications, legacy)))

	x := &Extraction{c: c, entity: e, bag: bag}
	if ref := f.Extract(x, b); ref != nil {
		ref.ExtendedProperties = bag.Remaining()
	}
	return b, nil
}

// Simple converts a single entity into a bean of family f.
func Simple[B bean.Bean](c *Converter, f *Family[B], e *api.EntityDetail) (B, error) {
	return build(c, f, opSimple, e)
}

// WithRelationship converts an entity that was retrieved through rel.
// The properties of rel are folded into the bean if the family supports it.
// A nil rel is equivalent to Simple.
func WithRelationship[B bean.Bean](c *Converter, f *Family[B], e *api.EntityDetail, rel *api.Relationship) (B, error) {
	b, err := build(c, f, opRelationship, e)
	if err != nil || rel == nil || f.Link == nil {
		return b, err
	}
	if rel.OtherEnd(e.GUID) == nil {
		log.Debug().Str("family", f.Name).Str("entity", e.GUID).Str("relationship", rel.GUID).
			Msg("relationship does not touch entity, ignoring it")
		return b, nil
	}
	if t := f.Link.RelationshipType; t != "" && !c.IsA(rel.Type, t) {
		log.Debug().Str("family", f.Name).Str("relationship", rel.GUID).Str("type", rel.Type.Name()).
			Msg("relationship has no properties for this bean")
		return b, nil
	}
	f.Link.Fold(b, props.NewBag(rel.Properties))
	return b, nil
}

// Relation is a relationship of a graph's primary entity.
type Relation struct {
	c            *Converter
	Relationship *api.Relationship
	// The related element, already resolved.
	Element *bean.RelatedElement
	// The entity at the other end, if it was supplied.
	Other *api.EntityDetail
	// True if the primary entity is at end1.
	PrimaryIsEnd1 bool
}

// Is reports whether the relationship's type is in the given category.
func (r *Relation) Is(category []string) bool {
	return r.c.IsAny(r.Relationship.Type, category)
}

// GraphFamily describes a bean that holds an entity together with its
// related elements.
type GraphFamily[G bean.Bean] struct {
	Family[G]
	// Relate files a relation into the graph's buckets.
	Relate func(r *Relation, g G)
}

// Complex converts primary together with its relationships. supplementary
// holds entities at the other ends of the relationships, as far as they
// are available; they only serve to describe related elements.
// Relationships that do not touch primary are skipped.
func Complex[G bean.Bean](c *Converter, f *GraphFamily[G], primary *api.EntityDetail,
	supplementary []*api.EntityDetail, rels []*api.Relationship) (G, error) {
	var zero G
	if f == nil {
		return zero, invalidBean("<nil>", opComplex, "no graph family")
	}
	g, err := build(c, &f.Family, opComplex, primary)
	if err != nil || f.Relate == nil {
		return g, err
	}
	others := make(map[string]*api.EntityDetail, len(supplementary))
	for _, e := range supplementary {
		if e != nil && e.GUID != "" {
			others[e.GUID] = e
		}
	}
	for _, rel := range rels {
		if rel == nil {
			continue
		}
		end := rel.OtherEnd(primary.GUID)
		if end == nil {
			log.Debug().Str("family", f.Name).Str("entity", primary.GUID).Str("relationship", rel.GUID).
				Msg("relationship does not touch primary entity, skipping it")
			continue
		}
		other := others[end.GUID]
		f.Relate(&Relation{
			c:            c,
			Relationship: rel,
			Element: &bean.RelatedElement{
				Relationship:           c.header(&rel.InstanceHeader, nil),
				RelationshipProperties: props.CloneMap(emptyToNil(rel.Properties)),
				Element:                c.stub(end, other),
			},
			Other:         other,
			PrimaryIsEnd1: rel.End1 != nil && rel.End1.GUID == primary.GUID,
		}, g)
	}
	return g, nil
}

func emptyToNil(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
