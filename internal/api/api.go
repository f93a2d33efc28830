// This file contains the API classes that describe metadata instances as
// they are handed out by a repository: entities, relationships, the proxies
// at relationship ends, and classifications.
// The types are broadly compatible with the open metadata repository services
// instance model, but only carry what the converters need.
package api

import (
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Provenance categories of an instance's home metadata collection.
const (
	ProvenanceLocalCohort            = "LOCAL_COHORT"
	ProvenanceExportArchive          = "EXPORT_ARCHIVE"
	ProvenanceContentPack            = "CONTENT_PACK"
	ProvenanceDeregisteredRepository = "DEREGISTERED_REPOSITORY"
	ProvenanceConfiguration          = "CONFIGURATION"
	ProvenanceExternalSource         = "EXTERNAL_SOURCE"
)

// Instance is the interface implemented by entities and relationships.
type Instance interface {
	GetGUID() string
	GetType() *InstanceType
	GetHeader() *InstanceHeader

	// GetSourceInfo returns internal bookkeeping data, e.g. for error logging.
	GetSourceInfo() *SourceInfo
	SetSourceInfo(si *SourceInfo)
}

// File and line information shared by all instances.
type SourceInfo struct {
	Node *yaml.Node // The raw YAML source from which the instance was parsed.
	Path string     // The path from which the instance was read.
	Line int        // The first line number in Path where the instance was found.
}

// InstanceType describes the type of an instance.
type InstanceType struct {
	// Unique identifier of the type definition.
	// [optional]
	TypeDefGUID string `yaml:"typeDefGUID,omitempty"`
	// Name of the type definition, e.g. "GovernancePolicy".
	// [required]
	TypeDefName string `yaml:"typeDefName,omitempty"`
	// [optional]
	TypeDefVersion int64 `yaml:"typeDefVersion,omitempty"`
	// The names of all supertypes, nearest first.
	// [optional]
	TypeDefSuperTypes []string `yaml:"typeDefSuperTypes,omitempty"`
}

// InstanceHeader holds the control information common to all instances.
type InstanceHeader struct {
	GUID string        `yaml:"guid,omitempty"`
	Type *InstanceType `yaml:"type,omitempty"`

	// Provenance category of the home metadata collection, e.g. "LOCAL_COHORT".
	Provenance string `yaml:"provenance,omitempty"`
	// Identifier and name of the metadata collection that owns the instance.
	MetadataCollectionID   string `yaml:"metadataCollectionId,omitempty"`
	MetadataCollectionName string `yaml:"metadataCollectionName,omitempty"`
	// Identifier of the metadata collection that replicates the instance, if any.
	ReplicatedBy    string `yaml:"replicatedBy,omitempty"`
	InstanceLicense string `yaml:"instanceLicense,omitempty"`

	// Instance status, e.g. "ACTIVE". Empty means ACTIVE.
	Status     string    `yaml:"status,omitempty"`
	CreatedBy  string    `yaml:"createdBy,omitempty"`
	UpdatedBy  string    `yaml:"updatedBy,omitempty"`
	CreateTime time.Time `yaml:"createTime,omitempty"`
	UpdateTime time.Time `yaml:"updateTime,omitempty"`
	Version    int64     `yaml:"version,omitempty"`
}

// Classification is a named tag with its own properties attached to an entity.
type Classification struct {
	Name string `yaml:"name,omitempty"`
	// [optional]
	Type       *InstanceType  `yaml:"type,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// EntityDetail is a full entity as retrieved from a repository.
type EntityDetail struct {
	Kind            string `yaml:"kind,omitempty"`
	InstanceHeader  `yaml:",inline"`
	Properties      map[string]any    `yaml:"properties,omitempty"`
	Classifications []*Classification `yaml:"classifications,omitempty"`

	// Internal bookkeeping data, not part of the API.
	*SourceInfo `yaml:"-"`
}

// EntityProxy identifies an entity at one end of a relationship.
type EntityProxy struct {
	GUID string        `yaml:"guid,omitempty"`
	Type *InstanceType `yaml:"type,omitempty"`
	// Unique properties of the entity, typically its qualifiedName.
	UniqueProperties map[string]any `yaml:"uniqueProperties,omitempty"`
}

// Relationship links two entities.
type Relationship struct {
	Kind           string `yaml:"kind,omitempty"`
	InstanceHeader `yaml:",inline"`
	Properties     map[string]any `yaml:"properties,omitempty"`
	End1           *EntityProxy   `yaml:"end1,omitempty"`
	End2           *EntityProxy   `yaml:"end2,omitempty"`

	// Internal bookkeeping data, not part of the API.
	*SourceInfo `yaml:"-"`
}

//
// Interface implementations and helpers.
//

// Name returns the type name, or "" for a nil type.
func (t *InstanceType) Name() string {
	if t == nil {
		return ""
	}
	return t.TypeDefName
}

// HasSuperType reports whether name is the type itself or one of its declared supertypes.
func (t *InstanceType) HasSuperType(name string) bool {
	if t == nil {
		return false
	}
	return t.TypeDefName == name || slices.Contains(t.TypeDefSuperTypes, name)
}

func (e *EntityDetail) GetGUID() string              { return e.GUID }
func (e *EntityDetail) GetType() *InstanceType       { return e.Type }
func (e *EntityDetail) GetHeader() *InstanceHeader   { return &e.InstanceHeader }
func (e *EntityDetail) GetSourceInfo() *SourceInfo   { return e.SourceInfo }
func (e *EntityDetail) SetSourceInfo(si *SourceInfo) { e.SourceInfo = si }

// Classification returns the classification with the given name, or nil.
func (e *EntityDetail) Classification(name string) *Classification {
	for _, c := range e.Classifications {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

func (r *Relationship) GetGUID() string              { return r.GUID }
func (r *Relationship) GetType() *InstanceType       { return r.Type }
func (r *Relationship) GetHeader() *InstanceHeader   { return &r.InstanceHeader }
func (r *Relationship) GetSourceInfo() *SourceInfo   { return r.SourceInfo }
func (r *Relationship) SetSourceInfo(si *SourceInfo) { r.SourceInfo = si }

// OtherEnd returns the proxy at the end of r that is not guid.
// It returns nil if r does not touch guid at all.
func (r *Relationship) OtherEnd(guid string) *EntityProxy {
	switch {
	case r.End1 != nil && r.End1.GUID == guid:
		return r.End2
	case r.End2 != nil && r.End2.GUID == guid:
		return r.End1
	}
	return nil
}

// Proxy returns an EntityProxy for e, using its qualifiedName as unique property.
func (e *EntityDetail) Proxy() *EntityProxy {
	p := &EntityProxy{
		GUID: e.GUID,
		Type: e.Type,
	}
	if qn, ok := e.Properties["qualifiedName"]; ok {
		p.UniqueProperties = map[string]any{"qualifiedName": qn}
	}
	return p
}
