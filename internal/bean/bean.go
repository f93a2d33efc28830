// Package bean defines the typed elements that are returned to callers of
// the metadata services. Beans are built by the convert package from
// repository instances and are never written back.
package bean

import (
	"time"
)

// Well-known classification names.
const (
	ClassificationOwnership = "Ownership"
	// Deprecated classification that is folded into Ownership.
	ClassificationAssetOwnership = "AssetOwnership"
	ClassificationAssetZones     = "AssetZones"
)

// Bean is implemented by all beans. Every bean has an element header.
type Bean interface {
	GetHeader() *ElementHeader
	SetHeader(h *ElementHeader)
}

// OriginCategory describes where an element's home metadata collection lives.
type OriginCategory string

const (
	OriginLocalCohort            OriginCategory = "LOCAL_COHORT"
	OriginExportArchive          OriginCategory = "EXPORT_ARCHIVE"
	OriginContentPack            OriginCategory = "CONTENT_PACK"
	OriginDeregisteredRepository OriginCategory = "DEREGISTERED_REPOSITORY"
	OriginConfiguration          OriginCategory = "CONFIGURATION"
	OriginExternalSource         OriginCategory = "EXTERNAL_SOURCE"
	OriginUnknown                OriginCategory = "UNKNOWN"
)

type ElementType struct {
	TypeID         string   `yaml:"typeId,omitempty"`
	TypeName       string   `yaml:"typeName,omitempty"`
	TypeVersion    int64    `yaml:"typeVersion,omitempty"`
	SuperTypeNames []string `yaml:"superTypeNames,omitempty"`
}

type ElementOrigin struct {
	// Name of the server that produced the bean.
	SourceServer               string         `yaml:"sourceServer,omitempty"`
	OriginCategory             OriginCategory `yaml:"originCategory,omitempty"`
	HomeMetadataCollectionID   string         `yaml:"homeMetadataCollectionId,omitempty"`
	HomeMetadataCollectionName string         `yaml:"homeMetadataCollectionName,omitempty"`
	License                    string         `yaml:"license,omitempty"`
}

type ElementVersions struct {
	CreatedBy  string     `yaml:"createdBy,omitempty"`
	UpdatedBy  string     `yaml:"updatedBy,omitempty"`
	CreateTime *time.Time `yaml:"createTime,omitempty"`
	UpdateTime *time.Time `yaml:"updateTime,omitempty"`
	Version    int64      `yaml:"version,omitempty"`
}

// ElementClassification is a classification attached to an element.
type ElementClassification struct {
	Name       string         `yaml:"name"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// ElementHeader is shared by all beans.
type ElementHeader struct {
	GUID            string                   `yaml:"guid"`
	Type            *ElementType             `yaml:"type,omitempty"`
	Origin          *ElementOrigin           `yaml:"origin,omitempty"`
	Versions        *ElementVersions         `yaml:"versions,omitempty"`
	Status          string                   `yaml:"status,omitempty"`
	Classifications []*ElementClassification `yaml:"classifications,omitempty"`
}

// Classification returns the classification with the given name, or nil.
func (h *ElementHeader) Classification(name string) *ElementClassification {
	if h == nil {
		return nil
	}
	for _, c := range h.Classifications {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TypeName returns the element's type name, or "".
func (h *ElementHeader) TypeName() string {
	if h == nil || h.Type == nil {
		return ""
	}
	return h.Type.TypeName
}

// ElementStub identifies an element without carrying its properties.
type ElementStub struct {
	GUID       string       `yaml:"guid"`
	Type       *ElementType `yaml:"type,omitempty"`
	UniqueName string       `yaml:"uniqueName,omitempty"`
	// Set if the element itself was available during conversion.
	DisplayName string `yaml:"displayName,omitempty"`
}

// RelatedElement describes an element that is linked to a bean's primary element.
type RelatedElement struct {
	Relationship           *ElementHeader `yaml:"relationship"`
	RelationshipProperties map[string]any `yaml:"relationshipProperties,omitempty"`
	Element                *ElementStub   `yaml:"element"`
}

// ReferenceableProperties are common to all properties of referenceable elements.
type ReferenceableProperties struct {
	QualifiedName        string            `yaml:"qualifiedName,omitempty"`
	AdditionalProperties map[string]string `yaml:"additionalProperties,omitempty"`
	// Name of the element's type. Useful for subtypes that have no dedicated properties.
	TypeName string `yaml:"typeName,omitempty"`
	// Properties of the element that have no typed field.
	ExtendedProperties map[string]any `yaml:"extendedProperties,omitempty"`
}
