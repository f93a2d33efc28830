// Package classify merges the classifications of an entity with the
// deprecated flat properties that describe the same facts.
//
// Ownership and zone membership have been stored in three ways over time:
// as the Ownership and AssetZones classifications, as the deprecated
// AssetOwnership classification, and as the flat entity properties owner,
// ownerType and zoneMembership. Merge reduces all of them to the
// classification form. A dedicated classification always wins; a
// classification is only synthesized from the older forms if it is absent.
package classify

import (
	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/props"
)

// Names of the deprecated flat entity properties.
const (
	PropOwner          = "owner"
	PropOwnerType      = "ownerType"
	PropZoneMembership = "zoneMembership"
)

// Property names of synthesized classifications.
const (
	PropOwnerTypeName     = "ownerTypeName"
	PropOwnerPropertyName = "ownerPropertyName"
)

// Legacy holds the values of the deprecated flat properties of an entity.
type Legacy struct {
	Owner         string
	OwnerCategory bean.OwnerCategory
	Zones         []string
}

// ReadLegacy consumes the deprecated flat properties from b.
func ReadLegacy(b *props.Bag) Legacy {
	return Legacy{
		Owner:         b.String(PropOwner),
		OwnerCategory: props.Ordinal(b, PropOwnerType, bean.OwnerCategoryEnum),
		Zones:         b.StringList(PropZoneMembership),
	}
}

// Merge returns the classifications of an entity in their canonical form.
// The input classifications are not modified. The result is nil if there
// is nothing to report.
func Merge(classifications []*api.Classification, legacy Legacy) []*bean.ElementClassification {
	owner := legacy.Owner
	category := legacy.OwnerCategory

	var result []*bean.ElementClassification
	for _, c := range classifications {
		if c == nil {
			continue
		}
		if c.Name == bean.ClassificationAssetOwnership {
			b := props.NewBag(c.Properties)
			if o := b.String(PropOwner); o != "" {
				owner = o
			}
			if b.Has(PropOwnerType) {
				category = props.Ordinal(b, PropOwnerType, bean.OwnerCategoryEnum)
			}
			continue
		}
		result = append(result, &bean.ElementClassification{
			Name:       c.Name,
			Properties: props.CloneMap(c.Properties),
		})
	}

	if owner != "" && !contains(result, bean.ClassificationOwnership) {
		typeName, propertyName := category.OwnerTypeName()
		result = append(result, &bean.ElementClassification{
			Name: bean.ClassificationOwnership,
			Properties: map[string]any{
				PropOwner:             owner,
				PropOwnerTypeName:     typeName,
				PropOwnerPropertyName: propertyName,
			},
		})
	}

	if len(legacy.Zones) > 0 && !contains(result, bean.ClassificationAssetZones) {
		result = append(result, &bean.ElementClassification{
			Name: bean.ClassificationAssetZones,
			Properties: map[string]any{
				PropZoneMembership: append([]string(nil), legacy.Zones...),
			},
		})
	}
	return result
}

func contains(cs []*bean.ElementClassification, name string) bool {
	for _, c := range cs {
		if c.Name == name {
			return true
		}
	}
	return false
}
