package convert

import "github.com/dnswlt/omcat/internal/bean"

// Assets converts entities of type Asset. Ownership and zone membership
// stored in the deprecated flat properties are reported as classifications.
var Assets = &Family[*bean.Asset]{
	Name:       "Asset",
	EntityType: "Asset",
	New:        func() *bean.Asset { return &bean.Asset{} },
	Legacy:     true,
	Extract: func(x *Extraction, a *bean.Asset) *bean.ReferenceableProperties {
		b := x.Bag()
		a.Properties = &bean.AssetProperties{
			ReferenceableProperties: x.Referenceable(),
			DisplayName:             b.String("name"),
			Description:             b.String("description"),
			VersionIdentifier:       b.String("versionIdentifier"),
		}
		return &a.Properties.ReferenceableProperties
	},
}
