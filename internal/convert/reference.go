package convert

import (
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/props"
)

// ExternalReferences converts entities of type ExternalReference.
// The identifier and description of an ExternalReferenceLink are folded in.
var ExternalReferences = &Family[*bean.ExternalReference]{
	Name:       "ExternalReference",
	EntityType: "ExternalReference",
	New:        func() *bean.ExternalReference { return &bean.ExternalReference{} },
	Extract: func(x *Extraction, e *bean.ExternalReference) *bean.ReferenceableProperties {
		b := x.Bag()
		e.Properties = &bean.ExternalReferenceProperties{
			ReferenceableProperties: x.Referenceable(),
			DisplayName:             b.String("displayName"),
			Description:             b.String("description"),
			ReferenceAbstract:       b.String("referenceAbstract"),
			URL:                     b.String("url"),
			Version:                 b.String("referenceVersion"),
			Organization:            b.String("organization"),
			Authors:                 b.StringList("authors"),
			License:                 b.String("license"),
			Copyright:               b.String("copyright"),
		}
		return &e.Properties.ReferenceableProperties
	},
	Link: &Link[*bean.ExternalReference]{
		RelationshipType: "ExternalReferenceLink",
		Fold: func(e *bean.ExternalReference, b *props.Bag) {
			e.LinkID = b.String("referenceId")
			e.LinkDescription = b.String("description")
		},
	},
}
