package convert

import (
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/classify"
	"github.com/dnswlt/omcat/internal/props"
)

type profileVariant struct {
	typeName string
	build    func(base bean.ActorProfileProperties, b *props.Bag) bean.ProfileProperties
}

var profileVariants = []profileVariant{
	{
		typeName: "Person",
		build: func(base bean.ActorProfileProperties, b *props.Bag) bean.ProfileProperties {
			return &bean.PersonalProfileProperties{
				ActorProfileProperties: base,
				FullName:               b.String("fullName"),
				JobTitle:               b.String("jobTitle"),
			}
		},
	},
	{
		typeName: "Team",
		build: func(base bean.ActorProfileProperties, b *props.Bag) bean.ProfileProperties {
			return &bean.TeamProfileProperties{ActorProfileProperties: base, TeamType: b.String("teamType")}
		},
	},
	{
		typeName: "ITProfile",
		build: func(base bean.ActorProfileProperties, _ *props.Bag) bean.ProfileProperties {
			return &bean.ITProfileProperties{ActorProfileProperties: base}
		},
	},
}

func extractProfile(x *Extraction, p *bean.Profile) *bean.ReferenceableProperties {
	b := x.Bag()
	base := bean.ActorProfileProperties{
		ReferenceableProperties: x.Referenceable(),
		KnownName:               b.String("name"),
		Description:             b.String("description"),
	}
	p.Properties = nil
	for _, v := range profileVariants {
		if x.IsA(v.typeName) {
			p.Properties = v.build(base, b)
			break
		}
	}
	if p.Properties == nil {
		p.Properties = &base
	}
	return &p.Properties.Actor().ReferenceableProperties
}

// Profiles converts entities of type ActorProfile.
var Profiles = &Family[*bean.Profile]{
	Name:       "Profile",
	EntityType: "ActorProfile",
	New:        func() *bean.Profile { return &bean.Profile{} },
	Extract:    extractProfile,
}

// ProfileGraphs converts a profile together with its contact methods,
// user identities and peers.
var ProfileGraphs = &GraphFamily[*bean.ProfileGraph]{
	Family: Family[*bean.ProfileGraph]{
		Name:       "ProfileGraph",
		EntityType: "ActorProfile",
		New:        func() *bean.ProfileGraph { return &bean.ProfileGraph{} },
		Extract: func(x *Extraction, g *bean.ProfileGraph) *bean.ReferenceableProperties {
			return extractProfile(x, &g.Profile)
		},
	},
	Relate: relateProfile,
}

func relateProfile(r *Relation, g *bean.ProfileGraph) {
	cats := &r.c.categories
	switch {
	case r.Is(cats.ContactMethods):
		g.ContactMethods = append(g.ContactMethods, r.contactMethod())
	case r.Is(cats.UserIdentities):
		g.UserIdentities = append(g.UserIdentities, r.Element)
	case r.Is(cats.ProfilePeers):
		g.Peers = append(g.Peers, r.Element)
	default:
		g.Others = append(g.Others, r.Element)
	}
}

// contactMethod builds a contact method from the ContactDetails entity at
// the other end of r. If the entity was not supplied, only its header is known.
func (r *Relation) contactMethod() *bean.ContactMethod {
	e := r.Other
	if e == nil {
		return &bean.ContactMethod{
			Header: &bean.ElementHeader{
				GUID: r.Element.Element.GUID,
				Type: r.Element.Element.Type,
			},
			Type: bean.ContactMethodOther,
		}
	}
	b := props.NewBag(e.Properties)
	return &bean.ContactMethod{
		Header:  r.c.header(&e.InstanceHeader, classify.Merge(e.Classifications, classify.Legacy{})),
		Name:    b.String("name"),
		Type:    props.Ordinal(b, "contactType", bean.ContactMethodTypeEnum),
		Service: b.String("contactMethodService"),
		Value:   b.String("contactMethodValue"),
	}
}
