package convert

import (
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/props"
)

// definitionVariant maps a subtype of GovernanceDefinition to its
// dedicated properties. Variants are tried in order and the first one
// whose type matches the entity wins.
type definitionVariant struct {
	typeName string
	build    func(base bean.GovernanceDefinitionProperties, b *props.Bag) bean.DefinitionProperties
}

var definitionVariants = []definitionVariant{
	{
		typeName: "CertificationType",
		build: func(base bean.GovernanceDefinitionProperties, b *props.Bag) bean.DefinitionProperties {
			return &bean.CertificationTypeProperties{GovernanceDefinitionProperties: base, Details: b.String("details")}
		},
	},
	{
		typeName: "LicenseType",
		build: func(base bean.GovernanceDefinitionProperties, b *props.Bag) bean.DefinitionProperties {
			return &bean.LicenseTypeProperties{GovernanceDefinitionProperties: base, Details: b.String("details")}
		},
	},
	{
		typeName: "SecurityGroup",
		build: func(base bean.GovernanceDefinitionProperties, b *props.Bag) bean.DefinitionProperties {
			return &bean.SecurityGroupProperties{GovernanceDefinitionProperties: base, DistinguishedName: b.String("distinguishedName")}
		},
	},
}

func extractDefinition(x *Extraction, g *bean.GovernanceDefinition) *bean.ReferenceableProperties {
	b := x.Bag()
	base := bean.GovernanceDefinitionProperties{
		ReferenceableProperties: x.Referenceable(),
		DocumentIdentifier:      b.String("identifier"),
		Title:                   b.String("title"),
		Summary:                 b.String("summary"),
		Description:             b.String("description"),
		Scope:                   b.String("scope"),
		DomainIdentifier:        b.Int("domainIdentifier"),
		Status:                  props.Ordinal(b, "status", bean.GovernanceDefinitionStatusEnum),
		Priority:                b.String("priority"),
		Implications:            b.StringList("implications"),
		Outcomes:                b.StringList("outcomes"),
		Results:                 b.StringList("results"),
	}
	g.Properties = nil
	for _, v := range definitionVariants {
		if x.IsA(v.typeName) {
			g.Properties = v.build(base, b)
			break
		}
	}
	if g.Properties == nil {
		g.Properties = &base
	}
	return &g.Properties.Definition().ReferenceableProperties
}

func foldRationale(g *bean.GovernanceDefinition, b *props.Bag) {
	g.Rationale = b.String("rationale")
}

// GovernanceDefinitions converts entities of type GovernanceDefinition.
// Certification types, license types and security groups get their own
// properties variant.
var GovernanceDefinitions = &Family[*bean.GovernanceDefinition]{
	Name:       "GovernanceDefinition",
	EntityType: "GovernanceDefinition",
	New:        func() *bean.GovernanceDefinition { return &bean.GovernanceDefinition{} },
	Extract:    extractDefinition,
	Link: &Link[*bean.GovernanceDefinition]{
		Fold: foldRationale,
	},
}

// GovernanceDefinitionGraphs converts a governance definition together
// with its linked elements.
var GovernanceDefinitionGraphs = &GraphFamily[*bean.GovernanceDefinitionGraph]{
	Family: Family[*bean.GovernanceDefinitionGraph]{
		Name:       "GovernanceDefinitionGraph",
		EntityType: "GovernanceDefinition",
		New:        func() *bean.GovernanceDefinitionGraph { return &bean.GovernanceDefinitionGraph{} },
		Extract: func(x *Extraction, g *bean.GovernanceDefinitionGraph) *bean.ReferenceableProperties {
			return extractDefinition(x, &g.GovernanceDefinition)
		},
		Link: &Link[*bean.GovernanceDefinitionGraph]{
			Fold: func(g *bean.GovernanceDefinitionGraph, b *props.Bag) {
				foldRationale(&g.GovernanceDefinition, b)
			},
		},
	},
	Relate: relateDefinition,
}

func relateDefinition(r *Relation, g *bean.GovernanceDefinitionGraph) {
	cats := &r.c.categories
	switch {
	case r.Is(cats.Metrics):
		g.Metrics = append(g.Metrics, r.Element)
	case r.Is(cats.ExternalReferences):
		g.ExternalReferences = append(g.ExternalReferences, r.Element)
	case r.Is(cats.Hierarchy):
		if r.PrimaryIsEnd1 {
			g.Children = append(g.Children, r.Element)
		} else {
			g.Parents = append(g.Parents, r.Element)
		}
	case r.Is(cats.Peers):
		g.Peers = append(g.Peers, r.Element)
	default:
		g.Others = append(g.Others, r.Element)
	}
}

// GovernanceMetrics converts entities of type GovernanceMetric. The
// rationale of a GovernanceDefinitionMetric relationship is folded in.
var GovernanceMetrics = &Family[*bean.GovernanceMetric]{
	Name:       "GovernanceMetric",
	EntityType: "GovernanceMetric",
	New:        func() *bean.GovernanceMetric { return &bean.GovernanceMetric{} },
	Extract: func(x *Extraction, m *bean.GovernanceMetric) *bean.ReferenceableProperties {
		b := x.Bag()
		m.Properties = &bean.GovernanceMetricProperties{
			ReferenceableProperties: x.Referenceable(),
			DisplayName:             b.String("displayName"),
			Description:             b.String("description"),
			Measurement:             b.String("measurement"),
			Target:                  b.String("target"),
		}
		return &m.Properties.ReferenceableProperties
	},
	Link: &Link[*bean.GovernanceMetric]{
		RelationshipType: "GovernanceDefinitionMetric",
		Fold: func(m *bean.GovernanceMetric, b *props.Bag) {
			m.Rationale = b.String("rationale")
		},
	},
}

// GovernanceRoles converts entities of type GovernanceRole.
var GovernanceRoles = &Family[*bean.GovernanceRole]{
	Name:       "GovernanceRole",
	EntityType: "GovernanceRole",
	New:        func() *bean.GovernanceRole { return &bean.GovernanceRole{} },
	Extract: func(x *Extraction, r *bean.GovernanceRole) *bean.ReferenceableProperties {
		b := x.Bag()
		r.Properties = &bean.GovernanceRoleProperties{
			ReferenceableProperties: x.Referenceable(),
			RoleID:                  b.String("identifier"),
			Title:                   b.String("title"),
			Description:             b.String("description"),
			Scope:                   b.String("scope"),
			DomainIdentifier:        b.Int("domainIdentifier"),
			HeadCount:               b.Int("headCount"),
			HeadCountLimitSet:       b.Bool("headCountLimitSet"),
		}
		return &r.Properties.ReferenceableProperties
	},
}

// GovernanceDomains converts entities of type GovernanceDomainDescription.
var GovernanceDomains = &Family[*bean.GovernanceDomain]{
	Name:       "GovernanceDomain",
	EntityType: "GovernanceDomainDescription",
	New:        func() *bean.GovernanceDomain { return &bean.GovernanceDomain{} },
	Extract: func(x *Extraction, d *bean.GovernanceDomain) *bean.ReferenceableProperties {
		b := x.Bag()
		d.Properties = &bean.GovernanceDomainProperties{
			ReferenceableProperties: x.Referenceable(),
			DomainIdentifier:        b.Int("domainIdentifier"),
			DisplayName:             b.String("displayName"),
			Description:             b.String("description"),
		}
		return &d.Properties.ReferenceableProperties
	},
}
