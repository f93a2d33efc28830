package bean

import "github.com/dnswlt/omcat/internal/props"

// OwnerCategory describes how the owner of an element is identified.
type OwnerCategory int

const (
	OwnerCategoryUserID      OwnerCategory = 0
	OwnerCategoryProfileID   OwnerCategory = 1
	OwnerCategoryOther       OwnerCategory = 99
	OwnerCategoryUnspecified OwnerCategory = -1
)

var OwnerCategoryEnum = props.NewEnum("OwnerCategory", OwnerCategoryUnspecified, OwnerCategoryOther,
	map[OwnerCategory]string{
		OwnerCategoryUserID:    "UserId",
		OwnerCategoryProfileID: "ProfileId",
		OwnerCategoryOther:     "Other",
	})

// OwnerTypeName returns the name of the element type that holds owners of
// category c, and the property of that type that the owner value refers to.
// Both are "" if c does not identify a type.
func (c OwnerCategory) OwnerTypeName() (typeName, propertyName string) {
	switch c {
	case OwnerCategoryUserID:
		return "UserIdentity", "userId"
	case OwnerCategoryProfileID:
		return "ActorProfile", "guid"
	}
	return "", ""
}

func (c OwnerCategory) String() string {
	if s := OwnerCategoryEnum.Symbol(c); s != "" {
		return s
	}
	return "Unspecified"
}

// GovernanceDefinitionStatus is the lifecycle state of a governance definition.
type GovernanceDefinitionStatus int

const (
	GovernanceDefinitionDraft      GovernanceDefinitionStatus = 0
	GovernanceDefinitionProposed   GovernanceDefinitionStatus = 1
	GovernanceDefinitionApproved   GovernanceDefinitionStatus = 2
	GovernanceDefinitionActive     GovernanceDefinitionStatus = 3
	GovernanceDefinitionDeprecated GovernanceDefinitionStatus = 4
	GovernanceDefinitionOther      GovernanceDefinitionStatus = 99
)

// Definitions without a status property predate it and are treated as active.
var GovernanceDefinitionStatusEnum = props.NewEnum("GovernanceDefinitionStatus",
	GovernanceDefinitionActive, GovernanceDefinitionOther,
	map[GovernanceDefinitionStatus]string{
		GovernanceDefinitionDraft:      "Draft",
		GovernanceDefinitionProposed:   "Proposed",
		GovernanceDefinitionApproved:   "Approved",
		GovernanceDefinitionActive:     "Active",
		GovernanceDefinitionDeprecated: "Deprecated",
		GovernanceDefinitionOther:      "Other",
	})

func (s GovernanceDefinitionStatus) String() string {
	return GovernanceDefinitionStatusEnum.Symbol(s)
}

// ContactMethodType describes how a contact is reached.
type ContactMethodType int

const (
	ContactMethodEmail   ContactMethodType = 0
	ContactMethodPhone   ContactMethodType = 1
	ContactMethodChat    ContactMethodType = 2
	ContactMethodProfile ContactMethodType = 3
	ContactMethodAccount ContactMethodType = 4
	ContactMethodOther   ContactMethodType = 99
)

var ContactMethodTypeEnum = props.NewEnum("ContactMethodType", ContactMethodOther, ContactMethodOther,
	map[ContactMethodType]string{
		ContactMethodEmail:   "Email",
		ContactMethodPhone:   "Phone",
		ContactMethodChat:    "Chat",
		ContactMethodProfile: "Profile",
		ContactMethodAccount: "Account",
		ContactMethodOther:   "Other",
	})

func (t ContactMethodType) String() string {
	return ContactMethodTypeEnum.Symbol(t)
}

// Enums are written by their symbolic names.

func (c OwnerCategory) MarshalYAML() (any, error)              { return c.String(), nil }
func (s GovernanceDefinitionStatus) MarshalYAML() (any, error) { return s.String(), nil }
func (t ContactMethodType) MarshalYAML() (any, error)          { return t.String(), nil }
