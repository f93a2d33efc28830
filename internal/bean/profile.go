package bean

// ActorProfileProperties are the properties of all actor profiles.
type ActorProfileProperties struct {
	ReferenceableProperties `yaml:",inline"`

	KnownName   string `yaml:"knownName,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// PersonalProfileProperties describe a person.
type PersonalProfileProperties struct {
	ActorProfileProperties `yaml:",inline"`

	FullName string `yaml:"fullName,omitempty"`
	JobTitle string `yaml:"jobTitle,omitempty"`
}

// TeamProfileProperties describe a team.
type TeamProfileProperties struct {
	ActorProfileProperties `yaml:",inline"`

	TeamType string `yaml:"teamType,omitempty"`
}

// ITProfileProperties describe an automated process or engine.
type ITProfileProperties struct {
	ActorProfileProperties `yaml:",inline"`
}

// ProfileProperties is implemented by ActorProfileProperties and the
// properties of its subtypes, and by nothing else.
type ProfileProperties interface {
	Actor() *ActorProfileProperties
	profileProperties()
}

func (p *ActorProfileProperties) Actor() *ActorProfileProperties { return p }
func (p *ActorProfileProperties) profileProperties()             {}

type Profile struct {
	Header     *ElementHeader    `yaml:"header"`
	Properties ProfileProperties `yaml:"properties"`
}

func (p *Profile) GetHeader() *ElementHeader  { return p.Header }
func (p *Profile) SetHeader(h *ElementHeader) { p.Header = h }

// ContactMethod describes one way to contact the owner of a profile.
type ContactMethod struct {
	Header  *ElementHeader    `yaml:"header"`
	Name    string            `yaml:"name,omitempty"`
	Type    ContactMethodType `yaml:"type"`
	Service string            `yaml:"service,omitempty"`
	Value   string            `yaml:"value,omitempty"`
}

// ProfileGraph is a profile with its contact methods and linked elements.
type ProfileGraph struct {
	Profile `yaml:",inline"`

	ContactMethods []*ContactMethod  `yaml:"contactMethods,omitempty"`
	UserIdentities []*RelatedElement `yaml:"userIdentities,omitempty"`
	Peers          []*RelatedElement `yaml:"peers,omitempty"`
	Others         []*RelatedElement `yaml:"others,omitempty"`
}
