package bean

// GovernanceDefinitionProperties are the properties of all governance definitions.
type GovernanceDefinitionProperties struct {
	ReferenceableProperties `yaml:",inline"`

	DocumentIdentifier string                     `yaml:"documentIdentifier,omitempty"`
	Title              string                     `yaml:"title,omitempty"`
	Summary            string                     `yaml:"summary,omitempty"`
	Description        string                     `yaml:"description,omitempty"`
	Scope              string                     `yaml:"scope,omitempty"`
	DomainIdentifier   int                        `yaml:"domainIdentifier,omitempty"`
	Status             GovernanceDefinitionStatus `yaml:"status"`
	Priority           string                     `yaml:"priority,omitempty"`
	Implications       []string                   `yaml:"implications,omitempty"`
	Outcomes           []string                   `yaml:"outcomes,omitempty"`
	Results            []string                   `yaml:"results,omitempty"`
}

// CertificationTypeProperties describe a type of certification.
type CertificationTypeProperties struct {
	GovernanceDefinitionProperties `yaml:",inline"`

	Details string `yaml:"details,omitempty"`
}

// LicenseTypeProperties describe a type of license.
type LicenseTypeProperties struct {
	GovernanceDefinitionProperties `yaml:",inline"`

	Details string `yaml:"details,omitempty"`
}

// SecurityGroupProperties describe a security group.
type SecurityGroupProperties struct {
	GovernanceDefinitionProperties `yaml:",inline"`

	DistinguishedName string `yaml:"distinguishedName,omitempty"`
}

// DefinitionProperties is implemented by GovernanceDefinitionProperties and
// the properties of its subtypes, and by nothing else.
type DefinitionProperties interface {
	Definition() *GovernanceDefinitionProperties
	definitionProperties()
}

func (p *GovernanceDefinitionProperties) Definition() *GovernanceDefinitionProperties { return p }
func (p *GovernanceDefinitionProperties) definitionProperties()                       {}

// GovernanceDefinition is the bean for a single governance definition.
type GovernanceDefinition struct {
	Header     *ElementHeader       `yaml:"header"`
	Properties DefinitionProperties `yaml:"properties"`
	// Rationale of the relationship through which the definition was retrieved.
	Rationale string `yaml:"rationale,omitempty"`
}

func (g *GovernanceDefinition) GetHeader() *ElementHeader  { return g.Header }
func (g *GovernanceDefinition) SetHeader(h *ElementHeader) { g.Header = h }

// GovernanceDefinitionGraph is a governance definition with its linked elements.
type GovernanceDefinitionGraph struct {
	GovernanceDefinition `yaml:",inline"`

	Parents            []*RelatedElement `yaml:"parents,omitempty"`
	Children           []*RelatedElement `yaml:"children,omitempty"`
	Peers              []*RelatedElement `yaml:"peers,omitempty"`
	Metrics            []*RelatedElement `yaml:"metrics,omitempty"`
	ExternalReferences []*RelatedElement `yaml:"externalReferences,omitempty"`
	Others             []*RelatedElement `yaml:"others,omitempty"`
}

// GovernanceRoleProperties describe a governance role.
type GovernanceRoleProperties struct {
	ReferenceableProperties `yaml:",inline"`

	RoleID           string `yaml:"roleId,omitempty"`
	Title            string `yaml:"title,omitempty"`
	Description      string `yaml:"description,omitempty"`
	Scope            string `yaml:"scope,omitempty"`
	DomainIdentifier int    `yaml:"domainIdentifier,omitempty"`
	HeadCount        int    `yaml:"headCount,omitempty"`
	// Whether HeadCount is an explicit limit.
	HeadCountLimitSet bool `yaml:"headCountLimitSet,omitempty"`
}

type GovernanceRole struct {
	Header     *ElementHeader            `yaml:"header"`
	Properties *GovernanceRoleProperties `yaml:"properties"`
}

func (g *GovernanceRole) GetHeader() *ElementHeader  { return g.Header }
func (g *GovernanceRole) SetHeader(h *ElementHeader) { g.Header = h }

// GovernanceDomainProperties describe a governance domain.
type GovernanceDomainProperties struct {
	ReferenceableProperties `yaml:",inline"`

	DomainIdentifier int    `yaml:"domainIdentifier,omitempty"`
	DisplayName      string `yaml:"displayName,omitempty"`
	Description      string `yaml:"description,omitempty"`
}

type GovernanceDomain struct {
	Header     *ElementHeader              `yaml:"header"`
	Properties *GovernanceDomainProperties `yaml:"properties"`
}

func (g *GovernanceDomain) GetHeader() *ElementHeader  { return g.Header }
func (g *GovernanceDomain) SetHeader(h *ElementHeader) { g.Header = h }

// GovernanceMetricProperties describe how the effect of governance is measured.
type GovernanceMetricProperties struct {
	ReferenceableProperties `yaml:",inline"`

	DisplayName string `yaml:"displayName,omitempty"`
	Description string `yaml:"description,omitempty"`
	Measurement string `yaml:"measurement,omitempty"`
	Target      string `yaml:"target,omitempty"`
}

type GovernanceMetric struct {
	Header     *ElementHeader              `yaml:"header"`
	Properties *GovernanceMetricProperties `yaml:"properties"`
	// Rationale of the link between the metric and a governance definition.
	Rationale string `yaml:"rationale,omitempty"`
}

func (g *GovernanceMetric) GetHeader() *ElementHeader  { return g.Header }
func (g *GovernanceMetric) SetHeader(h *ElementHeader) { g.Header = h }
