package bean

type AssetProperties struct {
	ReferenceableProperties `yaml:",inline"`

	DisplayName       string `yaml:"displayName,omitempty"`
	Description       string `yaml:"description,omitempty"`
	VersionIdentifier string `yaml:"versionIdentifier,omitempty"`
}

// Asset is the bean for any asset. Ownership and zone membership are
// reported as classifications in the header.
type Asset struct {
	Header     *ElementHeader   `yaml:"header"`
	Properties *AssetProperties `yaml:"properties"`
}

func (a *Asset) GetHeader() *ElementHeader  { return a.Header }
func (a *Asset) SetHeader(h *ElementHeader) { a.Header = h }

type ExternalReferenceProperties struct {
	ReferenceableProperties `yaml:",inline"`

	DisplayName       string   `yaml:"displayName,omitempty"`
	Description       string   `yaml:"description,omitempty"`
	ReferenceAbstract string   `yaml:"referenceAbstract,omitempty"`
	URL               string   `yaml:"url,omitempty"`
	Version           string   `yaml:"version,omitempty"`
	Organization      string   `yaml:"organization,omitempty"`
	Authors           []string `yaml:"authors,omitempty"`
	License           string   `yaml:"license,omitempty"`
	Copyright         string   `yaml:"copyright,omitempty"`
}

// ExternalReference points to a resource outside the metadata repository.
type ExternalReference struct {
	Header     *ElementHeader               `yaml:"header"`
	Properties *ExternalReferenceProperties `yaml:"properties"`
	// Identifier and description of the link through which the reference was retrieved.
	LinkID          string `yaml:"linkId,omitempty"`
	LinkDescription string `yaml:"linkDescription,omitempty"`
}

func (e *ExternalReference) GetHeader() *ElementHeader  { return e.Header }
func (e *ExternalReference) SetHeader(h *ElementHeader) { e.Header = h }
