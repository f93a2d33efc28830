package docs

import (
	"fmt"
	"html/template"
	"maps"
	"slices"
	"strings"

	"github.com/dnswlt/omcat/internal/bean"
)

type field struct {
	Name  string
	Value any
}

// fields returns the non-empty properties of b in display order.
func fields(b bean.Bean) []field {
	var fs []field
	add := func(name string, v any) {
		switch x := v.(type) {
		case string:
			if x == "" {
				return
			}
		case []string:
			if len(x) == 0 {
				return
			}
			v = strings.Join(x, ", ")
		case int:
			if x == 0 {
				return
			}
		}
		fs = append(fs, field{name, v})
	}
	var ref *bean.ReferenceableProperties
	switch x := b.(type) {
	case *bean.GovernanceDefinitionGraph:
		d := x.Properties.Definition()
		ref = &d.ReferenceableProperties
		add("Qualified name", d.QualifiedName)
		add("Document identifier", d.DocumentIdentifier)
		add("Status", d.Status.String())
		add("Scope", d.Scope)
		add("Domain", d.DomainIdentifier)
		add("Priority", d.Priority)
		add("Implications", d.Implications)
		add("Outcomes", d.Outcomes)
		add("Results", d.Results)
		switch v := x.Properties.(type) {
		case *bean.CertificationTypeProperties:
			add("Details", v.Details)
		case *bean.LicenseTypeProperties:
			add("Details", v.Details)
		case *bean.SecurityGroupProperties:
			add("Distinguished name", v.DistinguishedName)
		}
	case *bean.Asset:
		ref = &x.Properties.ReferenceableProperties
		add("Qualified name", x.Properties.QualifiedName)
		add("Version", x.Properties.VersionIdentifier)
	case *bean.ProfileGraph:
		a := x.Properties.Actor()
		ref = &a.ReferenceableProperties
		add("Qualified name", a.QualifiedName)
		switch v := x.Properties.(type) {
		case *bean.PersonalProfileProperties:
			add("Full name", v.FullName)
			add("Job title", v.JobTitle)
		case *bean.TeamProfileProperties:
			add("Team type", v.TeamType)
		}
	}
	if ref == nil {
		return fs
	}
	for _, k := range slices.Sorted(maps.Keys(ref.AdditionalProperties)) {
		add(k, ref.AdditionalProperties[k])
	}
	for _, k := range slices.Sorted(maps.Keys(ref.ExtendedProperties)) {
		add(k, ref.ExtendedProperties[k])
	}
	return fs
}

// description returns the free text shown below the title of b.
func description(b bean.Bean) string {
	switch x := b.(type) {
	case *bean.GovernanceDefinitionGraph:
		d := x.Properties.Definition()
		return strings.TrimSpace(d.Summary + "\n\n" + d.Description)
	case *bean.Asset:
		return x.Properties.Description
	case *bean.ProfileGraph:
		return x.Properties.Actor().Description
	}
	return ""
}

func title(b bean.Bean) string {
	var t, qn string
	switch x := b.(type) {
	case *bean.GovernanceDefinitionGraph:
		d := x.Properties.Definition()
		t, qn = d.Title, d.QualifiedName
	case *bean.Asset:
		t, qn = x.Properties.DisplayName, x.Properties.QualifiedName
	case *bean.ProfileGraph:
		a := x.Properties.Actor()
		t, qn = a.KnownName, a.QualifiedName
	}
	if t == "" {
		t = qn
	}
	if t == "" {
		t = b.GetHeader().GUID
	}
	return t
}

type bucket struct {
	Heading  string
	Elements []*bean.RelatedElement
}

// buckets returns the non-empty related element buckets of b.
func buckets(b bean.Bean) []bucket {
	var all []bucket
	switch x := b.(type) {
	case *bean.GovernanceDefinitionGraph:
		all = []bucket{
			{"Parents", x.Parents},
			{"Children", x.Children},
			{"Peers", x.Peers},
			{"Metrics", x.Metrics},
			{"External references", x.ExternalReferences},
			{"Other relationships", x.Others},
		}
	case *bean.ProfileGraph:
		all = []bucket{
			{"User identities", x.UserIdentities},
			{"Peers", x.Peers},
			{"Other relationships", x.Others},
		}
	}
	return slices.DeleteFunc(all, func(b bucket) bool { return len(b.Elements) == 0 })
}

// formatProps renders a property map as "k1=v1, k2=v2" sorted by key.
func formatProps(m map[string]any) string {
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

const pageTemplates = `
{{- define "head" -}}
# {{ title . }}

**Type**: {{ .GetHeader.TypeName }}, **GUID**: ` + "`{{ .GetHeader.GUID }}`" + `
{{ with description . }}
{{ . }}
{{ end }}
{{- end }}

{{- define "body" }}
{{- with fields . }}
## Properties

| Property | Value |
|---|---|
{{ range . }}| {{ cell .Name }} | {{ cell .Value }} |
{{ end }}
{{- end }}
{{- with .GetHeader.Classifications }}
## Classifications

| Classification | Properties |
|---|---|
{{ range . }}| {{ cell .Name }} | {{ cell (props .Properties) }} |
{{ end }}
{{- end }}
{{- range buckets . }}
## {{ .Heading }}

{{ range .Elements }}* {{ link .Element }}{{ with .Relationship }} via {{ .TypeName }}{{ end }}
{{ end }}
{{- end }}
{{- end }}

{{- define "footer" }}
_Generated by omcat gen-docs._
{{ end }}

{{- define "definition" }}{{ template "head" . }}{{ template "body" . }}{{ template "footer" . }}{{ end }}

{{- define "asset" }}{{ template "head" . }}{{ template "body" . }}{{ template "footer" . }}{{ end }}

{{- define "profile" }}{{ template "head" . }}{{ template "body" . }}
{{- with .ContactMethods }}
## Contact methods

| Name | Type | Service | Value |
|---|---|---|---|
{{ range . }}| {{ cell .Name }} | {{ .Type }} | {{ cell .Service }} | {{ cell .Value }} |
{{ end }}
{{- end }}
{{- template "footer" . }}{{ end }}

{{- define "index" -}}
# {{ .Title }}
{{ range .Groups }}
## {{ .Heading }}

{{ range .Pages }}* [{{ cell .Name }}]({{ .Dir }}/{{ .GUID }}.html){{ with .Title }} - *{{ cell . }}*{{ end }}
{{ end }}
{{- end }}
{{- template "footer" . }}
{{- end }}
`

// htmlPage wraps the goldmark output of a Markdown page.
type htmlPage struct {
	Title string
	Body  template.HTML
}

var htmlTemplate = template.Must(template.New("html").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
</head>
<body>
{{ .Body }}
</body>
</html>
`))
