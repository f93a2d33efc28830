// Package docs generates a static documentation site from the beans of a
// repository: one Markdown and one HTML page per governance definition,
// asset, and actor profile, plus an index.
package docs

import (
	"bytes"
	"cmp"
	"fmt"
	htmltemplate "html/template"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/convert"
	"github.com/dnswlt/omcat/internal/repo"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Config holds the documentation settings of the configuration bundle.
type Config struct {
	// Title of the index page.
	Title string `yaml:"title"`
	// Entities of these types (or their subtypes) are skipped.
	ExcludeTypes []string `yaml:"excludeTypes"`
}

// Generator builds the documentation structure.
type Generator struct {
	repo   *repo.Repository
	conv   *convert.Converter
	config Config

	md        goldmark.Markdown
	templates *template.Template
}

func NewGenerator(r *repo.Repository, c *convert.Converter, config Config) *Generator {
	if config.Title == "" {
		config.Title = "Open metadata catalog"
	}
	g := &Generator{
		repo:   r,
		conv:   c,
		config: config,
		md:     goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
	g.templates = template.Must(template.New("docs").Funcs(template.FuncMap{
		"cell":        cell,
		"link":        g.link,
		"title":       title,
		"description": description,
		"fields":      fields,
		"buckets":     buckets,
		"props":       formatProps,
	}).Parse(pageTemplates))
	return g
}

// page is an entry of the index.
type page struct {
	GUID  string
	Name  string
	Kind  string
	Title string
}

func (p *page) Dir() string {
	return sections[p.sectionIndex()].Dir
}

func (p *page) sectionIndex() int {
	return slices.IndexFunc(sections, func(s section) bool { return s.Kind == p.Kind })
}

type section struct {
	Heading string
	Dir     string
	Kind    string
}

// Page kinds. They double as template names.
const (
	pageDefinition = "definition"
	pageAsset      = "asset"
	pageProfile    = "profile"
)

var sections = []section{
	{"Governance definitions", "definitions", pageDefinition},
	{"Assets", "assets", pageAsset},
	{"Profiles", "profiles", pageProfile},
}

// pageKind returns the kind of page generated for entities of type t,
// or "" if none is.
func (g *Generator) pageKind(t *api.InstanceType) string {
	switch {
	case g.conv.IsAny(t, g.config.ExcludeTypes):
		return ""
	case g.conv.IsA(t, "GovernanceDefinition"):
		return pageDefinition
	case g.conv.IsA(t, "Asset"):
		return pageAsset
	case g.conv.IsA(t, "ActorProfile"):
		return pageProfile
	}
	return ""
}

func (g *Generator) convertEntity(e *api.EntityDetail, kind string) (*page, any, error) {
	p := &page{GUID: e.GUID, Kind: kind}
	switch kind {
	case pageDefinition:
		gr, err := convertGraph(g, e.GUID, convert.GovernanceDefinitionGraphs)
		if err != nil {
			return nil, nil, err
		}
		d := gr.Properties.Definition()
		p.Name, p.Title = d.QualifiedName, d.Title
		return p, gr, nil
	case pageAsset:
		a, err := convert.Simple(g.conv, convert.Assets, e)
		if err != nil {
			return nil, nil, err
		}
		p.Name, p.Title = a.Properties.QualifiedName, a.Properties.DisplayName
		return p, a, nil
	case pageProfile:
		pg, err := convertGraph(g, e.GUID, convert.ProfileGraphs)
		if err != nil {
			return nil, nil, err
		}
		a := pg.Properties.Actor()
		p.Name, p.Title = a.QualifiedName, a.KnownName
		return p, pg, nil
	}
	return nil, nil, fmt.Errorf("invalid page kind %q", kind)
}

// Generate converts all supported entities and writes their pages to out.
// It returns the number of entity pages written.
func (g *Generator) Generate(out store.Store) (int, error) {
	var pages []*page
	for _, e := range g.repo.Entities() {
		kind := g.pageKind(e.Type)
		if kind == "" {
			continue
		}
		p, data, err := g.convertEntity(e, kind)
		if err != nil {
			return 0, fmt.Errorf("failed to convert entity %q: %w", e.GUID, err)
		}
		if p.Name == "" {
			p.Name = e.GUID
		}
		if err := g.writePage(out, path.Join(p.Dir(), e.GUID), kind, p.Name, data); err != nil {
			return 0, err
		}
		pages = append(pages, p)
	}
	slices.SortFunc(pages, func(a, b *page) int {
		return cmp.Or(cmp.Compare(a.sectionIndex(), b.sectionIndex()), cmp.Compare(a.Name, b.Name))
	})
	if err := g.writeIndex(out, pages); err != nil {
		return 0, err
	}
	log.Debug().Int("pages", len(pages)).Msg("generated documentation")
	return len(pages), nil
}

// convertGraph works for graph beans of any kind, since it only needs the
// repository neighborhood of guid.
func convertGraph[G bean.Bean](g *Generator, guid string, f *convert.GraphFamily[G]) (G, error) {
	primary, others, rels, err := g.repo.Neighborhood(guid)
	if err != nil {
		var zero G
		return zero, err
	}
	return convert.Complex(g.conv, f, primary, others, rels)
}

func (g *Generator) writeIndex(out store.Store, pages []*page) error {
	type group struct {
		section
		Pages []*page
	}
	var groups []*group
	for _, s := range sections {
		grp := &group{section: s}
		for _, p := range pages {
			if p.Kind == s.Kind {
				grp.Pages = append(grp.Pages, p)
			}
		}
		if len(grp.Pages) > 0 {
			groups = append(groups, grp)
		}
	}
	data := struct {
		Title  string
		Groups []*group
	}{
		Title:  g.config.Title,
		Groups: groups,
	}
	return g.writePage(out, "index", "index", g.config.Title, data)
}

// writePage renders the named template with data as Markdown to
// base+".md" and as HTML to base+".html".
func (g *Generator) writePage(out store.Store, base, tmpl, pageTitle string, data any) error {
	var md bytes.Buffer
	if err := g.templates.ExecuteTemplate(&md, tmpl, data); err != nil {
		return fmt.Errorf("failed to execute template %s for %s: %w", tmpl, base, err)
	}
	if err := out.WriteFile(base+".md", md.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s.md: %w", base, err)
	}
	var body bytes.Buffer
	if err := g.md.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to render %s.md: %w", base, err)
	}
	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, htmlPage{Title: pageTitle, Body: htmltemplate.HTML(body.String())}); err != nil {
		return fmt.Errorf("failed to execute html template for %s: %w", base, err)
	}
	if err := out.WriteFile(base+".html", html.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s.html: %w", base, err)
	}
	return nil
}

// cell escapes s for use in a Markdown table cell.
func cell(s any) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")
	return r.Replace(fmt.Sprint(s))
}

// link renders elem as a Markdown link to its page, if it has one.
// Links are relative to an entity page.
func (g *Generator) link(elem *bean.ElementStub) string {
	name := elem.UniqueName
	if name == "" {
		name = elem.GUID
	}
	text := cell(name)
	if e, err := g.repo.Entity(elem.GUID); err == nil {
		if kind := g.pageKind(e.Type); kind != "" {
			p := &page{Kind: kind}
			text = fmt.Sprintf("[%s](../%s/%s.html)", text, p.Dir(), elem.GUID)
		}
	}
	if elem.Type != nil {
		text += " *" + cell(elem.Type.TypeName) + "*"
	}
	return text
}
