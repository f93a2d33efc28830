package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/bean"
	"github.com/dnswlt/omcat/internal/config"
	"github.com/dnswlt/omcat/internal/convert"
	"github.com/dnswlt/omcat/internal/docs"
	"github.com/dnswlt/omcat/internal/gitclient"
	"github.com/dnswlt/omcat/internal/query"
	"github.com/dnswlt/omcat/internal/repo"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/dnswlt/omcat/internal/typedefs"
	"github.com/peterbourgon/ff/v3"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	// Version is the application version.
	// It is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
)

// Exit codes. Missing instances are the caller's fault, invalid beans are ours.
const (
	exitError       = 1
	exitUsage       = 2
	exitNotFound    = 3
	exitInvalidBean = 4
)

func gitClientAuthFromEnv() *gitclient.Auth {
	user := os.Getenv("OMCAT_GIT_USER")
	if user == "" {
		return nil
	}
	pass := os.Getenv("OMCAT_GIT_PASSWORD")
	return &gitclient.Auth{
		Username: user,
		Password: pass,
	}
}

// Options contains program options that can be set via command-line flags or environment variables.
type Options struct {
	RootDir      string
	InstancesDir string
	ConfigFile   string
	GitURL       string
	GitRef       string
	GitRootDir   string
	LogLevel     string
}

func addSourceFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.RootDir, "root-dir", ".", "Root directory of the local data store")
	fs.StringVar(&opts.InstancesDir, "instances-dir", "instances", "Directory containing the instance YAML files (relative to the store root)")
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to the configuration YAML file (relative to the store root). If empty, defaults are used.")
	fs.StringVar(&opts.GitURL, "git-url", "", "URL of the git repository to use as the data store")
	fs.StringVar(&opts.GitRef, "git-ref", "", "Git ref (branch or tag) to read. Defaults to the remote's default branch.")
	fs.StringVar(&opts.GitRootDir, "git-root-dir", "", "Directory in the git repository that acts as the store root")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func parseFlags(fs *flag.FlagSet, args []string, opts *Options) {
	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("OMCAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(exitUsage)
	}
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", opts.LogLevel, err)
		os.Exit(exitUsage)
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}
	switch os.Args[1] {
	case "convert":
		runConvert(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "gen-docs":
		runGenDocs(os.Args[2:])
	case "version":
		fmt.Println(Version)
	case "help", "-h", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n", os.Args[1])
		usage()
		os.Exit(exitUsage)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: omcat <command> [flags]

Commands:
  convert   Convert an entity to a bean and print it as YAML
  list      List entities matching a CEL query
  gen-docs  Generate Markdown and HTML documentation
  version   Print the version

Families for convert: %s
`, strings.Join(familyNames(), ", "))
}

// exitCode maps conversion and lookup errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, convert.ErrMissingInstance):
		return exitNotFound
	case errors.Is(err, convert.ErrInvalidBean):
		return exitInvalidBean
	}
	return exitError
}

func fatal(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(exitCode(err))
}

func createSource(opts *Options) store.Source {
	if opts.GitURL != "" {
		auth := gitClientAuthFromEnv()
		log.Info().Str("url", opts.GitURL).Msg("Retrieving instances from git")
		client, err := gitclient.New(opts.GitURL, auth)
		if err != nil {
			fatal(err, "Failed to retrieve git repo")
		}
		ref := opts.GitRef
		if ref == "" {
			ref, err = client.DefaultBranch()
			if err != nil {
				fatal(err, "No git-ref specified and no default branch found")
			}
			log.Info().Str("ref", ref).Msg("Using default git branch")
		}
		return store.NewGitSource(client, ref, opts.GitRootDir)
	}
	log.Info().Str("dir", opts.RootDir).Msg("Using local store")
	return store.NewDiskStore(opts.RootDir)
}

// environment is what all commands work on.
type environment struct {
	bundle *config.Bundle
	types  *typedefs.Registry
	conv   *convert.Converter
	repo   *repo.Repository
}

func load(opts *Options) *environment {
	st, err := createSource(opts).Store("")
	if err != nil {
		fatal(err, "Cannot open store")
	}
	bundle := config.Default()
	if opts.ConfigFile != "" {
		bundle, err = config.Load(st, opts.ConfigFile)
		if err != nil {
			fatal(err, "Failed to load config")
		}
	}
	reg, err := bundle.Registry(st)
	if err != nil {
		fatal(err, "Failed to load type definitions")
	}
	r, err := repo.Load(st, bundle.Repository, opts.InstancesDir)
	if err != nil {
		fatal(err, "Failed to load instances")
	}
	return &environment{
		bundle: bundle,
		types:  reg,
		conv:   bundle.Converter(reg),
		repo:   r,
	}
}

// converterFunc converts the entity e, optionally retrieved through rel.
type converterFunc func(env *environment, e *api.EntityDetail, rel *api.Relationship) (bean.Bean, error)

func simple[B bean.Bean](f *convert.Family[B]) converterFunc {
	return func(env *environment, e *api.EntityDetail, rel *api.Relationship) (bean.Bean, error) {
		b, err := convert.WithRelationship(env.conv, f, e, rel)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func graph[G bean.Bean](f *convert.GraphFamily[G]) converterFunc {
	return func(env *environment, e *api.EntityDetail, _ *api.Relationship) (bean.Bean, error) {
		primary, others, rels, err := env.repo.Neighborhood(e.GUID)
		if err != nil {
			return nil, err
		}
		g, err := convert.Complex(env.conv, f, primary, others, rels)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

var families = map[string]converterFunc{
	"asset":                       simple(convert.Assets),
	"governance-definition":       simple(convert.GovernanceDefinitions),
	"governance-definition-graph": graph(convert.GovernanceDefinitionGraphs),
	"governance-metric":           simple(convert.GovernanceMetrics),
	"governance-role":             simple(convert.GovernanceRoles),
	"governance-domain":           simple(convert.GovernanceDomains),
	"profile":                     simple(convert.Profiles),
	"profile-graph":               graph(convert.ProfileGraphs),
	"external-reference":          simple(convert.ExternalReferences),
}

func familyNames() []string {
	var names []string
	for n := range families {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func runConvert(args []string) {
	var opts Options
	fs := flag.NewFlagSet("omcat convert", flag.ExitOnError)
	addSourceFlags(fs, &opts)
	var family, guid, relGUID string
	fs.StringVar(&family, "family", "", "Bean family, one of: "+strings.Join(familyNames(), ", "))
	fs.StringVar(&guid, "guid", "", "GUID of the entity to convert")
	fs.StringVar(&relGUID, "rel", "", "GUID of the relationship through which the entity was retrieved (optional)")
	parseFlags(fs, args, &opts)

	fn, ok := families[family]
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid -family %q. Valid families: %s\n", family, strings.Join(familyNames(), ", "))
		os.Exit(exitUsage)
	}
	if guid == "" {
		fmt.Fprintln(os.Stderr, "Missing -guid")
		os.Exit(exitUsage)
	}

	env := load(&opts)
	e, err := env.repo.Entity(guid)
	if err != nil {
		fatal(err, "Cannot convert entity")
	}
	var rel *api.Relationship
	if relGUID != "" {
		rel, err = env.repo.Relationship(relGUID)
		if err != nil {
			fatal(err, "Cannot convert entity")
		}
	}
	b, err := fn(env, e, rel)
	if err != nil {
		fatal(err, "Conversion failed")
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		fatal(err, "Failed to encode bean")
	}
	if err := enc.Close(); err != nil {
		fatal(err, "Failed to encode bean")
	}
}

func runList(args []string) {
	var opts Options
	fs := flag.NewFlagSet("omcat list", flag.ExitOnError)
	addSourceFlags(fs, &opts)
	var q string
	fs.StringVar(&q, "q", "", `CEL filter expression, e.g. 'typeName.isA("GovernancePolicy")'. Empty lists all entities.`)
	parseFlags(fs, args, &opts)

	env := load(&opts)
	compiled, err := query.Compile(q, env.types)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid query: %v\n", err)
		os.Exit(exitUsage)
	}
	entities := env.repo.Find(compiled)

	data := pterm.TableData{{"GUID", "TYPE", "QUALIFIED NAME"}}
	for _, e := range entities {
		qn, _ := e.Properties["qualifiedName"].(string)
		data = append(data, []string{e.GUID, e.Type.Name(), qn})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		fatal(err, "Failed to write output")
	}
	log.Info().Int("count", len(entities)).Msg("Listed entities")
}

func runGenDocs(args []string) {
	var opts Options
	fs := flag.NewFlagSet("omcat gen-docs", flag.ExitOnError)
	addSourceFlags(fs, &opts)
	var outputDir string
	fs.StringVar(&outputDir, "out-dir", "docs", "Output directory for the documentation")
	parseFlags(fs, args, &opts)

	env := load(&opts)
	gen := docs.NewGenerator(env.repo, env.conv, env.bundle.Docs)
	n, err := gen.Generate(store.NewDiskStore(outputDir))
	if err != nil {
		fatal(err, "Failed to generate documentation")
	}
	log.Info().Int("pages", n).Str("dir", outputDir).Msg("Documentation generated")
}
