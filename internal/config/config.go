package config

import (
	"bytes"
	"fmt"

	"github.com/dnswlt/omcat/internal/convert"
	"github.com/dnswlt/omcat/internal/docs"
	"github.com/dnswlt/omcat/internal/repo"
	"github.com/dnswlt/omcat/internal/store"
	"github.com/dnswlt/omcat/internal/typedefs"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Bundle is the umbrella struct for the serialized application configuration YAML.
// It bundles the package-specific configurations.
type Bundle struct {
	// Name of the server reported as the source of all beans.
	ServerName string `yaml:"serverName"`
	// Path of a type definition file, relative to the store root. Its
	// definitions extend the built-in ones.
	TypeDefsFile string             `yaml:"typeDefsFile"`
	Categories   convert.Categories `yaml:"categories"`
	Repository   repo.Config        `yaml:"repository"`
	Docs         docs.Config        `yaml:"docs"`
}

// DefaultServerName is used if the configuration does not name a server.
const DefaultServerName = "omcat"

func Load(st store.Store, configPath string) (*Bundle, error) {
	bs, err := st.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %v", configPath, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	var bundle Bundle
	if err := dec.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("invalid configuration YAML in %q: %v", configPath, err)
	}
	if bundle.ServerName == "" {
		bundle.ServerName = DefaultServerName
	}
	return &bundle, nil
}

// Default returns the configuration used if no config file is given.
func Default() *Bundle {
	return &Bundle{ServerName: DefaultServerName}
}

// Registry builds the type registry from the built-in type definitions and
// the bundle's type definition file, which is read from st.
func (b *Bundle) Registry(st store.Store) (*typedefs.Registry, error) {
	if b.TypeDefsFile == "" {
		return typedefs.NewDefaultRegistry()
	}
	bs, err := st.ReadFile(b.TypeDefsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read type definitions %q: %v", b.TypeDefsFile, err)
	}
	defs, err := typedefs.Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", b.TypeDefsFile, err)
	}
	log.Debug().Str("path", b.TypeDefsFile).Int("typeDefs", len(defs)).Msg("read type definitions")
	return typedefs.NewDefaultRegistry(defs...)
}

// Converter returns a converter configured by the bundle that uses oracle
// for type compatibility checks.
func (b *Bundle) Converter(oracle convert.TypeOracle) *convert.Converter {
	return convert.NewConverter(convert.Options{
		ServerName: b.ServerName,
		Oracle:     oracle,
		Categories: b.Categories,
	})
}
