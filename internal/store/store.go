// Package store provides file access to instance snapshots, either on
// local disk or at a revision of a git repository.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dnswlt/omcat/internal/api"
	"github.com/dnswlt/omcat/internal/gitclient"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	ErrReadOnly  = errors.New("store is read-only")
	ErrNoSuchRef = errors.New("no such ref")
)

// Source is the abstraction over different types of storage layers,
// in particular local disk (non-versioned) and a Git repo (read-only).
type Source interface {
	// Refresh updates the internal state of the source (e.g., via git fetch).
	// For a disk store, this is a no-op.
	Refresh() error
	// Store returns a handle to a store at the given ref.
	// For non-versioned disk-based stores, ref must be "".
	Store(ref string) (Store, error)
}

// Store is a minimal abstraction to list, read, and write files.
type Store interface {
	// ListFiles lists all files in dir (recursively).
	// The resulting paths are relative to the store's root directory,
	// so they can be passed to ReadFile unmodified.
	ListFiles(dir string) ([]string, error)
	// ReadFile reads the contents of path from the store.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes contents to path, creating parent directories as needed.
	// Stores that do not support writing return ErrReadOnly.
	WriteFile(path string, contents []byte) error
}

// DiskStore is an implementation of Source and Store that reads files from the local file system.
type DiskStore struct {
	rootDir string
}

var _ Source = (*DiskStore)(nil)
var _ Store = (*DiskStore)(nil)

func NewDiskStore(rootDir string) *DiskStore {
	return &DiskStore{
		rootDir: rootDir,
	}
}

func (d *DiskStore) Refresh() error {
	return nil
}

func (d *DiskStore) Store(ref string) (Store, error) {
	if ref != "" {
		return nil, fmt.Errorf("invalid ref %q: %w", ref, ErrNoSuchRef)
	}
	return d, nil
}

func (d *DiskStore) ListFiles(dir string) ([]string, error) {
	startDir, err := resolveRelPath(d.rootDir, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(startDir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.rootDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func resolveRelPath(root, subpath string) (string, error) {
	fullPath := filepath.Join(root, subpath)
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		return "", fmt.Errorf("not a relative path: %v", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes root directory", subpath)
	}
	return fullPath, nil
}

func (d *DiskStore) ReadFile(path string) ([]byte, error) {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

func (d *DiskStore) WriteFile(path string, contents []byte) error {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, contents, 0644)
}

// GitSource is an implementation of Source that reads from a remote Git repository.
type GitSource struct {
	client     *gitclient.Client
	defaultRef string // ref to use if the empty ref ("") is requested
	rootDir    string // directory in the repository that acts as the store root

	mu   sync.Mutex
	refs []string // cached list of available references
}

// gitStore is a "view" over a single revision in a GitSource.
type gitStore struct {
	client  *gitclient.Client
	ref     string
	rootDir string
}

var _ Source = (*GitSource)(nil)
var _ Store = (*gitStore)(nil)

// NewGitSource returns a source for client. rootDir may be "" to use the
// repository root.
func NewGitSource(client *gitclient.Client, defaultRef, rootDir string) *GitSource {
	return &GitSource{
		client:     client,
		defaultRef: defaultRef,
		rootDir:    rootDir,
	}
}

func (g *GitSource) Refresh() error {
	g.mu.Lock()
	g.refs = nil
	g.mu.Unlock()
	return g.client.Update()
}

func (g *GitSource) Store(ref string) (Store, error) {
	if ref == "" {
		ref = g.defaultRef
	}
	refs, err := g.ListReferences()
	if err != nil {
		return nil, fmt.Errorf("cannot list references: %v", err)
	}
	if !slices.Contains(refs, ref) {
		return nil, ErrNoSuchRef
	}
	return &gitStore{
		client:  g.client,
		ref:     ref,
		rootDir: g.rootDir,
	}, nil
}

// ListReferences returns the sorted branch and tag names of the repository.
func (g *GitSource) ListReferences() ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refs != nil {
		return g.refs, nil
	}
	refs, err := g.client.ListReferences()
	if err != nil {
		return nil, err
	}
	slices.Sort(refs)
	g.refs = refs
	return refs, nil
}

func (g *gitStore) ListFiles(dir string) ([]string, error) {
	files, err := g.client.ListFilesRecursive(g.ref, path.Join(g.rootDir, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %v", err)
	}
	// Paths in git always use "/".
	result := make([]string, len(files))
	for i, f := range files {
		result[i] = path.Join(dir, f)
	}
	return result, nil
}

func (g *gitStore) ReadFile(p string) ([]byte, error) {
	return g.client.ReadFile(g.ref, path.Join(g.rootDir, p))
}

func (g *gitStore) WriteFile(path string, contents []byte) error {
	return ErrReadOnly
}

// ReadInstances reads all entities and relationships from the
// multi-document YAML file at path. Unknown fields are rejected.
func ReadInstances(st Store, path string) ([]api.Instance, error) {
	bs, err := st.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(bs))
	var instances []api.Instance
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML node in %q: %w", path, err)
		}
		if isBlankDocument(&node) {
			continue
		}
		inst, err := api.NewInstanceFromNode(&node, true)
		if err != nil {
			return nil, fmt.Errorf("error in document %q starting at line %d: %v", path, node.Line, err)
		}
		inst.GetSourceInfo().Path = path
		instances = append(instances, inst)
	}
	log.Debug().Str("path", path).Int("instances", len(instances)).Msg("read instance file")
	return instances, nil
}

// isBlankDocument reports whether doc has no content. yaml.v3 decodes a
// blank document (e.g. just "---") as a single null scalar.
func isBlankDocument(doc *yaml.Node) bool {
	if len(doc.Content) == 0 {
		return true
	}
	c := doc.Content[0]
	return len(doc.Content) == 1 && c.Kind == yaml.ScalarNode && c.Tag == "!!null"
}

// InstanceFiles lists all YAML files under root, which must be a path
// relative to the store's root.
func InstanceFiles(st Store, root string) ([]string, error) {
	allFiles, err := st.ListFiles(root)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, f := range allFiles {
		lower := strings.ToLower(f)
		if strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml") {
			result = append(result, f)
		}
	}
	slices.Sort(result)
	return result, nil
}
