// Package gitclient reads instance files from any revision of a remote git
// repository without checking them out. The repository is cloned into memory.
package gitclient

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/rs/zerolog/log"
)

// Auth holds Basic Auth credentials.
// For access tokens, use "x-token-auth" or the provider's equivalent as
// Username and the token as Password.
type Auth struct {
	Username string
	Password string // or Token
}

// Client holds a clone of a repository in memory.
// It is safe for concurrent use.
type Client struct {
	url  string
	auth *http.BasicAuth

	mu   sync.RWMutex
	repo *git.Repository
}

// New clones the repository at url.
func New(url string, auth *Auth) (*Client, error) {
	c := &Client{url: url}
	if auth != nil {
		c.auth = &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}
	}
	opts := &git.CloneOptions{
		URL:        url,
		NoCheckout: true, // Only the object database is needed.
	}
	if c.auth != nil {
		opts.Auth = c.auth
	}
	repo, err := git.Clone(memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	c.repo = repo
	log.Debug().Str("url", url).Msg("cloned repository")
	return c, nil
}

// Update fetches all branches and tags from the remote.
func (c *Client) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts := &git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{
			"+refs/heads/*:refs/remotes/origin/*",
			"+refs/tags/*:refs/tags/*",
		},
		Force: true,
	}
	if c.auth != nil {
		opts.Auth = c.auth
	}
	err := c.repo.Fetch(opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", c.url, err)
	}
	return nil
}

// ListReferences returns the short names of all branches and tags.
// Remote branches are reported without their remote prefix.
func (c *Client) ListReferences() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs, err := c.repo.References()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsTag() || name.IsBranch():
			seen[name.Short()] = true
		case name.IsRemote():
			// refs/remotes/origin/main => main
			short := name.Short()
			if i := strings.Index(short, "/"); i != -1 && short[i+1:] != "HEAD" {
				seen[short[i+1:]] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(seen))
	for r := range seen {
		result = append(result, r)
	}
	return result, nil
}

// DefaultBranch returns the branch that HEAD of the remote pointed to
// when the repository was cloned.
func (c *Client) DefaultBranch() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not a branch: %s", head.Name())
	}
	return head.Name().Short(), nil
}

func (c *Client) tree(revision string) (*object.Tree, error) {
	hash, err := c.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil && !strings.HasPrefix(revision, "refs/") {
		// Branches of a clone only exist as remote branches.
		hash, err = c.repo.ResolveRevision(plumbing.Revision("origin/" + revision))
	}
	if err != nil {
		return nil, fmt.Errorf("revision %q not found: %w", revision, err)
	}
	commit, err := c.repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// ReadFile returns the contents of filePath at the given revision.
func (c *Client) ReadFile(revision, filePath string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tree, err := c.tree(revision)
	if err != nil {
		return nil, err
	}
	file, err := tree.File(filePath)
	if err != nil {
		return nil, err
	}
	r, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ListFilesRecursive lists all files below dirPath at the given revision.
// The returned paths are relative to dirPath.
func (c *Client) ListFilesRecursive(revision, dirPath string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tree, err := c.tree(revision)
	if err != nil {
		return nil, err
	}
	if dirPath != "" && dirPath != "." && dirPath != "/" {
		tree, err = tree.Tree(dirPath)
		if err != nil {
			return nil, fmt.Errorf("directory %q not found: %w", dirPath, err)
		}
	}

	var paths []string
	files := tree.Files()
	defer files.Close()
	err = files.ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return paths, nil
}
