package gitclient

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	p := filepath.Join(r.dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		r.t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		r.t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func (r *testRepo) commit(msg string) plumbing.Hash {
	r.t.Helper()
	if _, err := r.wt.Add("."); err != nil {
		r.t.Fatalf("Failed to add files: %v", err)
	}
	h, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		r.t.Fatalf("Failed to commit: %v", err)
	}
	return h
}

func (r *testRepo) tag(name string, h plumbing.Hash) {
	r.t.Helper()
	if _, err := r.repo.CreateTag(name, h, nil); err != nil {
		r.t.Fatalf("Failed to create tag %s: %v", name, err)
	}
}

func (r *testRepo) checkout(branch string, create bool) {
	r.t.Helper()
	err := r.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		r.t.Fatalf("Failed to checkout %s: %v", branch, err)
	}
}

// createTestRepo returns the path of a repository with this history:
//
//	v1.0.0 (tag): instances.yml ("v1 content")
//	v2.0.0 (tag): instances.yml ("v2 content"), governance/policies.yml
//	feature/more-metrics (branch): metrics.yml
func createTestRepo(t *testing.T) *testRepo {
	t.Helper()
	r := newTestRepo(t)
	r.write("instances.yml", "v1 content")
	r.tag("v1.0.0", r.commit("Initial commit"))

	r.write("instances.yml", "v2 content")
	r.write("governance/policies.yml", "policy content")
	r.tag("v2.0.0", r.commit("Add policies"))

	r.checkout("feature/more-metrics", true)
	r.write("metrics.yml", "metric content")
	r.commit("Add metrics")
	r.checkout("master", false)
	return r
}

func TestClient(t *testing.T) {
	r := createTestRepo(t)
	client, err := New(r.dir, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t.Run("DefaultBranch", func(t *testing.T) {
		branch, err := client.DefaultBranch()
		if err != nil {
			t.Fatalf("DefaultBranch failed: %v", err)
		}
		if branch != "master" {
			t.Errorf("DefaultBranch() = %q, want %q", branch, "master")
		}
	})

	t.Run("ListReferences", func(t *testing.T) {
		refs, err := client.ListReferences()
		if err != nil {
			t.Fatalf("ListReferences failed: %v", err)
		}
		slices.Sort(refs)
		want := []string{"feature/more-metrics", "master", "v1.0.0", "v2.0.0"}
		if diff := cmp.Diff(want, refs); diff != "" {
			t.Errorf("ListReferences mismatch (-want +got):\n%s", diff)
		}
	})

	readTests := []struct {
		revision string
		path     string
		want     string
	}{
		{"v1.0.0", "instances.yml", "v1 content"},
		{"v2.0.0", "instances.yml", "v2 content"},
		{"v2.0.0", "governance/policies.yml", "policy content"},
		{"feature/more-metrics", "metrics.yml", "metric content"},
		{"master", "instances.yml", "v2 content"},
	}
	for _, tc := range readTests {
		t.Run("ReadFile "+tc.revision+" "+tc.path, func(t *testing.T) {
			content, err := client.ReadFile(tc.revision, tc.path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if string(content) != tc.want {
				t.Errorf("ReadFile() = %q, want %q", content, tc.want)
			}
		})
	}

	t.Run("ReadFile missing", func(t *testing.T) {
		if _, err := client.ReadFile("v1.0.0", "governance/policies.yml"); err == nil {
			t.Error("ReadFile succeeded for file that does not exist at v1.0.0")
		}
		if _, err := client.ReadFile("v9.9.9", "instances.yml"); err == nil {
			t.Error("ReadFile succeeded for unknown revision")
		}
	})

	t.Run("ListFilesRecursive", func(t *testing.T) {
		files, err := client.ListFilesRecursive("v2.0.0", "")
		if err != nil {
			t.Fatalf("ListFilesRecursive failed: %v", err)
		}
		slices.Sort(files)
		want := []string{"governance/policies.yml", "instances.yml"}
		if diff := cmp.Diff(want, files); diff != "" {
			t.Errorf("ListFilesRecursive mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ListFilesRecursive subdir", func(t *testing.T) {
		files, err := client.ListFilesRecursive("v2.0.0", "governance")
		if err != nil {
			t.Fatalf("ListFilesRecursive failed: %v", err)
		}
		if diff := cmp.Diff([]string{"policies.yml"}, files); diff != "" {
			t.Errorf("ListFilesRecursive (subdir) mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestClientUpdate(t *testing.T) {
	r := createTestRepo(t)
	client, err := New(r.dir, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.Update(); err != nil {
		t.Fatalf("Update() without changes failed: %v", err)
	}

	r.write("instances.yml", "v3 content")
	r.tag("v3.0.0", r.commit("Third commit"))
	if err := client.Update(); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	content, err := client.ReadFile("v3.0.0", "instances.yml")
	if err != nil {
		t.Fatalf("ReadFile after Update failed: %v", err)
	}
	if string(content) != "v3 content" {
		t.Errorf("ReadFile() = %q, want %q", content, "v3 content")
	}
}
