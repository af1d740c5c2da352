package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icede/gitlet/pkg/object"
)

// setupRepo initializes a non-bare repository in a temp directory.
func setupRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

// writeFile writes a repo-relative working-copy file, creating parents.
func writeFile(t *testing.T, r *Repo, path, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// readFile reads a repo-relative working-copy file.
func readFile(t *testing.T, r *Repo, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// stageAndCommit writes a file, stages it, and commits, returning the
// commit hash.
func stageAndCommit(t *testing.T, r *Repo, path, content, msg string) object.Hash {
	t.Helper()
	writeFile(t, r, path, content)
	if err := r.Add(path); err != nil {
		t.Fatalf("Add %s: %v", path, err)
	}
	h, err := r.Commit(msg, "test-author")
	if err != nil {
		t.Fatalf("Commit %q: %v", msg, err)
	}
	return h
}

// resolve resolves a ref, failing the test on error.
func resolve(t *testing.T, r *Repo, ref string) object.Hash {
	t.Helper()
	h, err := r.ResolveRef(ref)
	if err != nil {
		t.Fatalf("ResolveRef %s: %v", ref, err)
	}
	return h
}
