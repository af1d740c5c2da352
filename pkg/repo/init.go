package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/icede/gitlet/pkg/object"
)

// GitletDirName is the repository directory created inside a work tree.
const GitletDirName = ".gitlet"

// Init creates a new gitlet repository at path. For a normal repository
// the .gitlet/ structure (HEAD, config, objects/, refs/heads/) is created
// inside path; for a bare repository it is created at path directly.
// Returns an error if a repository already exists there.
func Init(path string, bare bool) (*Repo, error) {
	gitletDir := filepath.Join(path, GitletDirName)
	if bare {
		gitletDir = path
	}

	if _, err := os.Stat(filepath.Join(gitletDir, "HEAD")); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitletDir)
	}

	dirs := []string{
		filepath.Join(gitletDir, "objects"),
		filepath.Join(gitletDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	// Write default HEAD.
	headPath := filepath.Join(gitletDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: heads/master\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r := &Repo{
		RootDir:   path,
		GitletDir: gitletDir,
		Bare:      bare,
		Store:     object.NewStore(gitletDir),
	}
	if err := r.writeCoreConfig(bare); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// Open searches upward from path for a .gitlet/ directory and opens the
// repository. A path that is itself a bare repository root (HEAD plus
// core.bare = true in its config) opens directly. Returns ErrNotInRepo
// if nothing is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitletDir := filepath.Join(cur, GitletDirName)
		info, err := os.Stat(gitletDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir:   cur,
				GitletDir: gitletDir,
				Store:     object.NewStore(gitletDir),
			}, nil
		}

		if cur == abs && isBareRepoDir(cur) {
			return &Repo{
				RootDir:   cur,
				GitletDir: cur,
				Bare:      true,
				Store:     object.NewStore(cur),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotInRepo)
		}
		cur = parent
	}
}

// isBareRepoDir reports whether dir is the root of a bare repository:
// it has a HEAD file and its config declares core.bare = true.
func isBareRepoDir(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err != nil {
		return false
	}
	return readBareFlag(filepath.Join(dir, "config"))
}
