package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/icede/gitlet/pkg/diff"
	"github.com/icede/gitlet/pkg/object"
)

// WorkingFiles enumerates every file in the working copy as sorted
// repo-relative forward-slash paths, skipping the repository directory.
func (r *Repo) WorkingFiles() ([]string, error) {
	if err := r.ensureWorkTree(); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == r.GitletDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working copy: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadWorkingFile reads a repo-relative file from the working copy.
func (r *Repo) ReadWorkingFile(path string) ([]byte, error) {
	data, err := os.ReadFile(r.workPath(path))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// WriteWorkingFile writes a repo-relative file, creating parents.
func (r *Repo) WriteWorkingFile(path string, data []byte) error {
	abs := r.workPath(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", path, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// RemoveWorkingFile deletes a repo-relative file and prunes empty parent
// directories. Removing an absent file is a no-op.
func (r *Repo) RemoveWorkingFile(path string) error {
	abs := r.workPath(path)
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", path, err)
	}
	r.removeEmptyParents(filepath.Dir(abs))
	return nil
}

func (r *Repo) workPath(path string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(path))
}

// WorkingToc hashes every working-copy file without storing blobs,
// returning path → blob hash.
func (r *Repo) WorkingToc() (object.TOC, error) {
	files, err := r.WorkingFiles()
	if err != nil {
		return nil, err
	}
	toc := make(object.TOC, len(files))
	for _, p := range files {
		data, err := r.ReadWorkingFile(p)
		if err != nil {
			return nil, err
		}
		toc[p] = object.HashObject(object.TypeBlob, data)
	}
	return toc, nil
}

// ApplyDiff realizes a file-op plan in the working copy: ops with a
// target blob are written out from the store, ops without are removed.
func (r *Repo) ApplyDiff(ops []diff.FileOp) error {
	if err := r.ensureWorkTree(); err != nil {
		return err
	}
	for _, op := range ops {
		if op.To == "" {
			if err := r.RemoveWorkingFile(op.Path); err != nil {
				return err
			}
			continue
		}
		blob, err := r.Store.ReadBlob(op.To)
		if err != nil {
			return fmt.Errorf("apply diff %q: %w", op.Path, err)
		}
		if err := r.WriteWorkingFile(op.Path, blob.Data); err != nil {
			return err
		}
	}
	return nil
}

// removeEmptyParents removes empty directories up to (but not including)
// the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		// Never remove the repo root itself.
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir) {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}

		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
