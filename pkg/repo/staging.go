package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/icede/gitlet/pkg/object"
)

// Add resolves a pathspec to a set of working-copy files (recursively
// for directories) and stages each: the content is written as a blob and
// recorded at stage 0, clearing any conflict stages for that path.
func (r *Repo) Add(pathspec string) error {
	if err := r.ensureWorkTree(); err != nil {
		return err
	}

	files, err := r.resolvePathspec(pathspec)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("add: pathspec %q %w", pathspec, ErrPathspecMismatch)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range files {
		content, err := r.ReadWorkingFile(p)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", p, err)
		}
		idx.SetStage0(p, blobHash)
	}

	if err := r.WriteIndex(idx); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// resolvePathspec expands a repo-relative pathspec into the sorted list
// of working-copy files it names: the file itself, or every file under a
// directory. An unmatched pathspec resolves empty.
func (r *Repo) resolvePathspec(pathspec string) ([]string, error) {
	rel := filepath.ToSlash(filepath.Clean(pathspec))
	if rel == "." {
		return r.WorkingFiles()
	}
	if strings.HasPrefix(rel, "../") || filepath.IsAbs(pathspec) {
		return nil, fmt.Errorf("pathspec %q is outside the repository", pathspec)
	}

	abs := r.workPath(rel)
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %q: %w", pathspec, err)
	}

	if !info.IsDir() {
		return []string{rel}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path == r.GitletDir {
				return filepath.SkipDir
			}
			return nil
		}
		sub, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(sub))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", pathspec, err)
	}
	sort.Strings(files)
	return files, nil
}
