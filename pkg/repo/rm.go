package repo

import (
	"fmt"
	"strings"

	"github.com/icede/gitlet/pkg/object"
)

// Rm removes tracked files from the working copy and the index. A
// pathspec naming more than its own entry (a directory) requires
// recursive. The removal refuses when any matched file has uncommitted
// modifications relative to HEAD.
func (r *Repo) Rm(pathspec string, recursive bool) error {
	if err := r.ensureWorkTree(); err != nil {
		return err
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	rel := strings.TrimSuffix(pathspec, "/")
	var matched []string
	isDir := false
	for _, e := range idx.Entries {
		if e.Path == rel {
			matched = append(matched, e.Path)
		} else if strings.HasPrefix(e.Path, rel+"/") {
			matched = append(matched, e.Path)
			isDir = true
		}
	}
	matched = dedupe(matched)
	if len(matched) == 0 {
		return fmt.Errorf("rm: pathspec %q %w", pathspec, ErrPathspecMismatch)
	}
	if isDir && !recursive {
		return fmt.Errorf("rm: not removing %q recursively without -r", pathspec)
	}

	// Refuse when a matched file is modified relative to HEAD.
	headToc, err := r.HeadToc()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	for _, p := range matched {
		if idx.FileInConflict(p) {
			return fmt.Errorf("rm: %w: %q", ErrUnmergedFiles, p)
		}
		data, err := r.ReadWorkingFile(p)
		if err != nil {
			// Already gone from disk counts as unmodified.
			continue
		}
		if object.HashObject(object.TypeBlob, data) != headToc[p] {
			return fmt.Errorf("rm: %q has uncommitted modifications: %w", p, ErrUncommittedChanges)
		}
	}

	for _, p := range matched {
		if err := idx.Remove(p); err != nil {
			return fmt.Errorf("rm: %w", err)
		}
		if err := r.RemoveWorkingFile(p); err != nil {
			return fmt.Errorf("rm: %w", err)
		}
	}

	if err := r.WriteIndex(idx); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
