package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/icede/gitlet/pkg/object"
)

// WriteTree converts a flat TOC into nested tree objects, writing them
// to the store bottom-up and returning the root tree hash.
//
// TOC paths use forward slashes (e.g. "pkg/util/util.go"); each path
// segment becomes one level of tree nesting.
func (r *Repo) WriteTree(toc object.TOC) (object.Hash, error) {
	return r.writeTreeDir(toc, "")
}

// writeTreeDir builds the TreeObj for the given directory prefix, writes
// it to the store, and returns its hash.
func (r *Repo) writeTreeDir(toc object.TOC, prefix string) (object.Hash, error) {
	// Collect direct children: files and subdirectory names.
	files := make(map[string]object.Hash)
	subdirs := make(map[string]struct{})

	for p, blobHash := range toc {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = blobHash
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		// A name cannot be both a file and a directory.
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if blobHash, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Name:     name,
				BlobHash: blobHash,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := r.writeTreeDir(toc, childPrefix)
			if err != nil {
				return "", fmt.Errorf("write tree %q: %w", childPrefix, err)
			}
			entries = append(entries, object.TreeEntry{
				Name:        name,
				IsDir:       true,
				SubtreeHash: subHash,
			})
		}
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning the TOC of all
// files beneath it.
func (r *Repo) FlattenTree(h object.Hash) (object.TOC, error) {
	toc := make(object.TOC)
	if err := r.flattenTreeRec(h, "", toc); err != nil {
		return nil, err
	}
	return toc, nil
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string, toc object.TOC) error {
	treeObj, err := r.Store.ReadTree(h)
	if err != nil {
		return fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir {
			if err := r.flattenTreeRec(entry.SubtreeHash, fullPath, toc); err != nil {
				return err
			}
		} else {
			toc[fullPath] = entry.BlobHash
		}
	}
	return nil
}

// CommitToc flattens a commit's root tree into a TOC.
func (r *Repo) CommitToc(commitHash object.Hash) (object.TOC, error) {
	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return nil, fmt.Errorf("commit toc: %w", err)
	}
	return r.FlattenTree(commit.TreeHash)
}

// HeadToc returns the TOC of the commit HEAD resolves to, or an empty
// TOC when HEAD has no commit yet.
func (r *Repo) HeadToc() (object.TOC, error) {
	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, err
	}
	if headHash == "" {
		return make(object.TOC), nil
	}
	return r.CommitToc(headHash)
}
