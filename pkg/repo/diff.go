package repo

import (
	"fmt"
	"sort"

	"github.com/icede/gitlet/pkg/diff"
	"github.com/icede/gitlet/pkg/object"
)

// ChangedFilesCommitWouldOverwrite returns the paths whose working-copy
// content differs from both HEAD and the target commit. Realizing the
// target would silently lose those changes, so checkout and merge must
// refuse while the list is non-empty.
func (r *Repo) ChangedFilesCommitWouldOverwrite(target object.Hash) ([]string, error) {
	headToc, err := r.HeadToc()
	if err != nil {
		return nil, err
	}
	targetToc, err := r.CommitToc(target)
	if err != nil {
		return nil, err
	}
	workingToc, err := r.WorkingToc()
	if err != nil {
		return nil, err
	}

	var blocked []string
	for _, p := range diff.SortedPaths(headToc, targetToc) {
		w := workingToc[p]
		if w != headToc[p] && w != targetToc[p] {
			blocked = append(blocked, p)
		}
	}
	sort.Strings(blocked)
	return blocked, nil
}

// ReadDiff computes a name-status table. With two args it diffs the two
// commits' trees; with one, the commit against the index; with none, the
// index against the working copy.
func (r *Repo) ReadDiff(args []string) (map[string]diff.Status, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("diff: at most two revisions")
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}

	var a, b object.TOC
	switch len(args) {
	case 2:
		if a, err = r.resolveCommitToc(args[0]); err != nil {
			return nil, err
		}
		if b, err = r.resolveCommitToc(args[1]); err != nil {
			return nil, err
		}
	case 1:
		if a, err = r.resolveCommitToc(args[0]); err != nil {
			return nil, err
		}
		b = idx.Toc()
	default:
		a = idx.Toc()
		if b, err = r.WorkingToc(); err != nil {
			return nil, err
		}
	}

	return diff.NameStatus(a, b), nil
}

// resolveCommitToc resolves a ref or hash to a commit and flattens its
// tree.
func (r *Repo) resolveCommitToc(arg string) (object.TOC, error) {
	h, err := r.ResolveRef(arg)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, arg)
	}
	if objType, err := r.Store.Type(h); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, arg)
	} else if objType != object.TypeCommit {
		return nil, fmt.Errorf("%w: %q is a %s", ErrNotACommit, arg, objType)
	}
	return r.CommitToc(h)
}
