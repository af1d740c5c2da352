package repo

import (
	"fmt"
	"strings"

	"github.com/icede/gitlet/pkg/diff"
	"github.com/icede/gitlet/pkg/object"
)

// Checkout switches the working copy to the state of the target, which
// can be a branch name or a raw commit hash.
//
//  1. Resolve target: branch name → attached HEAD, hash → detached.
//  2. Refuse when local changes would be overwritten.
//  3. Apply the HEAD-tree → target-tree diff to the working copy.
//  4. Rewrite the index as a stage-0 mirror of the target tree.
//  5. Repoint HEAD.
func (r *Repo) Checkout(target string) error {
	if err := r.ensureWorkTree(); err != nil {
		return err
	}

	isBranch := false
	var targetHash object.Hash

	branchHash, err := r.ResolveRef(LocalRef(target))
	switch {
	case err == nil && branchHash != "":
		targetHash = branchHash
		isBranch = true
	case object.IsHash(target):
		targetHash = object.Hash(target)
	default:
		return fmt.Errorf("checkout: %w: %q", ErrRefNotFound, target)
	}

	objType, err := r.Store.Type(targetHash)
	if err != nil {
		return fmt.Errorf("checkout: %w: %q", ErrRefNotFound, target)
	}
	if objType != object.TypeCommit {
		return fmt.Errorf("checkout: %w: %q is a %s", ErrNotACommit, target, objType)
	}

	blocked, err := r.ChangedFilesCommitWouldOverwrite(targetHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if len(blocked) > 0 {
		return fmt.Errorf("checkout: %w: %s", ErrUncommittedChanges, strings.Join(blocked, ", "))
	}

	headToc, err := r.HeadToc()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	targetToc, err := r.CommitToc(targetHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := r.ApplyDiff(diff.Diff(headToc, targetToc)); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	idx.SetToc(targetToc)
	if err := r.WriteIndex(idx); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	headValue := string(targetHash)
	if isBranch {
		headValue = symbolicPrefix + LocalRef(target)
	}
	if err := r.WriteRef("HEAD", headValue); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}
