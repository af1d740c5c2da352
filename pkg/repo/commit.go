package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/icede/gitlet/pkg/object"
)

// Commit creates a new commit from the index.
//
//  1. Refuse while conflict stages remain (before any object is written).
//  2. Build the tree from the stage-0 TOC.
//  3. Fail fast when the tree equals HEAD's tree, unless a merge is in
//     progress.
//  4. Parents are [HEAD], or [HEAD, MERGE_HEAD] mid-merge.
//  5. Write the commit, move HEAD's terminal ref (or detached HEAD).
//  6. Clear MERGE_HEAD and MERGE_MSG.
//
// An empty message defaults to MERGE_MSG when concluding a merge.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	if err := r.ensureWorkTree(); err != nil {
		return "", err
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if conflicted := idx.ConflictedPaths(); len(conflicted) > 0 {
		return "", fmt.Errorf("commit: %w: %s", ErrUnmergedFiles, strings.Join(conflicted, ", "))
	}

	mergeHead, err := r.ReadRef("MERGE_HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	headHash, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	toc := idx.Toc()
	if headHash == "" && len(toc) == 0 {
		return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	treeHash, err := r.WriteTree(toc)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	if headHash != "" {
		headCommit, err := r.Store.ReadCommit(headHash)
		if err != nil {
			return "", fmt.Errorf("commit: read HEAD commit: %w", err)
		}
		if mergeHead == "" && headCommit.TreeHash == treeHash {
			return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
		}
		parents = append(parents, headHash)
	}
	if mergeHead != "" {
		parents = append(parents, object.Hash(mergeHead))
	}

	if message == "" && mergeHead != "" {
		message = r.readMergeMsg()
	}
	if message == "" {
		return "", fmt.Errorf("commit: empty commit message")
	}

	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	terminal, err := r.Terminal("HEAD")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := r.WriteRef(terminal, string(commitHash)); err != nil {
		return "", fmt.Errorf("commit: update ref %q: %w", terminal, err)
	}

	if mergeHead != "" {
		if err := r.clearMergeState(); err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
	}

	return commitHash, nil
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]object.Hash, []*object.CommitObj, error) {
	var hashes []object.Hash
	var commits []*object.CommitObj
	current := start

	for current != "" && len(commits) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		hashes = append(hashes, current)
		commits = append(commits, c)

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return hashes, commits, nil
}

func (r *Repo) mergeMsgPath() string {
	return filepath.Join(r.GitletDir, "MERGE_MSG")
}

func (r *Repo) readMergeMsg() string {
	data, err := os.ReadFile(r.mergeMsgPath())
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

// clearMergeState removes MERGE_HEAD and MERGE_MSG.
func (r *Repo) clearMergeState() error {
	if err := r.DeleteRef("MERGE_HEAD"); err != nil {
		return err
	}
	if err := os.Remove(r.mergeMsgPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove MERGE_MSG: %w", err)
	}
	return nil
}
