package repo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/icede/gitlet/pkg/diff"
	"github.com/icede/gitlet/pkg/object"
)

// Merge states. A repo is IN_PROGRESS while MERGE_HEAD exists;
// CONFLICTED additionally has conflict stages in the index.
type MergeState int

const (
	MergeStateClean MergeState = iota
	MergeStateInProgress
	MergeStateConflicted
)

// MergeStatus reports the repo's merge state.
func (r *Repo) MergeStatus() (MergeState, error) {
	mergeHead, err := r.ReadRef("MERGE_HEAD")
	if err != nil {
		return MergeStateClean, err
	}
	if mergeHead == "" {
		return MergeStateClean, nil
	}
	idx, err := r.ReadIndex()
	if err != nil {
		return MergeStateClean, err
	}
	if len(idx.ConflictedPaths()) > 0 {
		return MergeStateConflicted, nil
	}
	return MergeStateInProgress, nil
}

// Merge merges ref (a branch name, FETCH_HEAD, or a hash) into HEAD.
// The receiver is HEAD's commit, the giver the resolved ref.
//
//   - giver already reachable from receiver: no-op, "Already up-to-date".
//   - receiver reachable from giver: fast-forward — HEAD's terminal ref
//     moves to the giver, index and working copy mirror its tree, and no
//     MERGE_HEAD is written.
//   - otherwise: three-way merge against the common ancestor. Conflicts
//     go into the index as stages 1-3 and into the working copy as
//     marker files; MERGE_HEAD and MERGE_MSG stay until the resolving
//     commit.
//
// Before either path touches anything the overwrite guard must be empty.
func (r *Repo) Merge(ref string) (string, error) {
	if err := r.ensureWorkTree(); err != nil {
		return "", err
	}

	state, err := r.MergeStatus()
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	if state != MergeStateClean {
		return "", fmt.Errorf("merge: %w: a merge is already in progress", ErrUnsupported)
	}

	detached, err := r.HeadDetached()
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	if detached {
		return "", fmt.Errorf("merge: %w: merging with a detached HEAD", ErrUnsupported)
	}

	receiver, err := r.ResolveRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	giver, err := r.ResolveRef(ref)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	if giver == "" {
		return "", fmt.Errorf("merge: %w: %q", ErrRefNotFound, ref)
	}
	if objType, err := r.Store.Type(giver); err != nil {
		return "", fmt.Errorf("merge: %w: %q", ErrRefNotFound, ref)
	} else if objType != object.TypeCommit {
		return "", fmt.Errorf("merge: %w: %q is a %s", ErrNotACommit, ref, objType)
	}

	if ok, err := r.IsAncestor(giver, receiver); err != nil {
		return "", fmt.Errorf("merge: %w", err)
	} else if ok {
		return "Already up-to-date.", nil
	}

	blocked, err := r.ChangedFilesCommitWouldOverwrite(giver)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	if len(blocked) > 0 {
		return "", fmt.Errorf("merge: %w: %s", ErrUncommittedChanges, strings.Join(blocked, ", "))
	}

	// An unborn HEAD fast-forwards onto the giver's history.
	ffPossible := receiver == ""
	if !ffPossible {
		ffPossible, err = r.IsAncestor(receiver, giver)
		if err != nil {
			return "", fmt.Errorf("merge: %w", err)
		}
	}
	if ffPossible {
		if err := r.fastForward(giver); err != nil {
			return "", fmt.Errorf("merge: %w", err)
		}
		return "Fast-forward", nil
	}

	return r.threeWayMerge(ref, receiver, giver)
}

// fastForward moves HEAD's terminal ref to target and mirrors its tree
// into the working copy and index.
func (r *Repo) fastForward(target object.Hash) error {
	headToc, err := r.HeadToc()
	if err != nil {
		return err
	}
	targetToc, err := r.CommitToc(target)
	if err != nil {
		return err
	}

	if err := r.ApplyDiff(diff.Diff(headToc, targetToc)); err != nil {
		return err
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return err
	}
	idx.SetToc(targetToc)
	if err := r.WriteIndex(idx); err != nil {
		return err
	}

	terminal, err := r.Terminal("HEAD")
	if err != nil {
		return err
	}
	return r.WriteRef(terminal, string(target))
}

// threeWayMerge reconciles receiver and giver against their common
// ancestor, file by file over the union of the three TOCs.
func (r *Repo) threeWayMerge(ref string, receiver, giver object.Hash) (string, error) {
	base, err := r.CommonAncestor(receiver, giver)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	baseToc := make(object.TOC)
	if base != "" {
		if baseToc, err = r.CommitToc(base); err != nil {
			return "", fmt.Errorf("merge: %w", err)
		}
	}
	recvToc, err := r.CommitToc(receiver)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	giverToc, err := r.CommitToc(giver)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	var conflicted []string
	for _, e := range diff.ThreeWay(baseToc, recvToc, giverToc) {
		switch e.Action {
		case diff.MergeKeep:
			// Receiver state stands.

		case diff.MergeTake:
			blob, err := r.Store.ReadBlob(e.Theirs)
			if err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}
			if err := r.WriteWorkingFile(e.Path, blob.Data); err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}
			idx.SetStage0(e.Path, e.Theirs)

		case diff.MergeDelete:
			if err := r.RemoveWorkingFile(e.Path); err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}
			if err := idx.Remove(e.Path); err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}

		case diff.MergeConflict:
			content, err := r.renderConflict(ref, e.Ours, e.Theirs)
			if err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}
			if err := r.WriteWorkingFile(e.Path, content); err != nil {
				return "", fmt.Errorf("merge: %w", err)
			}
			idx.SetConflict(e.Path, e.Base, e.Ours, e.Theirs)
			conflicted = append(conflicted, e.Path)
		}
	}

	if err := r.WriteIndex(idx); err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}

	if err := r.WriteRef("MERGE_HEAD", string(giver)); err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	msg := fmt.Sprintf("Merge commit %s\n", ref)
	if err := os.WriteFile(r.mergeMsgPath(), []byte(msg), 0o644); err != nil {
		return "", fmt.Errorf("merge: write MERGE_MSG: %w", err)
	}

	if len(conflicted) > 0 {
		var sb strings.Builder
		for _, p := range conflicted {
			fmt.Fprintf(&sb, "CONFLICT (content): Merge conflict in %s\n", p)
		}
		sb.WriteString("Automatic merge failed; fix conflicts and then commit the result.")
		return sb.String(), nil
	}
	return "Automatic merge went well; commit to conclude the merge.", nil
}

// renderConflict builds the conflict-marker file content: receiver
// content under the HEAD marker, giver content under the ref marker.
// An empty hash on either side renders as no content.
func (r *Repo) renderConflict(ref string, ours, theirs object.Hash) ([]byte, error) {
	oursData, err := r.blobDataOrEmpty(ours)
	if err != nil {
		return nil, err
	}
	theirsData, err := r.blobDataOrEmpty(theirs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	buf.Write(oursData)
	if len(oursData) > 0 && oursData[len(oursData)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("=======\n")
	buf.Write(theirsData)
	if len(theirsData) > 0 && theirsData[len(theirsData)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(">>>>>>> " + ref + "\n")
	return buf.Bytes(), nil
}

func (r *Repo) blobDataOrEmpty(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", h, err)
	}
	return blob.Data, nil
}
