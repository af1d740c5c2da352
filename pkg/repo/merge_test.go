package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/icede/gitlet/pkg/object"
)

// setupDivergedRepo builds the conflict scenario: H0 (a/1.txt = "one"),
// master at H1 ("two"), alt at H2 ("three"), with master checked out.
func setupDivergedRepo(t *testing.T) (r *Repo, h0, h1, h2 object.Hash) {
	t.Helper()
	r = setupRepo(t)

	h0 = stageAndCommit(t, r, "a/1.txt", "one", "first")
	if err := r.CreateBranch("alt"); err != nil {
		t.Fatalf("CreateBranch alt: %v", err)
	}
	h1 = stageAndCommit(t, r, "a/1.txt", "two", "on-master")

	if err := r.Checkout("alt"); err != nil {
		t.Fatalf("Checkout alt: %v", err)
	}
	h2 = stageAndCommit(t, r, "a/1.txt", "three", "on-alt")

	if err := r.Checkout("master"); err != nil {
		t.Fatalf("Checkout master: %v", err)
	}
	return r, h0, h1, h2
}

// TestMergeConflict follows the merge-conflict scenario: merging the
// diverged alt branch conflicts, records stages 1-3, writes markers,
// refuses to commit until the path is re-staged, then commits with both
// parents.
func TestMergeConflict(t *testing.T) {
	r, h0, h1, h2 := setupDivergedRepo(t)

	if base, err := r.CommonAncestor(h1, h2); err != nil || base != h0 {
		t.Fatalf("CommonAncestor: got %s (%v), want %s", base, err, h0)
	}

	msg, err := r.Merge("alt")
	if err != nil {
		t.Fatalf("Merge alt: %v", err)
	}
	if !strings.Contains(msg, "Merge conflict in a/1.txt") {
		t.Fatalf("merge message lacks conflict notice: %q", msg)
	}

	state, err := r.MergeStatus()
	if err != nil {
		t.Fatalf("MergeStatus: %v", err)
	}
	if state != MergeStateConflicted {
		t.Fatalf("merge state: got %v, want conflicted", state)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	for stage, want := range map[int]string{StageBase: "one", StageOurs: "two", StageTheirs: "three"} {
		if !idx.HasEntry("a/1.txt", stage) {
			t.Fatalf("missing conflict stage %d (%s)", stage, want)
		}
	}
	if idx.HasEntry("a/1.txt", StageNormal) {
		t.Fatalf("stage 0 present alongside conflict stages")
	}

	content := readFile(t, r, "a/1.txt")
	for _, marker := range []string{"<<<<<<< HEAD", "two", "=======", "three", ">>>>>>> alt"} {
		if !strings.Contains(content, marker) {
			t.Fatalf("conflict file missing %q:\n%s", marker, content)
		}
	}

	if _, err := r.Commit("premature", "test-author"); !errors.Is(err, ErrUnmergedFiles) {
		t.Fatalf("commit with conflicts: got %v, want ErrUnmergedFiles", err)
	}

	// Resolve and conclude the merge.
	writeFile(t, r, "a/1.txt", "resolved")
	if err := r.Add("a/1.txt"); err != nil {
		t.Fatalf("Add resolution: %v", err)
	}
	mergeCommit, err := r.Commit("", "test-author")
	if err != nil {
		t.Fatalf("concluding commit: %v", err)
	}

	c, err := r.Store.ReadCommit(mergeCommit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != h1 || c.Parents[1] != h2 {
		t.Fatalf("merge parents: got %v, want [%s %s]", c.Parents, h1, h2)
	}
	if c.Message != "Merge commit alt" {
		t.Fatalf("merge message: got %q", c.Message)
	}

	if mh, _ := r.ReadRef("MERGE_HEAD"); mh != "" {
		t.Fatalf("MERGE_HEAD not cleared after commit")
	}
}

// TestMergeFastForward follows the fast-forward scenario: merging a
// descendant moves the branch ref without creating a merge commit or
// MERGE_HEAD.
func TestMergeFastForward(t *testing.T) {
	r := setupRepo(t)

	stageAndCommit(t, r, "f.txt", "base", "c1")
	if err := r.CreateBranch("topic"); err != nil {
		t.Fatalf("CreateBranch topic: %v", err)
	}
	if err := r.Checkout("topic"); err != nil {
		t.Fatalf("Checkout topic: %v", err)
	}
	c2 := stageAndCommit(t, r, "f.txt", "advanced", "c2")

	if err := r.Checkout("master"); err != nil {
		t.Fatalf("Checkout master: %v", err)
	}
	msg, err := r.Merge("topic")
	if err != nil {
		t.Fatalf("Merge topic: %v", err)
	}
	if !strings.Contains(msg, "Fast-forward") {
		t.Fatalf("merge message: got %q, want Fast-forward", msg)
	}

	if got := resolve(t, r, "heads/master"); got != c2 {
		t.Fatalf("heads/master: got %s, want %s", got, c2)
	}
	if mh, _ := r.ReadRef("MERGE_HEAD"); mh != "" {
		t.Fatalf("fast-forward wrote MERGE_HEAD")
	}
	if got := readFile(t, r, "f.txt"); got != "advanced" {
		t.Fatalf("working copy: got %q, want %q", got, "advanced")
	}

	toc, err := r.CommitToc(c2)
	if err != nil {
		t.Fatalf("CommitToc: %v", err)
	}
	work, err := r.WorkingToc()
	if err != nil {
		t.Fatalf("WorkingToc: %v", err)
	}
	if len(work) != len(toc) || work["f.txt"] != toc["f.txt"] {
		t.Fatalf("working copy does not mirror target TOC")
	}
}

// TestMergeAlreadyUpToDate verifies merging an ancestor is a no-op.
func TestMergeAlreadyUpToDate(t *testing.T) {
	r := setupRepo(t)
	stageAndCommit(t, r, "f.txt", "one", "first")
	if err := r.CreateBranch("old"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	stageAndCommit(t, r, "f.txt", "two", "second")

	msg, err := r.Merge("old")
	if err != nil {
		t.Fatalf("Merge old: %v", err)
	}
	if msg != "Already up-to-date." {
		t.Fatalf("merge message: got %q", msg)
	}
}

// TestMergeCleanNonFF verifies a non-fast-forward merge with disjoint
// changes resolves automatically, leaves MERGE_HEAD pending, and the
// concluding commit clears it.
func TestMergeCleanNonFF(t *testing.T) {
	r := setupRepo(t)

	writeFile(t, r, "f1.txt", "one")
	writeFile(t, r, "f2.txt", "two")
	if err := r.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("base", "test-author"); err != nil {
		t.Fatalf("Commit base: %v", err)
	}
	if err := r.CreateBranch("alt"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	h1 := stageAndCommit(t, r, "f1.txt", "ONE", "master change")
	if err := r.Checkout("alt"); err != nil {
		t.Fatalf("Checkout alt: %v", err)
	}
	h2 := stageAndCommit(t, r, "f2.txt", "TWO", "alt change")
	if err := r.Checkout("master"); err != nil {
		t.Fatalf("Checkout master: %v", err)
	}

	if _, err := r.Merge("alt"); err != nil {
		t.Fatalf("Merge alt: %v", err)
	}

	state, err := r.MergeStatus()
	if err != nil {
		t.Fatalf("MergeStatus: %v", err)
	}
	if state != MergeStateInProgress {
		t.Fatalf("merge state: got %v, want in-progress clean", state)
	}
	if got := readFile(t, r, "f2.txt"); got != "TWO" {
		t.Fatalf("giver change not applied: %q", got)
	}
	if got := readFile(t, r, "f1.txt"); got != "ONE" {
		t.Fatalf("receiver change lost: %q", got)
	}

	mergeCommit, err := r.Commit("", "test-author")
	if err != nil {
		t.Fatalf("concluding commit: %v", err)
	}
	c, err := r.Store.ReadCommit(mergeCommit)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != h1 || c.Parents[1] != h2 {
		t.Fatalf("merge parents: got %v", c.Parents)
	}
	if state, _ := r.MergeStatus(); state != MergeStateClean {
		t.Fatalf("merge state after commit: got %v, want clean", state)
	}
}

// TestMergeTreeCommutative verifies the metadata commutativity property:
// two repos merging the same disjoint changes in opposite directions
// produce merge commits with the same tree hash.
func TestMergeTreeCommutative(t *testing.T) {
	buildAndMerge := func(masterFile, altFile string) object.Hash {
		r := setupRepo(t)
		writeFile(t, r, "f1.txt", "one")
		writeFile(t, r, "f2.txt", "two")
		if err := r.Add("."); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if _, err := r.Commit("base", "test-author"); err != nil {
			t.Fatalf("Commit base: %v", err)
		}
		if err := r.CreateBranch("alt"); err != nil {
			t.Fatalf("CreateBranch: %v", err)
		}

		stageAndCommit(t, r, masterFile, strings.ToUpper(masterFile), "master side")
		if err := r.Checkout("alt"); err != nil {
			t.Fatalf("Checkout alt: %v", err)
		}
		stageAndCommit(t, r, altFile, strings.ToUpper(altFile), "alt side")
		if err := r.Checkout("master"); err != nil {
			t.Fatalf("Checkout master: %v", err)
		}

		if _, err := r.Merge("alt"); err != nil {
			t.Fatalf("Merge: %v", err)
		}
		mergeCommit, err := r.Commit("merged", "test-author")
		if err != nil {
			t.Fatalf("Commit merge: %v", err)
		}
		c, err := r.Store.ReadCommit(mergeCommit)
		if err != nil {
			t.Fatalf("ReadCommit: %v", err)
		}
		return c.TreeHash
	}

	t1 := buildAndMerge("f1.txt", "f2.txt")
	t2 := buildAndMerge("f2.txt", "f1.txt")
	if t1 != t2 {
		t.Fatalf("merge trees differ: %s vs %s", t1, t2)
	}
}

// TestMergeDetachedHeadRefused verifies merging with a detached HEAD is
// unsupported.
func TestMergeDetachedHeadRefused(t *testing.T) {
	r, _, h1, _ := setupDivergedRepo(t)

	if err := r.Checkout(string(h1)); err != nil {
		t.Fatalf("Checkout hash: %v", err)
	}
	if _, err := r.Merge("alt"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("detached merge: got %v, want ErrUnsupported", err)
	}
}

// TestMergeDirtyWorkTreeRefused verifies the overwrite guard aborts the
// merge with no state change.
func TestMergeDirtyWorkTreeRefused(t *testing.T) {
	r, _, _, _ := setupDivergedRepo(t)

	writeFile(t, r, "a/1.txt", "dirty")
	if _, err := r.Merge("alt"); !errors.Is(err, ErrUncommittedChanges) {
		t.Fatalf("dirty merge: got %v, want ErrUncommittedChanges", err)
	}
	if mh, _ := r.ReadRef("MERGE_HEAD"); mh != "" {
		t.Fatalf("refused merge wrote MERGE_HEAD")
	}
}

// TestMergeDeleteVersusModifyConflicts verifies a path deleted on one
// side and modified on the other surfaces as a conflict with the absent
// side's stage missing.
func TestMergeDeleteVersusModifyConflicts(t *testing.T) {
	r := setupRepo(t)

	stageAndCommit(t, r, "f.txt", "base", "base")
	if err := r.CreateBranch("alt"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	// master modifies.
	stageAndCommit(t, r, "f.txt", "modified", "modify")
	// alt deletes.
	if err := r.Checkout("alt"); err != nil {
		t.Fatalf("Checkout alt: %v", err)
	}
	if err := r.Rm("f.txt", false); err != nil {
		t.Fatalf("Rm: %v", err)
	}
	if _, err := r.Commit("delete", "test-author"); err != nil {
		t.Fatalf("Commit delete: %v", err)
	}
	if err := r.Checkout("master"); err != nil {
		t.Fatalf("Checkout master: %v", err)
	}

	msg, err := r.Merge("alt")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !strings.Contains(msg, "Merge conflict in f.txt") {
		t.Fatalf("expected conflict notice, got %q", msg)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if !idx.HasEntry("f.txt", StageBase) || !idx.HasEntry("f.txt", StageOurs) {
		t.Fatalf("missing base/ours stages")
	}
	if idx.HasEntry("f.txt", StageTheirs) {
		t.Fatalf("theirs stage present for deleted side")
	}
}
