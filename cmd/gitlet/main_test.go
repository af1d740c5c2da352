package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// runCmd executes a command constructor with args and returns its
// combined output.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v: %v\noutput: %s", cmd.Name(), args, err, out.String())
	}
	return out.String()
}

// runCmdErr executes a command expecting failure and returns the error.
func runCmdErr(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		t.Fatalf("%s %v: expected error\noutput: %s", cmd.Name(), args, out.String())
	}
	return err
}

func writeWorkFile(t *testing.T, dir, path, content string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestCLIWorkflow drives init, add, commit, branch, checkout, and a
// fast-forward merge through the command facade.
func TestCLIWorkflow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runCmd(t, newInitCmd())

	writeWorkFile(t, dir, "a/1.txt", "one")
	runCmd(t, newAddCmd(), "a")
	out := runCmd(t, newCommitCmd(), "-m", "first")
	if len(strings.TrimSpace(out)) != 40 {
		t.Fatalf("commit did not print a hash: %q", out)
	}

	runCmd(t, newBranchCmd(), "topic")
	runCmd(t, newCheckoutCmd(), "topic")
	writeWorkFile(t, dir, "a/1.txt", "two")
	runCmd(t, newAddCmd(), "a/1.txt")
	runCmd(t, newCommitCmd(), "-m", "second")

	runCmd(t, newCheckoutCmd(), "master")
	out = runCmd(t, newMergeCmd(), "topic")
	if !strings.Contains(out, "Fast-forward") {
		t.Fatalf("merge output: got %q, want Fast-forward", out)
	}

	out = runCmd(t, newBranchCmd())
	if !strings.Contains(out, "* master") || !strings.Contains(out, "  topic") {
		t.Fatalf("branch listing:\n%s", out)
	}
}

// TestCLIDiffRequiresNameStatus verifies content diffs are refused.
func TestCLIDiffRequiresNameStatus(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runCmd(t, newInitCmd())
	err := runCmdErr(t, newDiffCmd())
	if !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("diff error: got %v, want unsupported", err)
	}
}

// TestCLIDiffNameStatus verifies the name-status listing between index
// and working copy.
func TestCLIDiffNameStatus(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runCmd(t, newInitCmd())
	writeWorkFile(t, dir, "f.txt", "one")
	runCmd(t, newAddCmd(), "f.txt")
	writeWorkFile(t, dir, "f.txt", "two")

	out := runCmd(t, newDiffCmd(), "--name-status")
	if !strings.Contains(out, "M\tf.txt") {
		t.Fatalf("diff output:\n%s", out)
	}
}

// TestCLIPlumbing drives update-index, write-tree, and update-ref.
func TestCLIPlumbing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runCmd(t, newInitCmd())
	writeWorkFile(t, dir, "f.txt", "one")
	runCmd(t, newUpdateIndexCmd(), "f.txt")

	out := runCmd(t, newWriteTreeCmd())
	if len(strings.TrimSpace(out)) != 40 {
		t.Fatalf("write-tree did not print a hash: %q", out)
	}

	commitOut := runCmd(t, newCommitCmd(), "-m", "first")
	hash := strings.TrimSpace(commitOut)

	runCmd(t, newBranchCmd(), "pin")
	runCmd(t, newUpdateRefCmd(), "heads/pin", hash)

	runCmd(t, newUpdateIndexCmd(), "--remove", "f.txt")
	out = runCmd(t, newDiffCmd(), "--name-status", "HEAD")
	if !strings.Contains(out, "D\tf.txt") {
		t.Fatalf("diff after remove:\n%s", out)
	}
}

// TestCLIRemoteFetchPull drives remote add, fetch, and pull between two
// repositories.
func TestCLIRemoteFetchPull(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	t.Chdir(dirA)
	runCmd(t, newInitCmd())
	writeWorkFile(t, dirA, "f.txt", "from-a")
	runCmd(t, newAddCmd(), "f.txt")
	runCmd(t, newCommitCmd(), "-m", "first")

	t.Chdir(dirB)
	runCmd(t, newInitCmd())
	runCmd(t, newRemoteCmd(), "add", "origin", dirA)

	out := runCmd(t, newFetchCmd(), "origin")
	if !strings.Contains(out, "From "+dirA) {
		t.Fatalf("fetch output:\n%s", out)
	}

	out = runCmd(t, newPullCmd(), "origin")
	if !strings.Contains(out, "Fast-forward") {
		t.Fatalf("pull output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dirB, "f.txt")); err != nil {
		t.Fatalf("pulled file missing: %v", err)
	}
}
