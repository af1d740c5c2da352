package repo

import (
	"testing"
)

// setupPeerRepos builds the fetch scenario: repo A with one commit on
// master, and repo B with A configured as the "origin" remote.
func setupPeerRepos(t *testing.T) (a, b *Repo) {
	t.Helper()

	a = setupRepo(t)
	stageAndCommit(t, a, "f.txt", "from-a", "first in A")

	b = setupRepo(t)
	if err := b.SetRemote("origin", a.RootDir); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}
	return a, b
}

// TestFetchAndPull follows the fetch + pull scenario: fetch mirrors A's
// master into B's remote-tracking ref, a second fetch writes nothing,
// and pull fast-forwards B's local master.
func TestFetchAndPull(t *testing.T) {
	a, b := setupPeerRepos(t)
	aMaster := resolve(t, a, "heads/master")

	report, err := b.Fetch("origin")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if report.NewObjects == 0 {
		t.Fatalf("first fetch copied no objects")
	}
	if got := resolve(t, b, "remotes/origin/master"); got != aMaster {
		t.Fatalf("remote-tracking ref: got %s, want %s", got, aMaster)
	}

	// Second fetch is a no-op.
	report, err = b.Fetch("origin")
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if report.NewObjects != 0 {
		t.Fatalf("second fetch copied %d objects, want 0", report.NewObjects)
	}
	if got := resolve(t, b, "remotes/origin/master"); got != aMaster {
		t.Fatalf("remote-tracking ref moved on idempotent fetch")
	}

	msg, err := b.Pull("origin")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if msg != "Fast-forward" {
		t.Fatalf("pull message: got %q, want Fast-forward", msg)
	}
	if got := resolve(t, b, "heads/master"); got != aMaster {
		t.Fatalf("local master after pull: got %s, want %s", got, aMaster)
	}
	if got := readFile(t, b, "f.txt"); got != "from-a" {
		t.Fatalf("pulled file content: got %q, want %q", got, "from-a")
	}
}

// TestFetchUpdateNotForcedOnDescendant verifies a ref update to a
// descendant of the previous remote-tracking hash is not reported as
// forced.
func TestFetchUpdateNotForcedOnDescendant(t *testing.T) {
	a, b := setupPeerRepos(t)

	if _, err := b.Fetch("origin"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// Advance A and fetch again.
	stageAndCommit(t, a, "f.txt", "advanced", "second in A")
	report, err := b.Fetch("origin")
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	var found bool
	for _, u := range report.Updates {
		if u.Branch == "master" {
			found = true
			if u.Forced {
				t.Fatalf("descendant update reported as forced")
			}
			if u.Old == "" || u.New == u.Old {
				t.Fatalf("update not recorded: %+v", u)
			}
		}
	}
	if !found {
		t.Fatalf("no update recorded for master")
	}
}

// TestFetchUnknownRemote verifies fetching an unconfigured remote
// errors.
func TestFetchUnknownRemote(t *testing.T) {
	_, b := setupPeerRepos(t)
	if _, err := b.Fetch("nowhere"); err == nil {
		t.Fatalf("expected error fetching unknown remote")
	}
}

// TestPullAlreadyUpToDate verifies pulling twice reports up-to-date.
func TestPullAlreadyUpToDate(t *testing.T) {
	_, b := setupPeerRepos(t)

	if _, err := b.Pull("origin"); err != nil {
		t.Fatalf("first Pull: %v", err)
	}
	msg, err := b.Pull("origin")
	if err != nil {
		t.Fatalf("second Pull: %v", err)
	}
	if msg != "Already up-to-date." {
		t.Fatalf("second pull: got %q, want Already up-to-date.", msg)
	}
}
