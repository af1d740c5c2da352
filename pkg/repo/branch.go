package repo

import (
	"fmt"
	"strings"
)

// CreateBranch creates a new local branch at HEAD's commit. It refuses
// when the name is taken, when it fails the ref grammar, or when HEAD
// has no commit yet.
func (r *Repo) CreateBranch(name string) error {
	if err := validBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	head, err := r.ResolveRef("HEAD")
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if head == "" {
		return fmt.Errorf("create branch: %w: HEAD has no commit", ErrRefNotFound)
	}

	existing, err := r.ReadRef(LocalRef(name))
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if existing != "" {
		return fmt.Errorf("create branch: %w: %q", ErrBranchExists, name)
	}

	if err := r.WriteRef(LocalRef(name), string(head)); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// Branches returns local branch names, sorted.
func (r *Repo) Branches() ([]string, error) {
	heads, err := r.LocalHeads()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return sortedBranchNames(heads), nil
}

// SetUpstream records upstream ("<remote>/<branch>") for the current
// branch. It refuses on a detached HEAD.
func (r *Repo) SetUpstream(upstream string) error {
	remote, branch, ok := strings.Cut(upstream, "/")
	if !ok || remote == "" || branch == "" {
		return fmt.Errorf("set upstream: expected remote/branch, got %q", upstream)
	}
	if _, err := r.RemoteURL(remote); err != nil {
		return fmt.Errorf("set upstream: %w", err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("set upstream: %w", err)
	}
	if current == "" {
		return fmt.Errorf("set upstream: %w: HEAD is detached", ErrUnsupported)
	}
	return r.SetBranchUpstream(current, upstream)
}

// validBranchName rejects names the ref grammar cannot hold: empty
// names, "..", whitespace, slashes (branch names are single segments
// here), and leading dots.
func validBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty branch name")
	case strings.Contains(name, ".."),
		strings.ContainsAny(name, " \t\n"),
		strings.Contains(name, "/"),
		strings.HasPrefix(name, "."):
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}
