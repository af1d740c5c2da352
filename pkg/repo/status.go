package repo

import (
	"fmt"
	"sort"
)

// StatusReport summarizes the repository for display: branches, what is
// staged relative to HEAD, what HEAD tracks that the index dropped,
// unresolved conflicts, working-copy edits, and untracked files.
type StatusReport struct {
	Branches      []string
	CurrentBranch string // "" when detached
	Detached      bool
	Staged        []string // index differs from HEAD (added or modified)
	Removed       []string // in HEAD, gone from the index
	Conflicted    []string // carrying conflict stages
	Modified      []string // working copy differs from the index
	Untracked     []string // on disk, absent from the index
}

// Status computes the working tree status.
func (r *Repo) Status() (*StatusReport, error) {
	if err := r.ensureWorkTree(); err != nil {
		return nil, err
	}

	report := &StatusReport{}

	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	report.Branches = branches

	report.CurrentBranch, err = r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	report.Detached = report.CurrentBranch == ""

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	report.Conflicted = idx.ConflictedPaths()

	idxToc := idx.Toc()
	headToc, err := r.HeadToc()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	workToc, err := r.WorkingToc()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	for p, h := range idxToc {
		if headToc[p] != h {
			report.Staged = append(report.Staged, p)
		}
		if wh, onDisk := workToc[p]; onDisk && wh != h {
			report.Modified = append(report.Modified, p)
		}
	}
	for p := range headToc {
		if _, staged := idxToc[p]; !staged && !idx.FileInConflict(p) {
			report.Removed = append(report.Removed, p)
		}
	}
	for p := range workToc {
		if _, staged := idxToc[p]; !staged && !idx.FileInConflict(p) {
			report.Untracked = append(report.Untracked, p)
		}
	}

	sort.Strings(report.Staged)
	sort.Strings(report.Removed)
	sort.Strings(report.Modified)
	sort.Strings(report.Untracked)
	return report, nil
}
