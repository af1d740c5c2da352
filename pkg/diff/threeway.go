package diff

import "github.com/icede/gitlet/pkg/object"

// MergeAction is the per-path decision of a three-way merge.
type MergeAction int

const (
	MergeKeep     MergeAction = iota // keep the receiver's state
	MergeTake                        // take the giver's content
	MergeDelete                      // remove the path
	MergeConflict                    // both sides changed incompatibly
)

// MergeEntry records the three-way decision for one path. Base, Ours and
// Theirs hold the blob hashes present on each side; an empty hash means
// the path is absent there.
type MergeEntry struct {
	Path   string
	Action MergeAction
	Base   object.Hash
	Ours   object.Hash
	Theirs object.Hash
}

// ThreeWay classifies every path in union(base, ours, theirs), where ours
// is the receiver side and theirs the giver. Entries come back sorted by
// path. Paths identical on both sides classify as MergeKeep even when
// they changed relative to base.
func ThreeWay(base, ours, theirs object.TOC) []MergeEntry {
	var entries []MergeEntry
	for _, p := range SortedPaths(base, ours, theirs) {
		b, inBase := base[p]
		o, inOurs := ours[p]
		t, inTheirs := theirs[p]

		e := MergeEntry{Path: p, Base: b, Ours: o, Theirs: t}
		switch {
		case !inBase && !inOurs && inTheirs:
			e.Action = MergeTake

		case !inBase && inOurs && !inTheirs:
			e.Action = MergeKeep

		case !inBase && inOurs && inTheirs:
			if o == t {
				e.Action = MergeKeep
			} else {
				e.Action = MergeConflict
			}

		case inBase && inOurs && inTheirs:
			switch {
			case o == t:
				e.Action = MergeKeep
			case o == b:
				e.Action = MergeTake
			case t == b:
				e.Action = MergeKeep
			default:
				e.Action = MergeConflict
			}

		case inBase && inOurs && !inTheirs:
			// Deleted by the giver.
			if o == b {
				e.Action = MergeDelete
			} else {
				e.Action = MergeConflict
			}

		case inBase && !inOurs && inTheirs:
			// Deleted by the receiver.
			if t == b {
				e.Action = MergeDelete
			} else {
				e.Action = MergeConflict
			}

		case inBase && !inOurs && !inTheirs:
			e.Action = MergeDelete
		}

		entries = append(entries, e)
	}
	return entries
}
