// Package diff compares flattened path → blob-hash tables (TOCs) and
// classifies three-way merges. It is pure: nothing here touches the
// object store or the filesystem.
package diff

import (
	"sort"

	"github.com/icede/gitlet/pkg/object"
)

// Status is the per-path outcome of comparing two TOCs.
type Status string

const (
	StatusAdd    Status = "A"
	StatusModify Status = "M"
	StatusDelete Status = "D"
	StatusSame   Status = "S"
)

// NameStatus compares two TOCs path by path. A path is ADD if absent from
// a, DELETE if absent from b, MODIFY if the hashes differ, SAME otherwise.
func NameStatus(a, b object.TOC) map[string]Status {
	out := make(map[string]Status, len(a)+len(b))
	for p, ha := range a {
		hb, ok := b[p]
		switch {
		case !ok:
			out[p] = StatusDelete
		case ha != hb:
			out[p] = StatusModify
		default:
			out[p] = StatusSame
		}
	}
	for p := range b {
		if _, ok := a[p]; !ok {
			out[p] = StatusAdd
		}
	}
	return out
}

// FileOp is one entry of a file-level change plan. From is the blob in
// the source TOC and To the blob in the target; an empty From means the
// path is created, an empty To means it is removed.
type FileOp struct {
	Path string
	From object.Hash
	To   object.Hash
}

// Diff returns the file operations that transform TOC a into TOC b,
// sorted by path. Unchanged paths are omitted.
func Diff(a, b object.TOC) []FileOp {
	var ops []FileOp
	for p, st := range NameStatus(a, b) {
		if st == StatusSame {
			continue
		}
		ops = append(ops, FileOp{Path: p, From: a[p], To: b[p]})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Path < ops[j].Path })
	return ops
}

// SortedPaths returns the union of paths across the given TOCs, sorted.
func SortedPaths(tocs ...object.TOC) []string {
	seen := make(map[string]bool)
	for _, toc := range tocs {
		for p := range toc {
			seen[p] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
