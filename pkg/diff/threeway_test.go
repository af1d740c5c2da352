package diff

import (
	"testing"

	"github.com/icede/gitlet/pkg/object"
)

// TestThreeWay exercises every row of the three-way classification
// table: presence and content combinations of base, receiver (ours),
// and giver (theirs).
func TestThreeWay(t *testing.T) {
	base, ours, theirs := h("base"), h("ours"), h("theirs")
	same := h("same")

	cases := []struct {
		name    string
		b, o, t object.Hash // "" means absent
		want    MergeAction
	}{
		{"added by giver", "", "", theirs, MergeTake},
		{"added by receiver", "", ours, "", MergeKeep},
		{"added identically by both", "", same, same, MergeKeep},
		{"added differently by both", "", ours, theirs, MergeConflict},
		{"changed by giver only", base, base, theirs, MergeTake},
		{"changed by receiver only", base, ours, base, MergeKeep},
		{"changed identically by both", base, same, same, MergeKeep},
		{"changed differently by both", base, ours, theirs, MergeConflict},
		{"unchanged everywhere", base, base, base, MergeKeep},
		{"deleted by giver, receiver unchanged", base, base, "", MergeDelete},
		{"deleted by receiver, giver unchanged", base, "", base, MergeDelete},
		{"deleted by giver, receiver changed", base, ours, "", MergeConflict},
		{"deleted by receiver, giver changed", base, "", theirs, MergeConflict},
		{"deleted by both", base, "", "", MergeDelete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			baseToc := make(object.TOC)
			oursToc := make(object.TOC)
			theirsToc := make(object.TOC)
			if tc.b != "" {
				baseToc["f"] = tc.b
			}
			if tc.o != "" {
				oursToc["f"] = tc.o
			}
			if tc.t != "" {
				theirsToc["f"] = tc.t
			}

			entries := ThreeWay(baseToc, oursToc, theirsToc)
			if len(entries) != 1 {
				t.Fatalf("expected one entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Action != tc.want {
				t.Fatalf("action: got %v, want %v", e.Action, tc.want)
			}
			if e.Base != tc.b || e.Ours != tc.o || e.Theirs != tc.t {
				t.Fatalf("hashes not carried through: %+v", e)
			}
		})
	}
}

// TestThreeWaySortedUnion verifies entries come back sorted over the
// union of all three sides.
func TestThreeWaySortedUnion(t *testing.T) {
	entries := ThreeWay(
		object.TOC{"c": h("1")},
		object.TOC{"a": h("2"), "c": h("1")},
		object.TOC{"b": h("3"), "c": h("1")},
	)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if entries[i].Path != want {
			t.Fatalf("entry %d: got %q, want %q", i, entries[i].Path, want)
		}
	}
}
