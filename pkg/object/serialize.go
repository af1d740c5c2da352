package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name for
// deterministic output. Each entry is one line:
//
//	name mode hash
//
// where mode is a Git-compatible mode string (40000 for subtrees, 100644
// for blobs) and hash names the subtree or blob accordingly.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		if e.IsDir {
			fmt.Fprintf(&buf, "%s %s %s\n", e.Name, TreeModeDir, string(e.SubtreeHash))
		} else {
			fmt.Fprintf(&buf, "%s %s %s\n", e.Name, TreeModeFile, string(e.BlobHash))
		}
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		// Name may contain spaces; mode and hash never do.
		hashIdx := strings.LastIndexByte(line, ' ')
		if hashIdx < 0 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		modeIdx := strings.LastIndexByte(line[:hashIdx], ' ')
		if modeIdx < 0 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		name := line[:modeIdx]
		mode := line[modeIdx+1 : hashIdx]
		h := Hash(line[hashIdx+1:])

		entry := TreeEntry{Name: name}
		switch mode {
		case TreeModeDir:
			entry.IsDir = true
			entry.SubtreeHash = h
		case TreeModeFile:
			entry.BlobHash = h
		default:
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q", mode)
		}
		tr.Entries = append(tr.Entries, entry)
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero, one, or two)
//	author A
//	timestamp T
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			if len(c.Parents) == MaxParents {
				return nil, fmt.Errorf("unmarshal commit: more than %d parents", MaxParents)
			}
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}
