package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/icede/gitlet/pkg/object"
)

// Conflict stage numbers. Stage 0 is normal staged content; stages 1-3
// exist only while a merge conflict is unresolved.
const (
	StageNormal = 0
	StageBase   = 1
	StageOurs   = 2
	StageTheirs = 3
)

// IndexEntry records one staged blob, keyed by (Path, Stage).
type IndexEntry struct {
	Path  string
	Stage int
	Hash  object.Hash
}

// Index is the staging area: a list of entries sorted by (Path, Stage).
// For any path, either a single stage-0 entry exists or only conflict
// stages, never both.
type Index struct {
	Entries []IndexEntry
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitletDir, "index")
}

// ReadIndex loads the staging area. A missing index file reads as empty.
// Each line holds one entry: "<path> <stage>\t<hash>".
func (r *Repo) ReadIndex() (*Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{}, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	idx := &Index{}
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		key, hash, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("read index: malformed entry %q", line)
		}
		spaceIdx := strings.LastIndexByte(key, ' ')
		if spaceIdx < 0 {
			return nil, fmt.Errorf("read index: malformed entry %q", line)
		}
		stage, err := strconv.Atoi(key[spaceIdx+1:])
		if err != nil || stage < StageNormal || stage > StageTheirs {
			return nil, fmt.Errorf("read index: bad stage in entry %q", line)
		}
		idx.Entries = append(idx.Entries, IndexEntry{
			Path:  key[:spaceIdx],
			Stage: stage,
			Hash:  object.Hash(hash),
		})
	}
	idx.sort()
	return idx, nil
}

// WriteIndex atomically rewrites the index file.
func (r *Repo) WriteIndex(idx *Index) error {
	idx.sort()
	var sb strings.Builder
	for _, e := range idx.Entries {
		fmt.Fprintf(&sb, "%s %d\t%s\n", e.Path, e.Stage, e.Hash)
	}

	tmp, err := os.CreateTemp(r.GitletDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: close: %w", err)
	}
	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: rename: %w", err)
	}
	return nil
}

func (idx *Index) sort() {
	sort.Slice(idx.Entries, func(i, j int) bool {
		a, b := idx.Entries[i], idx.Entries[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Stage < b.Stage
	})
}

// Toc returns the stage-0 view of the index as path → blob hash.
func (idx *Index) Toc() object.TOC {
	toc := make(object.TOC)
	for _, e := range idx.Entries {
		if e.Stage == StageNormal {
			toc[e.Path] = e.Hash
		}
	}
	return toc
}

// HasEntry reports whether an entry exists for (path, stage).
func (idx *Index) HasEntry(path string, stage int) bool {
	for _, e := range idx.Entries {
		if e.Path == path && e.Stage == stage {
			return true
		}
	}
	return false
}

// FileInConflict reports whether any conflict stage exists for path.
func (idx *Index) FileInConflict(path string) bool {
	for _, e := range idx.Entries {
		if e.Path == path && e.Stage != StageNormal {
			return true
		}
	}
	return false
}

// ConflictedPaths returns the sorted list of paths carrying conflict
// stages.
func (idx *Index) ConflictedPaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, e := range idx.Entries {
		if e.Stage != StageNormal && !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// removePath drops every stage for path.
func (idx *Index) removePath(path string) {
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if e.Path != path {
			kept = append(kept, e)
		}
	}
	idx.Entries = kept
}

// SetStage0 records normal staged content for path, clearing any
// conflict stages.
func (idx *Index) SetStage0(path string, h object.Hash) {
	idx.removePath(path)
	idx.Entries = append(idx.Entries, IndexEntry{Path: path, Stage: StageNormal, Hash: h})
	idx.sort()
}

// Remove drops all stages for path. Removing a conflicted path is not
// supported.
func (idx *Index) Remove(path string) error {
	if idx.FileInConflict(path) {
		return fmt.Errorf("%w: cannot remove conflicted path %q", ErrUnsupported, path)
	}
	idx.removePath(path)
	return nil
}

// SetConflict replaces the stage-0 entry for path with the present
// conflict stages. An empty hash means that side does not have the path.
func (idx *Index) SetConflict(path string, base, ours, theirs object.Hash) {
	idx.removePath(path)
	if base != "" {
		idx.Entries = append(idx.Entries, IndexEntry{Path: path, Stage: StageBase, Hash: base})
	}
	if ours != "" {
		idx.Entries = append(idx.Entries, IndexEntry{Path: path, Stage: StageOurs, Hash: ours})
	}
	if theirs != "" {
		idx.Entries = append(idx.Entries, IndexEntry{Path: path, Stage: StageTheirs, Hash: theirs})
	}
	idx.sort()
}

// SetToc replaces the index contents with a stage-0 mirror of toc.
func (idx *Index) SetToc(toc object.TOC) {
	idx.Entries = idx.Entries[:0]
	for path, h := range toc {
		idx.Entries = append(idx.Entries, IndexEntry{Path: path, Stage: StageNormal, Hash: h})
	}
	idx.sort()
}
