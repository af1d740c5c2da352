package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/icede/gitlet/pkg/object"
)

// symbolicPrefix marks a symbolic ref value: "ref: heads/master".
const symbolicPrefix = "ref: "

// maxSymbolicHops bounds symbolic ref chains so a cyclic chain errors
// instead of looping.
const maxSymbolicHops = 16

// IsRefName reports whether name belongs to one of the recognized ref
// families: HEAD, FETCH_HEAD, MERGE_HEAD, heads/<branch>, or
// remotes/<remote>/<branch>.
func IsRefName(name string) bool {
	switch name {
	case "HEAD", "FETCH_HEAD", "MERGE_HEAD":
		return true
	}
	if b, ok := strings.CutPrefix(name, "heads/"); ok {
		return b != "" && !strings.Contains(b, "/")
	}
	if rb, ok := strings.CutPrefix(name, "remotes/"); ok {
		remote, branch, found := strings.Cut(rb, "/")
		return found && remote != "" && branch != "" && !strings.Contains(branch, "/")
	}
	return false
}

// LocalRef returns the heads-namespace ref name for a branch.
func LocalRef(branch string) string {
	return "heads/" + branch
}

// RemoteRef returns the remote-tracking ref name for a branch.
func RemoteRef(remote, branch string) string {
	return "remotes/" + remote + "/" + branch
}

// refPath maps a ref name to its file. HEAD, FETCH_HEAD and MERGE_HEAD
// live at the repository directory root; everything else under refs/.
func (r *Repo) refPath(name string) string {
	switch name {
	case "HEAD", "FETCH_HEAD", "MERGE_HEAD":
		return filepath.Join(r.GitletDir, name)
	}
	return filepath.Join(r.GitletDir, "refs", filepath.FromSlash(name))
}

// ReadRef reads the raw stored value of a ref: a hash, or a symbolic
// "ref: <name>" line. Absent refs read as "".
func (r *Repo) ReadRef(name string) (string, error) {
	if !IsRefName(name) {
		return "", fmt.Errorf("read ref: invalid ref name %q", name)
	}
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteRef stores a literal value under the named ref: either a hash or
// a symbolic "ref: <name>" line. The write is atomic via a lock file
// renamed into place.
func (r *Repo) WriteRef(name, value string) error {
	if !IsRefName(name) {
		return fmt.Errorf("write ref: invalid ref name %q", name)
	}

	refPath := r.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("write ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write ref %q: lock: %w", name, err)
	}
	if _, err := lock.WriteString(value + "\n"); err != nil {
		lock.Close()
		os.Remove(lockPath)
		return fmt.Errorf("write ref %q: write: %w", name, err)
	}
	if err := lock.Close(); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("write ref %q: close: %w", name, err)
	}
	if err := os.Rename(lockPath, refPath); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("write ref %q: rename: %w", name, err)
	}
	return nil
}

// DeleteRef removes a ref file. Deleting an absent ref is a no-op.
func (r *Repo) DeleteRef(name string) error {
	if !IsRefName(name) {
		return fmt.Errorf("delete ref: invalid ref name %q", name)
	}
	if err := os.Remove(r.refPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// Terminal follows the symbolic chain from name and returns the name of
// the final direct ref. A ref whose file is absent still terminates the
// chain (e.g. HEAD pointing at an unborn branch).
func (r *Repo) Terminal(name string) (string, error) {
	cur := name
	for hop := 0; hop < maxSymbolicHops; hop++ {
		value, err := r.ReadRef(cur)
		if err != nil {
			return "", err
		}
		target, ok := strings.CutPrefix(value, symbolicPrefix)
		if !ok {
			return cur, nil
		}
		cur = strings.TrimSpace(target)
	}
	return "", fmt.Errorf("terminal %q: symbolic ref chain too deep", name)
}

// normalizeRef maps an argument to a ref name: family names pass through,
// anything else is tried as a local branch shorthand.
func normalizeRef(arg string) (string, error) {
	if IsRefName(arg) {
		return arg, nil
	}
	if shorthand := LocalRef(arg); IsRefName(shorthand) {
		return shorthand, nil
	}
	return "", fmt.Errorf("%w: %q", ErrRefNotFound, arg)
}

// ResolveRef resolves a ref name or 40-hex hash to an object hash.
// A hash argument passes through unchanged. Symbolic chains dereference
// through the terminal direct ref. An absent ref resolves to "".
// FETCH_HEAD resolves to the hash of its for-merge line.
func (r *Repo) ResolveRef(arg string) (object.Hash, error) {
	if object.IsHash(arg) {
		return object.Hash(arg), nil
	}

	name, err := normalizeRef(arg)
	if err != nil {
		return "", err
	}

	if name == "FETCH_HEAD" {
		return r.fetchHeadMergeHash()
	}

	terminal, err := r.Terminal(name)
	if err != nil {
		return "", err
	}
	value, err := r.ReadRef(terminal)
	if err != nil {
		return "", err
	}
	return object.Hash(value), nil
}

// HeadDetached reports whether HEAD holds a raw hash instead of a
// symbolic branch ref.
func (r *Repo) HeadDetached() (bool, error) {
	value, err := r.ReadRef("HEAD")
	if err != nil {
		return false, err
	}
	return value != "" && !strings.HasPrefix(value, symbolicPrefix), nil
}

// CurrentBranch returns the branch name HEAD is attached to, or "" when
// HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	value, err := r.ReadRef("HEAD")
	if err != nil {
		return "", err
	}
	target, ok := strings.CutPrefix(value, symbolicPrefix)
	if !ok {
		return "", nil
	}
	return strings.TrimPrefix(strings.TrimSpace(target), "heads/"), nil
}

// LocalHeads lists local branches as branch name → commit hash.
func (r *Repo) LocalHeads() (map[string]object.Hash, error) {
	return r.refDir(filepath.Join(r.GitletDir, "refs", "heads"))
}

// RemoteHeads lists remote-tracking branches of a remote as
// branch name → commit hash.
func (r *Repo) RemoteHeads(remote string) (map[string]object.Hash, error) {
	return r.refDir(filepath.Join(r.GitletDir, "refs", "remotes", remote))
}

// refDir reads every direct ref file in dir, keyed by file name.
func (r *Repo) refDir(dir string) (map[string]object.Hash, error) {
	refs := make(map[string]object.Hash)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return refs, nil
		}
		return nil, fmt.Errorf("list refs: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("list refs: %w", err)
		}
		refs[e.Name()] = object.Hash(strings.TrimSpace(string(data)))
	}
	return refs, nil
}

// ---------------------------------------------------------------------------
// FETCH_HEAD
// ---------------------------------------------------------------------------

// FetchHeadEntry is one line of FETCH_HEAD: a fetched branch tip, the
// remote it came from, and whether pull should merge it.
type FetchHeadEntry struct {
	Hash     object.Hash
	Branch   string
	URL      string
	ForMerge bool
}

// ComposeFetchHead serializes FETCH_HEAD lines. Exactly one entry should
// carry ForMerge; the rest are marked not-for-merge.
func ComposeFetchHead(entries []FetchHeadEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		marker := "not-for-merge "
		if e.ForMerge {
			marker = ""
		}
		fmt.Fprintf(&sb, "%s %sbranch '%s' of %s\n", e.Hash, marker, e.Branch, e.URL)
	}
	return sb.String()
}

// WriteFetchHead composes and stores FETCH_HEAD.
func (r *Repo) WriteFetchHead(entries []FetchHeadEntry) error {
	content := ComposeFetchHead(entries)
	if err := os.WriteFile(r.refPath("FETCH_HEAD"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write FETCH_HEAD: %w", err)
	}
	return nil
}

// fetchHeadMergeHash returns the hash of the FETCH_HEAD line lacking the
// not-for-merge marker, or "" when FETCH_HEAD is absent.
func (r *Repo) fetchHeadMergeHash() (object.Hash, error) {
	data, err := os.ReadFile(r.refPath("FETCH_HEAD"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read FETCH_HEAD: %w", err)
	}
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		hash, rest, ok := strings.Cut(line, " ")
		if !ok || !object.IsHash(hash) {
			continue
		}
		if !strings.HasPrefix(rest, "not-for-merge ") {
			return object.Hash(hash), nil
		}
	}
	return "", nil
}

// sortedBranchNames returns the keys of a branch map, sorted.
func sortedBranchNames(heads map[string]object.Hash) []string {
	names := make([]string, 0, len(heads))
	for name := range heads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
