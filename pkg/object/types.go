package object

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir  = "40000"
	TreeModeFile = "100644"
)

// MaxParents bounds the parent list of a commit: zero for a root commit,
// one for an ordinary commit, two for a merge commit.
const MaxParents = 2

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Name is a single path segment
// naming either a blob (file) or a subtree (directory).
type TreeEntry struct {
	Name        string
	IsDir       bool
	BlobHash    Hash
	SubtreeHash Hash
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash // 0, 1, or 2 entries
	Author    string
	Timestamp int64
	Message   string
}

// TOC is a flattened path → blob-hash view of a tree or of the index at
// stage 0. Paths use forward slashes.
type TOC map[string]Hash
