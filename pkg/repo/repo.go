package repo

import (
	"fmt"

	"github.com/icede/gitlet/pkg/object"
)

// Repo represents an opened gitlet repository.
type Repo struct {
	RootDir   string        // working directory root (equals GitletDir when bare)
	GitletDir string        // .gitlet/ directory, or the root itself for bare repos
	Bare      bool          // repository has no working copy
	Store     *object.Store // content-addressed object store
}

// ensureWorkTree refuses working-copy-touching operations on bare repos.
func (r *Repo) ensureWorkTree() error {
	if r.Bare {
		return fmt.Errorf("%w (bare repository)", ErrBareRepo)
	}
	return nil
}
