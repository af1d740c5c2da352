package repo

import (
	"fmt"

	"github.com/icede/gitlet/pkg/object"
)

// maxTraversalSteps bounds commit graph walks. The graph is acyclic by
// construction; the bound guards against corrupted stores.
const maxTraversalSteps = 1_000_000

// Parents returns the parent hashes of a commit (0-2 entries).
func (r *Repo) Parents(h object.Hash) ([]object.Hash, error) {
	commit, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("parents: %w", err)
	}
	return commit.Parents, nil
}

// IsAncestor reports whether a is reachable from b by following parent
// links (a commit is its own ancestor).
func (r *Repo) IsAncestor(a, b object.Hash) (bool, error) {
	if a == "" || b == "" {
		return false, nil
	}
	if a == b {
		return true, nil
	}

	visited := map[object.Hash]struct{}{b: {}}
	queue := []object.Hash{b}
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps++
		if steps > maxTraversalSteps {
			return false, fmt.Errorf("is ancestor: traversal exceeded %d steps", maxTraversalSteps)
		}

		if cur == a {
			return true, nil
		}

		parents, err := r.Parents(cur)
		if err != nil {
			return false, err
		}
		for _, p := range parents {
			if p == "" {
				continue
			}
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return false, nil
}

// CommonAncestor returns the lowest common ancestor used for three-way
// merges: the ancestors of a (including a) are collected, then a
// breadth-first walk from b returns the first member of that set. Parent
// expansion follows the stored parent order, so the result is
// deterministic across runs.
func (r *Repo) CommonAncestor(a, b object.Hash) (object.Hash, error) {
	if a == "" || b == "" {
		return "", nil
	}

	ancestors, err := r.ancestorSet(a)
	if err != nil {
		return "", err
	}

	visited := map[object.Hash]struct{}{b: {}}
	queue := []object.Hash{b}
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps++
		if steps > maxTraversalSteps {
			return "", fmt.Errorf("common ancestor: traversal exceeded %d steps", maxTraversalSteps)
		}

		if _, ok := ancestors[cur]; ok {
			return cur, nil
		}

		parents, err := r.Parents(cur)
		if err != nil {
			return "", err
		}
		for _, p := range parents {
			if p == "" {
				continue
			}
			if _, seen := visited[p]; seen {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return "", nil
}

// ancestorSet collects every ancestor of h, including h itself.
func (r *Repo) ancestorSet(h object.Hash) (map[object.Hash]struct{}, error) {
	set := map[object.Hash]struct{}{h: {}}
	queue := []object.Hash{h}
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		steps++
		if steps > maxTraversalSteps {
			return nil, fmt.Errorf("ancestor set: traversal exceeded %d steps", maxTraversalSteps)
		}

		parents, err := r.Parents(cur)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if p == "" {
				continue
			}
			if _, seen := set[p]; seen {
				continue
			}
			set[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return set, nil
}
