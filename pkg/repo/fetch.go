package repo

import (
	"fmt"

	"github.com/icede/gitlet/pkg/object"
)

// FetchRefUpdate records one remote-tracking ref written by a fetch;
// Old equals New when the ref did not move. The update is forced iff
// the new hash is not a descendant of the previously recorded one.
type FetchRefUpdate struct {
	Branch string
	Old    object.Hash
	New    object.Hash
	Forced bool
}

// FetchReport is the result of a fetch: one ref update per peer branch
// and how many objects the peer contributed that the local store lacked.
type FetchReport struct {
	RemoteURL  string
	Updates    []FetchRefUpdate
	NewObjects int
}

// Fetch reads the peer repository at the remote's configured local path,
// copies every object the local store is missing, updates
// remotes/<remote>/* to the peer's heads/*, and rewrites FETCH_HEAD.
// The peer is accessed through its own Repo handle; the process working
// directory is never changed.
func (r *Repo) Fetch(remote string) (*FetchReport, error) {
	remoteURL, err := r.RemoteURL(remote)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	peer, err := Open(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: open peer %q: %w", remoteURL, err)
	}

	report := &FetchReport{RemoteURL: remoteURL}

	// Copy every missing peer object. Content addressing makes the copy
	// idempotent: a second fetch writes nothing.
	peerHashes, err := peer.Store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	for _, h := range peerHashes {
		if r.Store.Has(h) {
			continue
		}
		objType, data, err := peer.Store.Read(h)
		if err != nil {
			return nil, fmt.Errorf("fetch: read peer object: %w", err)
		}
		written, err := r.Store.Write(objType, data)
		if err != nil {
			return nil, fmt.Errorf("fetch: copy object: %w", err)
		}
		if written != h {
			return nil, fmt.Errorf("fetch: peer object %s rehashed to %s", h, written)
		}
		report.NewObjects++
	}

	peerHeads, err := peer.LocalHeads()
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	for _, branch := range sortedBranchNames(peerHeads) {
		newHash := peerHeads[branch]
		trackingRef := RemoteRef(remote, branch)
		oldValue, err := r.ReadRef(trackingRef)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		old := object.Hash(oldValue)

		forced := false
		if old != "" && old != newHash {
			descends, err := r.IsAncestor(old, newHash)
			if err != nil {
				return nil, fmt.Errorf("fetch: %w", err)
			}
			forced = !descends
		}

		if err := r.WriteRef(trackingRef, string(newHash)); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		report.Updates = append(report.Updates, FetchRefUpdate{
			Branch: branch,
			Old:    old,
			New:    newHash,
			Forced: forced,
		})
	}

	mergeBranch, err := r.fetchMergeBranch(peer, peerHeads)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	var entries []FetchHeadEntry
	for _, branch := range sortedBranchNames(peerHeads) {
		entries = append(entries, FetchHeadEntry{
			Hash:     peerHeads[branch],
			Branch:   branch,
			URL:      remoteURL,
			ForMerge: branch == mergeBranch,
		})
	}
	if err := r.WriteFetchHead(entries); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return report, nil
}

// fetchMergeBranch picks the FETCH_HEAD line pull will merge: the peer
// branch matching the current local branch when it exists, else the
// peer's own current branch, else the first peer branch by name.
func (r *Repo) fetchMergeBranch(peer *Repo, peerHeads map[string]object.Hash) (string, error) {
	if len(peerHeads) == 0 {
		return "", nil
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return "", err
	}
	if current != "" {
		if _, ok := peerHeads[current]; ok {
			return current, nil
		}
	}

	peerCurrent, err := peer.CurrentBranch()
	if err != nil {
		return "", err
	}
	if peerCurrent != "" {
		if _, ok := peerHeads[peerCurrent]; ok {
			return peerCurrent, nil
		}
	}

	return sortedBranchNames(peerHeads)[0], nil
}

// Pull fetches from the remote and merges FETCH_HEAD. The fetch runs to
// completion before the merge begins.
func (r *Repo) Pull(remote string) (string, error) {
	if err := r.ensureWorkTree(); err != nil {
		return "", err
	}
	if _, err := r.Fetch(remote); err != nil {
		return "", fmt.Errorf("pull: %w", err)
	}
	msg, err := r.Merge("FETCH_HEAD")
	if err != nil {
		return "", fmt.Errorf("pull: %w", err)
	}
	return msg, nil
}
