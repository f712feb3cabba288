// Package remote implements filesystem-path remote sync: fetch pulls
// objects and heads from another repository directory into the local
// one, push does the reverse for a single ref.
package remote

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
	"github.com/relayvcs/ugit/internal/repocontext"
)

const (
	remoteHeadsPrefix = "refs/heads/"
	localMirrorPrefix = "refs/remote/"
)

// Repo bundles the stores needed to address one repository (local or, for
// the duration of a sync, a peer addressed by filesystem path).
type Repo struct {
	Store *objstore.Store
	Refs  *refs.Store
	Graph *commitgraph.Graph
}

func open(repoDir string) Repo {
	store := objstore.New(repoDir)
	refStore := refs.New(repoDir)
	return Repo{Store: store, Refs: refStore, Graph: commitgraph.New(store, refStore)}
}

// Fetch copies every object reachable from the remote's refs/heads/* into
// the local store (skipping objects already present) and mirrors each
// remote head into refs/remote/<name> locally.
func Fetch(local Repo, remoteWorkDir string) error {
	remote := open(filepath.Join(remoteWorkDir, repocontext.Dir()))

	heads, err := remote.Refs.IterRefs(remoteHeadsPrefix, true)
	if err != nil {
		return fmt.Errorf("remote: fetch: listing remote heads: %w", err)
	}

	seeds := make([]string, 0, len(heads))
	for _, h := range heads {
		seeds = append(seeds, h.Value.Value)
	}
	objects, err := remote.Graph.IterObjectsInCommits(seeds)
	if err != nil {
		return fmt.Errorf("remote: fetch: enumerating objects: %w", err)
	}
	for _, oid := range objects {
		if err := local.Store.CopyObjectFrom(remote.Store, oid); err != nil {
			return fmt.Errorf("remote: fetch: copying %s: %w", oid, err)
		}
	}

	for _, h := range heads {
		name := strings.TrimPrefix(h.Name, remoteHeadsPrefix)
		localName := localMirrorPrefix + name
		if err := local.Refs.UpdateRef(localName, refs.Value{Value: h.Value.Value}, true); err != nil {
			return fmt.Errorf("remote: fetch: updating %s: %w", localName, err)
		}
	}
	return nil
}

// Push reads the local ref named refname, computes which objects
// reachable from it the remote is missing (by diffing against what's
// reachable from the remote's own refs), copies just those, and then
// updates the remote's refname directly.
func Push(local Repo, remoteWorkDir, refname string) error {
	localRef, err := local.Refs.GetRef(refname, true)
	if err != nil {
		return fmt.Errorf("remote: push: reading local ref %s: %w", refname, err)
	}
	if localRef.IsMissing() {
		return fmt.Errorf("remote: push: local ref %s has no value", refname)
	}

	remote := open(filepath.Join(remoteWorkDir, repocontext.Dir()))

	remoteHeads, err := remote.Refs.IterRefs("", true)
	if err != nil {
		return fmt.Errorf("remote: push: listing remote refs: %w", err)
	}
	remoteSeeds := make([]string, 0, len(remoteHeads))
	for _, h := range remoteHeads {
		remoteSeeds = append(remoteSeeds, h.Value.Value)
	}
	// Enumerate via the remote's own graph (its commits/trees live in the
	// remote store), then keep only the subset already present locally —
	// that subset is R, the objects the push can skip re-sending.
	remoteReachable, err := remote.Graph.IterObjectsInCommits(remoteSeeds)
	if err != nil {
		return fmt.Errorf("remote: push: enumerating remote-reachable objects: %w", err)
	}
	remoteHasSet := make(map[string]struct{}, len(remoteReachable))
	for _, oid := range remoteReachable {
		if local.Store.ObjectExists(oid) {
			remoteHasSet[oid] = struct{}{}
		}
	}

	localObjects, err := local.Graph.IterObjectsInCommits([]string{localRef.Value})
	if err != nil {
		return fmt.Errorf("remote: push: enumerating local objects: %w", err)
	}
	for _, oid := range localObjects {
		if _, already := remoteHasSet[oid]; already {
			continue
		}
		if err := remote.Store.CopyObjectFrom(local.Store, oid); err != nil {
			return fmt.Errorf("remote: push: copying %s: %w", oid, err)
		}
	}

	if err := remote.Refs.UpdateRef(refname, refs.Value{Value: localRef.Value}, true); err != nil {
		return fmt.Errorf("remote: push: updating remote ref %s: %w", refname, err)
	}
	return nil
}
