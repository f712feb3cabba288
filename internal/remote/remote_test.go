package remote

import (
	"path/filepath"
	"testing"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
)

const repoDirName = ".ugit"

func newRepo(t *testing.T) (Repo, string) {
	t.Helper()
	workDir := t.TempDir()
	repoDir := filepath.Join(workDir, repoDirName)
	if err := objstore.Init(repoDir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store := objstore.New(repoDir)
	refStore := refs.New(repoDir)
	graph := commitgraph.New(store, refStore)
	return Repo{Store: store, Refs: refStore, Graph: graph}, workDir
}

func commitFile(t *testing.T, r Repo, repoDir, path, content, message string) string {
	t.Helper()
	oid, err := r.Store.HashObject([]byte(content), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	if err := index.With(repoDir, func(entries index.Map) error {
		entries[path] = oid
		return nil
	}); err != nil {
		t.Fatalf("staging failed: %v", err)
	}
	commitOid, err := r.Graph.Commit(repoDir, message)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := r.Refs.UpdateRef("refs/heads/master", refs.Value{Value: commitOid}, true); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}
	return commitOid
}

func TestFetchCopiesObjectsAndMirrorsHeads(t *testing.T) {
	remoteRepo, remoteWorkDir := newRepo(t)
	remoteRepoDir := filepath.Join(remoteWorkDir, repoDirName)
	oid := commitFile(t, remoteRepo, remoteRepoDir, "a.txt", "hi", "first")

	localRepo, localWorkDir := newRepo(t)
	_ = localWorkDir

	if err := Fetch(localRepo, remoteWorkDir); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !localRepo.Store.ObjectExists(oid) {
		t.Errorf("expected commit %s to be copied locally", oid)
	}
	mirrored, err := localRepo.Refs.GetRef("refs/remote/master", true)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if mirrored.IsMissing() || mirrored.Value != oid {
		t.Errorf("expected refs/remote/master to mirror %s, got %+v", oid, mirrored)
	}
}

func TestPushCopiesObjectsAndUpdatesRemoteRef(t *testing.T) {
	localRepo, localWorkDir := newRepo(t)
	localRepoDir := filepath.Join(localWorkDir, repoDirName)
	oid := commitFile(t, localRepo, localRepoDir, "a.txt", "hi", "first")

	_, remoteWorkDir := newRepo(t)

	if err := Push(localRepo, remoteWorkDir, "refs/heads/master"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	remoteRepoDir := filepath.Join(remoteWorkDir, repoDirName)
	remoteStore := objstore.New(remoteRepoDir)
	if !remoteStore.ObjectExists(oid) {
		t.Errorf("expected commit %s to be copied to remote", oid)
	}
	remoteRefs := refs.New(remoteRepoDir)
	got, err := remoteRefs.GetRef("refs/heads/master", true)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if got.IsMissing() || got.Value != oid {
		t.Errorf("expected remote refs/heads/master to be %s, got %+v", oid, got)
	}
}

func TestPushRequiresExistingLocalRef(t *testing.T) {
	localRepo, _ := newRepo(t)
	_, remoteWorkDir := newRepo(t)

	if err := Push(localRepo, remoteWorkDir, "refs/heads/nope"); err == nil {
		t.Errorf("expected error pushing a ref with no value")
	}
}
