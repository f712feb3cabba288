package vizserver

import (
	"path/filepath"
	"testing"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
)

func TestBuildSnapshotIncludesCommitsAndRefs(t *testing.T) {
	workDir := t.TempDir()
	repoDir := filepath.Join(workDir, ".ugit")
	if err := objstore.Init(repoDir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store := objstore.New(repoDir)
	refStore := refs.New(repoDir)
	graph := commitgraph.New(store, refStore)

	oid, err := store.HashObject([]byte("hello"), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	if err := index.With(repoDir, func(entries index.Map) error {
		entries["a.txt"] = oid
		return nil
	}); err != nil {
		t.Fatalf("staging failed: %v", err)
	}
	commitOid, err := graph.Commit(repoDir, "**bold** message")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := refStore.UpdateRef("refs/heads/master", refs.Value{Value: commitOid}, true); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}

	s := New(workDir, repoDir, nil)
	snap, err := s.buildSnapshot()
	if err != nil {
		t.Fatalf("buildSnapshot failed: %v", err)
	}
	if len(snap.Commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(snap.Commits))
	}
	if snap.Commits[0].OID != commitOid {
		t.Errorf("got %q, want %q", snap.Commits[0].OID, commitOid)
	}
	if len(snap.Refs) != 1 || snap.Refs[0].Name != "refs/heads/master" {
		t.Errorf("unexpected refs: %+v", snap.Refs)
	}
}

func TestRenderMarkdownProducesHTML(t *testing.T) {
	html, err := renderMarkdown("**bold**")
	if err != nil {
		t.Fatalf("renderMarkdown failed: %v", err)
	}
	if html == "" {
		t.Errorf("expected non-empty rendered HTML")
	}
}
