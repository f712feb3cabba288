package treeobj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
)

func newTestStore(t *testing.T) (*objstore.Store, string) {
	t.Helper()
	repoDir := filepath.Join(t.TempDir(), ".ugit")
	if err := objstore.Init(repoDir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return objstore.New(repoDir), repoDir
}

func TestWriteTreeAndGetTreeRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	blobA, err := store.HashObject([]byte("a contents"), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	blobB, err := store.HashObject([]byte("b contents"), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}

	entries := index.Map{
		"a.txt":       blobA,
		"dir/b.txt":   blobB,
		"dir/sub/c.txt": blobA,
	}

	root, err := WriteTreeFromIndex(store, entries)
	if err != nil {
		t.Fatalf("WriteTreeFromIndex failed: %v", err)
	}

	got, err := GetTree(store, root, "")
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d: %+v", len(entries), len(got), got)
	}
	for path, oid := range entries {
		if got[path] != oid {
			t.Errorf("%s: got %q, want %q", path, got[path], oid)
		}
	}
}

func TestWriteTreeFromIndexDeterministic(t *testing.T) {
	store, _ := newTestStore(t)
	blob, err := store.HashObject([]byte("x"), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	entries := index.Map{"z.txt": blob, "a.txt": blob}

	oid1, err := WriteTreeFromIndex(store, entries)
	if err != nil {
		t.Fatalf("WriteTreeFromIndex failed: %v", err)
	}
	oid2, err := WriteTreeFromIndex(store, entries)
	if err != nil {
		t.Fatalf("WriteTreeFromIndex failed: %v", err)
	}
	if oid1 != oid2 {
		t.Errorf("expected deterministic tree oid, got %s != %s", oid1, oid2)
	}
}

func TestGetTreeRejectsIllegalNames(t *testing.T) {
	store, _ := newTestStore(t)
	bad, err := store.HashObject([]byte("blob deadbeefdeadbeefdeadbeefdeadbeefdead ..\n"), objstore.Tree)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	if _, err := GetTree(store, bad, ""); err == nil {
		t.Errorf("expected error for illegal entry name, got nil")
	}
}

func TestGetWorkingTreeSkipsIgnoredDir(t *testing.T) {
	store, repoDir := newTestStore(t)
	workDir := filepath.Dir(repoDir)

	if err := os.WriteFile(filepath.Join(workDir, "tracked.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := GetWorkingTree(store, workDir)
	if err != nil {
		t.Fatalf("GetWorkingTree failed: %v", err)
	}
	if _, ok := got["tracked.txt"]; !ok {
		t.Errorf("expected tracked.txt in working tree, got %+v", got)
	}
	for path := range got {
		if IsIgnored(path) {
			t.Errorf("working tree should never include ignored path %s", path)
		}
	}
}

func TestCheckoutIndexMaterializesAndClears(t *testing.T) {
	store, repoDir := newTestStore(t)
	workDir := filepath.Dir(repoDir)

	stale := filepath.Join(workDir, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	oid, err := store.HashObject([]byte("new content"), objstore.Blob)
	if err != nil {
		t.Fatalf("HashObject failed: %v", err)
	}
	entries := index.Map{"fresh/new.txt": oid}

	if err := CheckoutIndex(store, workDir, entries); err != nil {
		t.Fatalf("CheckoutIndex failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("expected stale.txt to be removed, stat err = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(workDir, "fresh", "new.txt"))
	if err != nil {
		t.Fatalf("reading checked-out file: %v", err)
	}
	if string(data) != "new content" {
		t.Errorf("got %q, want %q", data, "new content")
	}
}

func TestAddFileAndDirectory(t *testing.T) {
	store, repoDir := newTestStore(t)
	workDir := filepath.Dir(repoDir)

	if err := os.MkdirAll(filepath.Join(workDir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "top.txt"), []byte("top"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "sub", "nested.txt"), []byte("nested"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	entries := make(index.Map)
	if err := Add(store, workDir, entries, []string{
		filepath.Join(workDir, "top.txt"),
		filepath.Join(workDir, "sub"),
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, ok := entries["top.txt"]; !ok {
		t.Errorf("expected top.txt staged, got %+v", entries)
	}
	if _, ok := entries["sub/nested.txt"]; !ok {
		t.Errorf("expected sub/nested.txt staged, got %+v", entries)
	}
}
