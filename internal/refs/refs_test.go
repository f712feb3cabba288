package refs

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".ugit"))
}

func TestUpdateAndGetRefDirect(t *testing.T) {
	s := newTestStore(t)

	oid := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	if err := s.UpdateRef("refs/heads/master", Value{Value: oid}, true); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}

	v, err := s.GetRef("refs/heads/master", true)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if v.Symbolic || v.Value != oid {
		t.Errorf("got %+v, want direct %s", v, oid)
	}
}

func TestSymbolicHEADDerefsToBranch(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpdateRef("HEAD", Value{Symbolic: true, Value: "refs/heads/master"}, false); err != nil {
		t.Fatalf("UpdateRef HEAD failed: %v", err)
	}

	// Before any commit, the branch file does not exist yet: HEAD derefs to
	// a missing value, not an error.
	v, err := s.GetRef("HEAD", true)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if !v.IsMissing() {
		t.Errorf("expected missing value for unborn branch, got %+v", v)
	}

	oid := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	// Updating HEAD with deref=true should advance refs/heads/master, not HEAD itself.
	if err := s.UpdateRef("HEAD", Value{Value: oid}, true); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}

	headRaw, err := s.GetRef("HEAD", false)
	if err != nil {
		t.Fatalf("GetRef(deref=false) failed: %v", err)
	}
	if !headRaw.Symbolic || headRaw.Value != "refs/heads/master" {
		t.Errorf("HEAD should remain symbolic after deref write, got %+v", headRaw)
	}

	branch, err := s.GetRef("refs/heads/master", false)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if branch.Symbolic || branch.Value != oid {
		t.Errorf("refs/heads/master: got %+v, want direct %s", branch, oid)
	}
}

func TestUpdateRefDerefFalseRewritesHEAD(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateRef("HEAD", Value{Symbolic: true, Value: "refs/heads/master"}, false); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}

	oid := "cccccccccccccccccccccccccccccccccccccccc"
	// checkout-style detached write: deref=false rewrites HEAD itself.
	if err := s.UpdateRef("HEAD", Value{Value: oid}, false); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}

	v, err := s.GetRef("HEAD", false)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if v.Symbolic || v.Value != oid {
		t.Errorf("HEAD should be direct after deref=false write, got %+v", v)
	}
}

func TestGetRefMissingIsNotError(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetRef("refs/heads/nope", true)
	if err != nil {
		t.Fatalf("GetRef on missing ref should not error, got %v", err)
	}
	if !v.IsMissing() {
		t.Errorf("expected missing value, got %+v", v)
	}
}

func TestDeleteRef(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateRef("refs/tags/v1", Value{Value: "dddddddddddddddddddddddddddddddddddddddd"}, true); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}
	if err := s.DeleteRef("refs/tags/v1", true); err != nil {
		t.Fatalf("DeleteRef failed: %v", err)
	}
	v, err := s.GetRef("refs/tags/v1", true)
	if err != nil {
		t.Fatalf("GetRef failed: %v", err)
	}
	if !v.IsMissing() {
		t.Errorf("expected missing value after delete, got %+v", v)
	}
}

func TestIterRefs(t *testing.T) {
	s := newTestStore(t)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	must(s.UpdateRef("HEAD", Value{Symbolic: true, Value: "refs/heads/master"}, false))
	must(s.UpdateRef("refs/heads/master", Value{Value: "1111111111111111111111111111111111111111"}, true))
	must(s.UpdateRef("refs/heads/topic", Value{Value: "2222222222222222222222222222222222222222"}, true))
	must(s.UpdateRef("refs/tags/v1", Value{Value: "3333333333333333333333333333333333333333"}, true))

	entries, err := s.IterRefs("refs/heads/", true)
	if err != nil {
		t.Fatalf("IterRefs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "refs/heads/master" || entries[1].Name != "refs/heads/topic" {
		t.Errorf("unexpected names: %+v", entries)
	}
}

func TestIterRefsEmptyPrefixIncludesHEAD(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateRef("HEAD", Value{Value: "4444444444444444444444444444444444444444"}, false); err != nil {
		t.Fatalf("UpdateRef failed: %v", err)
	}
	entries, err := s.IterRefs("", true)
	if err != nil {
		t.Fatalf("IterRefs failed: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name == "HEAD" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected HEAD in entries, got %+v", entries)
	}
}
