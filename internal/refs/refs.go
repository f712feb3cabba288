// Package refs implements the ref store: named, optionally symbolic pointers
// into the object graph, stored as small text files under the repository
// directory.
package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxSymbolicDepth bounds the deref walk so a pathological ref cycle cannot
// hang the process. Real chains are one or two hops deep.
const maxSymbolicDepth = 32

// Value is a tagged ref value: either symbolic (points at another ref name)
// or direct (an OID), or entirely missing.
type Value struct {
	Symbolic bool
	Value    string // ref name when Symbolic, else an OID; empty when missing
}

// IsMissing reports whether the ref resolves to nothing at all — the state
// of, e.g., refs/heads/master right after init, before the first commit.
func (v Value) IsMissing() bool {
	return !v.Symbolic && v.Value == ""
}

// Store reads and writes ref files under a repository directory.
type Store struct {
	dir string
}

// New returns a Store rooted at the given repository directory.
func New(repoDir string) *Store {
	return &Store{dir: repoDir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// UpdateRef writes value to name. When deref is true and name resolves
// through a chain of symbolic refs, the write lands on the terminal ref
// name instead of name itself — so updating a symbolic HEAD advances the
// branch it points to, not HEAD.
func (s *Store) UpdateRef(name string, value Value, deref bool) error {
	if deref {
		name = s.derefRefName(name)
	}
	if !value.Symbolic && value.Value == "" {
		return fmt.Errorf("refs: update-ref %s: refusing to write empty direct value", name)
	}

	var content string
	if value.Symbolic {
		content = "ref: " + value.Value
	} else {
		content = value.Value
	}

	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("refs: update-ref %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("refs: update-ref %s: %w", name, err)
	}
	return nil
}

// GetRef reads name. When deref is true, symbolic chains are followed until
// a non-symbolic (or missing) value is reached and that terminal value is
// returned. A ref that does not exist anywhere along the chain yields a
// non-symbolic Value with an empty Value field (IsMissing() == true) rather
// than an error — this is the normal state of a branch with no commits yet.
func (s *Store) GetRef(name string, deref bool) (Value, error) {
	if deref {
		return s.getRefDeref(name, 0)
	}
	return s.readRefFile(name)
}

func (s *Store) getRefDeref(name string, depth int) (Value, error) {
	if depth > maxSymbolicDepth {
		return Value{}, fmt.Errorf("refs: get-ref %s: symbolic ref chain too deep", name)
	}
	v, err := s.readRefFile(name)
	if err != nil {
		return Value{}, err
	}
	if !v.Symbolic {
		return v, nil
	}
	return s.getRefDeref(v.Value, depth+1)
}

// derefRefName walks symbolic chains starting at name and returns the name
// of the terminal ref (the deepest non-symbolic or missing ref reached),
// without reading its value.
func (s *Store) derefRefName(name string) string {
	depth := 0
	for depth < maxSymbolicDepth {
		v, err := s.readRefFile(name)
		if err != nil || !v.Symbolic {
			return name
		}
		name = v.Value
		depth++
	}
	return name
}

func (s *Store) readRefFile(name string) (Value, error) {
	data, err := os.ReadFile(s.path(name)) //nolint:gosec // name is a repo-relative ref path
	if err != nil {
		if os.IsNotExist(err) {
			return Value{Symbolic: false, Value: ""}, nil
		}
		return Value{}, fmt.Errorf("refs: get-ref %s: %w", name, err)
	}

	line := strings.TrimSpace(string(data))
	if rest, ok := strings.CutPrefix(line, "ref:"); ok {
		return Value{Symbolic: true, Value: strings.TrimSpace(rest)}, nil
	}
	return Value{Symbolic: false, Value: line}, nil
}

// DeleteRef removes the ref file for name, resolving through symbolic
// chains first when deref is true (the same terminal-name resolution
// UpdateRef uses).
func (s *Store) DeleteRef(name string, deref bool) error {
	if deref {
		name = s.derefRefName(name)
	}
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("refs: delete-ref %s: %w", name, err)
	}
	return nil
}

// RefEntry is a single (name, value) pair yielded by IterRefs.
type RefEntry struct {
	Name  string
	Value Value
}

// IterRefs returns every ref under HEAD, MERGE_HEAD, and refs/ whose name
// has the given prefix, with missing-valued entries suppressed. Results are
// sorted by name for deterministic output.
func (s *Store) IterRefs(prefix string, deref bool) ([]RefEntry, error) {
	candidates := []string{"HEAD", "MERGE_HEAD"}

	refsDir := filepath.Join(s.dir, "refs")
	err := filepath.Walk(refsDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		candidates = append(candidates, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("refs: iter-refs: %w", err)
	}

	var entries []RefEntry
	for _, name := range candidates {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v, err := s.GetRef(name, deref)
		if err != nil {
			return nil, err
		}
		if v.IsMissing() {
			continue
		}
		entries = append(entries, RefEntry{Name: name, Value: v})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
