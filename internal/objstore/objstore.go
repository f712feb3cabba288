// Package objstore implements the content-addressed object store: typed byte
// records persisted under a repository's objects directory and retrieved by
// the SHA-1 hash of their serialized form.
package objstore

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // content addressing, not used for security
	"fmt"
	"os"
	"path/filepath"
)

// ObjectType names the three object kinds this store understands.
type ObjectType string

const (
	Blob   ObjectType = "blob"
	Tree   ObjectType = "tree"
	Commit ObjectType = "commit"
)

// Store persists and retrieves objects under <dir>/objects/<oid>.
type Store struct {
	dir string // repository directory, e.g. ".ugit"
}

// New returns a Store rooted at the given repository directory. The
// directory must already contain an "objects" subdirectory (created by
// Init).
func New(repoDir string) *Store {
	return &Store{dir: repoDir}
}

// Init creates the objects directory, preparing a fresh repository to
// accept writes.
func Init(repoDir string) error {
	if err := os.MkdirAll(filepath.Join(repoDir, "objects"), 0o755); err != nil {
		return fmt.Errorf("objstore: init: %w", err)
	}
	return nil
}

func (s *Store) path(oid string) string {
	return filepath.Join(s.dir, "objects", oid)
}

// HashObject forms "<type>\x00<data>", hashes it with SHA-1, writes the
// record to <dir>/objects/<oid> and returns the hex oid. Writes are
// idempotent: hashing the same (type, data) pair twice produces the same
// file with the same bytes, so re-writing is always safe.
func (s *Store) HashObject(data []byte, typ ObjectType) (string, error) {
	record := make([]byte, 0, len(typ)+1+len(data))
	record = append(record, typ...)
	record = append(record, 0)
	record = append(record, data...)

	sum := sha1.Sum(record) //nolint:gosec // content addressing, not used for security
	oid := fmt.Sprintf("%x", sum)

	if err := os.MkdirAll(filepath.Join(s.dir, "objects"), 0o755); err != nil {
		return "", fmt.Errorf("objstore: hash-object: %w", err)
	}
	if err := os.WriteFile(s.path(oid), record, 0o644); err != nil {
		return "", fmt.Errorf("objstore: hash-object: writing %s: %w", oid, err)
	}
	return oid, nil
}

// GetObject reads the object identified by oid and returns its payload.
// When expected is non-empty, the stored type must match it or
// ErrTypeMismatch is returned.
func (s *Store) GetObject(oid string, expected ObjectType) ([]byte, error) {
	record, err := os.ReadFile(s.path(oid)) //nolint:gosec // oid is a content hash, path is repo-relative
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("objstore: get-object %s: %w", oid, ErrNotFound)
		}
		return nil, fmt.Errorf("objstore: get-object %s: %w", oid, err)
	}

	nul := bytes.IndexByte(record, 0)
	if nul == -1 {
		return nil, fmt.Errorf("objstore: get-object %s: malformed object (no type separator)", oid)
	}
	typ := ObjectType(record[:nul])
	payload := record[nul+1:]

	if expected != "" && typ != expected {
		return nil, fmt.Errorf("objstore: get-object %s: expected %s, got %s: %w", oid, expected, typ, ErrTypeMismatch)
	}
	return payload, nil
}

// ObjectExists reports whether an object file for oid is present.
func (s *Store) ObjectExists(oid string) bool {
	_, err := os.Stat(s.path(oid))
	return err == nil
}

// CopyObjectFrom copies the raw object file for oid from another store into
// this one, skipping the copy if the object is already present locally.
// Used by remote sync, which only ever transfers objects the destination
// lacks — object writes are idempotent, so copying an object that is
// already present (with identical bytes) would be harmless but wasteful.
func (s *Store) CopyObjectFrom(src *Store, oid string) error {
	if s.ObjectExists(oid) {
		return nil
	}
	record, err := os.ReadFile(src.path(oid)) //nolint:gosec // oid is a content hash
	if err != nil {
		return fmt.Errorf("objstore: copy %s: reading source: %w", oid, err)
	}
	if err := os.MkdirAll(filepath.Join(s.dir, "objects"), 0o755); err != nil {
		return fmt.Errorf("objstore: copy %s: %w", oid, err)
	}
	if err := os.WriteFile(s.path(oid), record, 0o644); err != nil {
		return fmt.Errorf("objstore: copy %s: writing destination: %w", oid, err)
	}
	return nil
}
