// Package index implements the staging area: a flat path-to-blob-OID
// mapping, persisted as one file and accessed through a scoped transaction.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const indexFileName = "index"

// Map is the in-memory staging area, path -> blob OID.
type Map map[string]string

// Transaction is a scoped acquisition of the index file: Begin loads the
// current contents (or starts empty if the file doesn't exist yet), the
// caller mutates Entries freely, and Commit persists the result atomically
// via write-then-rename. The caller must not retain Entries after Commit.
type Transaction struct {
	dir     string
	Entries Map
}

// Begin loads the index file under repoDir, or starts an empty map when it
// does not exist yet (a freshly initialized repository with nothing
// staged).
func Begin(repoDir string) (*Transaction, error) {
	entries, err := load(repoDir)
	if err != nil {
		return nil, fmt.Errorf("index: begin: %w", err)
	}
	return &Transaction{dir: repoDir, Entries: entries}, nil
}

// Commit persists Entries back to the index file atomically. After Commit,
// the Transaction must not be used again.
func (t *Transaction) Commit() error {
	if err := save(t.dir, t.Entries); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}

// With runs fn against the current index contents and commits the result
// when fn returns nil. If fn returns an error, the index file is left
// untouched and the error is returned unchanged, mirroring the "mutations
// accumulate in memory and are flushed on scope exit" contract without
// persisting a half-finished mutation on failure.
func With(repoDir string, fn func(entries Map) error) error {
	tx, err := Begin(repoDir)
	if err != nil {
		return err
	}
	if err := fn(tx.Entries); err != nil {
		return err
	}
	return tx.Commit()
}

// Read loads the index file read-only, without any obligation to commit.
// Used by callers (status, diff --cached, write-tree) that only need a
// snapshot.
func Read(repoDir string) (Map, error) {
	return load(repoDir)
}

func indexPath(repoDir string) string {
	return filepath.Join(repoDir, indexFileName)
}

// load parses the index file. The on-disk format is one line per entry,
// "<oid> <path>\n", sorted by path — a plain text file, not git's packed
// binary index, since the spec only asks for a path->oid map.
func load(repoDir string) (Map, error) {
	entries := make(Map)

	f, err := os.Open(indexPath(repoDir)) //nolint:gosec // path is repo-relative
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("reading index file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		oid, path, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed index line %q", line)
		}
		entries[path] = oid
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}
	return entries, nil
}

// save writes entries to the index file via a temp file + rename so a
// crash mid-write never leaves a partially-written index behind.
func save(repoDir string, entries Map) error {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%s %s\n", entries[p], p)
	}

	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		return fmt.Errorf("creating repository directory: %w", err)
	}

	tmp, err := os.CreateTemp(repoDir, indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close() //nolint:errcheck,gosec // best-effort cleanup before returning the real error
		os.Remove(tmpPath) //nolint:errcheck,gosec
		return fmt.Errorf("writing temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck,gosec
		return fmt.Errorf("closing temp index file: %w", err)
	}
	if err := os.Rename(tmpPath, indexPath(repoDir)); err != nil {
		os.Remove(tmpPath) //nolint:errcheck,gosec
		return fmt.Errorf("renaming temp index file into place: %w", err)
	}
	return nil
}
