// Package treeobj implements the tree codec and the bridge between the
// index, tree objects, and the working directory.
package treeobj

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
)

// IgnoredDirName is the one path segment that get_working_tree and
// checkout treat as off-limits: the repository's own metadata directory.
const IgnoredDirName = ".ugit"

// IsIgnored reports whether path has a segment equal to IgnoredDirName.
func IsIgnored(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == IgnoredDirName {
			return true
		}
	}
	return false
}

// node is one level of the nested directory dictionary built from the
// flat index while writing a tree: either a blob OID (leaf) or a further
// nesting of children (directory).
type node struct {
	oid      string // set when this node is a file (leaf)
	isFile   bool
	children map[string]*node
}

func newDirNode() *node {
	return &node{children: make(map[string]*node)}
}

// WriteTreeFromIndex builds a nested tree from the flat index map and
// writes tree objects bottom-up, returning the root tree OID. An empty
// index still produces a (empty) root tree.
func WriteTreeFromIndex(store *objstore.Store, entries index.Map) (string, error) {
	root := newDirNode()
	for path, oid := range entries {
		parts := strings.Split(filepath.ToSlash(path), "/")
		cur := root
		for i, part := range parts {
			last := i == len(parts)-1
			if last {
				cur.children[part] = &node{oid: oid, isFile: true}
				continue
			}
			child, ok := cur.children[part]
			if !ok {
				child = newDirNode()
				cur.children[part] = child
			}
			cur = child
		}
	}
	return writeTreeNode(store, root)
}

func writeTreeNode(store *objstore.Store, n *node) (string, error) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		child := n.children[name]
		if child.isFile {
			fmt.Fprintf(&buf, "blob %s %s\n", child.oid, name)
			continue
		}
		childOid, err := writeTreeNode(store, child)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "tree %s %s\n", childOid, name)
	}

	oid, err := store.HashObject(buf.Bytes(), objstore.Tree)
	if err != nil {
		return "", fmt.Errorf("treeobj: write-tree: %w", err)
	}
	return oid, nil
}

// GetTree recursively expands the tree object at oid into a flat
// path->blobOID mapping. base is prepended to every key and must already
// end in "/" (or be empty for the root call).
func GetTree(store *objstore.Store, oid string, base string) (index.Map, error) {
	result := make(index.Map)
	if oid == "" {
		return result, nil
	}

	data, err := store.GetObject(oid, objstore.Tree)
	if err != nil {
		return nil, fmt.Errorf("treeobj: get-tree %s: %w", oid, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("treeobj: get-tree %s: malformed entry %q", oid, line)
		}
		typ, childOid, name := fields[0], fields[1], fields[2]
		if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
			return nil, fmt.Errorf("treeobj: get-tree %s: illegal entry name %q", oid, name)
		}

		switch typ {
		case "blob":
			result[base+name] = childOid
		case "tree":
			sub, err := GetTree(store, childOid, base+name+"/")
			if err != nil {
				return nil, err
			}
			for p, o := range sub {
				result[p] = o
			}
		default:
			return nil, fmt.Errorf("treeobj: get-tree %s: unknown entry type %q", oid, typ)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("treeobj: get-tree %s: %w", oid, err)
	}
	return result, nil
}

// GetWorkingTree walks the working directory rooted at workDir, hashing
// every non-ignored regular file as a blob and returning a flat
// path->oid mapping keyed by slash-separated paths relative to workDir.
func GetWorkingTree(store *objstore.Store, workDir string) (index.Map, error) {
	result := make(index.Map)
	err := filepath.Walk(workDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if IsIgnored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path) //nolint:gosec // path comes from walking workDir itself
		if err != nil {
			return err
		}
		oid, err := store.HashObject(data, objstore.Blob)
		if err != nil {
			return err
		}
		result[rel] = oid
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("treeobj: get-working-tree: %w", err)
	}
	return result, nil
}

// ReadTree repopulates the index from the tree at treeOID, optionally
// checking the result out onto the filesystem.
func ReadTree(store *objstore.Store, workDir, repoDir, treeOID string, updateWorking bool) error {
	entries, err := GetTree(store, treeOID, "")
	if err != nil {
		return err
	}
	if err := index.With(repoDir, func(idx index.Map) error {
		for k := range idx {
			delete(idx, k)
		}
		for k, v := range entries {
			idx[k] = v
		}
		return nil
	}); err != nil {
		return err
	}
	if updateWorking {
		return CheckoutIndex(store, workDir, entries)
	}
	return nil
}

// CheckoutIndex deletes every non-ignored file under workDir, then
// materializes entries onto the filesystem, creating parent
// directories as needed. Files present in the working tree but absent
// from entries — tracked or not — are removed; this implementation does
// not attempt to preserve untracked files during checkout.
func CheckoutIndex(store *objstore.Store, workDir string, entries index.Map) error {
	if err := clearWorkingFiles(workDir); err != nil {
		return err
	}
	for path, oid := range entries {
		data, err := store.GetObject(oid, objstore.Blob)
		if err != nil {
			return fmt.Errorf("treeobj: checkout %s: %w", path, err)
		}
		full := filepath.Join(workDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("treeobj: checkout %s: %w", path, err)
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return fmt.Errorf("treeobj: checkout %s: %w", path, err)
		}
	}
	return nil
}

func clearWorkingFiles(workDir string) error {
	var toRemove []string
	err := filepath.Walk(workDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if IsIgnored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			toRemove = append(toRemove, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("treeobj: clearing working files: %w", err)
	}
	for _, p := range toRemove {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("treeobj: removing %s: %w", p, err)
		}
	}
	return nil
}

// Add stages paths into entries: a regular file is hashed directly; a
// directory is walked and every non-ignored regular file beneath it is
// added, keyed by its path relative to workDir.
func Add(store *objstore.Store, workDir string, entries index.Map, paths []string) error {
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("treeobj: add %s: %w", p, err)
		}
		if info.IsDir() {
			if err := addDir(store, workDir, entries, abs); err != nil {
				return err
			}
			continue
		}
		if err := addFile(store, workDir, entries, abs); err != nil {
			return err
		}
	}
	return nil
}

func addFile(store *objstore.Store, workDir string, entries index.Map, abs string) error {
	rel, err := filepath.Rel(workDir, abs)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if IsIgnored(rel) {
		return nil
	}
	data, err := os.ReadFile(abs) //nolint:gosec // abs is derived from a user-supplied path under workDir
	if err != nil {
		return fmt.Errorf("treeobj: add %s: %w", rel, err)
	}
	oid, err := store.HashObject(data, objstore.Blob)
	if err != nil {
		return fmt.Errorf("treeobj: add %s: %w", rel, err)
	}
	entries[rel] = oid
	return nil
}

func addDir(store *objstore.Store, workDir string, entries index.Map, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		if IsIgnored(filepath.ToSlash(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		return addFile(store, workDir, entries, path)
	})
}
