// Package commitgraph creates commits, parses them, and walks the
// ancestry graph they form: commit/parent traversal, merge-base
// computation, and object reachability for remote sync.
package commitgraph

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
	"github.com/relayvcs/ugit/internal/treeobj"
)

// Commit is the decoded form of a commit object. There is deliberately no
// author, committer, or timestamp field: a commit is wholly determined by
// its tree, parents, and message, so identical histories hash identically no matter
// who built them or when.
type Commit struct {
	Tree    string
	Parents []string
	Message string
}

// Graph bundles the stores a commit-graph operation needs: the object
// store for reading/writing commit and tree objects, and the ref store
// for resolving HEAD, MERGE_HEAD, and named refs.
type Graph struct {
	Store *objstore.Store
	Refs  *refs.Store
}

// New returns a Graph over the given object and ref stores.
func New(store *objstore.Store, refStore *refs.Store) *Graph {
	return &Graph{Store: store, Refs: refStore}
}

// Commit freezes the current index into a tree, builds a commit object
// referencing HEAD (and MERGE_HEAD, if a merge is in progress) as
// parents, and advances HEAD to the new commit.
func (g *Graph) Commit(repoDir, message string) (string, error) {
	var oid string
	err := index.With(repoDir, func(entries index.Map) error {
		tree, err := treeobj.WriteTreeFromIndex(g.Store, entries)
		if err != nil {
			return err
		}

		var parents []string
		head, err := g.Refs.GetRef("HEAD", true)
		if err != nil {
			return err
		}
		if !head.IsMissing() {
			parents = append(parents, head.Value)
		}
		mergeHead, err := g.Refs.GetRef("MERGE_HEAD", true)
		if err != nil {
			return err
		}
		hadMergeHead := !mergeHead.IsMissing()
		if hadMergeHead {
			parents = append(parents, mergeHead.Value)
		}

		var buf bytes.Buffer
		fmt.Fprintf(&buf, "tree %s\n", tree)
		for _, p := range parents {
			fmt.Fprintf(&buf, "parent %s\n", p)
		}
		buf.WriteString("\n")
		buf.WriteString(message)
		buf.WriteString("\n")

		commitOid, err := g.Store.HashObject(buf.Bytes(), objstore.Commit)
		if err != nil {
			return err
		}

		if hadMergeHead {
			if err := g.Refs.DeleteRef("MERGE_HEAD", false); err != nil {
				return err
			}
		}
		if err := g.Refs.UpdateRef("HEAD", refs.Value{Value: commitOid}, true); err != nil {
			return err
		}
		oid = commitOid
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("commitgraph: commit: %w", err)
	}
	return oid, nil
}

// GetCommit parses the commit object identified by oid. Only "tree" and
// "parent" headers are recognized; anything else before the blank line is
// a decode error.
func (g *Graph) GetCommit(oid string) (Commit, error) {
	data, err := g.Store.GetObject(oid, objstore.Commit)
	if err != nil {
		return Commit{}, fmt.Errorf("commitgraph: get-commit %s: %w", oid, err)
	}

	var c Commit
	scanner := bufio.NewScanner(bytes.NewReader(data))
	inMessage := false
	var messageLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if inMessage {
			messageLines = append(messageLines, line)
			continue
		}
		if line == "" {
			inMessage = true
			continue
		}
		switch {
		case strings.HasPrefix(line, "tree "):
			c.Tree = strings.TrimPrefix(line, "tree ")
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, strings.TrimPrefix(line, "parent "))
		default:
			return Commit{}, fmt.Errorf("commitgraph: get-commit %s: unknown header %q", oid, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Commit{}, fmt.Errorf("commitgraph: get-commit %s: %w", oid, err)
	}
	c.Message = strings.Join(messageLines, "\n")
	return c, nil
}

// IterCommitsAndParents visits every OID reachable from seeds at most
// once. For each commit, its first parent is enqueued to the front of the
// work list (depth-first on the mainline) and any remaining parents to
// the back (merge side-branches are visited breadth-first, later). The
// resulting order is "first-parent chain first, then merge parents" —
// not a stable topological sort.
func (g *Graph) IterCommitsAndParents(seeds []string) ([]string, error) {
	visited := make(map[string]bool)
	queue := append([]string(nil), seeds...)
	var order []string

	for len(queue) > 0 {
		oid := queue[0]
		queue = queue[1:]
		if oid == "" || visited[oid] {
			continue
		}
		visited[oid] = true
		order = append(order, oid)

		c, err := g.GetCommit(oid)
		if err != nil {
			return nil, err
		}
		if len(c.Parents) == 0 {
			continue
		}
		// First parent goes to the front, remaining parents to the back.
		rest := append([]string(nil), c.Parents[1:]...)
		queue = append(append([]string{c.Parents[0]}, queue...), rest...)
	}
	return order, nil
}

// GetMergeBase returns a nearest common ancestor of a and b under this
// approximation: collect every ancestor of a into a set, then walk
// ancestors of b in iteration order and return the first one already in
// that set. This is not guaranteed to find the unique lowest common
// ancestor in a history with multiple merge bases — a known, accepted
// limitation of the algorithm.
func (g *Graph) GetMergeBase(a, b string) (string, error) {
	ancestorsOfA, err := g.IterCommitsAndParents([]string{a})
	if err != nil {
		return "", err
	}
	inA := make(map[string]bool, len(ancestorsOfA))
	for _, oid := range ancestorsOfA {
		inA[oid] = true
	}

	ancestorsOfB, err := g.IterCommitsAndParents([]string{b})
	if err != nil {
		return "", err
	}
	for _, oid := range ancestorsOfB {
		if inA[oid] {
			return oid, nil
		}
	}
	return "", nil
}

// IsAncestorOf reports whether maybeAncestor is reachable from commit.
func (g *Graph) IsAncestorOf(commit, maybeAncestor string) (bool, error) {
	ancestors, err := g.IterCommitsAndParents([]string{commit})
	if err != nil {
		return false, err
	}
	for _, oid := range ancestors {
		if oid == maybeAncestor {
			return true, nil
		}
	}
	return false, nil
}

// IterObjectsInCommits yields, without repeats, every commit reachable
// from seeds plus every tree and blob reachable from each such commit's
// root tree.
func (g *Graph) IterObjectsInCommits(seeds []string) ([]string, error) {
	commitOids, err := g.IterCommitsAndParents(seeds)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var objects []string
	for _, oid := range commitOids {
		if !visited[oid] {
			visited[oid] = true
			objects = append(objects, oid)
		}
		c, err := g.GetCommit(oid)
		if err != nil {
			return nil, err
		}
		treeObjs, err := g.iterTreeObjects(c.Tree, visited)
		if err != nil {
			return nil, err
		}
		objects = append(objects, treeObjs...)
	}
	return objects, nil
}

func (g *Graph) iterTreeObjects(oid string, visited map[string]bool) ([]string, error) {
	if oid == "" || visited[oid] {
		return nil, nil
	}
	visited[oid] = true
	objects := []string{oid}

	data, err := g.Store.GetObject(oid, objstore.Tree)
	if err != nil {
		return nil, fmt.Errorf("commitgraph: walking tree %s: %w", oid, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("commitgraph: walking tree %s: malformed entry %q", oid, line)
		}
		typ, childOid := fields[0], fields[1]
		if typ == "tree" {
			sub, err := g.iterTreeObjects(childOid, visited)
			if err != nil {
				return nil, err
			}
			objects = append(objects, sub...)
		} else if !visited[childOid] {
			visited[childOid] = true
			objects = append(objects, childOid)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("commitgraph: walking tree %s: %w", oid, err)
	}
	return objects, nil
}

const oidHexLen = 40

func isHexOid(s string) bool {
	if len(s) != oidHexLen {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// GetOid resolves a name to an OID: "@" substitutes HEAD; then name,
// "refs/"+name, "refs/tags/"+name, and "refs/heads/"+name are tried as
// refs in that order; failing all of those, name is accepted as a
// literal OID iff it is exactly 40 hex digits.
func (g *Graph) GetOid(name string) (string, error) {
	if name == "@" {
		name = "HEAD"
	}

	candidates := []string{name, "refs/" + name, "refs/tags/" + name, "refs/heads/" + name}
	for _, candidate := range candidates {
		v, err := g.Refs.GetRef(candidate, true)
		if err != nil {
			return "", err
		}
		if !v.IsMissing() {
			return v.Value, nil
		}
	}

	if isHexOid(name) {
		return name, nil
	}
	return "", fmt.Errorf("commitgraph: get-oid: %q does not resolve to a ref or a valid oid", name)
}
