package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/relayvcs/ugit/internal/difftext"
	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/termcolor"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runDiff(repo *repoContext, args []string, cw *termcolor.Writer) int {
	cached := false
	var rev string
	for _, a := range args {
		switch {
		case a == "--cached":
			cached = true
		case strings.HasPrefix(a, "-"):
			fmt.Fprintf(os.Stderr, "error: unknown option: %q\n", a)
			return 1
		default:
			rev = a
		}
	}

	var fromTree index.Map
	if rev != "" {
		oid, err := repo.Graph.GetOid(rev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		c, err := repo.Graph.GetCommit(oid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fromTree, err = treeobj.GetTree(repo.Store, c.Tree, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	} else {
		head, err := repo.Refs.GetRef("HEAD", true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if head.IsMissing() {
			fromTree = index.Map{}
		} else {
			c, err := repo.Graph.GetCommit(head.Value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
			fromTree, err = treeobj.GetTree(repo.Store, c.Tree, "")
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		}
	}

	var toTree index.Map
	var err error
	if cached {
		toTree, err = index.Read(repo.RepoDir)
	} else {
		toTree, err = treeobj.GetWorkingTree(repo.Store, repo.WorkDir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	printDiff(repo, fromTree, toTree, cw)
	return 0
}

// printDiff renders a unified diff between two flat path->blobOID
// snapshots, path by path in sorted order.
func printDiff(repo *repoContext, from, to index.Map, cw *termcolor.Writer) {
	paths := make(map[string]struct{}, len(from)+len(to))
	for p := range from {
		paths[p] = struct{}{}
	}
	for p := range to {
		paths[p] = struct{}{}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	for _, path := range sorted {
		oldOid, hadOld := from[path]
		newOid, hasNew := to[path]
		if hadOld && hasNew && oldOid == newOid {
			continue
		}

		var oldContent, newContent []byte
		var err error
		if hadOld {
			oldContent, err = repo.Store.GetObject(oldOid, objstore.Blob)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
		}
		if hasNew {
			newContent, err = repo.Store.GetObject(newOid, objstore.Blob)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
		}

		if difftext.IsBinary(oldContent) || difftext.IsBinary(newContent) {
			fmt.Printf("Binary files a/%s and b/%s differ\n", path, path)
			continue
		}

		hunks := difftext.DiffBlobs(oldContent, newContent, 3)
		unified := difftext.FormatUnified(path, hunks)
		for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Println(cw.Green(line))
			case strings.HasPrefix(line, "-"):
				fmt.Println(cw.Red(line))
			case strings.HasPrefix(line, "@@"):
				fmt.Println(cw.Cyan(line))
			default:
				fmt.Println(line)
			}
		}
	}
}
