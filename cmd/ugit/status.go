package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/termcolor"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runStatus(repo *repoContext, args []string, cw *termcolor.Writer) int {
	head, err := repo.Refs.GetRef("HEAD", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if head.Symbolic {
		fmt.Printf("On branch %s\n", strings.TrimPrefix(head.Value, "refs/heads/"))
	} else {
		headOid, err := repo.Refs.GetRef("HEAD", true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("HEAD detached at %s\n", headOid.Value)
	}

	mergeHead, err := repo.Refs.GetRef("MERGE_HEAD", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if !mergeHead.IsMissing() {
		fmt.Printf("Merging with %s\n", mergeHead.Value)
	}

	headOid, err := repo.Refs.GetRef("HEAD", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	var headTree index.Map
	if headOid.IsMissing() {
		headTree = index.Map{}
	} else {
		c, err := repo.Graph.GetCommit(headOid.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		headTree, err = treeobj.GetTree(repo.Store, c.Tree, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	staged, err := index.Read(repo.RepoDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	working, err := treeobj.GetWorkingTree(repo.Store, repo.WorkDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println(cw.Bold("Changes to be committed:"))
	printStatusDelta(cw, headTree, staged, cw.Green)

	fmt.Println()
	fmt.Println(cw.Bold("Changes not staged for commit:"))
	printStatusDelta(cw, staged, working, cw.Red)

	fmt.Println()
	fmt.Printf("%s files tracked in the working directory\n", humanize.Comma(int64(len(staged))))

	return 0
}

// printStatusDelta prints one status line per path whose OID differs
// between from and to, classified as new/modified/deleted.
func printStatusDelta(cw *termcolor.Writer, from, to index.Map, color func(string) string) {
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

	for _, p := range sorted {
		oldOid, hadOld := from[p]
		newOid, hasNew := to[p]
		switch {
		case hadOld && !hasNew:
			fmt.Printf("  %s\n", color("deleted:    "+p))
		case !hadOld && hasNew:
			fmt.Printf("  %s\n", color("new file:   "+p))
		case hadOld && hasNew && oldOid != newOid:
			fmt.Printf("  %s\n", color("modified:   "+p))
		}
	}
}
