package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/merge"
)

func runMerge(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit merge <commit>")
		return 1
	}

	oid, err := repo.Graph.GetOid(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fastForward, err := merge.Merge(repo.Graph, repo.Refs, repo.WorkDir, repo.RepoDir, oid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if fastForward {
		fmt.Println("Fast-forward merge, no commit needed")
	} else {
		fmt.Println("Merged. Run 'ugit commit' to record the merge.")
	}
	return 0
}
