package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/treeobj"
)

func runReadTree(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit read-tree <tree>")
		return 1
	}

	oid, err := repo.Graph.GetOid(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := treeobj.ReadTree(repo.Store, repo.WorkDir, repo.RepoDir, oid, true); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
