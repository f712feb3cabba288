package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/refs"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runCheckout(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit checkout <commit>")
		return 1
	}
	name := args[0]

	oid, err := repo.Graph.GetOid(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	c, err := repo.Graph.GetCommit(oid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := treeobj.ReadTree(repo.Store, repo.WorkDir, repo.RepoDir, c.Tree, true); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	branchRef := "refs/heads/" + name
	branchValue, err := repo.Refs.GetRef(branchRef, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var head refs.Value
	if !branchValue.IsMissing() {
		head = refs.Value{Symbolic: true, Value: branchRef}
	} else {
		head = refs.Value{Value: oid}
	}
	if err := repo.Refs.UpdateRef("HEAD", head, false); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
