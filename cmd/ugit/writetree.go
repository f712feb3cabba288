package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runWriteTree(repo *repoContext, args []string) int {
	entries, err := index.Read(repo.RepoDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	oid, err := treeobj.WriteTreeFromIndex(repo.Store, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(oid)
	return 0
}
