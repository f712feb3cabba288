package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runAdd(repo *repoContext, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ugit add <file>...")
		return 1
	}

	err := index.With(repo.RepoDir, func(entries index.Map) error {
		return treeobj.Add(repo.Store, repo.WorkDir, entries, args)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
