package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/remote"
)

func runFetch(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit fetch <path>")
		return 1
	}

	local := remote.Repo{Store: repo.Store, Refs: repo.Refs, Graph: repo.Graph}
	if err := remote.Fetch(local, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
