package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/remote"
)

func runPush(repo *repoContext, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ugit push <path> <refname>")
		return 1
	}

	local := remote.Repo{Store: repo.Store, Refs: repo.Refs, Graph: repo.Graph}
	if err := remote.Push(local, args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
