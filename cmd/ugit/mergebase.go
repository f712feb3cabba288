package main

import (
	"fmt"
	"os"
)

func runMergeBase(repo *repoContext, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ugit merge-base <commit1> <commit2>")
		return 1
	}

	a, err := repo.Graph.GetOid(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	b, err := repo.Graph.GetOid(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	base, err := repo.Graph.GetMergeBase(a, b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if base == "" {
		fmt.Fprintln(os.Stderr, "error: no common ancestor")
		return 1
	}
	fmt.Println(base)
	return 0
}
