package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/relayvcs/ugit/internal/refs"
)

func runBranch(repo *repoContext, args []string) int {
	switch len(args) {
	case 0:
		return listBranches(repo)
	case 1:
		return createBranch(repo, args[0], "@")
	case 2:
		return createBranch(repo, args[0], args[1])
	default:
		fmt.Fprintln(os.Stderr, "usage: ugit branch [<name> [<start-point>]]")
		return 1
	}
}

func createBranch(repo *repoContext, name, startPoint string) int {
	oid, err := repo.Graph.GetOid(startPoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := repo.Refs.UpdateRef("refs/heads/"+name, refs.Value{Value: oid}, true); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func listBranches(repo *repoContext) int {
	entries, err := repo.Refs.IterRefs("refs/heads/", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	head, err := repo.Refs.GetRef("HEAD", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	for _, e := range entries {
		name := strings.TrimPrefix(e.Name, "refs/heads/")
		marker := "  "
		if head.Symbolic && head.Value == e.Name {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	return 0
}
