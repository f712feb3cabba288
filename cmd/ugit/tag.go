package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/relayvcs/ugit/internal/refs"
)

func runTag(repo *repoContext, args []string) int {
	switch len(args) {
	case 0:
		return listTags(repo)
	case 1:
		return createTag(repo, args[0], "@")
	case 2:
		return createTag(repo, args[0], args[1])
	default:
		fmt.Fprintln(os.Stderr, "usage: ugit tag [<name> [<oid>]]")
		return 1
	}
}

func createTag(repo *repoContext, name, ref string) int {
	oid, err := repo.Graph.GetOid(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := repo.Refs.UpdateRef("refs/tags/"+name, refs.Value{Value: oid}, true); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func listTags(repo *repoContext) int {
	entries, err := repo.Refs.IterRefs("refs/tags/", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Println(strings.TrimPrefix(e.Name, "refs/tags/"))
	}
	return 0
}
