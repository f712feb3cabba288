package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/refs"
)

func runReset(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit reset <commit>")
		return 1
	}

	oid, err := repo.Graph.GetOid(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := repo.Refs.UpdateRef("HEAD", refs.Value{Value: oid}, true); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
