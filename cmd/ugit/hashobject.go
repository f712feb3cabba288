package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/objstore"
)

func runHashObject(repo *repoContext, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ugit hash-object <file>")
		return 1
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	oid, err := repo.Store.HashObject(data, objstore.Blob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Println(oid)
	return 0
}
