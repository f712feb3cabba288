package main

import (
	"fmt"
	"os"

	"github.com/relayvcs/ugit/internal/objstore"
)

func runCatFile(repo *repoContext, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ugit cat-file (-t|-s|-p) <object>")
		return 1
	}
	mode, name := args[0], args[1]

	oid, err := repo.Graph.GetOid(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	data, err := repo.Store.GetObject(oid, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	switch mode {
	case "-p":
		os.Stdout.Write(data) //nolint:errcheck // best-effort write to stdout
		if len(data) == 0 || data[len(data)-1] != '\n' {
			fmt.Println()
		}
	case "-s":
		fmt.Println(len(data))
	case "-t":
		typ, err := objectType(repo, oid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Println(typ)
	default:
		fmt.Fprintln(os.Stderr, "usage: ugit cat-file (-t|-s|-p) <object>")
		return 1
	}
	return 0
}

// objectType retries GetObject with each known type until one matches,
// since the store's on-disk format records the type in the object header
// but GetObject only exposes it via the type-mismatch check.
func objectType(repo *repoContext, oid string) (string, error) {
	for _, typ := range []objstore.ObjectType{objstore.Blob, objstore.Tree, objstore.Commit} {
		if _, err := repo.Store.GetObject(oid, typ); err == nil {
			return string(typ), nil
		}
	}
	return "", fmt.Errorf("cat-file: could not determine type of %s", oid)
}
