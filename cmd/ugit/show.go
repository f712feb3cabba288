package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/relayvcs/ugit/internal/index"
	"github.com/relayvcs/ugit/internal/termcolor"
	"github.com/relayvcs/ugit/internal/treeobj"
)

func runShow(repo *repoContext, args []string, cw *termcolor.Writer) int {
	rev := "@"
	if len(args) > 0 {
		rev = args[0]
	}

	oid, err := repo.Graph.GetOid(rev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	c, err := repo.Graph.GetCommit(oid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("%s %s\n", cw.Yellow("commit"), cw.Yellow(oid))
	fmt.Println()
	for _, line := range strings.Split(c.Message, "\n") {
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()

	toTree, err := treeobj.GetTree(repo.Store, c.Tree, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fromTree := index.Map{}
	if len(c.Parents) > 0 {
		parent, err := repo.Graph.GetCommit(c.Parents[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fromTree, err = treeobj.GetTree(repo.Store, parent.Tree, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	printDiff(repo, fromTree, toTree, cw)
	return 0
}
