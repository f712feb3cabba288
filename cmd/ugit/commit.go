package main

import (
	"fmt"
	"os"
)

func runCommit(repo *repoContext, args []string) int {
	var message string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-m", "--message":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "error: -m requires a message")
				return 1
			}
			i++
			message = args[i]
		default:
			fmt.Fprintf(os.Stderr, "error: unknown option: %q\n", args[i])
			return 1
		}
	}
	if message == "" {
		fmt.Fprintln(os.Stderr, "error: commit requires -m <message>")
		return 1
	}

	oid, err := repo.Graph.Commit(repo.RepoDir, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(oid)
	return 0
}
