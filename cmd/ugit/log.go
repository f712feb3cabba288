package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/relayvcs/ugit/internal/termcolor"
)

func runLog(repo *repoContext, args []string, cw *termcolor.Writer) int {
	maxCount := 0
	start := "@"

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-n" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: invalid -n value: %q\n", args[i])
				return 1
			}
			maxCount = n
		case strings.HasPrefix(args[i], "-n") && len(args[i]) > 2:
			n, err := strconv.Atoi(args[i][2:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: invalid -n value: %q\n", args[i][2:])
				return 1
			}
			maxCount = n
		case strings.HasPrefix(args[i], "-"):
			fmt.Fprintf(os.Stderr, "error: unknown option: %q\n", args[i])
			return 1
		default:
			start = args[i]
		}
	}

	startOid, err := repo.Graph.GetOid(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	oids, err := repo.Graph.IterCommitsAndParents([]string{startOid})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if maxCount > 0 && len(oids) > maxCount {
		oids = oids[:maxCount]
	}

	decorations, err := buildDecorations(repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	for i, oid := range oids {
		c, err := repo.Graph.GetCommit(oid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		decor := ""
		if names, ok := decorations[oid]; ok {
			decor = " " + cw.Yellow("(") + strings.Join(names, ", ") + cw.Yellow(")")
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s %s%s\n", cw.Yellow("commit"), cw.Yellow(oid), decor)
		if len(c.Parents) > 1 {
			fmt.Printf("Merge: %s\n", strings.Join(c.Parents, " "))
		}
		fmt.Println()
		for _, line := range strings.Split(c.Message, "\n") {
			fmt.Printf("    %s\n", line)
		}
		fmt.Println()
	}
	return 0
}

// buildDecorations maps each commit OID to the ref names that point at it
// directly (HEAD, branches, tags), for the "(HEAD -> master, v1)" style
// annotation next to a log entry.
func buildDecorations(repo *repoContext) (map[string][]string, error) {
	decorations := make(map[string][]string)

	head, err := repo.Refs.GetRef("HEAD", true)
	if err != nil {
		return nil, err
	}
	headSymbolic, err := repo.Refs.GetRef("HEAD", false)
	if err != nil {
		return nil, err
	}
	if !head.IsMissing() {
		label := "HEAD"
		if headSymbolic.Symbolic {
			label = "HEAD -> " + strings.TrimPrefix(headSymbolic.Value, "refs/heads/")
		}
		decorations[head.Value] = append(decorations[head.Value], label)
	}

	entries, err := repo.Refs.IterRefs("refs/", true)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name
		switch {
		case strings.HasPrefix(name, "refs/heads/"):
			name = strings.TrimPrefix(name, "refs/heads/")
		case strings.HasPrefix(name, "refs/tags/"):
			name = strings.TrimPrefix(name, "refs/tags/")
		case strings.HasPrefix(name, "refs/remote/"):
			name = "remote/" + strings.TrimPrefix(name, "refs/remote/")
		}
		decorations[e.Value.Value] = append(decorations[e.Value.Value], name)
	}
	return decorations, nil
}
