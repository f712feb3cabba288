// Command ugit is a minimal distributed version-control engine: a
// content-addressed object store, refs, an index, and the usual
// porcelain (commit, log, diff, checkout, merge, fetch, push) built on
// top of them.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/relayvcs/ugit/internal/cli"
	"github.com/relayvcs/ugit/internal/termcolor"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])

	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	cw := termcolor.NewWriter(os.Stdout, gf.colorMode)

	app := cli.NewApp("ugit", version)
	app.Stderr = os.Stderr

	var repo *repoContext

	app.Register(&cli.Command{
		Name:    "init",
		Summary: "Create an empty repository",
		Usage:   "ugit init",
		Run:     func(args []string) int { return runInit(args) },
	})

	app.Register(&cli.Command{
		Name:      "hash-object",
		Summary:   "Store a file as a blob and print its object id",
		Usage:     "ugit hash-object <file>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runHashObject(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "cat-file",
		Summary:   "Print object content, type, or size",
		Usage:     "ugit cat-file (-t|-s|-p) <object>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCatFile(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "write-tree",
		Summary:   "Write the current index as a tree object",
		Usage:     "ugit write-tree",
		NeedsRepo: true,
		Run:       func(args []string) int { return runWriteTree(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "read-tree",
		Summary:   "Read a tree into the index and working directory",
		Usage:     "ugit read-tree <tree>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runReadTree(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "add",
		Summary:   "Stage files into the index",
		Usage:     "ugit add <file>...",
		NeedsRepo: true,
		Run:       func(args []string) int { return runAdd(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "commit",
		Summary:   "Record staged changes as a commit",
		Usage:     "ugit commit -m <message>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCommit(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "log",
		Summary:   "Show commit log",
		Usage:     "ugit log [<oid>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runLog(repo, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "show",
		Summary:   "Show a commit and its diff against its first parent",
		Usage:     "ugit show [<oid>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runShow(repo, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "diff",
		Summary:   "Show changes between trees or the working directory",
		Usage:     "ugit diff [--cached] [<commit>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runDiff(repo, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "checkout",
		Summary:   "Switch the working directory to another commit or branch",
		Usage:     "ugit checkout <commit>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCheckout(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "tag",
		Summary:   "Create or list tags",
		Usage:     "ugit tag [<name> [<oid>]]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runTag(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "branch",
		Summary:   "Create or list branches",
		Usage:     "ugit branch [<name> [<start-point>]]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runBranch(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "status",
		Summary:   "Show the working tree status",
		Usage:     "ugit status",
		NeedsRepo: true,
		Run:       func(args []string) int { return runStatus(repo, args, cw) },
	})

	app.Register(&cli.Command{
		Name:      "reset",
		Summary:   "Move HEAD to a commit",
		Usage:     "ugit reset <commit>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runReset(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "merge",
		Summary:   "Merge another commit into HEAD",
		Usage:     "ugit merge <commit>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runMerge(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "merge-base",
		Summary:   "Find the common ancestor of two commits",
		Usage:     "ugit merge-base <commit1> <commit2>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runMergeBase(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "fetch",
		Summary:   "Fetch objects and refs from another local repository",
		Usage:     "ugit fetch <path>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runFetch(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "push",
		Summary:   "Push a ref to another local repository",
		Usage:     "ugit push <path> <refname>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runPush(repo, args) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "ugit version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	if len(args) > 0 {
		cmd := app.Lookup(args[0])
		if cmd != nil && cmd.NeedsRepo {
			var err error
			repo, err = loadRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(128)
			}
		}
	}

	os.Exit(app.Run(args, cw))
}

func printVersion() {
	fmt.Printf("ugit %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
