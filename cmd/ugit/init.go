package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relayvcs/ugit/internal/config"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
)

// runInit creates an empty repository in the current directory. Unlike
// loadRepo, it intentionally runs before any repository context exists.
func runInit(args []string) int {
	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	repoDir := filepath.Join(workDir, repoDirName())
	if err := objstore.Init(repoDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	refStore := refs.New(repoDir)
	cfg := config.Default()
	head := refs.Value{Symbolic: true, Value: "refs/heads/" + cfg.Core.DefaultBranch}
	if err := refStore.UpdateRef("HEAD", head, false); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := config.Save(repoDir, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("Initialized empty ugit repository in %s\n", repoDir)
	return 0
}
