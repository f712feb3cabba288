package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relayvcs/ugit/internal/commitgraph"
	"github.com/relayvcs/ugit/internal/objstore"
	"github.com/relayvcs/ugit/internal/refs"
	"github.com/relayvcs/ugit/internal/repocontext"
)

// repoContext bundles the stores every command needs: the working
// directory, the repository directory, and the three layers built on top
// of them.
type repoContext struct {
	WorkDir string
	RepoDir string
	Store   *objstore.Store
	Refs    *refs.Store
	Graph   *commitgraph.Graph
}

func init() {
	if v := os.Getenv("UGIT_DIR"); v != "" {
		repocontext.SetDefault(v)
	}
}

func repoDirName() string {
	return repocontext.Dir()
}

// loadRepo opens the repository rooted at the current working directory.
// It does not walk up the directory tree looking for .ugit — a command
// must be run from the repository's working directory, mirroring the
// tutorial this tool is built from rather than git's upward search.
func loadRepo() (*repoContext, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("ugit: %w", err)
	}
	repoDir := filepath.Join(workDir, repoDirName())
	if _, err := os.Stat(repoDir); err != nil {
		return nil, fmt.Errorf("ugit: not a ugit repository: %s", repoDir)
	}

	store := objstore.New(repoDir)
	refStore := refs.New(repoDir)
	return &repoContext{
		WorkDir: workDir,
		RepoDir: repoDir,
		Store:   store,
		Refs:    refStore,
		Graph:   commitgraph.New(store, refStore),
	}, nil
}
