package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Core.DefaultBranch != "master" {
		t.Errorf("expected default branch master, got %q", cfg.Core.DefaultBranch)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		User: User{Name: "Ada Lovelace", Email: "ada@example.com"},
		Core: Core{Bare: false, DefaultBranch: "trunk"},
	}
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.User.Name != cfg.User.Name || got.User.Email != cfg.User.Email {
		t.Errorf("user: got %+v, want %+v", got.User, cfg.User)
	}
	if got.Core.DefaultBranch != cfg.Core.DefaultBranch {
		t.Errorf("core.default_branch: got %q, want %q", got.Core.DefaultBranch, cfg.Core.DefaultBranch)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("this is not valid toml [[["), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Errorf("expected error loading malformed config")
	}
}
