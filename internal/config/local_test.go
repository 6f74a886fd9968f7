package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocal_Missing(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if local != nil {
		t.Errorf("LoadLocal() = %+v, want nil", local)
	}
}

func TestLoadLocal_Values(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, LocalConfigFileName), `
worktree_dir = "../wt"
enrich = false

[hooks.setup]
command = "make deps"
on = ["add"]

[hooks.editor]
enabled = false
`)

	local, err := LoadLocal(repo)
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if local.WorktreeDir != "../wt" {
		t.Errorf("WorktreeDir = %q", local.WorktreeDir)
	}
	if local.Enrich == nil || *local.Enrich {
		t.Errorf("Enrich = %v, want false", local.Enrich)
	}
	if _, ok := local.Hooks.Hooks["setup"]; !ok {
		t.Error("setup hook missing")
	}
	if local.Hooks.Hooks["editor"].IsEnabled() {
		t.Error("editor hook should be disabled")
	}
}

func TestLoadLocal_Invalid(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, LocalConfigFileName), "[hooks.x]\ncommand = \"true\"\non = [\"never\"]\n")
	if _, err := LoadLocal(repo); err == nil {
		t.Error("LoadLocal() with bad trigger = nil, want error")
	}

	writeFile(t, filepath.Join(repo, LocalConfigFileName), "worktree_dir = [")
	if _, err := LoadLocal(repo); err == nil {
		t.Error("LoadLocal() with bad toml = nil, want error")
	}
}

func TestInitLocal(t *testing.T) {
	t.Parallel()

	repo := t.TempDir()
	path, err := InitLocal(repo, false)
	if err != nil {
		t.Fatalf("InitLocal() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("local config not written: %v", err)
	}
	local, err := LoadLocal(repo)
	if err != nil {
		t.Fatalf("LoadLocal(template) error = %v", err)
	}
	if local.WorktreeDir != "" || local.Enrich != nil {
		t.Errorf("template should set nothing, got %+v", local)
	}
	if _, err := InitLocal(repo, false); err == nil {
		t.Error("second InitLocal() without force = nil, want error")
	}
}
