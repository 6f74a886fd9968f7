package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before a change was reported")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatch_WorktreeAdded(t *testing.T) {
	t.Parallel()

	common := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, common, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// worktrees/ does not exist yet; creating it and an entry must be seen.
	if err := os.MkdirAll(filepath.Join(common, "worktrees", "feature"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitChange(t, ch)

	if err := os.WriteFile(filepath.Join(common, "HEAD"), []byte("ref: refs/heads/other\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChange(t, ch)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := Watch(ctx, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A pending notification is allowed; the close must follow.
			if _, ok := <-ch; ok {
				t.Error("channel still open after cancel")
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	t.Parallel()

	if _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), 0); err == nil {
		t.Error("Watch() on a missing directory succeeded")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	common := "/repo/.git"
	worktrees := filepath.Join(common, "worktrees")
	tests := []struct {
		name string
		want bool
	}{
		{worktrees, true},
		{filepath.Join(worktrees, "x"), true},
		{filepath.Join(worktrees, "x", "HEAD"), true},
		{filepath.Join(common, "HEAD"), true},
		{filepath.Join(common, "index"), false},
		{filepath.Join(common, "objects", "ab"), false},
	}
	for _, tt := range tests {
		if got := relevant(common, worktrees, tt.name); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
