package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metastacks/wtm/internal/cmd"
)

func TestFindRoot(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	sub := filepath.Join(repo, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(sub)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != repo {
		t.Errorf("FindRoot() = %q, want %q", got, repo)
	}
}

func TestFindRoot_LinkedWorktree(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	wtPath := filepath.Join(filepath.Dir(repo), "linked")
	if err := runGit(context.Background(), repo, "worktree", "add", "-b", "feature", wtPath); err != nil {
		t.Fatalf("worktree add: %v", err)
	}

	got, err := FindRoot(wtPath)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	if got != wtPath {
		t.Errorf("FindRoot() = %q, want %q", got, wtPath)
	}
}

func TestFindRoot_NotRepository(t *testing.T) {
	t.Parallel()

	_, err := FindRoot(resolveTempDir(t))
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("FindRoot() error = %v, want ErrNotRepository", err)
	}
}

func TestCommonDir(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	wtPath := filepath.Join(filepath.Dir(repo), "linked")
	ctx := context.Background()
	if err := runGit(ctx, repo, "worktree", "add", "-b", "feature", wtPath); err != nil {
		t.Fatalf("worktree add: %v", err)
	}

	for _, dir := range []string{repo, wtPath} {
		got, err := CommonDir(ctx, cmd.NewExec("git", 0), dir)
		if err != nil {
			t.Fatalf("CommonDir(%s) error = %v", dir, err)
		}
		if want := filepath.Join(repo, ".git"); got != want {
			t.Errorf("CommonDir(%s) = %q, want %q", dir, got, want)
		}
	}
}

func TestCommonDir_UsesConfiguredExecutable(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	_, err := CommonDir(context.Background(), cmd.NewExec("wtm-missing-git", 0), repo)
	if err == nil || !strings.Contains(err.Error(), "wtm-missing-git") {
		t.Errorf("CommonDir() with missing executable error = %v, want it to name the executable", err)
	}
}

func TestParseWorktreeList_RealGit(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	ctx := context.Background()
	wtPath := filepath.Join(filepath.Dir(repo), "wt-feature")
	if err := runGit(ctx, repo, "worktree", "add", "-b", "feature/x", wtPath); err != nil {
		t.Fatalf("worktree add: %v", err)
	}

	out, err := outputGit(ctx, repo, ListArgs()...)
	if err != nil {
		t.Fatalf("worktree list: %v", err)
	}
	got := ParseWorktreeList(strings.Split(string(out), "\n"))
	if len(got) != 2 {
		t.Fatalf("got %d worktrees, want 2: %+v", len(got), got)
	}
	if !got[0].IsMain || got[0].Path != repo || got[0].Branch != "main" {
		t.Errorf("main record = %+v", got[0])
	}
	if got[1].IsMain || got[1].Path != wtPath || got[1].Branch != "feature/x" {
		t.Errorf("linked record = %+v", got[1])
	}
	if got[0].CommitHash != got[1].CommitHash || len(got[0].CommitHash) < 40 {
		t.Errorf("hashes = %q, %q", got[0].CommitHash, got[1].CommitHash)
	}
}

func TestNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:metastacks/wtm.git", "wtm"},
		{"https://github.com/metastacks/wtm.git", "wtm"},
		{"https://github.com/metastacks/wtm/", "wtm"},
		{"ssh://git@host:22/group/sub/project.git", "project"},
		{"/srv/git/local", "local"},
	}
	for _, tt := range tests {
		if got := nameFromURL(tt.url); got != tt.want {
			t.Errorf("nameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRepoName(t *testing.T) {
	t.Parallel()

	repo := setupTestRepo(t)
	if got := RepoName(repo); got != "test-repo" {
		t.Errorf("RepoName() without origin = %q, want %q", got, "test-repo")
	}

	if err := runGit(context.Background(), repo, "remote", "add", "origin", "git@github.com:acme/widgets.git"); err != nil {
		t.Fatal(err)
	}
	if got := RepoName(repo); got != "widgets" {
		t.Errorf("RepoName() = %q, want %q", got, "widgets")
	}
}
