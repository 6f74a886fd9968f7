package git

import (
	"reflect"
	"testing"
)

func TestWorktree_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		wt   Worktree
		want string
	}{
		{"branch wins", Worktree{Path: "/src/app/.worktrees/x", Branch: "feature/x"}, "feature/x"},
		{"detached uses last segment", Worktree{Path: "/src/app/.worktrees/hotfix"}, "hotfix"},
		{"trailing separator", Worktree{Path: "/src/app/"}, "app"},
		{"windows separator", Worktree{Path: `C:\work\app-wt`}, "app-wt"},
		{"bare name", Worktree{Path: "app"}, "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.wt.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorktree_ShortHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hash string
		want string
	}{
		{"abc1234def567", "abc1234"},
		{"abc1234", "abc1234"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := (Worktree{CommitHash: tt.hash}).ShortHash(); got != tt.want {
			t.Errorf("ShortHash(%q) = %q, want %q", tt.hash, got, tt.want)
		}
	}
}

func TestWorktree_WithStatusCopies(t *testing.T) {
	t.Parallel()

	orig := Worktree{Path: "/a", CommitHash: "1234567"}
	enriched := orig.WithStatus(true, true)

	if orig.IsDirty || orig.HasUnpushedCommits {
		t.Error("WithStatus mutated the receiver")
	}
	if !enriched.IsDirty || !enriched.HasUnpushedCommits {
		t.Errorf("WithStatus() = %+v, want both flags set", enriched)
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"list", ListArgs(), []string{"worktree", "list", "--porcelain"}},
		{"add new branch", AddArgs("feature/x", "/wt/feature-x", true), []string{"worktree", "add", "-b", "feature/x", "/wt/feature-x"}},
		{"add existing branch", AddArgs("main", "/wt/main", false), []string{"worktree", "add", "/wt/main", "main"}},
		{"remove", RemoveArgs("/wt/x", false), []string{"worktree", "remove", "/wt/x"}},
		{"remove force", RemoveArgs("/wt/x", true), []string{"worktree", "remove", "--force", "/wt/x"}},
		{"status", StatusArgs(), []string{"status", "--porcelain"}},
		{"unpushed", UnpushedArgs(), []string{"log", "@{u}..HEAD", "--oneline"}},
	}

	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s: args = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
