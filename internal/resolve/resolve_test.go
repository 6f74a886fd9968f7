package resolve

import (
	"errors"
	"testing"

	"github.com/metastacks/wtm/internal/git"
)

var testList = []git.Worktree{
	{Path: "/r", Branch: "main", CommitHash: "1111111", IsMain: true},
	{Path: "/r/.worktrees/feature-login", Branch: "feature/login", CommitHash: "2222222"},
	{Path: "/r/.worktrees/bugfix-crash", Branch: "bugfix/crash", CommitHash: "3333333"},
	{Path: "/r/.worktrees/api-v1", Branch: "api/v1", CommitHash: "4444444"},
	{Path: "/r/.worktrees/api-v2", Branch: "api/v2", CommitHash: "5555555"},
	{Path: "/r/.worktrees/hotfix", CommitHash: "6666666"},
}

func TestTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		cwd      string
		wantPath string
		wantErr  error
	}{
		{name: "exact branch", target: "feature/login", wantPath: "/r/.worktrees/feature-login"},
		{name: "directory name", target: "feature-login", wantPath: "/r/.worktrees/feature-login"},
		{name: "detached display name", target: "hotfix", wantPath: "/r/.worktrees/hotfix"},
		{name: "absolute path", target: "/r", wantPath: "/r"},
		{name: "absolute path trailing slash", target: "/r/.worktrees/api-v1/", wantPath: "/r/.worktrees/api-v1"},
		{name: "relative path", target: "./.worktrees/bugfix-crash", cwd: "/r", wantPath: "/r/.worktrees/bugfix-crash"},
		{name: "parent relative path", target: "../api-v2", cwd: "/r/.worktrees/hotfix", wantPath: "/r/.worktrees/api-v2"},
		{name: "unique fuzzy", target: "crsh", wantPath: "/r/.worktrees/bugfix-crash"},
		{name: "ambiguous fuzzy", target: "ap", wantErr: ErrAmbiguous},
		{name: "no match", target: "zzz", wantErr: ErrNotFound},
		{name: "unknown path", target: "/elsewhere", wantErr: ErrNotFound},
		{name: "empty", target: "  ", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cwd := tt.cwd
			if cwd == "" {
				cwd = "/r"
			}
			got, err := Target(testList, tt.target, cwd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Target(%q) error = %v, want %v", tt.target, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Target(%q) error = %v", tt.target, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Target(%q) = %q, want %q", tt.target, got.Path, tt.wantPath)
			}
		})
	}
}

func TestFind_ReportsFuzzy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target    string
		wantPath  string
		wantFuzzy bool
	}{
		{"feature/login", "/r/.worktrees/feature-login", false},
		{"feature-login", "/r/.worktrees/feature-login", false},
		{"/r/.worktrees/bugfix-crash", "/r/.worktrees/bugfix-crash", false},
		{"hotfix", "/r/.worktrees/hotfix", false},
		{"fl", "/r/.worktrees/feature-login", true},
		{"log", "/r/.worktrees/feature-login", true},
		{"bug", "/r/.worktrees/bugfix-crash", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			m, err := Find(testList, tt.target, "/r")
			if err != nil {
				t.Fatalf("Find(%q) error = %v", tt.target, err)
			}
			if m.Path != tt.wantPath || m.Fuzzy != tt.wantFuzzy {
				t.Errorf("Find(%q) = %q fuzzy=%v, want %q fuzzy=%v", tt.target, m.Path, m.Fuzzy, tt.wantPath, tt.wantFuzzy)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir      string
		wantPath string
		wantOK   bool
	}{
		{"/r", "/r", true},
		{"/r/src/pkg", "/r", true},
		{"/r/.worktrees/feature-login", "/r/.worktrees/feature-login", true},
		{"/r/.worktrees/feature-login/internal", "/r/.worktrees/feature-login", true},
		{"/r/.worktrees/api-v10", "/r", true},
		{"/rr", "", false},
		{"/other", "", false},
	}

	for _, tt := range tests {
		got, ok := Current(testList, tt.dir)
		if ok != tt.wantOK || got.Path != tt.wantPath {
			t.Errorf("Current(%q) = %q, %v, want %q, %v", tt.dir, got.Path, ok, tt.wantPath, tt.wantOK)
		}
	}
}
