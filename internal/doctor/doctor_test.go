package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/history"
	"github.com/metastacks/wtm/internal/registry"
	"github.com/metastacks/wtm/internal/storage"
	"github.com/metastacks/wtm/internal/tracker"
)

// deadPID is above the kernel's pid limit, so it never names a process.
const deadPID = 1<<31 - 1

type recordingRunner struct {
	res  cmd.Result
	args [][]string
}

func (r *recordingRunner) Run(_ context.Context, _ string, args ...string) cmd.Result {
	r.args = append(r.args, args)
	return r.res
}

func newChecker(t *testing.T, runner cmd.Runner, root string) (*Checker, string) {
	t.Helper()
	stateDir := t.TempDir()
	return &Checker{
		Sessions:    tracker.NewStore(stateDir),
		Dirs:        registry.NewStore(stateDir),
		HistoryFile: history.DefaultPath(stateDir),
		Runner:      runner,
		Root:        root,
	}, stateDir
}

func categories(issues []Issue) []Category {
	var cats []Category
	for _, i := range issues {
		cats = append(cats, i.Category)
	}
	return cats
}

func TestCheck_Clean(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, nil, "")
	issues, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Check() = %+v, want no issues", issues)
	}
}

func TestCheckAndFix(t *testing.T) {
	t.Parallel()

	live := t.TempDir()
	gone := filepath.Join(t.TempDir(), "gone")
	runner := &recordingRunner{res: cmd.Result{OK: true, Lines: []string{
		"Removing worktrees/gone: gitdir file points to non-existent location",
		"",
	}}}
	c, stateDir := newChecker(t, runner, live)

	err := storage.SaveJSON(filepath.Join(stateDir, tracker.SessionsFile), map[string]any{
		"sessions": []tracker.Session{{Path: gone, PID: deadPID}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Dirs.Remember(gone, live); err != nil {
		t.Fatal(err)
	}
	if err := c.Dirs.Remember(live, live); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{gone, live} {
		if err := history.RecordAccess(p, "repo", "b", c.HistoryFile); err != nil {
			t.Fatal(err)
		}
	}

	issues, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := []Category{CategorySessions, CategoryDirs, CategoryHistory, CategoryGit}
	if got := categories(issues); !slices.Equal(got, want) {
		t.Fatalf("Check() categories = %v, want %v", got, want)
	}
	for _, i := range issues[:3] {
		if i.Key != gone {
			t.Errorf("%s issue key = %q, want %q", i.Category, i.Key, gone)
		}
	}

	if err := c.Fix(context.Background(), issues); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	if last := runner.args[len(runner.args)-1]; slices.Contains(last, "--dry-run") {
		t.Errorf("Fix() ran %v, want a real prune", last)
	}

	runner.res = cmd.Result{OK: true}
	issues, err = c.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Errorf("Check() after Fix() = %+v", issues)
	}
	if _, ok := c.Dirs.Lookup(live); !ok {
		t.Error("Fix() dropped a valid association")
	}
	h, err := history.Load(c.HistoryFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Entries) != 1 || h.Entries[0].Path != live {
		t.Errorf("history after Fix() = %+v", h.Entries)
	}
}

func TestCheck_GitFailure(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{res: cmd.Result{Lines: []string{"fatal: not a git repository"}}}
	c, _ := newChecker(t, runner, t.TempDir())
	if _, err := c.Check(context.Background()); err == nil || !strings.Contains(err.Error(), "not a git repository") {
		t.Errorf("Check() error = %v, want git failure", err)
	}
}

func TestFix_OnlyReportedCategories(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{res: cmd.Result{OK: true}}
	c, _ := newChecker(t, runner, t.TempDir())
	if err := c.Fix(context.Background(), []Issue{{Category: CategoryHistory}}); err != nil {
		t.Fatal(err)
	}
	if len(runner.args) != 0 {
		t.Errorf("Fix() ran git %v without a git issue", runner.args)
	}
	if _, err := os.Stat(c.Sessions.Path()); !os.IsNotExist(err) {
		t.Error("Fix() touched the sessions file without a sessions issue")
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		issues []Issue
		want   []string
	}{
		{"none", nil, []string{"No issues found"}},
		{"grouped", []Issue{
			{Category: CategoryGit, Key: "/r", Description: "prunable"},
			{Category: CategorySessions, Key: "/w/a", Description: "dead"},
			{Category: CategorySessions, Key: "/w/b", Description: "dead"},
		}, []string{"sessions (2):", "/w/a: dead", "git (1):", "/r: prunable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			Report(&buf, tt.issues)
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Report() = %q, want to contain %q", got, w)
				}
			}
			if len(tt.issues) > 1 && strings.Index(got, "sessions") > strings.Index(got, "git") {
				t.Errorf("Report() = %q, sessions should precede git", got)
			}
		})
	}
}
