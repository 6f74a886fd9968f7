package hooks

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metastacks/wtm/internal/config"
)

func TestSubstitutePlaceholders(t *testing.T) {
	t.Parallel()

	hctx := Context{
		Path:     "/home/user/app/.worktrees/feature-x",
		Branch:   "feature/x",
		Repo:     "app",
		Folder:   "app",
		MainRepo: "/home/user/app",
		Trigger:  TriggerAdd,
		Env:      map[string]string{"editor": "nvim", "msg": "it's done"},
	}

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"single placeholder", "code {path}", "code '/home/user/app/.worktrees/feature-x'"},
		{
			"all static placeholders",
			"{path} {branch} {repo} {folder} {main-repo} {trigger}",
			"'/home/user/app/.worktrees/feature-x' 'feature/x' 'app' 'app' '/home/user/app' 'add'",
		},
		{"no placeholders", "echo hello", "echo hello"},
		{"repeated placeholder", "{branch} {branch}", "'feature/x' 'feature/x'"},
		{"custom arg", "{editor} {path}", "'nvim' '/home/user/app/.worktrees/feature-x'"},
		{"raw arg", `echo "{editor:raw}"`, `echo "nvim"`},
		{"default used", "echo {missing:-fallback}", "echo 'fallback'"},
		{"default ignored when set", "echo {editor:-vim}", "echo 'nvim'"},
		{"unknown expands empty", "echo {missing}", "echo ''"},
		{"single quote escaped", "echo {msg}", `echo 'it'\''s done'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SubstitutePlaceholders(tt.command, hctx); got != tt.want {
				t.Errorf("SubstitutePlaceholders(%q) = %q, want %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	disabled := false
	cfg := config.HooksConfig{Hooks: map[string]config.Hook{
		"editor":  {Command: "code {path}", On: []string{"add", "open"}},
		"notify":  {Command: "echo {branch}", On: []string{"all"}},
		"cleanup": {Command: "rm -rf node_modules", On: []string{"remove"}},
		"manual":  {Command: "make setup"},
		"off":     {Command: "false", On: []string{"add"}, Enabled: &disabled},
	}}

	tests := []struct {
		name    string
		hook    string
		noHook  bool
		trigger Trigger
		want    []string
		wantErr bool
	}{
		{name: "add", trigger: TriggerAdd, want: []string{"editor", "notify"}},
		{name: "open", trigger: TriggerOpen, want: []string{"editor", "notify"}},
		{name: "remove", trigger: TriggerRemove, want: []string{"cleanup", "notify"}},
		{name: "explicit hook ignores on", hook: "manual", trigger: TriggerAdd, want: []string{"manual"}},
		{name: "no-hook skips all", noHook: true, trigger: TriggerAdd},
		{name: "unknown hook", hook: "nope", trigger: TriggerAdd, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matches, err := Select(cfg, tt.hook, tt.noHook, tt.trigger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}
			var names []string
			for _, m := range matches {
				names = append(names, m.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Select() = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	got, err := ParseArgs([]string{"a=1", "b=x=y", "c="}, nil)
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if got["a"] != "1" || got["b"] != "x=y" || got["c"] != "" {
		t.Errorf("ParseArgs() = %v", got)
	}

	for _, bad := range []string{"novalue", "=v"} {
		if _, err := ParseArgs([]string{bad}, nil); err == nil {
			t.Errorf("ParseArgs(%q) succeeded", bad)
		}
	}
}

func TestParseArgs_Stdin(t *testing.T) {
	t.Parallel()

	got, err := ParseArgs([]string{"body=-", "title=fix"}, strings.NewReader("piped text"))
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if got["body"] != "piped text" || got["title"] != "fix" {
		t.Errorf("ParseArgs() = %v", got)
	}

	if _, err := ParseArgs([]string{"body=-"}, nil); err == nil {
		t.Error("ParseArgs() with key=- and no stdin succeeded")
	}
	if _, err := ParseArgs([]string{"body=-"}, strings.NewReader("")); err == nil {
		t.Error("ParseArgs() with key=- and empty stdin succeeded")
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed")
	}
}

func TestRunner_RunAll(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stdout, Stdin: strings.NewReader("")}
	hctx := Context{Path: dir, Branch: "feature/x", Trigger: TriggerAdd}
	matches := []Match{
		{Name: "mark", Hook: config.Hook{Command: "echo {branch} > marker && pwd"}},
		{Name: "env", Hook: config.Hook{Command: `echo "$WTM_TRIGGER"`}},
	}

	if err := r.RunAll(context.Background(), matches, hctx, dir); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "marker"))
	if err != nil {
		t.Fatalf("hook did not run in dir: %v", err)
	}
	if strings.TrimSpace(string(data)) != "feature/x" {
		t.Errorf("marker = %q", data)
	}
	if !strings.Contains(stdout.String(), "add") {
		t.Errorf("stdout = %q, want WTM_TRIGGER value", stdout.String())
	}
}

func TestRunner_RunAllStopsOnFailure(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	r := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Stdin: strings.NewReader("")}
	matches := []Match{
		{Name: "fail", Hook: config.Hook{Command: "exit 3"}},
		{Name: "after", Hook: config.Hook{Command: "touch after"}},
	}

	err := r.RunAll(context.Background(), matches, Context{Path: dir}, dir)
	if err == nil || !strings.Contains(err.Error(), `hook "fail" failed`) {
		t.Fatalf("RunAll() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "after")); err == nil {
		t.Error("hook after a failure still ran")
	}

	r.RunAllNonFatal(context.Background(), matches, Context{Path: dir}, dir)
	if _, err := os.Stat(filepath.Join(dir, "after")); err != nil {
		t.Error("RunAllNonFatal() stopped at the failing hook")
	}
}

func TestRunner_DryRun(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	r := &Runner{Stdout: &stdout}
	m := Match{Name: "editor", Hook: config.Hook{Command: "code {path}"}}

	if err := r.RunAll(context.Background(), []Match{m}, Context{Path: "/w", DryRun: true}, "/nonexistent"); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if got := stdout.String(); got != "[dry-run] editor: code '/w'\n" {
		t.Errorf("dry run output = %q", got)
	}
}
