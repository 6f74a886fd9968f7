package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
)

// Trigger identifies the operation that runs a hook.
type Trigger string

const (
	TriggerAdd    Trigger = "add"
	TriggerRemove Trigger = "remove"
	TriggerOpen   Trigger = "open"
)

// Context holds the values for placeholder substitution
type Context struct {
	Path     string            // absolute worktree path
	Branch   string            // branch name
	Repo     string            // repo name from the origin remote
	Folder   string            // main checkout folder name
	MainRepo string            // main checkout path
	Trigger  Trigger           // operation that ran the hook
	Env      map[string]string // custom values from --arg key=value
	DryRun   bool              // print the command instead of running it
}

// NewContext builds a Context for the worktree at path belonging to the
// main checkout mainRepo.
func NewContext(trigger Trigger, path, branch, mainRepo string, env map[string]string) Context {
	return Context{
		Path:     path,
		Branch:   branch,
		Repo:     git.RepoName(mainRepo),
		Folder:   filepath.Base(mainRepo),
		MainRepo: mainRepo,
		Trigger:  trigger,
		Env:      env,
	}
}

// Match is a hook selected to run.
type Match struct {
	Name string
	Hook config.Hook
}

// Select determines which hooks to run. A named hook runs regardless of its
// "on" list; otherwise every enabled hook whose "on" list matches trigger
// runs, in name order. Returns an error only for an unknown hook name.
func Select(cfg config.HooksConfig, name string, noHook bool, trigger Trigger) ([]Match, error) {
	if noHook {
		return nil, nil
	}

	if name != "" {
		hook, ok := cfg.Hooks[name]
		if !ok {
			return nil, fmt.Errorf("unknown hook %q", name)
		}
		return []Match{{Name: name, Hook: hook}}, nil
	}

	var matches []Match
	for name, hook := range cfg.Hooks {
		if hook.IsEnabled() && hook.RunsOn(string(trigger)) {
			matches = append(matches, Match{Name: name, Hook: hook})
		}
	}
	slices.SortFunc(matches, func(a, b Match) int { return strings.Compare(a.Name, b.Name) })
	return matches, nil
}

// Runner executes hooks, writing their output to Stdout and Stderr.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	// Stdin is attached to hooks. Nil means os.Stdin when it is a terminal,
	// otherwise no input.
	Stdin io.Reader
}

// RunAll runs matches in order in dir and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, matches []Match, hctx Context, dir string) error {
	for _, m := range matches {
		if err := r.run(ctx, m, hctx, dir); err != nil {
			return fmt.Errorf("hook %q failed: %w", m.Name, err)
		}
	}
	return nil
}

// RunAllNonFatal runs every match in dir, logging failures as warnings.
// Used after the operation itself succeeded, so a broken hook does not turn
// it into a failure.
func (r *Runner) RunAllNonFatal(ctx context.Context, matches []Match, hctx Context, dir string) {
	l := log.FromContext(ctx)
	for _, m := range matches {
		if err := r.run(ctx, m, hctx, dir); err != nil {
			l.Warn(fmt.Sprintf("hook %q failed", m.Name), "branch", hctx.Branch, "err", err)
		}
	}
}

func (r *Runner) run(ctx context.Context, m Match, hctx Context, dir string) error {
	command := SubstitutePlaceholders(m.Hook.Command, hctx)

	if hctx.DryRun {
		fmt.Fprintf(r.stdout(), "[dry-run] %s: %s\n", m.Name, command)
		return nil
	}

	l := log.FromContext(ctx)
	l.Printf("Running hook '%s'...\n", m.Name)

	c := exec.CommandContext(ctx, "sh", "-c", command)
	c.Dir = dir
	c.Stdout = r.stdout()
	c.Stderr = r.stderr()
	c.Stdin = r.stdin()
	c.Env = append(os.Environ(), "WTM_TRIGGER="+string(hctx.Trigger), "WTM_PATH="+hctx.Path)

	done := l.Command(dir, "sh", "-c", command)
	start := time.Now()
	err := c.Run()
	done(time.Since(start))
	if err != nil {
		return err
	}

	if m.Hook.Description != "" {
		l.Printf("  ✓ %s\n", m.Hook.Description)
	}
	return nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	if stdinIsTerminal() {
		return os.Stdin
	}
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ParseArgs parses "key=value" strings into a map. A value of "-" is
// replaced by the content read from stdin, which must be piped.
func ParseArgs(args []string, stdin io.Reader) (map[string]string, error) {
	result := make(map[string]string, len(args))
	var stdinKeys []string

	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("invalid arg format %q: expected KEY=VALUE", a)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid arg format %q: key cannot be empty", a)
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
			continue
		}
		result[key] = value
	}

	if len(stdinKeys) == 0 {
		return result, nil
	}
	if stdin == nil {
		return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
	}
	for _, key := range stdinKeys {
		result[key] = string(data)
	}
	return result, nil
}

// PipedStdin returns os.Stdin unless it is a terminal.
func PipedStdin() io.Reader {
	if stdinIsTerminal() {
		return nil
	}
	return os.Stdin
}

// shellQuote wraps s in single quotes, escaping embedded single quotes:
// it's becomes 'it'\''s'.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// argPlaceholder matches {key}, {key:raw} and {key:-default}.
var argPlaceholder = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_-]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces placeholders in command with shell-quoted
// values from hctx. Unknown {key} placeholders expand to an empty string.
func SubstitutePlaceholders(command string, hctx Context) string {
	static := map[string]string{
		"path":      hctx.Path,
		"branch":    hctx.Branch,
		"repo":      hctx.Repo,
		"folder":    hctx.Folder,
		"main-repo": hctx.MainRepo,
		"trigger":   string(hctx.Trigger),
	}

	return argPlaceholder.ReplaceAllStringFunc(command, func(match string) string {
		sub := argPlaceholder.FindStringSubmatch(match)
		key, raw, def := sub[1], sub[2] == ":raw", sub[3]

		val, ok := static[key]
		if !ok {
			val, ok = hctx.Env[key]
		}
		if !ok {
			val = def
		}
		if raw {
			return val
		}
		return shellQuote(val)
	})
}
