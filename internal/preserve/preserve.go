// Package preserve copies git-ignored files, such as .env, from an existing
// checkout into a newly created worktree. Files that git does not track are
// otherwise missing from a fresh worktree.
package preserve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
)

// Copier copies the ignored files selected by Config.
type Copier struct {
	Runner cmd.Runner
	Config config.PreserveConfig
}

// Copy copies every ignored file in src that Matches the configuration to
// the same relative path in dst. Files already present in dst are left
// alone. Returns the relative paths copied. A file that fails to copy is
// logged and skipped.
func (c *Copier) Copy(ctx context.Context, src, dst string) ([]string, error) {
	if len(c.Config.Patterns) == 0 {
		return nil, nil
	}
	res := c.Runner.Run(ctx, src, git.IgnoredArgs()...)
	if !res.OK {
		return nil, fmt.Errorf("list ignored files: %s", res.Text())
	}

	l := log.FromContext(ctx)
	var copied []string
	for _, rel := range res.Lines {
		if rel == "" || !Matches(rel, c.Config) {
			continue
		}
		ok, err := copyFile(filepath.Join(src, rel), filepath.Join(dst, rel))
		if err != nil {
			l.Debug("preserve: copy failed", "file", rel, "err", err)
			continue
		}
		if ok {
			copied = append(copied, rel)
		}
	}
	slices.Sort(copied)
	return copied, nil
}

// Matches reports whether the file at rel (slash or OS separated) is
// selected: no directory segment is excluded and the file name matches one
// of the patterns.
func Matches(rel string, pc config.PreserveConfig) bool {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range segments[:len(segments)-1] {
		if slices.Contains(pc.Exclude, dir) {
			return false
		}
	}
	name := segments[len(segments)-1]
	return slices.ContainsFunc(pc.Patterns, func(pat string) bool {
		ok, _ := filepath.Match(pat, name)
		return ok
	})
}

// copyFile copies src to dst with src's permissions. It returns false
// without error when dst already exists.
func copyFile(src, dst string) (copied bool, err error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return false, err
	}
	return true, nil
}
