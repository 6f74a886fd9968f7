package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/metastacks/wtm/internal/cmd"
)

// ErrNotRepository is returned when a directory is not inside a git worktree.
var ErrNotRepository = errors.New("not inside a git repository")

// FindRoot returns the top-level directory of the worktree containing dir.
// Linked worktrees resolve to their own root, not the main repository.
func FindRoot(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return "", fmt.Errorf("%s is a bare repository: %w", dir, ErrNotRepository)
		}
		return "", err
	}

	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return root, nil
}

// CommonDir returns the absolute git common directory shared by all
// worktrees of the repository containing dir, asking git through r.
func CommonDir(ctx context.Context, r cmd.Runner, dir string) (string, error) {
	res := r.Run(ctx, dir, CommonDirArgs()...)
	if !res.OK {
		return "", fmt.Errorf("git common dir: %s", res.Text())
	}
	if res.Empty() {
		return "", fmt.Errorf("git common dir: no output in %s", dir)
	}
	common := strings.TrimSpace(res.Lines[0])
	if !filepath.IsAbs(common) {
		common = filepath.Join(dir, common)
	}
	return filepath.Clean(common), nil
}

// RepoName returns the repository name from the origin remote of the
// repository containing dir, e.g. "wtm" for git@github.com:metastacks/wtm.git.
// It falls back to the base name of dir when there is no origin.
func RepoName(dir string) string {
	fallback := filepath.Base(dir)
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return fallback
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return fallback
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return fallback
	}
	if name := nameFromURL(urls[0]); name != "" {
		return name
	}
	return fallback
}

func nameFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}
