// Package registry remembers which repository a directory belongs to, in
// <state dir>/dirs.json.
//
// Resolving the workspace for a directory first consults this file and only
// falls back to repository discovery on a miss. Entries for a worktree are
// forgotten when the worktree is removed.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/metastacks/wtm/internal/cache"
	"github.com/metastacks/wtm/internal/storage"
)

// FileName is the registry file inside the state directory.
const FileName = "dirs.json"

// Association maps a directory to the root of the repository workspace it
// was resolved to.
type Association struct {
	Dir  string `json:"dir"`
	Repo string `json:"repo"`
}

// Registry holds all known associations.
type Registry struct {
	Associations []Association `json:"associations"`
}

// Load reads the registry from path.
// Returns an empty registry if the file doesn't exist.
func Load(path string) (*Registry, error) {
	reg := &Registry{Associations: []Association{}}
	if err := storage.LoadJSONIfExists(path, reg); err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return reg, nil
}

// Save writes the registry to path atomically.
func (r *Registry) Save(path string) error {
	if err := storage.SaveJSON(path, r); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Remember associates dir with repo, replacing an existing entry for dir.
// Returns true if the registry changed.
func (r *Registry) Remember(dir, repo string) bool {
	dir, repo = filepath.Clean(dir), filepath.Clean(repo)
	for i := range r.Associations {
		if r.Associations[i].Dir == dir {
			if r.Associations[i].Repo == repo {
				return false
			}
			r.Associations[i].Repo = repo
			return true
		}
	}
	r.Associations = append(r.Associations, Association{Dir: dir, Repo: repo})
	return true
}

// Lookup returns the repository remembered for dir. Parents are not
// consulted: a worktree nested inside the main checkout is its own workspace.
func (r *Registry) Lookup(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for _, a := range r.Associations {
		if a.Dir == dir {
			return a.Repo, true
		}
	}
	return "", false
}

// ForgetUnder removes every association whose directory or repository is
// path or lies beneath it. Returns the number of entries removed.
func (r *Registry) ForgetUnder(path string) int {
	path = filepath.Clean(path)
	before := len(r.Associations)
	r.Associations = slices.DeleteFunc(r.Associations, func(a Association) bool {
		return within(a.Dir, path) || within(a.Repo, path)
	})
	return before - len(r.Associations)
}

func within(p, root string) bool {
	if p == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(p, root)
}

// Store is a Registry persisted at a path, guarded by a file lock so
// concurrent wtm processes don't lose updates.
type Store struct {
	path string
}

// NewStore returns a Store for the registry file in stateDir.
func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, FileName)}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup loads the registry and looks up dir. Entries whose repository no
// longer exists on disk are treated as misses.
func (s *Store) Lookup(dir string) (string, bool) {
	reg, err := Load(s.path)
	if err != nil {
		return "", false
	}
	repo, ok := reg.Lookup(dir)
	if !ok {
		return "", false
	}
	if info, err := os.Stat(repo); err != nil || !info.IsDir() {
		return "", false
	}
	return repo, true
}

// Stale returns associations whose directory or repository no longer
// exists.
func (s *Store) Stale() ([]Association, error) {
	reg, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(reg.Associations, func(a Association) bool {
		return exists(a.Dir) && exists(a.Repo)
	}), nil
}

// Prune drops associations whose directory or repository no longer exists.
func (s *Store) Prune() error {
	return s.update(func(r *Registry) bool {
		before := len(r.Associations)
		r.Associations = slices.DeleteFunc(r.Associations, func(a Association) bool {
			return !exists(a.Dir) || !exists(a.Repo)
		})
		return len(r.Associations) != before
	})
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remember records dir -> repo.
func (s *Store) Remember(dir, repo string) error {
	return s.update(func(r *Registry) bool { return r.Remember(dir, repo) })
}

// ForgetUnder drops associations at or below path.
func (s *Store) ForgetUnder(path string) error {
	return s.update(func(r *Registry) bool { return r.ForgetUnder(path) > 0 })
}

func (s *Store) update(fn func(*Registry) bool) error {
	return cache.Locked(s.path, func() error {
		reg, err := Load(s.path)
		if err != nil {
			return err
		}
		if !fn(reg) {
			return nil
		}
		return reg.Save(s.path)
	})
}
