// Package history records which worktrees were opened and when, in
// <state dir>/history.json. `wtm open` without arguments returns to the most
// recently opened worktree, and fuzzy target resolution ranks frequently
// used worktrees first.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/metastacks/wtm/internal/cache"
	"github.com/metastacks/wtm/internal/storage"
)

// FileName is the history file inside the state directory.
const FileName = "history.json"

// MaxEntries caps the number of remembered worktrees.
const MaxEntries = 100

// Entry is one worktree that was opened.
type Entry struct {
	Path        string    `json:"path"`
	RepoName    string    `json:"repo_name"`
	Branch      string    `json:"branch"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// History is the list of opened worktrees, most recent first.
type History struct {
	Entries []Entry `json:"entries"`
}

// DefaultPath returns the history file in stateDir.
func DefaultPath(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

// Load reads the history from file. A missing file yields an empty history.
func Load(file string) (*History, error) {
	h := &History{}
	if err := storage.LoadJSONIfExists(file, h); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return h, nil
}

// Save writes the history to file atomically.
func (h *History) Save(file string) error {
	return storage.SaveJSON(file, h)
}

// Touch records an access to path at now, moving it to the front.
func (h *History) Touch(path, repoName, branch string, now time.Time) {
	e := Entry{Path: path}
	if i := h.index(path); i >= 0 {
		e = h.Entries[i]
		h.Entries = slices.Delete(h.Entries, i, i+1)
	}
	e.RepoName = repoName
	e.Branch = branch
	e.LastAccess = now
	e.AccessCount++

	h.Entries = slices.Insert(h.Entries, 0, e)
	if len(h.Entries) > MaxEntries {
		h.Entries = h.Entries[:MaxEntries]
	}
}

// MostRecent returns the most recently accessed path, empty if none.
func (h *History) MostRecent() string {
	if len(h.Entries) == 0 {
		return ""
	}
	return h.Entries[0].Path
}

// FindByPath returns the entry for path.
func (h *History) FindByPath(path string) (Entry, bool) {
	if i := h.index(path); i >= 0 {
		return h.Entries[i], true
	}
	return Entry{}, false
}

// RemoveByPath drops the entry for path. Returns true if it existed.
func (h *History) RemoveByPath(path string) bool {
	i := h.index(path)
	if i < 0 {
		return false
	}
	h.Entries = slices.Delete(h.Entries, i, i+1)
	return true
}

// RemoveUnder drops entries at or below path and returns how many.
func (h *History) RemoveUnder(path string) int {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	before := len(h.Entries)
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool {
		return e.Path == path || strings.HasPrefix(e.Path, prefix)
	})
	return before - len(h.Entries)
}

// RemoveStale drops entries whose directory no longer exists and returns
// how many were removed.
func (h *History) RemoveStale() int {
	before := len(h.Entries)
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool {
		_, err := os.Stat(e.Path)
		return errors.Is(err, os.ErrNotExist)
	})
	return before - len(h.Entries)
}

func (h *History) index(path string) int {
	return slices.IndexFunc(h.Entries, func(e Entry) bool { return e.Path == path })
}

// RecordAccess loads file, records an access to path and saves it back,
// under a file lock so concurrent wtm processes don't lose entries.
func RecordAccess(path, repoName, branch, file string) error {
	return update(file, func(h *History) bool {
		h.Touch(path, repoName, branch, time.Now())
		return true
	})
}

// Forget drops entries at or below path from file.
func Forget(path, file string) error {
	return update(file, func(h *History) bool { return h.RemoveUnder(path) > 0 })
}

// Prune drops entries of deleted worktrees from file.
func Prune(file string) error {
	return update(file, func(h *History) bool { return h.RemoveStale() > 0 })
}

// GetMostRecent returns the most recently opened worktree that still
// exists, empty if there is none.
func GetMostRecent(file string) (string, error) {
	h, err := Load(file)
	if err != nil {
		return "", err
	}
	h.RemoveStale()
	return h.MostRecent(), nil
}

func update(file string, fn func(*History) bool) error {
	return cache.Locked(file, func() error {
		h, err := Load(file)
		if err != nil {
			return err
		}
		if !fn(h) {
			return nil
		}
		return h.Save(file)
	})
}
