package tracker

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/metastacks/wtm/internal/cache"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/storage"
)

// SessionsFile is the store file inside the state directory.
const SessionsFile = "sessions.json"

// Session is a persisted open-worktree registration.
type Session struct {
	Path    string    `json:"path"`
	PID     int       `json:"pid"`
	Started time.Time `json:"started"`
}

type sessionFile struct {
	Sessions []Session `json:"sessions"`
}

// Store shares open sessions between wtm processes through a JSON file
// guarded by a file lock. Sessions whose process has exited are dropped
// whenever the file is rewritten.
type Store struct {
	path  string
	alive func(pid int) bool
}

// NewStore returns a Store for the sessions file in stateDir.
func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, SessionsFile), alive: pidAlive}
}

// Path returns the sessions file path.
func (s *Store) Path() string {
	return s.path
}

// Sessions returns the persisted sessions whose process is still alive.
func (s *Store) Sessions() ([]Session, error) {
	var f sessionFile
	if err := storage.LoadJSONIfExists(s.path, &f); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return s.live(f.Sessions), nil
}

// Stale returns the persisted sessions whose process has exited.
func (s *Store) Stale() ([]Session, error) {
	var f sessionFile
	if err := storage.LoadJSONIfExists(s.path, &f); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return slices.DeleteFunc(f.Sessions, func(e Session) bool { return s.alive(e.PID) }), nil
}

// Prune rewrites the store without sessions whose process has exited.
func (s *Store) Prune() error {
	return s.update(func(sessions []Session) []Session { return sessions })
}

// Add persists sess, replacing any session for the same path.
func (s *Store) Add(sess Session) error {
	sess.Path = git.NormalizePath(sess.Path)
	if sess.Started.IsZero() {
		sess.Started = time.Now()
	}
	return s.update(func(sessions []Session) []Session {
		sessions = slices.DeleteFunc(sessions, func(e Session) bool { return e.Path == sess.Path })
		return append(sessions, sess)
	})
}

// Remove drops the session for path owned by pid. A pid of 0 matches any
// owner.
func (s *Store) Remove(path string, pid int) error {
	path = git.NormalizePath(path)
	return s.update(func(sessions []Session) []Session {
		return slices.DeleteFunc(sessions, func(e Session) bool {
			return e.Path == path && (pid == 0 || e.PID == pid)
		})
	})
}

// Load registers every live persisted session with t.
func (s *Store) Load(t *Tracker) error {
	sessions, err := s.Sessions()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		t.Register(sess.Path, ProcessHandle{PID: sess.PID})
	}
	return nil
}

func (s *Store) live(sessions []Session) []Session {
	return slices.DeleteFunc(slices.Clone(sessions), func(e Session) bool { return !s.alive(e.PID) })
}

func (s *Store) update(fn func([]Session) []Session) error {
	return cache.Locked(s.path, func() error {
		var f sessionFile
		if err := storage.LoadJSONIfExists(s.path, &f); err != nil {
			return fmt.Errorf("read sessions: %w", err)
		}
		f.Sessions = fn(s.live(f.Sessions))
		if f.Sessions == nil {
			f.Sessions = []Session{}
		}
		return storage.SaveJSON(s.path, f)
	})
}
