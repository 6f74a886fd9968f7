// Package storage provides atomic file operations for the JSON state files
// wtm keeps in its state directory (~/.wtm by default).
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirName is the state directory created under the home directory.
const DefaultDirName = ".wtm"

// StateDir returns the state directory, creating it if needed.
// An empty override selects ~/.wtm; a leading ~/ is expanded.
func StateDir(override string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, DefaultDirName)
	switch {
	case override == "":
	case override == "~":
		dir = home
	case strings.HasPrefix(override, "~/"):
		dir = filepath.Join(home, override[2:])
	default:
		dir = override
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// SaveJSON atomically writes data as JSON to the specified path.
// It ensures the parent directory exists, writes to a temp file,
// then renames to the final path for atomic operation.
func SaveJSON(path string, data any) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tempPath := path + ".tmp"

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, jsonData, 0o600); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// LoadJSON reads JSON from the specified path into dest.
// Returns os.ErrNotExist if file doesn't exist (caller should handle).
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// LoadJSONIfExists is LoadJSON but leaves dest untouched and returns nil
// when the file does not exist.
func LoadJSONIfExists(path string, dest any) error {
	err := LoadJSON(path, dest)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
