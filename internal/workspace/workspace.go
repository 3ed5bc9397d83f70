package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"cv-generator/internal/shared/util"
)

var uuidDirPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrNoRoot is returned when a Manager has no root directory configured.
var ErrNoRoot = errors.New("workspace root not configured")

// Holder is the per-session state that remembers the workspace path.
type Holder interface {
	WorkspacePath() string
	SetWorkspacePath(path string)
}

// Manager allocates one directory per session under Root.
type Manager struct {
	Root string
}

// IsWorkspaceName reports whether name looks like a workspace directory.
func IsWorkspaceName(name string) bool {
	return uuidDirPattern.MatchString(name)
}

// GetOrCreate returns the session's workspace, creating it on first use.
// A cached path whose directory disappeared is re-created in place.
func (m *Manager) GetOrCreate(h Holder) (string, error) {
	if m == nil || m.Root == "" {
		return "", ErrNoRoot
	}
	if h == nil {
		return "", errors.New("workspace holder is nil")
	}
	if existing := h.WorkspacePath(); existing != "" {
		if err := os.MkdirAll(existing, 0o700); err != nil {
			return "", fmt.Errorf("recreate workspace: %w", err)
		}
		return existing, nil
	}
	dir := filepath.Join(m.Root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	h.SetWorkspacePath(dir)
	return dir, nil
}

// Remove deletes the session's workspace and forgets it.
// Only directories directly under Root with a workspace name are removed.
func (m *Manager) Remove(h Holder) error {
	if m == nil || h == nil {
		return nil
	}
	dir := h.WorkspacePath()
	if dir == "" {
		return nil
	}
	h.SetWorkspacePath("")
	if filepath.Dir(filepath.Clean(dir)) != filepath.Clean(m.Root) || !IsWorkspaceName(filepath.Base(dir)) {
		return fmt.Errorf("refusing to remove %q outside workspace root", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

// StoreFile writes data to dir/name. When a file with the same content already
// exists it is left untouched and reused is true.
func StoreFile(dir, name string, data []byte) (path string, reused bool, err error) {
	safe, err := util.SanitizeFileName(name)
	if err != nil {
		return "", false, err
	}
	path = filepath.Join(dir, safe)
	if existing, readErr := os.ReadFile(path); readErr == nil {
		if len(existing) == len(data) && util.HashBytes(existing) == util.HashBytes(data) && bytes.Equal(existing, data) {
			return path, true, nil
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", false, fmt.Errorf("write %s: %w", safe, err)
	}
	return path, false, nil
}
