package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileRepo stores the session as a JSON document readable only by the current user.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

var _ Repo = (*FileRepo)(nil)

// NewFileRepo creates a file backed session repository at path
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Path() string {
	return r.path
}

// Load reads the persisted session. A missing file or an empty token is ErrSessionNotFound.
func (r *FileRepo) Load() (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("[FileRepo Load] read %s: %w", r.path, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("[FileRepo Load] decode %s: %w", r.path, err)
	}
	if s.Token == "" {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (r *FileRepo) Save(session Session) error {
	if session.Token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("[FileRepo Save] mkdir: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileRepo Save] encode: %w", err)
	}

	// Write then rename so a crash never leaves a half written credential.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("[FileRepo Save] write: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("[FileRepo Save] rename: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[FileRepo Clear] %w", err)
	}
	return nil
}
