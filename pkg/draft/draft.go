// Package draft holds in-progress, not-yet-submitted edits outside the
// entity cache. Drafts survive process restarts within a session but are
// explicitly cleared on save and on logout, and an existing draft always
// takes precedence over a background refetch of the authoritative value.
package draft

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SettingsKey is the well-known draft key for notification settings edits.
const SettingsKey = "notification-settings"

var validKeyRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// Store is a scoped key-value persistence backed by one YAML file per key.
type Store struct {
	dir string
}

// DefaultDir returns the default draft directory, ~/.honeypotter/drafts.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".honeypotter", "drafts")
	}
	return filepath.Join(home, ".honeypotter", "drafts")
}

// New returns a Store rooted at dir. The directory is created lazily on the
// first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key string) (string, error) {
	if !validKeyRE.MatchString(key) {
		return "", fmt.Errorf("draft: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".yaml"), nil
}

// Load reads the draft stored under key into out. Returns false with a nil
// error when no draft exists.
func (s *Store) Load(key string, out any) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("draft: decode %s: %w", key, err)
	}
	return true, nil
}

// Save writes v as the draft under key, replacing any previous draft.
// Draft files may hold credentials, so they are owner-only.
func (s *Store) Save(key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("draft: encode %s: %w", key, err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}

// Seed stores v under key only when no draft exists yet, so in-progress
// edits are never silently discarded by a refetch of the authoritative
// value. Reports whether the seed was written.
func (s *Store) Seed(key string, v any) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := s.Save(key, v); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the draft under key. Clearing an absent draft is not an
// error.
func (s *Store) Clear(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ClearAll removes every draft. Used on logout.
func (s *Store) ClearAll() error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
