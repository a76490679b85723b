package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultStorePath is resolved against the working directory.
const DefaultStorePath = "forward.json"

const storeFileMode = 0o644

// Store persists the ordered rule list as indented JSON.
type Store struct {
	path string
}

// NewStore returns a Store backed by path, falling back to DefaultStorePath.
func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultStorePath
	}
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted rules. A missing file yields an empty list and no
// error. An unreadable or malformed file yields an empty list together with
// the error, so callers can report it and carry on with no rules.
func (s *Store) Load() ([]ForwardingRule, error) {
	// #nosec G304 -- path is operator supplied configuration.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ForwardingRule{}, nil
		}
		return []ForwardingRule{}, fmt.Errorf("read rule store %s: %w", s.path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return []ForwardingRule{}, nil
	}

	var list []ForwardingRule
	if err := json.Unmarshal(data, &list); err != nil {
		return []ForwardingRule{}, fmt.Errorf("parse rule store %s: %w", s.path, err)
	}
	if list == nil {
		list = []ForwardingRule{}
	}
	return list, nil
}

// Save overwrites the store with list. The file is replaced atomically so an
// interrupted write never leaves a truncated store behind.
func (s *Store) Save(list []ForwardingRule) error {
	if list == nil {
		list = []ForwardingRule{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rule store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write rule store %s: %w", s.path, err)
	}
	if err := tmp.Chmod(storeFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod rule store %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close rule store %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace rule store %s: %w", s.path, err)
	}
	return nil
}
