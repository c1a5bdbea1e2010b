package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Compile-time interface check.
var _ domain.PreferenceStore = (*YAMLStore)(nil)

// YAMLStore keeps preferences in a single YAML mapping on disk. The file
// is read once when the store is opened and rewritten on every change.
type YAMLStore struct {
	path string
	log  *logger.Logger

	mu     sync.Mutex
	values map[string]string
}

// OpenYAML opens the preference file at path. A missing file is an empty
// store; it is created on the first write. Entries that are not scalar
// values are skipped, and a file that is not a YAML mapping at all is
// treated as empty, so one bad value never costs the others. Only an
// unreadable file is an error.
func OpenYAML(path string, log *logger.Logger) (*YAMLStore, error) {
	s := &YAMLStore{
		path:   path,
		log:    log,
		values: make(map[string]string),
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("no preference file at %s, starting empty", path)
			return s, nil
		}
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(rawData, &doc); err != nil {
		log.Warn("parse preferences yaml %s: %v, using defaults", path, err)
		return s, nil
	}
	s.values = scalarEntries(&doc, path, log)
	log.Debug("loaded %d preferences from %s", len(s.values), path)
	return s, nil
}

// scalarEntries collects the key/scalar pairs of a top-level mapping.
func scalarEntries(doc *yaml.Node, path string, log *logger.Logger) map[string]string {
	values := make(map[string]string)
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return values // empty file
	}
	if root.Kind != yaml.MappingNode {
		log.Warn("preferences file %s is not a mapping, using defaults", path)
		return values
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode || val.Tag == "!!null" {
			log.Warn("preferences file %s: skipping non-scalar entry at line %d", path, key.Line)
			continue
		}
		values[key.Value] = val.Value
	}
	return values
}

// Path returns the backing file.
func (s *YAMLStore) Path() string { return s.path }

// Get returns the stored value for key.
func (s *YAMLStore) Get(ctx context.Context, key domain.PrefKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[string(key)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key and rewrites the file.
func (s *YAMLStore) Set(ctx context.Context, key domain.PrefKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[string(key)]
	s.values[string(key)] = value
	if err := s.writeLocked(); err != nil {
		if had {
			s.values[string(key)] = prev
		} else {
			delete(s.values, string(key))
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file.
func (s *YAMLStore) Delete(ctx context.Context, key domain.PrefKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[string(key)]
	if !had {
		return nil
	}
	delete(s.values, string(key))
	if err := s.writeLocked(); err != nil {
		s.values[string(key)] = prev
		return err
	}
	return nil
}

func (s *YAMLStore) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal preferences yaml: %w", err)
	}

	// Write then rename so a crash never leaves a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

// DefaultPath returns <user config dir>/<appName>/<fileName>.
func DefaultPath(appName, fileName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}
