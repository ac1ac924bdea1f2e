package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.KVStore = (*FileKV)(nil)

// FileKV keeps every key in one JSON object on disk. The whole file is
// rewritten atomically on each Set.
type FileKV struct {
	path   string
	mu     sync.Mutex
	values map[string]string
	log    *logger.Logger
}

// OpenFileKV loads the store at path, creating parent directories as needed.
// A missing file starts an empty store. A file that cannot be parsed is moved
// to path+".corrupt" and the store starts empty, so history is never
// overwritten by accident.
func OpenFileKV(path string, log *logger.Logger) (*FileKV, error) {
	s := &FileKV{path: path, values: make(map[string]string), log: log}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	if err := s.load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("store file %s does not exist yet", path)
			return s, nil
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			aside := path + ".corrupt"
			log.Warn("store file %s is unreadable (%v), moving it to %s", path, err, aside)
			if err := os.Rename(path, aside); err != nil {
				return nil, fmt.Errorf("quarantining corrupt store: %w", err)
			}
			return s, nil
		}
		return nil, fmt.Errorf("loading store: %w", err)
	}

	log.Debug("loaded %d keys from %s", len(s.values), path)
	return s, nil
}

// load reads the store file into memory.
func (s *FileKV) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if values != nil {
		s.values = values
	}
	return nil
}

// save atomically writes the store file to disk.
func (s *FileKV) save() error {
	tmp := s.path + ".tmp"
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Get returns the value stored under key.
func (s *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key and persists the file. On a write error the
// in-memory value is rolled back so memory and disk stay in step.
func (s *FileKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return fmt.Errorf("writing store %s: %w", s.path, err)
	}

	s.log.Debug("set %s (%d bytes)", key, len(value))
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *FileKV) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedKeys(s.values), nil
}
