// Package store persists the bot's state as one JSON document per logical
// key. Documents are read whole and written whole; a reader never observes
// a partially written file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

type Store struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Load fills out with the last-saved document for key. A missing or
// undecodable file leaves out at the caller-supplied defaults and is not an
// error.
func (s *Store) Load(key string, out any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("document unreadable, using defaults", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("document corrupt, using defaults", zap.String("key", key), zap.Error(err))
		return nil
	}
	return nil
}

// Save durably overwrites the document for key. The document is written to
// a temporary file and renamed into place so that concurrent readers see
// either the old or the new content, never a mix.
func (s *Store) Save(key string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// keyLock serializes read-modify-write cycles on a single document within
// this process. There is no cross-process locking; the bot runs as a single
// instance.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
