// Package userstore persists the user directory the same way bookstore
// persists the catalog: one JSON snapshot file, rewritten atomically.
package userstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/KhaledKanawati/LibrarySystem/model"
)

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Load(ctx context.Context) ([]model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var recs []model.Credential
	if err := jsoniter.ConfigFastest.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return recs, nil
}

func (s *Store) Save(ctx context.Context, recs []model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recs == nil {
		recs = []model.Credential{}
	}
	data, err := jsoniter.ConfigFastest.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
