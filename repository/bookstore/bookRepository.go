// Package bookstore persists the book catalog as a JSON snapshot on
// disk. Load returns an empty catalog on first run; Save rewrites the
// whole file atomically.
package bookstore

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

func (s *Store) Load(ctx context.Context) ([]*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var books []*model.Book
	if err := jsoniter.ConfigFastest.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return books, nil
}

// Save writes the full snapshot to a temp file and renames it over the
// old one, so a failed write never clobbers the previous snapshot.
func (s *Store) Save(ctx context.Context, books []*model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if books == nil {
		books = []*model.Book{}
	}
	data, err := jsoniter.ConfigFastest.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode books: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
