package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/set-night/gptdesk/internal/domain"
)

// JSONStore keeps the whole document in one JSON file.
//
// Writes overwrite the file (temp file + rename). Update calls are serialized
// by an in-process mutex so two sessions of the same process cannot lose each
// other's writes; separate processes sharing the file still race and the last
// writer wins.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		slog.Info("creating session store", "path", s.path)
		return s.save(domain.NewDocument())
	} else if err != nil {
		return fmt.Errorf("stat store: %w", err)
	}
	_, err := s.load()
	return err
}

func (s *JSONStore) Load(ctx context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *JSONStore) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) load() (*domain.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := domain.NewDocument()
		if err := s.save(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	return decodeDocument(s.path, data)
}

func (s *JSONStore) save(doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// decodeDocument parses a stored document. A document that is not JSON or
// lacks the top-level sessions mapping is reported as corrupt.
func decodeDocument(source string, data []byte) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.StoreCorruptError{Path: source, Err: err}
	}
	if doc.Sessions == nil {
		return nil, &domain.StoreCorruptError{Path: source, Err: errors.New(`missing "sessions" mapping`)}
	}
	return &doc, nil
}
