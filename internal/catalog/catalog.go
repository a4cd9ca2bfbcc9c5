// Package catalog persists the outcomes of completed downloads.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clipcatch/pkg/models"
)

// Store records completed downloads and answers duplicate checks.
type Store interface {
	Exists(url string) bool
	Insert(rec models.DownloadRecord) error
	List() []models.DownloadRecord
}

// FileStore is a JSON-file-backed Store. The whole catalog is held in
// memory and rewritten on every insert; the file format is a plain array
// of records.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records []models.DownloadRecord
	byURL   map[string]struct{}
}

// OpenFileStore loads an existing catalog file or starts an empty one.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		byURL: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	for _, rec := range s.records {
		s.byURL[rec.URL] = struct{}{}
	}

	return s, nil
}

// Exists reports whether a record for the URL has been stored
func (s *FileStore) Exists(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byURL[url]
	return ok
}

// Insert appends a record and rewrites the catalog file
func (s *FileStore) Insert(rec models.DownloadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.byURL[rec.URL] = struct{}{}

	return s.save()
}

// List returns a copy of all records, newest last
func (s *FileStore) List() []models.DownloadRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DownloadRecord, len(s.records))
	copy(out, s.records)
	return out
}

// save writes the catalog to disk (must be called with lock held)
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	return nil
}
