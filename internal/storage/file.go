package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileStore keeps one pretty-printed JSON array file per collection under
// dataDir. Writes go through a temp file and rename so readers never see a
// half-written collection.
type FileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

func (s *FileStore) EnsureDataDir() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *FileStore) ReadAll(collection Collection) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		log.Printf("⚠️  Failed to read %s file: %v\n", collection, err)
		return []json.RawMessage{}, nil
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		log.Printf("⚠️  Failed to parse %s file: %v\n", collection, err)
		return []json.RawMessage{}, nil
	}

	return docs, nil
}

func (s *FileStore) WriteAll(collection Collection, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}

	path := s.path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", collection, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s file: %w", collection, err)
	}

	return nil
}

func (s *FileStore) path(collection Collection) string {
	return filepath.Join(s.dataDir, string(collection)+".json")
}
