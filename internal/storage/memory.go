package storage

import (
	"encoding/json"
	"sync"
)

// MemoryStore is a map-backed DocumentStore used in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection][]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[Collection][]json.RawMessage),
	}
}

func (s *MemoryStore) ReadAll(collection Collection) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]json.RawMessage, len(s.collections[collection]))
	for i, doc := range s.collections[collection] {
		docs[i] = append(json.RawMessage(nil), doc...)
	}
	return docs, nil
}

func (s *MemoryStore) WriteAll(collection Collection, docs []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]json.RawMessage, len(docs))
	for i, doc := range docs {
		copied[i] = append(json.RawMessage(nil), doc...)
	}
	s.collections[collection] = copied
	return nil
}
