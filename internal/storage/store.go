package storage

import (
	"encoding/json"
)

type Collection string

const (
	CollectionMigrations  Collection = "migrations"
	CollectionEvaluations Collection = "evaluations"
)

// DocumentStore is the persistence port shared by both entity lifecycles.
// ReadAll returns the full current collection; WriteAll replaces it. A
// reader never observes a partial write. Read failures caused by a missing
// or corrupt physical backing fail soft to an empty collection.
type DocumentStore interface {
	ReadAll(collection Collection) ([]json.RawMessage, error)
	WriteAll(collection Collection, docs []json.RawMessage) error
}
