package repositories

import (
	"encoding/json"
	"sync"

	"promptops/internal/models"
	"promptops/internal/storage"
)

type MigrationRepository interface {
	All() ([]models.Migration, error)
	FindByID(id string) (*models.Migration, error)
	Create(migration *models.Migration) error
	Update(id string, mutate func(*models.Migration) error) (*models.Migration, error)
	Delete(id string) error
}

type migrationRepository struct {
	store storage.DocumentStore

	// Guards every read-modify-write over the whole-collection port. The
	// port has no finer granularity, so a collection-wide lock is the
	// mutual-exclusion unit.
	mu sync.RWMutex
}

func NewMigrationRepository(store storage.DocumentStore) MigrationRepository {
	return &migrationRepository{store: store}
}

// All implements MigrationRepository.
func (r *migrationRepository) All() ([]models.Migration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

// FindByID implements MigrationRepository.
func (r *migrationRepository) FindByID(id string) (*models.Migration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	migrations, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range migrations {
		if migrations[i].ID == id {
			m := migrations[i]
			return &m, nil
		}
	}

	return nil, models.NotFoundError("migration", id)
}

// Create implements MigrationRepository.
func (r *migrationRepository) Create(migration *models.Migration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	migrations, err := r.load()
	if err != nil {
		return err
	}

	migrations = append(migrations, *migration)
	return r.save(migrations)
}

// Update applies mutate to the entity under the collection lock and persists
// the result. If mutate returns an error nothing is written. Returns
// NotFound when the id does not resolve at mutation time, which is the
// existence re-check deferred actions rely on.
func (r *migrationRepository) Update(id string, mutate func(*models.Migration) error) (*models.Migration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	migrations, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range migrations {
		if migrations[i].ID != id {
			continue
		}
		if err := mutate(&migrations[i]); err != nil {
			return nil, err
		}
		if err := r.save(migrations); err != nil {
			return nil, err
		}
		m := migrations[i]
		return &m, nil
	}

	return nil, models.NotFoundError("migration", id)
}

// Delete implements MigrationRepository.
func (r *migrationRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	migrations, err := r.load()
	if err != nil {
		return err
	}

	for i := range migrations {
		if migrations[i].ID == id {
			migrations = append(migrations[:i], migrations[i+1:]...)
			return r.save(migrations)
		}
	}

	return models.NotFoundError("migration", id)
}

func (r *migrationRepository) load() ([]models.Migration, error) {
	docs, err := r.store.ReadAll(storage.CollectionMigrations)
	if err != nil {
		return nil, &models.PersistenceError{Op: "read migrations", Err: err}
	}

	migrations := make([]models.Migration, 0, len(docs))
	for _, doc := range docs {
		var m models.Migration
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, &models.PersistenceError{Op: "decode migration", Err: err}
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

func (r *migrationRepository) save(migrations []models.Migration) error {
	docs := make([]json.RawMessage, 0, len(migrations))
	for i := range migrations {
		doc, err := json.Marshal(&migrations[i])
		if err != nil {
			return &models.PersistenceError{Op: "encode migration", Err: err}
		}
		docs = append(docs, doc)
	}

	if err := r.store.WriteAll(storage.CollectionMigrations, docs); err != nil {
		return &models.PersistenceError{Op: "write migrations", Err: err}
	}

	return nil
}
