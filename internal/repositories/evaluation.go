package repositories

import (
	"encoding/json"
	"sync"

	"promptops/internal/models"
	"promptops/internal/storage"
)

type EvaluationRepository interface {
	All() ([]models.Evaluation, error)
	FindByID(id string) (*models.Evaluation, error)
	Create(evaluation *models.Evaluation) error
	Update(id string, mutate func(*models.Evaluation) error) (*models.Evaluation, error)
	Delete(id string) error
}

type evaluationRepository struct {
	store storage.DocumentStore
	mu    sync.RWMutex
}

func NewEvaluationRepository(store storage.DocumentStore) EvaluationRepository {
	return &evaluationRepository{store: store}
}

// All implements EvaluationRepository.
func (r *evaluationRepository) All() ([]models.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

// FindByID implements EvaluationRepository.
func (r *evaluationRepository) FindByID(id string) (*models.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	evaluations, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range evaluations {
		if evaluations[i].ID == id {
			e := evaluations[i]
			return &e, nil
		}
	}

	return nil, models.NotFoundError("evaluation", id)
}

// Create implements EvaluationRepository.
func (r *evaluationRepository) Create(evaluation *models.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	evaluations, err := r.load()
	if err != nil {
		return err
	}

	evaluations = append(evaluations, *evaluation)
	return r.save(evaluations)
}

// Update applies mutate under the collection lock, same contract as the
// migration repository.
func (r *evaluationRepository) Update(id string, mutate func(*models.Evaluation) error) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evaluations, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range evaluations {
		if evaluations[i].ID != id {
			continue
		}
		if err := mutate(&evaluations[i]); err != nil {
			return nil, err
		}
		if err := r.save(evaluations); err != nil {
			return nil, err
		}
		e := evaluations[i]
		return &e, nil
	}

	return nil, models.NotFoundError("evaluation", id)
}

// Delete implements EvaluationRepository.
func (r *evaluationRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	evaluations, err := r.load()
	if err != nil {
		return err
	}

	for i := range evaluations {
		if evaluations[i].ID == id {
			evaluations = append(evaluations[:i], evaluations[i+1:]...)
			return r.save(evaluations)
		}
	}

	return models.NotFoundError("evaluation", id)
}

func (r *evaluationRepository) load() ([]models.Evaluation, error) {
	docs, err := r.store.ReadAll(storage.CollectionEvaluations)
	if err != nil {
		return nil, &models.PersistenceError{Op: "read evaluations", Err: err}
	}

	evaluations := make([]models.Evaluation, 0, len(docs))
	for _, doc := range docs {
		var e models.Evaluation
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, &models.PersistenceError{Op: "decode evaluation", Err: err}
		}
		evaluations = append(evaluations, e)
	}

	return evaluations, nil
}

func (r *evaluationRepository) save(evaluations []models.Evaluation) error {
	docs := make([]json.RawMessage, 0, len(evaluations))
	for i := range evaluations {
		doc, err := json.Marshal(&evaluations[i])
		if err != nil {
			return &models.PersistenceError{Op: "encode evaluation", Err: err}
		}
		docs = append(docs, doc)
	}

	if err := r.store.WriteAll(storage.CollectionEvaluations, docs); err != nil {
		return &models.PersistenceError{Op: "write evaluations", Err: err}
	}

	return nil
}
