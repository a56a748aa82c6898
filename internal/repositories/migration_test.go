package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptops/internal/models"
	"promptops/internal/storage"
)

func testMigration(id string) *models.Migration {
	return &models.Migration{
		ID:          id,
		Name:        "batch " + id,
		SourceModel: "gpt-3.5",
		TargetModel: "gpt-4",
		Status:      models.MigrationStatusDraft,
		CreatedAt:   time.Now().UTC(),
		Prompts:     []models.PromptEntry{{ID: id + "-p1", Source: "Hello"}},
	}
}

func TestMigrationRepositoryCreateAndFind(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())

	require.NoError(t, repo.Create(testMigration("m1")))
	require.NoError(t, repo.Create(testMigration("m2")))

	found, err := repo.FindByID("m1")
	require.NoError(t, err)
	assert.Equal(t, "batch m1", found.Name)

	all, err := repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMigrationRepositoryFindMissing(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())

	_, err := repo.FindByID("nope")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMigrationRepositoryUpdate(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())
	require.NoError(t, repo.Create(testMigration("m1")))

	updated, err := repo.Update("m1", func(m *models.Migration) error {
		m.Status = models.MigrationStatusRunning
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusRunning, updated.Status)

	persisted, err := repo.FindByID("m1")
	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusRunning, persisted.Status)
}

func TestMigrationRepositoryUpdateMissing(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())

	_, err := repo.Update("nope", func(m *models.Migration) error {
		m.Status = models.MigrationStatusRunning
		return nil
	})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMigrationRepositoryUpdateAbortsOnMutateError(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())
	require.NoError(t, repo.Create(testMigration("m1")))

	boom := errors.New("boom")
	_, err := repo.Update("m1", func(m *models.Migration) error {
		m.Status = models.MigrationStatusRunning
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing was written.
	persisted, err := repo.FindByID("m1")
	require.NoError(t, err)
	assert.Equal(t, models.MigrationStatusDraft, persisted.Status)
}

func TestMigrationRepositoryDelete(t *testing.T) {
	repo := NewMigrationRepository(storage.NewMemoryStore())
	require.NoError(t, repo.Create(testMigration("m1")))

	require.NoError(t, repo.Delete("m1"))
	require.ErrorIs(t, repo.Delete("m1"), models.ErrNotFound)

	_, err := repo.FindByID("m1")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestEvaluationRepositoryLifecycle(t *testing.T) {
	repo := NewEvaluationRepository(storage.NewMemoryStore())

	evaluation := &models.Evaluation{
		ID:        "e1",
		Name:      "eval",
		Prompt:    "Hello",
		Models:    []string{"A"},
		Weights:   models.Weights{Clarity: 1},
		Status:    models.EvaluationStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(evaluation))

	updated, err := repo.Update("e1", func(e *models.Evaluation) error {
		e.Status = models.EvaluationStatusRunning
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationStatusRunning, updated.Status)

	require.NoError(t, repo.Delete("e1"))

	_, err = repo.FindByID("e1")
	require.ErrorIs(t, err, models.ErrNotFound)
}
