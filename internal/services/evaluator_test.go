package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptops/internal/models"
	"promptops/internal/repositories"
	"promptops/internal/storage"
)

type failingScorer struct{}

func (failingScorer) SubScores(context.Context, string, string) (int, int, int, error) {
	return 0, 0, 0, errors.New("scoring backend down")
}

func newEvaluatorFixture(t *testing.T, scorer ScoreProvider) (EvaluatorService, repositories.EvaluationRepository, *stubScheduler) {
	t.Helper()
	repo := repositories.NewEvaluationRepository(storage.NewMemoryStore())
	scheduler := &stubScheduler{}
	if scorer == nil {
		scorer = NewSimulatedScorer(42)
	}
	svc := NewEvaluatorService(repo, scheduler, scorer, 2*time.Second, 5*time.Second)
	return svc, repo, scheduler
}

func validEvaluationRequest() *models.CreateEvaluationRequest {
	return &models.CreateEvaluationRequest{
		Name:    "Tone check",
		Prompt:  "Respond politely",
		Models:  []string{"A", "B"},
		Weights: &models.Weights{Clarity: 40, Specificity: 35, Safety: 25},
	}
}

func TestEvaluatorCreateValidation(t *testing.T) {
	svc, _, _ := newEvaluatorFixture(t, nil)

	tests := []struct {
		name   string
		mutate func(*models.CreateEvaluationRequest)
	}{
		{"empty name", func(r *models.CreateEvaluationRequest) { r.Name = "" }},
		{"empty prompt", func(r *models.CreateEvaluationRequest) { r.Prompt = "" }},
		{"empty models", func(r *models.CreateEvaluationRequest) { r.Models = nil }},
		{"missing weights", func(r *models.CreateEvaluationRequest) { r.Weights = nil }},
		{"negative weight", func(r *models.CreateEvaluationRequest) { r.Weights.Clarity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validEvaluationRequest()
			tt.mutate(req)

			_, err := svc.Create(req)

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestEvaluatorCreate(t *testing.T) {
	svc, _, _ := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, evaluation.ID)
	assert.Equal(t, models.EvaluationStatusQueued, evaluation.Status)
	assert.Nil(t, evaluation.Results)
	assert.False(t, evaluation.CreatedAt.IsZero())
}

func TestEvaluatorRun(t *testing.T) {
	svc, repo, scheduler := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Run(evaluation.ID))

	current, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationStatusRunning, current.Status)

	require.Len(t, scheduler.jobs, 1)
	assert.Equal(t, Job{Kind: JobEvaluationScore, ID: evaluation.ID}, scheduler.jobs[0])
	assert.GreaterOrEqual(t, scheduler.delays[0], 2*time.Second)
	assert.LessOrEqual(t, scheduler.delays[0], 5*time.Second)
}

func TestEvaluatorRunNotQueued(t *testing.T) {
	svc, repo, scheduler := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Run(evaluation.ID))

	err = svc.Run(evaluation.ID)
	var stateErr *models.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	current, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationStatusRunning, current.Status)
	assert.Len(t, scheduler.jobs, 1)
}

func TestEvaluatorRunNotFound(t *testing.T) {
	svc, _, _ := newEvaluatorFixture(t, nil)

	require.ErrorIs(t, svc.Run("missing"), models.ErrNotFound)
}

func TestEvaluatorScore(t *testing.T) {
	svc, repo, _ := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Run(evaluation.ID))

	require.NoError(t, svc.Score(context.Background(), evaluation.ID))

	scored, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationStatusDone, scored.Status)
	require.Len(t, scored.Results, 2)
	assert.Equal(t, "A", scored.Results[0].Model)
	assert.Equal(t, "B", scored.Results[1].Model)
	for _, r := range scored.Results {
		for _, v := range []int{r.Clarity, r.Specificity, r.Safety, r.Overall} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestEvaluatorScoreSetOnce(t *testing.T) {
	svc, repo, _ := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Run(evaluation.ID))
	require.NoError(t, svc.Score(context.Background(), evaluation.ID))

	first, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)

	// A second scoring pass must not overwrite the settled results even
	// though the scorer would produce different draws.
	require.NoError(t, svc.Score(context.Background(), evaluation.ID))

	second, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)
}

func TestEvaluatorScoreAfterDelete(t *testing.T) {
	svc, repo, _ := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Run(evaluation.ID))
	require.NoError(t, svc.Delete(evaluation.ID))

	require.NoError(t, svc.Score(context.Background(), evaluation.ID))

	_, err = repo.FindByID(evaluation.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestEvaluatorScoreFailure(t *testing.T) {
	svc, repo, _ := newEvaluatorFixture(t, failingScorer{})

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Run(evaluation.ID))

	require.Error(t, svc.Score(context.Background(), evaluation.ID))

	errored, err := repo.FindByID(evaluation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationStatusError, errored.Status)
	assert.Contains(t, errored.ErrorMessage, "scoring backend down")
	assert.Nil(t, errored.Results)
}

func TestEvaluatorDeleteThenGet(t *testing.T) {
	svc, _, _ := newEvaluatorFixture(t, nil)

	evaluation, err := svc.Create(validEvaluationRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(evaluation.ID))

	_, err = svc.Get(evaluation.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}
