package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptops/internal/models"
)

func defaultParams() ListParams {
	return ListParams{Sort: "createdAt", Order: "desc", Page: 1, PageSize: 10}
}

func makeEvaluations(n int) []models.Evaluation {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	evaluations := make([]models.Evaluation, 0, n)
	for i := 0; i < n; i++ {
		evaluations = append(evaluations, models.Evaluation{
			ID:        fmt.Sprintf("eval-%02d", i),
			Name:      fmt.Sprintf("Evaluation %02d", i),
			Prompt:    "Summarize the text",
			Models:    []string{"gpt-4"},
			Weights:   models.Weights{Clarity: 1, Specificity: 1, Safety: 1},
			Status:    models.EvaluationStatusQueued,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return evaluations
}

func TestQueryEvaluationsPagination(t *testing.T) {
	all := makeEvaluations(25)

	params := defaultParams()
	params.Page = 2

	page, total, err := QueryEvaluations(all, params)
	require.NoError(t, err)

	assert.Equal(t, 25, total)
	require.Len(t, page, 10)

	// Descending by createdAt: page 2 holds ranks 11-20, i.e. ids 14..05.
	assert.Equal(t, "eval-14", page[0].ID)
	assert.Equal(t, "eval-05", page[9].ID)
	for i := 1; i < len(page); i++ {
		assert.True(t, page[i].CreatedAt.Before(page[i-1].CreatedAt))
	}
}

func TestQueryEvaluationsPageBeyondEnd(t *testing.T) {
	all := makeEvaluations(5)

	params := defaultParams()
	params.Page = 3

	page, total, err := QueryEvaluations(all, params)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestQueryEvaluationsValidation(t *testing.T) {
	all := makeEvaluations(3)

	var validationErr *models.ValidationError

	params := defaultParams()
	params.Page = 0
	_, _, err := QueryEvaluations(all, params)
	require.ErrorAs(t, err, &validationErr)

	params = defaultParams()
	params.PageSize = 0
	_, _, err = QueryEvaluations(all, params)
	require.ErrorAs(t, err, &validationErr)
}

func TestQueryEvaluationsFilters(t *testing.T) {
	all := makeEvaluations(3)
	all[0].Name = "Summarizer check"
	all[1].Prompt = "Translate to French"
	all[1].Models = []string{"claude-3", "gpt-4"}
	all[2].Status = models.EvaluationStatusDone

	params := defaultParams()
	params.Search = "summarize the"
	page, total, err := QueryEvaluations(all, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total) // all[0] and all[2] match on prompt text

	params = defaultParams()
	params.Search = "french"
	_, total, err = QueryEvaluations(all, params)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	params = defaultParams()
	params.Status = string(models.EvaluationStatusDone)
	page, total, err = QueryEvaluations(all, params)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, all[2].ID, page[0].ID)

	params = defaultParams()
	params.Model = "claude-3"
	page, total, err = QueryEvaluations(all, params)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, all[1].ID, page[0].ID)
}

func TestQueryEvaluationsSortByScore(t *testing.T) {
	all := makeEvaluations(3)
	all[0].Results = []models.ModelResult{{Model: "gpt-4", Overall: 70}, {Model: "claude-3", Overall: 90}}
	all[1].Results = []models.ModelResult{{Model: "gpt-4", Overall: 80}}
	// all[2] has no results, treated as 0

	params := defaultParams()
	params.Sort = "score"
	page, _, err := QueryEvaluations(all, params)
	require.NoError(t, err)

	require.Len(t, page, 3)
	assert.Equal(t, all[0].ID, page[0].ID)
	assert.Equal(t, all[1].ID, page[1].ID)
	assert.Equal(t, all[2].ID, page[2].ID)
}

func TestQueryMigrations(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	all := []models.Migration{
		{ID: "m1", Name: "beta rollout", SourceModel: "gpt-3.5", TargetModel: "gpt-4", Status: models.MigrationStatusDraft, CreatedAt: base},
		{ID: "m2", Name: "Alpha batch", SourceModel: "claude-2", TargetModel: "claude-3", Status: models.MigrationStatusCompleted, CreatedAt: base.Add(time.Minute)},
		{ID: "m3", Name: "gamma sweep", SourceModel: "gpt-4", TargetModel: "claude-3", Status: models.MigrationStatusDraft, CreatedAt: base.Add(2 * time.Minute)},
	}

	params := defaultParams()
	params.Sort = "name"
	params.Order = "asc"
	page, total, err := QueryMigrations(all, params)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	assert.Equal(t, []string{"m2", "m1", "m3"}, []string{page[0].ID, page[1].ID, page[2].ID})

	// Search matches name only, case-insensitive
	params = defaultParams()
	params.Search = "ALPHA"
	page, total, err = QueryMigrations(all, params)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "m2", page[0].ID)

	// Model matches source or target
	params = defaultParams()
	params.Model = "claude-3"
	_, total, err = QueryMigrations(all, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	params = defaultParams()
	params.Status = string(models.MigrationStatusDraft)
	_, total, err = QueryMigrations(all, params)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
