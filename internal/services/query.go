package services

import (
	"sort"
	"strings"

	"promptops/internal/models"
)

// ListParams is the shared filter/sort/paginate input for both collections.
type ListParams struct {
	Search   string
	Status   string
	Model    string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

func (p ListParams) validate() error {
	if p.Page < 1 {
		return models.NewValidationError("page must be at least 1")
	}
	if p.PageSize < 1 {
		return models.NewValidationError("pageSize must be at least 1")
	}
	return nil
}

func (p ListParams) ascending() bool {
	return p.Order == "asc"
}

// pageBounds clips the page window to the filtered length.
func pageBounds(total int, p ListParams) (start, end int) {
	start = (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// QueryMigrations applies filter, sort and pagination to the full
// collection. Returns the page plus the pre-pagination total.
func QueryMigrations(all []models.Migration, p ListParams) ([]models.Migration, int, error) {
	if err := p.validate(); err != nil {
		return nil, 0, err
	}

	filtered := make([]models.Migration, 0, len(all))
	for _, m := range all {
		if p.Search != "" && !containsFold(m.Name, p.Search) {
			continue
		}
		if p.Status != "" && string(m.Status) != p.Status {
			continue
		}
		if p.Model != "" && m.SourceModel != p.Model && m.TargetModel != p.Model {
			continue
		}
		filtered = append(filtered, m)
	}

	asc := p.ascending()
	sort.Slice(filtered, func(i, j int) bool {
		var less bool
		if p.Sort == "name" {
			less = strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		} else {
			less = filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	total := len(filtered)
	start, end := pageBounds(total, p)
	return filtered[start:end], total, nil
}

// QueryEvaluations is the evaluation instantiation of the same pipeline.
// Search also matches the prompt text; sort=score ranks by the best overall
// result, with unscored evaluations treated as 0.
func QueryEvaluations(all []models.Evaluation, p ListParams) ([]models.Evaluation, int, error) {
	if err := p.validate(); err != nil {
		return nil, 0, err
	}

	filtered := make([]models.Evaluation, 0, len(all))
	for _, e := range all {
		if p.Search != "" && !containsFold(e.Name, p.Search) && !containsFold(e.Prompt, p.Search) {
			continue
		}
		if p.Status != "" && string(e.Status) != p.Status {
			continue
		}
		if p.Model != "" && !containsModel(e.Models, p.Model) {
			continue
		}
		filtered = append(filtered, e)
	}

	asc := p.ascending()
	sort.Slice(filtered, func(i, j int) bool {
		var less bool
		if p.Sort == "score" {
			less = bestOverall(filtered[i]) < bestOverall(filtered[j])
		} else {
			less = filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	total := len(filtered)
	start, end := pageBounds(total, p)
	return filtered[start:end], total, nil
}

func containsModel(modelNames []string, model string) bool {
	for _, m := range modelNames {
		if m == model {
			return true
		}
	}
	return false
}

func bestOverall(e models.Evaluation) int {
	best := 0
	for _, r := range e.Results {
		if r.Overall > best {
			best = r.Overall
		}
	}
	return best
}
