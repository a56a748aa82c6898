package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"promptops/internal/models"
	"promptops/internal/repositories"
)

// ScoreProvider produces the raw sub-scores for one prompt/model pair. The
// scoring engine itself stays pure; all randomness (or model output) comes
// from here.
type ScoreProvider interface {
	SubScores(ctx context.Context, prompt, model string) (clarity, specificity, safety int, err error)
}

type simulatedScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedScorer draws each sub-score uniformly from [60,100], standing
// in for real model output.
func NewSimulatedScorer(seed int64) ScoreProvider {
	return &simulatedScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *simulatedScorer) SubScores(_ context.Context, _, _ string) (int, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clarity, specificity, safety := MockSubScores(s.rng)
	return clarity, specificity, safety, nil
}

type EvaluatorService interface {
	List(params ListParams) (*models.EvaluationListResponse, error)
	Create(req *models.CreateEvaluationRequest) (*models.Evaluation, error)
	Get(id string) (*models.Evaluation, error)
	Delete(id string) error
	Run(id string) error
	Score(ctx context.Context, id string) error
}

type evaluatorService struct {
	repo      repositories.EvaluationRepository
	scheduler Scheduler
	scorer    ScoreProvider
	delayMin  time.Duration
	delayMax  time.Duration
}

func NewEvaluatorService(
	repo repositories.EvaluationRepository,
	scheduler Scheduler,
	scorer ScoreProvider,
	delayMin, delayMax time.Duration,
) EvaluatorService {
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &evaluatorService{
		repo:      repo,
		scheduler: scheduler,
		scorer:    scorer,
		delayMin:  delayMin,
		delayMax:  delayMax,
	}
}

// List implements EvaluatorService.
func (s *evaluatorService) List(params ListParams) (*models.EvaluationListResponse, error) {
	all, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	page, total, err := QueryEvaluations(all, params)
	if err != nil {
		return nil, err
	}

	return &models.EvaluationListResponse{
		Evaluations: page,
		Total:       total,
		Page:        params.Page,
		PageSize:    params.PageSize,
	}, nil
}

// Create implements EvaluatorService.
func (s *evaluatorService) Create(req *models.CreateEvaluationRequest) (*models.Evaluation, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, models.NewValidationError("name is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, models.NewValidationError("prompt is required")
	}
	if len(req.Models) == 0 {
		return nil, models.NewValidationError("models must not be empty")
	}
	if req.Weights == nil {
		return nil, models.NewValidationError("weights are required")
	}
	if req.Weights.Clarity < 0 || req.Weights.Specificity < 0 || req.Weights.Safety < 0 {
		return nil, models.NewValidationError("weights must be non-negative")
	}

	evaluation := &models.Evaluation{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Prompt:    req.Prompt,
		Models:    req.Models,
		Weights:   *req.Weights,
		Status:    models.EvaluationStatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(evaluation); err != nil {
		return nil, err
	}

	return evaluation, nil
}

// Get implements EvaluatorService.
func (s *evaluatorService) Get(id string) (*models.Evaluation, error) {
	return s.repo.FindByID(id)
}

// Delete implements EvaluatorService.
func (s *evaluatorService) Delete(id string) error {
	return s.repo.Delete(id)
}

// Run flips QUEUED to RUNNING and schedules the scoring action after a
// uniform random delay, simulating variable model latency.
func (s *evaluatorService) Run(id string) error {
	_, err := s.repo.Update(id, func(e *models.Evaluation) error {
		if e.Status != models.EvaluationStatusQueued {
			return &models.InvalidStateError{
				Entity:  "evaluation",
				Current: string(e.Status),
				Want:    string(models.EvaluationStatusQueued),
			}
		}
		e.Status = models.EvaluationStatusRunning
		return nil
	})
	if err != nil {
		return err
	}

	delay := s.delayMin
	if window := s.delayMax - s.delayMin; window > 0 {
		delay += time.Duration(rand.Int63n(int64(window) + 1))
	}
	s.scheduler.EnqueueAfter(Job{Kind: JobEvaluationScore, ID: id}, delay)
	log.Printf("🔄 Evaluation %s running, scoring in %s\n", id, delay)

	return nil
}

// Score is the deferred scoring action. Results are produced one per model
// in input order and written atomically with the flip to DONE.
func (s *evaluatorService) Score(ctx context.Context, id string) error {
	evaluation, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("📭 Evaluation %s gone before scoring, skipping\n", id)
			return nil
		}
		return err
	}
	if evaluation.Status != models.EvaluationStatusRunning {
		return nil
	}

	results := make([]models.ModelResult, 0, len(evaluation.Models))
	for _, model := range evaluation.Models {
		clarity, specificity, safety, err := s.scorer.SubScores(ctx, evaluation.Prompt, model)
		if err != nil {
			s.markError(id, err)
			return fmt.Errorf("failed to score model %s: %w", model, err)
		}
		result := Score(clarity, specificity, safety, evaluation.Weights)
		result.Model = model
		results = append(results, result)
	}

	_, err = s.repo.Update(id, func(e *models.Evaluation) error {
		if e.Status != models.EvaluationStatusRunning {
			return errSettled
		}
		e.Results = results
		e.Status = models.EvaluationStatusDone
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, errSettled) {
			return nil
		}
		s.markError(id, err)
		return err
	}

	log.Printf("✅ Evaluation %s scored across %d models\n", id, len(results))
	return nil
}

func (s *evaluatorService) markError(id string, cause error) {
	_, err := s.repo.Update(id, func(e *models.Evaluation) error {
		if e.Status != models.EvaluationStatusRunning {
			return errSettled
		}
		e.Status = models.EvaluationStatusError
		e.ErrorMessage = cause.Error()
		return nil
	})
	if err != nil && !errors.Is(err, models.ErrNotFound) && !errors.Is(err, errSettled) {
		log.Printf("❌ Failed to mark evaluation %s as errored: %v\n", id, err)
	}
}
