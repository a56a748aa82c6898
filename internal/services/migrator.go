package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptops/internal/models"
	"promptops/internal/repositories"
)

// errSettled aborts a repository Update without writing when the entity has
// already left RUNNING by the time the deferred action lands.
var errSettled = errors.New("entity already settled")

// PromptRewriter turns one source prompt into its target-model rendition.
type PromptRewriter interface {
	Rewrite(ctx context.Context, source, sourceModel, targetModel string) (string, error)
}

type simulatedRewriter struct{}

// NewSimulatedRewriter returns the default rewriter, which only tags the
// prompt with the target model instead of calling a real model.
func NewSimulatedRewriter() PromptRewriter {
	return &simulatedRewriter{}
}

func (simulatedRewriter) Rewrite(_ context.Context, source, _, targetModel string) (string, error) {
	return fmt.Sprintf("%s (migrated to %s)", source, targetModel), nil
}

type MigratorService interface {
	List(params ListParams) (*models.MigrationListResponse, error)
	Create(ctx context.Context, req *models.CreateMigrationRequest) (*models.Migration, error)
	Get(id string) (*models.Migration, error)
	Delete(ctx context.Context, id string) error
	Start(id string) (*models.Migration, error)
	Complete(ctx context.Context, id string) error
}

type migratorService struct {
	repo      repositories.MigrationRepository
	scheduler Scheduler
	rewriter  PromptRewriter
	index     PromptIndex // nil when the prompt index is not configured
	delay     time.Duration
}

func NewMigratorService(
	repo repositories.MigrationRepository,
	scheduler Scheduler,
	rewriter PromptRewriter,
	index PromptIndex,
	delay time.Duration,
) MigratorService {
	return &migratorService{
		repo:      repo,
		scheduler: scheduler,
		rewriter:  rewriter,
		index:     index,
		delay:     delay,
	}
}

// List implements MigratorService.
func (s *migratorService) List(params ListParams) (*models.MigrationListResponse, error) {
	all, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	page, total, err := QueryMigrations(all, params)
	if err != nil {
		return nil, err
	}

	return &models.MigrationListResponse{
		Migrations: page,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

// Create implements MigratorService.
func (s *migratorService) Create(ctx context.Context, req *models.CreateMigrationRequest) (*models.Migration, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, models.NewValidationError("name is required")
	}
	if strings.TrimSpace(req.SourceModel) == "" {
		return nil, models.NewValidationError("sourceModel is required")
	}
	if strings.TrimSpace(req.TargetModel) == "" {
		return nil, models.NewValidationError("targetModel is required")
	}
	if req.SourceModel == req.TargetModel {
		return nil, models.NewValidationError("sourceModel and targetModel must differ")
	}

	prompts := make([]models.PromptEntry, 0, len(req.Prompts))
	for _, source := range req.Prompts {
		prompts = append(prompts, models.PromptEntry{
			ID:     uuid.NewString(),
			Source: source,
		})
	}

	migration := &models.Migration{
		ID:          uuid.NewString(),
		Name:        req.Name,
		SourceModel: req.SourceModel,
		TargetModel: req.TargetModel,
		Notes:       req.Notes,
		Status:      models.MigrationStatusDraft,
		CreatedAt:   time.Now().UTC(),
		Prompts:     prompts,
	}

	if err := s.repo.Create(migration); err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.IndexPrompts(ctx, migration); err != nil {
			log.Printf("⚠️  Failed to index prompts for migration %s: %v\n", migration.ID, err)
		}
	}

	return migration, nil
}

// Get implements MigratorService.
func (s *migratorService) Get(id string) (*models.Migration, error) {
	return s.repo.FindByID(id)
}

// Delete implements MigratorService.
func (s *migratorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.RemoveMigration(ctx, id); err != nil {
			log.Printf("⚠️  Failed to remove migration %s from prompt index: %v\n", id, err)
		}
	}

	return nil
}

// Start flips DRAFT to RUNNING and schedules the completion action. The
// status guard means only one Start can ever succeed per migration.
func (s *migratorService) Start(id string) (*models.Migration, error) {
	migration, err := s.repo.Update(id, func(m *models.Migration) error {
		if m.Status != models.MigrationStatusDraft {
			return &models.InvalidStateError{
				Entity:  "migration",
				Current: string(m.Status),
				Want:    string(models.MigrationStatusDraft),
			}
		}
		m.Status = models.MigrationStatusRunning
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduler.EnqueueAfter(Job{Kind: JobMigrationComplete, ID: id}, s.delay)
	log.Printf("🔄 Migration %s started, completion in %s\n", id, s.delay)

	return migration, nil
}

// Complete is the deferred completion action. It is idempotent over prompt
// entries that were already rewritten and silently no-ops when the
// migration was deleted in the interim, since no caller is waiting.
func (s *migratorService) Complete(ctx context.Context, id string) error {
	migration, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("📭 Migration %s gone before completion, skipping\n", id)
			return nil
		}
		return err
	}
	if migration.Status != models.MigrationStatusRunning {
		return nil
	}

	rewrites := make(map[string]string, len(migration.Prompts))
	for _, p := range migration.Prompts {
		if p.Migrated != "" {
			continue
		}
		migrated, err := s.rewriter.Rewrite(ctx, p.Source, migration.SourceModel, migration.TargetModel)
		if err != nil {
			s.markFailed(id, err)
			return fmt.Errorf("failed to rewrite prompt %s: %w", p.ID, err)
		}
		rewrites[p.ID] = migrated
	}

	// Existence and status are re-checked under the collection lock right
	// before the write, so a racing delete can never be resurrected.
	_, err = s.repo.Update(id, func(m *models.Migration) error {
		if m.Status != models.MigrationStatusRunning {
			return errSettled
		}
		for i := range m.Prompts {
			if m.Prompts[i].Migrated != "" {
				continue
			}
			if migrated, ok := rewrites[m.Prompts[i].ID]; ok {
				m.Prompts[i].Migrated = migrated
			}
		}
		m.Status = models.MigrationStatusCompleted
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, errSettled) {
			return nil
		}
		s.markFailed(id, err)
		return err
	}

	log.Printf("✅ Migration %s completed\n", id)
	return nil
}

func (s *migratorService) markFailed(id string, cause error) {
	_, err := s.repo.Update(id, func(m *models.Migration) error {
		if m.Status != models.MigrationStatusRunning {
			return errSettled
		}
		m.Status = models.MigrationStatusFailed
		m.ErrorMessage = cause.Error()
		return nil
	})
	if err != nil && !errors.Is(err, models.ErrNotFound) && !errors.Is(err, errSettled) {
		log.Printf("❌ Failed to mark migration %s as failed: %v\n", id, err)
	}
}
