package services

import (
	"context"
	"fmt"
)

type jobRouter struct {
	migrator  MigratorService
	evaluator EvaluatorService
}

// NewJobRouter dispatches worker jobs to the owning lifecycle service.
func NewJobRouter(migrator MigratorService, evaluator EvaluatorService) JobRunner {
	return &jobRouter{migrator: migrator, evaluator: evaluator}
}

// RunJob implements JobRunner.
func (r *jobRouter) RunJob(ctx context.Context, job Job) error {
	switch job.Kind {
	case JobMigrationComplete:
		return r.migrator.Complete(ctx, job.ID)
	case JobEvaluationScore:
		return r.evaluator.Score(ctx, job.ID)
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}
