package services

import (
	"context"
	"log"
	"sync"
	"time"

	"promptops/internal/models"
	"promptops/internal/repositories"
)

type JobKind string

const (
	JobMigrationComplete JobKind = "migration.complete"
	JobEvaluationScore   JobKind = "evaluation.score"
)

// Job is one deferred action, detached from the request that scheduled it.
type Job struct {
	Kind JobKind
	ID   string
}

func (j Job) key() string {
	return string(j.Kind) + ":" + j.ID
}

// Scheduler is the narrow view of the worker the lifecycle services need.
type Scheduler interface {
	EnqueueAfter(job Job, delay time.Duration)
}

// JobRunner executes one job. Implemented by the job router over the
// migrator and evaluator services.
type JobRunner interface {
	RunJob(ctx context.Context, job Job) error
}

type Worker interface {
	Scheduler
	Start(ctx context.Context, runner JobRunner)
	Stop()
}

type worker struct {
	migrationRepo repositories.MigrationRepository
	evalRepo      repositories.EvaluationRepository
	jobQueue      chan Job
	concurrency   int
	pollInterval  time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	runner        JobRunner

	// Jobs with an armed timer or sitting in the queue. Keeps the
	// interrupted-job poller from double-firing an action whose delay has
	// not elapsed yet.
	pending sync.Map
}

func NewWorker(
	migrationRepo repositories.MigrationRepository,
	evalRepo repositories.EvaluationRepository,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	return &worker{
		migrationRepo: migrationRepo,
		evalRepo:      evalRepo,
		jobQueue:      make(chan Job, 100),
		concurrency:   concurrency,
		pollInterval:  pollInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context, runner JobRunner) {
	w.runner = runner

	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollInterruptedJobs()

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueAfter arms a timer that pushes the job onto the queue once the
// delay elapses. The caller returns immediately; there is no cancellation,
// a deleted entity just makes the job a no-op.
func (w *worker) EnqueueAfter(job Job, delay time.Duration) {
	w.pending.Store(job.key(), struct{}{})
	time.AfterFunc(delay, func() {
		w.enqueue(job)
	})
}

func (w *worker) enqueue(job Job) {
	select {
	case w.jobQueue <- job:
		log.Printf("📥 Job %s enqueued\n", job.key())
	case <-w.stopChan:
		w.pending.Delete(job.key())
		log.Printf("⚠️  Worker stopped, dropping job %s\n", job.key())
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case job := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s\n", workerID, job.key())
			if err := w.runner.RunJob(ctx, job); err != nil {
				log.Printf("❌ Worker #%d failed job %s: %v\n", workerID, job.key(), err)
			} else {
				log.Printf("✅ Worker #%d completed job %s\n", workerID, job.key())
			}
			w.pending.Delete(job.key())
		}
	}
}

// pollInterruptedJobs re-enqueues entities stuck in RUNNING whose timers
// did not survive a restart. Jobs with a live timer are skipped via the
// pending set.
func (w *worker) pollInterruptedJobs() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting interrupted jobs poller")
	w.sweepInterrupted()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Interrupted jobs poller stopped")
			return
		case <-ticker.C:
			w.sweepInterrupted()
		}
	}
}

func (w *worker) sweepInterrupted() {
	migrations, err := w.migrationRepo.All()
	if err != nil {
		log.Printf("⚠️  Failed to scan migrations for interrupted jobs: %v\n", err)
	} else {
		for _, m := range migrations {
			if m.Status == models.MigrationStatusRunning {
				w.enqueueIfIdle(Job{Kind: JobMigrationComplete, ID: m.ID})
			}
		}
	}

	evaluations, err := w.evalRepo.All()
	if err != nil {
		log.Printf("⚠️  Failed to scan evaluations for interrupted jobs: %v\n", err)
		return
	}
	for _, e := range evaluations {
		if e.Status == models.EvaluationStatusRunning {
			w.enqueueIfIdle(Job{Kind: JobEvaluationScore, ID: e.ID})
		}
	}
}

func (w *worker) enqueueIfIdle(job Job) {
	if _, loaded := w.pending.LoadOrStore(job.key(), struct{}{}); loaded {
		return
	}
	log.Printf("📋 Recovering interrupted job %s\n", job.key())
	w.enqueue(job)
}
