package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler processes one job. A returned error schedules a retry until
// MaxAttempts is reached.
type Handler func(ctx context.Context, job *Job) error

// WorkerConfig tunes the worker pool
type WorkerConfig struct {
	Workers      int
	PollTimeout  time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int
	MoveInterval time.Duration
}

func (c *WorkerConfig) applyDefaults() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MoveInterval <= 0 {
		c.MoveInterval = 15 * time.Second
	}
}

// Worker drains a Queue with a fixed pool of goroutines
type Worker struct {
	queue    Queue
	handlers map[string]Handler
	config   WorkerConfig
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewWorker creates a worker pool
func NewWorker(queue Queue, config WorkerConfig, logger zerolog.Logger) *Worker {
	config.applyDefaults()
	return &Worker{
		queue:    queue,
		handlers: make(map[string]Handler),
		config:   config,
		logger:   logger,
	}
}

// Handle registers the handler for a job type. Call before Start.
func (w *Worker) Handle(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// Start launches the pool and the delayed-job mover. They stop when ctx is
// cancelled; Wait blocks until they have.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Int("workers", w.config.Workers).Msg("Starting queue workers")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.moveDelayedJobs(ctx)
	}()

	for i := 0; i < w.config.Workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processJobs(ctx, id)
		}(i)
	}
}

// Wait blocks until every goroutine started by Start has returned
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) processJobs(ctx context.Context, workerID int) {
	for {
		if ctx.Err() != nil {
			w.logger.Debug().Int("worker", workerID).Msg("Worker stopping")
			return
		}

		job, err := w.queue.Dequeue(ctx, w.config.PollTimeout)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Error().Err(err).Int("worker", workerID).Msg("Dequeue failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if job == nil {
			continue
		}

		w.process(ctx, workerID, job)
	}
}

func (w *Worker) process(ctx context.Context, workerID int, job *Job) {
	log := w.logger.With().Int("worker", workerID).Str("jobId", job.ID).Str("type", job.Type).Logger()

	handler, ok := w.handlers[job.Type]
	if !ok {
		log.Error().Msg("No handler registered for job type, dropping job")
		return
	}

	if err := handler(ctx, job); err != nil {
		if job.Attempts+1 >= w.config.MaxAttempts {
			log.Error().Err(err).Int("attempts", job.Attempts+1).Msg("Job failed permanently")
			return
		}
		log.Warn().Err(err).Int("attempts", job.Attempts+1).Msg("Job failed, scheduling retry")
		if rerr := w.queue.Retry(ctx, job, w.config.RetryDelay); rerr != nil {
			log.Error().Err(rerr).Msg("Failed to schedule retry")
		}
		return
	}

	log.Debug().Msg("Job processed")
}

func (w *Worker) moveDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(w.config.MoveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				w.logger.Error().Err(err).Msg("Failed to move delayed jobs")
			} else if count > 0 {
				w.logger.Info().Int("count", count).Msg("Moved delayed jobs to ready queue")
			}
		}
	}
}
