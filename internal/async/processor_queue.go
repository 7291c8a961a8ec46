package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
)

// FileProcessor is the part of pipeline.Processor the queue drives.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, ruleSetID uuid.UUID) (pipeline.Outcome, error)
}

// Stats counts jobs by state since the queue started.
type Stats struct {
	Queued    int64
	Succeeded int64
	Failed    int64
}

// Pending is the number of accepted jobs that have not finished yet.
func (s Stats) Pending() int64 { return s.Queued - s.Succeeded - s.Failed }

// ProcessorQueue runs submitted files through a FileProcessor on a fixed
// pool of workers fed by a bounded channel.
type ProcessorQueue struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	jobs    chan Job

	// mu guards closed and the send side of jobs.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	queued, succeeded, failed atomic.Int64
}

var _ Queue = (*ProcessorQueue)(nil)

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.jobs = make(chan Job, n)
		}
	}
}

// WithProcessTimeout bounds a single ProcessFile call.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewProcessorQueue starts the workers right away.
func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger.With("component", "queue"),
		workers: 4,
		timeout: 3 * time.Minute,
		jobs:    make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.wg.Add(q.workers)
	for i := 1; i <= q.workers; i++ {
		go q.work(i)
	}
	return q
}

func (q *ProcessorQueue) work(id int) {
	defer q.wg.Done()
	log := q.logger.With("worker_id", id)
	log.Debug("worker started")
	for job := range q.jobs {
		q.run(log, job)
	}
	log.Debug("worker stopped")
}

func (q *ProcessorQueue) run(log *slog.Logger, job Job) {
	log = log.With("job_id", job.ID, "path", job.Path)
	if job.TraceID != "" {
		log = log.With("request_id", job.TraceID)
	}
	waited := time.Since(job.SubmittedAt)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	out, err := q.proc.ProcessFile(ctx, job.Path, job.RuleSetID)
	if err != nil {
		q.failed.Add(1)
		log.Error("job failed", "waited_ms", waited.Milliseconds(), "error", err)
		return
	}
	q.succeeded.Add(1)
	log.Info("job done",
		"document_id", out.Document.ID,
		"deduplicated", out.Deduplicated,
		"results", len(out.Results),
		"waited_ms", waited.Milliseconds(),
	)
}

// Enqueue hands job to the workers. While the buffer is full it blocks
// until a slot frees up or ctx ends. ID and SubmittedAt are filled in when
// unset.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) (Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return job, ErrQueueClosed
	}
	if len(q.jobs) == cap(q.jobs) {
		q.logger.Warn("queue full, waiting for a free slot", "path", job.Path, "capacity", cap(q.jobs))
	}
	select {
	case q.jobs <- job:
		q.queued.Add(1)
		q.logger.Debug("job queued", "job_id", job.ID, "path", job.Path)
		return job, nil
	case <-ctx.Done():
		return job, ctx.Err()
	}
}

// Stats is safe to call at any time.
func (q *ProcessorQueue) Stats() Stats {
	return Stats{Queued: q.queued.Load(), Succeeded: q.succeeded.Load(), Failed: q.failed.Load()}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish, or
// for ctx to end. Calling it again is a no-op.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s := q.Stats()
		q.logger.Info("queue drained", "succeeded", s.Succeeded, "failed", s.Failed)
	case <-ctx.Done():
		q.logger.Warn("queue shutdown cut short", "pending", q.Stats().Pending(), "error", ctx.Err())
	}
}
