package workers

import (
	"context"
	"fmt"
	"time"
)

// DefaultQueueSize is the capacity of the in-process ingestion queue
const DefaultQueueSize = 64

// IngestJob carries the content of one uploaded file to the worker
type IngestJob struct {
	FileID  string `json:"file_id"`
	Content string `json:"-"`
}

// Ingestor processes one file's content into the vector index
type Ingestor interface {
	Ingest(ctx context.Context, fileID, content string) error
	Retry(ctx context.Context, fileID string) error
}

// IngestWorker drains an in-process queue of uploaded files and runs
// each through the ingestion pipeline. Failed jobs are retried with the
// pipeline's chunk-level retry so already indexed chunks are not redone.
type IngestWorker struct {
	*BaseWorker
	queue    chan IngestJob
	ingestor Ingestor
	logger   Logger
}

// IngestWorkerConfig holds configuration for the ingest worker
type IngestWorkerConfig struct {
	WorkerConfig WorkerConfig
	QueueSize    int
	Ingestor     Ingestor
	Logger       Logger
}

// NewIngestWorker creates a new ingest worker
func NewIngestWorker(config IngestWorkerConfig) *IngestWorker {
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &IngestWorker{
		BaseWorker: NewBaseWorker(config.WorkerConfig),
		queue:      make(chan IngestJob, queueSize),
		ingestor:   config.Ingestor,
		logger:     config.Logger,
	}
}

// Enqueue submits a file for background ingestion. It fails instead of
// blocking when the queue is full.
func (w *IngestWorker) Enqueue(job IngestJob) error {
	select {
	case w.queue <- job:
		return nil
	default:
		return NewWorkerError(w.Name(), "enqueue", nil, "ingestion queue is full")
	}
}

// Start begins processing ingestion jobs
func (w *IngestWorker) Start(ctx context.Context) error {
	if w.IsRunning() {
		return NewWorkerError(w.Name(), "start", nil, "worker already running")
	}

	w.setRunning(true)
	w.logger.Info("Starting ingest worker: %s", w.Name())

	for i := 0; i < w.config.Concurrency; i++ {
		go w.processJobs(ctx, i)
	}
	return nil
}

// Stop gracefully shuts down the worker
func (w *IngestWorker) Stop(ctx context.Context) error {
	if !w.IsRunning() {
		return nil
	}

	w.logger.Info("Stopping ingest worker: %s", w.Name())
	w.setRunning(false)
	return nil
}

// processJobs drains the queue until the context is cancelled
func (w *IngestWorker) processJobs(ctx context.Context, workerID int) {
	workerName := fmt.Sprintf("%s-goroutine-%d", w.Name(), workerID)
	w.logger.Info("Worker goroutine started: %s", workerName)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping: %s", workerName)
			return

		case job := <-w.queue:
			if !w.IsRunning() {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// processJob runs one file through the ingestion pipeline, retrying
// the failed remainder a bounded number of times.
func (w *IngestWorker) processJob(ctx context.Context, job IngestJob) {
	startTime := w.recordJobStart()
	w.logger.Info("Ingesting file: %s", job.FileID)

	var err error
	if w.config.EnableRecovery {
		err = w.ingestWithRecovery(ctx, job)
	} else {
		err = w.ingestor.Ingest(ctx, job.FileID, job.Content)
	}

	for attempt := 1; err != nil && attempt <= w.config.MaxRetries; attempt++ {
		w.logger.Warn("Ingestion failed for file %s, retrying (%d/%d): %v", job.FileID, attempt, w.config.MaxRetries, err)
		time.Sleep(w.config.RetryDelay)
		err = w.ingestor.Retry(ctx, job.FileID)
	}

	if err != nil {
		w.recordJobFailure(startTime)
		w.logger.Error("Ingestion failed permanently for file %s: %v", job.FileID, err)
		return
	}

	w.recordJobSuccess(startTime)
	w.logger.Info("Ingested file %s (duration: %v)", job.FileID, time.Since(startTime))
}

// ingestWithRecovery wraps ingestion with panic recovery
func (w *IngestWorker) ingestWithRecovery(ctx context.Context, job IngestJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WorkerPanicError{Panic: r}
			w.logger.Error("Panic while ingesting file %s: %v", job.FileID, r)
		}
	}()
	return w.ingestor.Ingest(ctx, job.FileID, job.Content)
}
