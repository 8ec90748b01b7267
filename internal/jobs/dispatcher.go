package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/diffsentry/diffsentry/internal/core"
)

const jobQueueSize = 100

// dispatcher implements core.JobDispatcher with a fixed pool of worker
// goroutines. Webhook deliveries are acknowledged immediately while reviews
// run in the background.
type dispatcher struct {
	job        core.Job
	jobQueue   chan *core.ReviewEvent
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher starts a worker pool of maxWorkers goroutines (minimum 1)
// draining the job queue.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) *dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.ReviewEvent, jobQueueSize),
		logger:     logger,
	}
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.work(i)
	}
	return d
}

func (d *dispatcher) work(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for event := range d.jobQueue {
		d.logger.Info("worker picked up review", "worker_id", workerID, "repo", event.RepoFullName, "pr", event.PRNumber)
		if err := d.job.Run(context.Background(), event); err != nil {
			d.logger.Error("review job failed", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		}
	}

	d.logger.Info("review worker stopped", "id", workerID)
}

// Dispatch queues an event for processing. A full queue is reported back as
// an error so the webhook handler can signal backpressure.
func (d *dispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	select {
	case d.jobQueue <- event:
		d.logger.Info("queued review job", "repo", event.RepoFullName, "pr", event.PRNumber)
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review job")
	}
}

// Stop closes the queue and waits for in-flight reviews to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher, waiting for in-flight reviews")
	close(d.jobQueue)
	d.wg.Wait()
}
