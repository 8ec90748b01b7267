package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// review jobs for asynchronous processing. It decouples the event source
// (the webhook handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a ReviewEvent and queues it for processing. It returns
	// an error if the job cannot be queued, for example when the queue is
	// full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *ReviewEvent) error
}

// Job represents a single, executable unit of work. Each job is triggered by
// a ReviewEvent and performs one end-to-end review run.
type Job interface {
	Run(ctx context.Context, event *ReviewEvent) error
}
