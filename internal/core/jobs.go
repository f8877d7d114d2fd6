package core

import (
	"context"
)

// ReviewRequest is one unit of review work queued for asynchronous execution.
type ReviewRequest struct {
	// ID uniquely identifies this run for logging and correlation.
	ID string

	// Repo is the human-readable origin of the change set, e.g. "owner/name".
	Repo string

	Input ReviewInput

	// Gates holds deterministic check results computed by the caller before
	// the request was queued.
	Gates map[string]GateResult
}

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// request source from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a ReviewRequest and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, req *ReviewRequest) error

	// Stop drains the queue and waits for in-flight jobs to finish.
	Stop()
}

// Job represents a single, executable unit of work that can be processed by
// the application's job dispatcher.
type Job interface {
	// Run executes the job's logic. It receives a context for managing its
	// lifecycle and the request containing the data needed to perform its task.
	Run(ctx context.Context, req *ReviewRequest) error
}

// ResultHandler consumes the outcome of a review run. Implementations render
// or forward the result; the engine itself never presents anything.
type ResultHandler interface {
	Handle(ctx context.Context, req *ReviewRequest, res *DegradationResult) error
}

// ResultHandlerFunc adapts a plain function to the ResultHandler interface.
type ResultHandlerFunc func(ctx context.Context, req *ReviewRequest, res *DegradationResult) error

// Handle calls f.
func (f ResultHandlerFunc) Handle(ctx context.Context, req *ReviewRequest, res *DegradationResult) error {
	return f(ctx, req, res)
}
