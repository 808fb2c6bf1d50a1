package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
)

// workerPoolState holds the channels shared by the producer and the workers.
// Documents are independent, so there is no ready queue: the producer feeds
// jobs in discovery order and workers record results as they finish.
type workerPoolState struct {
	ctx       context.Context
	errGroup  *errgroup.Group
	workChan  chan ports.DocumentJob
	validator ports.DocumentValidator
	result    *execution.ValidationResult
	jobs      []ports.DocumentJob
}

// produce sends every job to the workers and closes the channel.
func (state *workerPoolState) produce() error {
	defer close(state.workChan)

	for _, job := range state.jobs {
		select {
		case state.workChan <- job:
		case <-state.ctx.Done():
			return state.ctx.Err()
		}
	}
	return nil
}

// executeWorker validates jobs until the channel is closed or the context ends.
func (state *workerPoolState) executeWorker() {
	for job := range state.workChan {
		if state.ctx.Err() != nil {
			return
		}
		state.result.AddFileResult(state.validator.ValidateDocument(state.ctx, job))
	}
}

// executeWithWorkerPool validates jobs concurrently with a bounded number of workers.
func (e *Engine) executeWithWorkerPool(
	ctx context.Context,
	jobs []ports.DocumentJob,
	validator ports.DocumentValidator,
	result *execution.ValidationResult,
) error {
	numWorkers := min(e.config.workers(), len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	state := &workerPoolState{
		ctx:       gCtx,
		errGroup:  g,
		workChan:  make(chan ports.DocumentJob, numWorkers),
		validator: validator,
		result:    result,
		jobs:      jobs,
	}

	for i := 0; i < numWorkers; i++ {
		state.errGroup.Go(func() error {
			state.executeWorker()
			return nil
		})
	}

	state.errGroup.Go(state.produce)

	if err := state.errGroup.Wait(); err != nil {
		return fmt.Errorf("worker pool execution failed: %w", err)
	}
	return nil
}
