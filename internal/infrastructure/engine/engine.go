package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
)

// Ensure interface compliance
var _ ports.ExecutionEngine = (*Engine)(nil)

// Engine coordinates batch execution.
type Engine struct {
	logger *slog.Logger
	config ExecutionConfig
}

// NewEngine creates a new execution engine with default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultExecutionConfig(), nil)
}

// NewEngineWithConfig creates a new execution engine with custom configuration.
func NewEngineWithConfig(cfg ExecutionConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: cfg, logger: logger}
}

// Config returns the engine configuration.
func (e *Engine) Config() ExecutionConfig {
	return e.config
}

// Execute validates every job and adds its outcome to result.
// A single document failing never stops the batch; only context
// cancellation does.
func (e *Engine) Execute(
	ctx context.Context,
	jobs []ports.DocumentJob,
	validator ports.DocumentValidator,
	result *execution.ValidationResult,
) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	if e.config.Parallel && len(jobs) > 1 {
		e.logger.Debug("validating documents in parallel", "documents", len(jobs), "workers", e.config.workers())
		if err := e.executeWithWorkerPool(ctx, jobs, validator, result); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("execution timed out: %w", err)
			}
			return err
		}
		return checkContext(ctx)
	}

	for _, job := range jobs {
		if err := checkContext(ctx); err != nil {
			return err
		}
		result.AddFileResult(validator.ValidateDocument(ctx, job))
	}
	return checkContext(ctx)
}

func checkContext(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("execution timed out: %w", ctx.Err())
	}
	return ctx.Err()
}

// Factory creates engines from per-run execution options.
type Factory struct {
	logger *slog.Logger
}

// Ensure interface compliance
var _ ports.EngineFactory = (*Factory)(nil)

// NewFactory creates an engine factory.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{logger: logger}
}

// CreateEngine returns an engine honoring opts. A zero concurrency limit
// keeps the default pool size.
func (f *Factory) CreateEngine(opts dto.ExecutionOptions) ports.ExecutionEngine {
	cfg := DefaultExecutionConfig()
	cfg.Parallel = opts.Parallel
	if opts.MaxConcurrentDocuments > 0 {
		cfg.MaxConcurrentDocuments = opts.MaxConcurrentDocuments
	}
	return NewEngineWithConfig(cfg, f.logger)
}
