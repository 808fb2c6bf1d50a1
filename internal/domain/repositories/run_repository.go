// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunRepository defines the interface for persisting run summaries.
type RunRepository interface {
	// Save persists a run summary. Saving the same run ID again replaces it.
	Save(ctx context.Context, record execution.RunRecord) error

	// FindByID retrieves a run by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (execution.RunRecord, error)

	// Recent retrieves the newest runs first. A limit of zero returns all runs.
	Recent(ctx context.Context, limit int) ([]execution.RunRecord, error)

	// FindBetween retrieves runs that started within [start, end], newest first.
	FindBetween(ctx context.Context, start, end time.Time) ([]execution.RunRecord, error)
}
