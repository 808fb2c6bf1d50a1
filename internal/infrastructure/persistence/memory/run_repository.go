// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/repositories"
)

// Ensure interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// RunRepository is an in-memory implementation of repositories.RunRepository.
// Useful for testing and for runs without a history database.
type RunRepository struct {
	runs map[uuid.UUID]execution.RunRecord
	mu   sync.RWMutex
}

// NewRunRepository creates a new in-memory repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[uuid.UUID]execution.RunRecord),
	}
}

// Save persists a run summary.
func (r *RunRepository) Save(_ context.Context, record execution.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[record.RunID.UUID()] = record
	return nil
}

// FindByID retrieves a run by its unique ID.
func (r *RunRepository) FindByID(_ context.Context, id uuid.UUID) (execution.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.runs[id]
	if !ok {
		return execution.RunRecord{}, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, id)
	}
	return record, nil
}

// Recent retrieves the newest runs first.
func (r *RunRepository) Recent(_ context.Context, limit int) ([]execution.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]execution.RunRecord, 0, len(r.runs))
	for _, rec := range r.runs {
		matches = append(matches, rec)
	}
	sortNewestFirst(matches)

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// FindBetween retrieves runs that started within [start, end].
func (r *RunRepository) FindBetween(_ context.Context, start, end time.Time) ([]execution.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []execution.RunRecord
	for _, rec := range r.runs {
		if !rec.StartedAt.Before(start) && !rec.StartedAt.After(end) {
			matches = append(matches, rec)
		}
	}
	sortNewestFirst(matches)
	return matches, nil
}

func sortNewestFirst(records []execution.RunRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
}
