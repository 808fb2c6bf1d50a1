// Package engine runs batches of document validations.
package engine

import (
	"runtime"
)

// MinConcurrentDocuments is the minimum number of concurrent document validations,
// ensuring reasonable parallelism even on single-core systems.
const MinConcurrentDocuments = 4

// ExecutionConfig controls execution behavior.
type ExecutionConfig struct {
	MaxConcurrentDocuments int
	Parallel               bool
}

// DefaultExecutionConfig returns sensible defaults for parallel execution.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		MaxConcurrentDocuments: max(runtime.NumCPU(), MinConcurrentDocuments),
		Parallel:               true,
	}
}

// workers returns the pool size, falling back to the default when unset.
func (c ExecutionConfig) workers() int {
	if c.MaxConcurrentDocuments > 0 {
		return c.MaxConcurrentDocuments
	}
	return max(runtime.NumCPU(), MinConcurrentDocuments)
}
