// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// FileSystem is the read-only view of the documentation tree.
// Paths are absolute, using the host separator.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) (bool, error)
	Glob(pattern string) ([]string, error)
	// Walk calls fn for every regular file below root, in lexical order.
	Walk(root string, fn func(path string) error) error
}

// AssetFetcher opens the artifact an asset-path tag points to.
type AssetFetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// ChangeDetector reports whether a document's asset-path tag was added or
// modified relative to the reference revision.
type ChangeDetector interface {
	AssetPathModified(ctx context.Context, path string) (bool, error)
}

// TagRegistry resolves tag value checkers and can be loaded up front.
type TagRegistry interface {
	services.TagRegistry
	// Warm loads every registered tag so later lookups never touch storage.
	Warm() error
}

// AssetValidator checks the asset-path tag of a model document.
type AssetValidator interface {
	Validate(ctx context.Context, docPath string, h values.Handle, md values.Metadata, suffix string, smoke bool) error
}

// DocumentJob identifies one document of a batch by its discovery order.
type DocumentJob struct {
	Path  string
	Index int
}

// DocumentValidator validates a single document and classifies the outcome.
type DocumentValidator interface {
	ValidateDocument(ctx context.Context, job DocumentJob) execution.FileResult
}

// ExecutionEngine runs a batch of documents and records every outcome in result.
type ExecutionEngine interface {
	Execute(ctx context.Context, jobs []DocumentJob, validator DocumentValidator, result *execution.ValidationResult) error
}

// EngineFactory creates execution engines for a run.
type EngineFactory interface {
	CreateEngine(opts dto.ExecutionOptions) ExecutionEngine
}

// TagDefinitionValidator checks tag definition files and returns the
// definition error of every invalid file, keyed by path.
type TagDefinitionValidator interface {
	ValidateFiles(paths []string) map[string]error
}

// FormatterOptions tune how results are rendered.
type FormatterOptions struct {
	// Indent pretty-prints structured formats
	Indent bool
	// Verbose includes passing documents in human-readable output
	Verbose bool
	// Color forces colored table output on or off
	Color *bool
	// MaxMessageWidth truncates messages in the table (0 = no limit)
	MaxMessageWidth int
}

// OutputFormatter formats validation results.
type OutputFormatter interface {
	Format(result *execution.ValidationResult) error
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, w io.Writer, opts FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}

// MetricsSink receives the outcome of a finished run.
type MetricsSink interface {
	Observe(result *execution.ValidationResult) error
}

// Closer is a common interface for resources that need cleanup.
type Closer interface {
	io.Closer
}

// DocumentWriter creates new files. Implementations refuse to overwrite.
type DocumentWriter interface {
	WriteFile(path string, data []byte) error
}
