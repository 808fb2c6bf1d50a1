package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	apperrors "github.com/tensorflow/tfhub.dev/internal/application/errors"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/repositories"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
)

// SmokeTestHint is logged when a run did not download any asset.
const SmokeTestHint = "No models were smoke tested. To download and smoke test a specific model, " +
	"specify files directly in the command line, for example: 'hubdoc validate vtab/models/wae-ukl/1.md'"

// ValidateDocsUseCase orchestrates a documentation run: discovery, filtering,
// parallel validation, reporting and persistence of the run summary.
// This is a pure application layer component that depends only on ports.
type ValidateDocsUseCase struct {
	fs          ports.FileSystem
	registry    ports.TagRegistry
	assets      ports.AssetValidator
	engines     ports.EngineFactory
	runs        repositories.RunRepository
	metrics     ports.MetricsSink
	logger      *slog.Logger
	catalogHost string
	version     string
}

// ValidateDocsDeps are the collaborators of ValidateDocsUseCase.
// Runs and Metrics are optional.
type ValidateDocsDeps struct {
	FileSystem  ports.FileSystem
	Registry    ports.TagRegistry
	Assets      ports.AssetValidator
	Engines     ports.EngineFactory
	Runs        repositories.RunRepository
	Metrics     ports.MetricsSink
	Logger      *slog.Logger
	CatalogHost string
	Version     string
}

// NewValidateDocsUseCase creates a new documentation validation use case.
func NewValidateDocsUseCase(deps ValidateDocsDeps) *ValidateDocsUseCase {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ValidateDocsUseCase{
		fs:          deps.FileSystem,
		registry:    deps.Registry,
		assets:      deps.Assets,
		engines:     deps.Engines,
		runs:        deps.Runs,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		catalogHost: deps.CatalogHost,
		version:     deps.Version,
	}
}

// Execute validates the requested documents. Rule violations are reported in
// the response; an error is returned only when the run itself could not happen.
func (uc *ValidateDocsUseCase) Execute(ctx context.Context, req dto.ValidateDocsRequest) (*dto.ValidateDocsResponse, error) {
	startTime := time.Now()
	docsDir := DocsDir(req.RootDir, req.DocsPath)
	resp := &dto.ValidateDocsResponse{}

	// 1. Filter
	filter, err := uc.compileFilter(req.Filters)
	if err != nil {
		return nil, err
	}

	// 2. Discover
	paths, err := uc.discover(docsDir, req.Files)
	if err != nil {
		return nil, err
	}
	if len(req.Files) > 0 {
		uc.logger.Info("going to validate files in documentation directory", "files", req.Files, "dir", docsDir)
	} else {
		uc.logger.Info("validating all files", "dir", docsDir, "files", len(paths))
	}

	// 3. Warm the registry before workers share it
	if uc.registry != nil {
		if err := uc.registry.Warm(); err != nil {
			uc.logger.Warn("some tag registries could not be loaded", "error", err)
			resp.Diagnostics.Warnings = append(resp.Diagnostics.Warnings, err.Error())
		}
	}

	parser := NewDocumentationParser(uc.fs, uc.registry, uc.assets,
		services.NewModelURLScanner(uc.catalogHost), docsDir, req.Config, uc.logger)

	result := execution.NewValidationResult(req.RootDir, docsDir)
	result.HubdocVersion = uc.version
	result.SmokeTested = req.Config.DoSmokeTest

	// 4. Select
	jobs := uc.selectJobs(parser, filter, paths, result)

	// 5. Execute
	eng := uc.engines.CreateEngine(req.Execution)
	if err := eng.Execute(ctx, jobs, parser, result); err != nil {
		return nil, apperrors.NewExecutionError("", "execution failed", err)
	}
	result.Finalize()
	uc.logSummary(result)

	// 6. Record
	uc.record(ctx, result, resp)

	resp.Result = result
	resp.Metadata = dto.ResponseMetadata{
		RequestID:   req.Metadata.RequestID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(startTime),
	}
	return resp, nil
}

// DocsDir resolves the documentation directory of a repository.
func DocsDir(rootDir, docsPath string) string {
	if docsPath == "" {
		docsPath = dto.DefaultDocsPath
	}
	if filepath.IsAbs(docsPath) {
		return filepath.Clean(docsPath)
	}
	return filepath.Join(rootDir, docsPath)
}

func (uc *ValidateDocsUseCase) compileFilter(opts dto.FilterOptions) (*services.DocumentFilter, error) {
	if opts.FilterExpression == "" {
		return nil, nil
	}
	program, err := services.CompileDocumentFilter(opts.FilterExpression)
	if err != nil {
		return nil, apperrors.NewValidationError("filter", "invalid filter expression", err.Error())
	}
	return services.NewDocumentFilter(program), nil
}

// discover returns absolute document paths. Explicit files are resolved
// against docsDir and kept in the given order; otherwise every Markdown file
// below docsDir is returned in lexical order.
func (uc *ValidateDocsUseCase) discover(docsDir string, files []string) ([]string, error) {
	if len(files) > 0 {
		out := make([]string, 0, len(files))
		seen := make(map[string]bool, len(files))
		for _, f := range files {
			p := f
			if !filepath.IsAbs(p) {
				p = filepath.Join(docsDir, f)
			}
			p = filepath.Clean(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		return out, nil
	}

	exists, err := uc.fs.Exists(docsDir)
	if err != nil {
		return nil, apperrors.NewConfigurationError("docs", "failed to access documentation directory", err)
	}
	if !exists {
		return nil, apperrors.NewConfigurationError("docs",
			fmt.Sprintf("documentation directory %s does not exist", docsDir), nil)
	}

	var out []string
	err = uc.fs.Walk(docsDir, func(path string) error {
		if strings.HasSuffix(path, ".md") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("docs", "failed to list documentation files", err)
	}
	return out, nil
}

// selectJobs turns paths into jobs. Documents excluded by the filter are
// recorded as skipped right away; documents whose first line cannot be read
// are always validated so the error is reported.
func (uc *ValidateDocsUseCase) selectJobs(
	parser *DocumentationParser,
	filter *services.DocumentFilter,
	paths []string,
	result *execution.ValidationResult,
) []ports.DocumentJob {
	jobs := make([]ports.DocumentJob, 0, len(paths))
	for i, p := range paths {
		if filter != nil {
			if h, err := parser.ReadHandle(p); err == nil {
				if ok, reason := filter.Matches(h, p); !ok {
					skipped := execution.SkippedFileResult(i, p, reason)
					skipped.HandleID = h.ID()
					skipped.DocType = h.DocType.String()
					result.AddFileResult(skipped)
					continue
				}
			}
		}
		jobs = append(jobs, ports.DocumentJob{Index: i, Path: p})
	}
	return jobs
}

func (uc *ValidateDocsUseCase) logSummary(result *execution.ValidationResult) {
	uc.logger.Info("validation complete",
		"duration", result.Duration,
		"total", result.Summary.Total,
		"passed", result.Summary.Passed,
		"failed", result.Summary.Failed,
		"errors", result.Summary.Errored,
		"skipped", result.Summary.Skipped)

	if !result.SmokeTested {
		uc.logger.Info(SmokeTestHint)
	}
	if !result.HasFailures() {
		uc.logger.Info(fmt.Sprintf("Found %d matching files - all validated successfully.", result.Summary.Passed))
	}
}

// record persists the run summary and publishes metrics. Failures here never
// change the outcome of the run.
func (uc *ValidateDocsUseCase) record(ctx context.Context, result *execution.ValidationResult, resp *dto.ValidateDocsResponse) {
	if uc.runs != nil {
		if err := uc.runs.Save(ctx, execution.NewRunRecord(result)); err != nil {
			uc.logger.Warn("failed to save run history", "error", err)
			resp.Diagnostics.Warnings = append(resp.Diagnostics.Warnings, fmt.Sprintf("run history: %v", err))
		}
	}
	if uc.metrics != nil {
		if err := uc.metrics.Observe(result); err != nil {
			uc.logger.Warn("failed to write metrics", "error", err)
			resp.Diagnostics.Warnings = append(resp.Diagnostics.Warnings, fmt.Sprintf("metrics: %v", err))
		}
	}
}
