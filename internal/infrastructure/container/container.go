// Package container provides dependency injection for the application.
package container

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/application/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/repositories"
	domainservices "github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/assets"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/engine"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/filesystem"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/metrics"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/output"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/persistence/memory"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/persistence/sqlite"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/system"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/tags"
)

// Container holds all application dependencies for one repository root.
type Container struct {
	fs                  *filesystem.AferoFS
	registry            *tags.Registry
	assets              *assets.Resolver
	runs                repositories.RunRepository
	formatters          *output.FormatterFactory
	validateDocsUseCase *services.ValidateDocsUseCase
	validateTagsUseCase *services.ValidateTagsUseCase
	scaffoldUseCase     *services.ScaffoldUseCase
	config              *system.Config
	logger              *slog.Logger
	closers             []ports.Closer
	rootDir             string
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	Config *system.Config
	// FileSystem defaults to the OS filesystem.
	FileSystem *filesystem.AferoFS
	// HTTPClient is used for smoke-test downloads.
	HTTPClient *http.Client
	// Runner replaces os/exec for git invocations.
	Runner  assets.CommandRunner
	RootDir string
	// HistoryDB is a SQLite file for run history. Empty keeps history in memory.
	HistoryDB string
	// MetricsFile receives Prometheus metrics after each run. Empty disables it.
	MetricsFile string
	Version     string
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = system.DefaultConfig()
	}
	if opts.FileSystem == nil {
		opts.FileSystem = filesystem.NewOS()
	}
	cfg := opts.Config
	logger := opts.Logger

	registry := tags.NewRegistry(opts.FileSystem, opts.RootDir, cfg.TagsPath, cfg.TagFiles)

	fetcher := assets.NewHTTPFetcher(opts.HTTPClient, opts.FileSystem.Fs(), opts.RootDir)
	smoke := assets.NewSmokeTester(fetcher,
		assets.WithTimeout(cfg.SmokeTestTimeout),
		assets.WithCISleep(cfg.CISleep),
		assets.WithLogger(logger),
	)
	changes := assets.NewGitChangeDetector(opts.FileSystem, opts.RootDir, cfg.GitReference, opts.Runner, logger)
	resolver := assets.NewResolver(changes, smoke, logger)

	c := &Container{
		fs:         opts.FileSystem,
		registry:   registry,
		assets:     resolver,
		formatters: output.NewFormatterFactory(opts.Version),
		config:     cfg,
		logger:     logger,
		rootDir:    opts.RootDir,
	}

	if opts.HistoryDB != "" {
		repo, err := sqlite.Open(opts.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		c.runs = repo
		c.closers = append(c.closers, repo)
	} else {
		c.runs = memory.NewRunRepository()
	}

	var sink ports.MetricsSink
	if opts.MetricsFile != "" {
		sink = metrics.NewTextfileSink(opts.MetricsFile)
	}

	c.validateDocsUseCase = services.NewValidateDocsUseCase(services.ValidateDocsDeps{
		FileSystem:  opts.FileSystem,
		Registry:    registry,
		Assets:      resolver,
		Engines:     engine.NewFactory(logger),
		Runs:        c.runs,
		Metrics:     sink,
		Logger:      logger,
		CatalogHost: cfg.CatalogHost,
		Version:     opts.Version,
	})
	c.validateTagsUseCase = services.NewValidateTagsUseCase(
		opts.FileSystem, tags.NewDefinitionValidator(opts.FileSystem, logger), logger)
	c.scaffoldUseCase = services.NewScaffoldUseCase(opts.FileSystem, cfg.CatalogHost, logger)

	return c, nil
}

// ValidateDocsUseCase returns the documentation validation use case.
func (c *Container) ValidateDocsUseCase() *services.ValidateDocsUseCase {
	return c.validateDocsUseCase
}

// ValidateTagsUseCase returns the tag definition validation use case.
func (c *Container) ValidateTagsUseCase() *services.ValidateTagsUseCase {
	return c.validateTagsUseCase
}

// ScaffoldUseCase returns the skeleton document use case.
func (c *Container) ScaffoldUseCase() *services.ScaffoldUseCase {
	return c.scaffoldUseCase
}

// Parser returns a documentation parser for read-only inspection.
// Asset checks are disabled.
func (c *Container) Parser() *services.DocumentationParser {
	return services.NewDocumentationParser(
		c.fs,
		c.registry,
		nil,
		domainservices.NewModelURLScanner(c.config.CatalogHost),
		c.DocsDir(),
		dto.ValidationConfig{SkipAssetCheck: true},
		c.logger,
	)
}

// DocsDir returns the documentation directory of the configured root.
func (c *Container) DocsDir() string {
	return services.DocsDir(c.rootDir, c.config.DocsPath)
}

// TagsDir returns the tag definition directory of the configured root.
func (c *Container) TagsDir() string {
	return services.TagsDir(c.rootDir, c.config.TagsPath)
}

// FileSystem returns the filesystem adapter.
func (c *Container) FileSystem() *filesystem.AferoFS {
	return c.fs
}

// Registry returns the tag value registry.
func (c *Container) Registry() *tags.Registry {
	return c.registry
}

// Runs returns the run history repository.
func (c *Container) Runs() repositories.RunRepository {
	return c.runs
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() ports.OutputFormatterFactory {
	return c.formatters
}

// Config returns the effective configuration.
func (c *Container) Config() *system.Config {
	return c.config
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Close releases resources such as the history database.
func (c *Container) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
