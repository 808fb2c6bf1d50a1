// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// Ensure interface compliance
var _ ports.DocumentValidator = (*DocumentationParser)(nil)

// ParsedDocument is a record read up to the end of its metadata preamble.
type ParsedDocument struct {
	Metadata    values.Metadata
	Path        string
	Description string
	// Body holds the lines after the preamble, starting at the first heading.
	Body   []string
	Lines  []string
	Policy services.Policy
	Handle values.Handle
}

// DocumentationParser validates single documentation files against the
// rules of their document type. It is safe for concurrent use as long as
// its collaborators are.
type DocumentationParser struct {
	fs       ports.FileSystem
	registry services.TagRegistry
	assets   ports.AssetValidator
	scanner  *services.ModelURLScanner
	logger   *slog.Logger
	docsDir  string
	config   dto.ValidationConfig
}

// NewDocumentationParser creates a parser for documents below docsDir.
// registry and assets may be nil to disable tag value and asset checks.
func NewDocumentationParser(
	fs ports.FileSystem,
	registry services.TagRegistry,
	assets ports.AssetValidator,
	scanner *services.ModelURLScanner,
	docsDir string,
	config dto.ValidationConfig,
	logger *slog.Logger,
) *DocumentationParser {
	if logger == nil {
		logger = slog.Default()
	}
	if scanner == nil {
		scanner = services.NewModelURLScanner("")
	}
	return &DocumentationParser{
		fs:       fs,
		registry: registry,
		assets:   assets,
		scanner:  scanner,
		docsDir:  docsDir,
		config:   config,
		logger:   logger,
	}
}

// DocsDir returns the documentation root the parser resolves paths against.
func (p *DocumentationParser) DocsDir() string {
	return p.docsDir
}

// ReadHandle parses only the first line of the document at path.
func (p *DocumentationParser) ReadHandle(path string) (values.Handle, error) {
	lines, err := p.readLines(path)
	if err != nil {
		return values.Handle{}, err
	}
	return parseHandle(lines, path)
}

// Parse reads the document at path up to the end of its metadata without
// applying any placement or metadata rule.
func (p *DocumentationParser) Parse(path string) (*ParsedDocument, error) {
	lines, err := p.readLines(path)
	if err != nil {
		return nil, err
	}
	h, err := parseHandle(lines, path)
	if err != nil {
		return nil, err
	}
	policy, err := services.PolicyFor(h.DocType)
	if err != nil {
		return nil, err
	}

	doc := &ParsedDocument{Path: path, Lines: lines, Handle: h, Policy: policy}
	desc, next, err := services.ConsumeDescription(lines)
	if err != nil {
		return nil, withPath(err, path)
	}
	md, next, err := services.ConsumeMetadata(lines, next)
	if err != nil {
		return nil, withPath(err, path)
	}
	doc.Description = desc
	doc.Metadata = md
	doc.Body = lines[next:]
	return doc, nil
}

// Validate runs every configured check on the document at path and returns
// the first violation. The handle is returned whenever the first line parsed.
func (p *DocumentationParser) Validate(ctx context.Context, path string) (values.Handle, error) {
	lines, err := p.readLines(path)
	if err != nil {
		return values.Handle{}, err
	}

	h, err := parseHandle(lines, path)
	if err != nil {
		return values.Handle{}, err
	}
	policy, err := services.PolicyFor(h.DocType)
	if err != nil {
		return h, err
	}

	if err := services.CheckPublisherPage(p.fs, p.docsDir, h); err != nil {
		return h, withPath(err, path)
	}

	if !p.config.SkipFilePathCheck {
		if err := policy.CheckPath(p.fs, p.docsDir, h, path); err != nil {
			return h, withPath(err, path)
		}
	}

	_, next, err := services.ConsumeDescription(lines)
	if err != nil {
		return h, withPath(err, path)
	}
	md, next, err := services.ConsumeMetadata(lines, next)
	if err != nil {
		return h, withPath(err, path)
	}

	if err := policy.ValidateMetadata(md, p.registry); err != nil {
		return h, withPath(err, path)
	}

	if h.DocType == values.DocTypeCollection && !p.config.SkipContentCheck {
		if err := services.CheckCollectionContent(p.fs, p.docsDir, p.scanner, lines[next:]); err != nil {
			return h, withPath(err, path)
		}
	}

	if policy.HasAsset() && !p.config.SkipAssetCheck && p.assets != nil {
		if err := ctx.Err(); err != nil {
			return h, err
		}
		err := p.assets.Validate(ctx, path, h, md, policy.AssetSuffix, p.config.DoSmokeTest)
		if err != nil {
			return h, withPath(err, path)
		}
	}

	return h, nil
}

// ValidateDocument validates one job of a batch and classifies the outcome.
func (p *DocumentationParser) ValidateDocument(ctx context.Context, job ports.DocumentJob) execution.FileResult {
	start := time.Now()
	p.logger.Info("validating document", "path", job.Path)

	h, err := p.Validate(ctx, job.Path)
	fr := execution.NewFileResult(job.Index, job.Path, err)
	fr.Duration = time.Since(start)
	if h.Publisher != "" {
		fr.HandleID = h.ID()
		fr.DocType = h.DocType.String()
	}
	if err != nil {
		p.logger.Debug("document invalid", "path", job.Path, "kind", fr.ErrorKind, "error", err)
	}
	return fr
}

func (p *DocumentationParser) readLines(path string) ([]string, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return services.SplitLines(string(data)), nil
}

func parseHandle(lines []string, path string) (values.Handle, error) {
	h, err := services.ParseHandle(lines[0])
	if err != nil {
		return values.Handle{}, withPath(err, path)
	}
	return h, nil
}

// withPath annotates documentation errors with the file they were found in.
func withPath(err error, path string) error {
	var verr *validation.Error
	if errors.As(err, &verr) && verr.Path == "" {
		return verr.WithPath(path)
	}
	return err
}
