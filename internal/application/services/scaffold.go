package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	apperrors "github.com/tensorflow/tfhub.dev/internal/application/errors"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
	"github.com/tensorflow/tfhub.dev/internal/templates"
)

// ScaffoldUseCase renders skeleton documents that pass validation once the
// placeholder values are replaced.
type ScaffoldUseCase struct {
	writer      ports.DocumentWriter
	logger      *slog.Logger
	catalogHost string
}

// NewScaffoldUseCase creates a new scaffold use case.
func NewScaffoldUseCase(writer ports.DocumentWriter, catalogHost string, logger *slog.Logger) *ScaffoldUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if catalogHost == "" {
		catalogHost = services.DefaultCatalogHost
	}
	return &ScaffoldUseCase{writer: writer, logger: logger, catalogHost: catalogHost}
}

// Execute renders the requested document and writes it to the first path its
// type allows.
func (uc *ScaffoldUseCase) Execute(ctx context.Context, req dto.ScaffoldRequest) (*dto.ScaffoldResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := scaffoldHandle(req)
	if err != nil {
		return nil, err
	}
	policy, err := services.PolicyFor(h.DocType)
	if err != nil {
		return nil, apperrors.NewValidationError("type", err.Error())
	}

	data := templates.DocData{
		Keyword:     h.DocType.Keyword(),
		HandleID:    headline(h),
		Publisher:   h.Publisher,
		Title:       titleCase(h.Publisher),
		Description: req.Description,
		Host:        uc.catalogHost,
	}
	if data.Description == "" {
		data.Description = "Short description of " + h.ID() + "."
	}
	for _, tag := range services.SkeletonTags(policy, h, uc.catalogHost) {
		data.Tags = append(data.Tags, templates.Tag{Key: tag.Key, Value: tag.Value})
	}

	content, err := templates.Render(templateFor(h.DocType), data)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScaffoldResponse{
		Path:    policy.AllowedPaths(req.DocsDir, h)[0],
		Content: content,
	}
	if req.DryRun {
		return resp, nil
	}
	if err := uc.writer.WriteFile(resp.Path, []byte(content)); err != nil {
		return nil, fmt.Errorf("failed to write skeleton: %w", err)
	}
	resp.Written = true
	uc.logger.Info("created documentation skeleton", "path", resp.Path, "handle", h.ID())
	return resp, nil
}

func scaffoldHandle(req dto.ScaffoldRequest) (values.Handle, error) {
	docType, err := values.ParseDocType(req.DocType)
	if err != nil {
		return values.Handle{}, apperrors.NewValidationError("type", err.Error())
	}
	h := values.Handle{DocType: docType, Publisher: strings.TrimSpace(req.Publisher)}
	if h.Publisher == "" {
		return values.Handle{}, apperrors.NewValidationError("publisher", "publisher is required")
	}
	if docType == values.DocTypePublisher {
		return h, nil
	}

	h.Name = strings.TrimSpace(req.Name)
	if h.Name == "" {
		return values.Handle{}, apperrors.NewValidationError("name", "name is required")
	}
	h.Version = strings.TrimSpace(req.Version)
	if docType == values.DocTypeCollection || h.Version == "" {
		h.Version = "1"
	}
	return h, nil
}

// headline is the handle as written on the first line. Collections carry a
// fixed version there even though it is not part of their id.
func headline(h values.Handle) string {
	if h.DocType == values.DocTypeCollection {
		return h.ID() + "/" + h.Version
	}
	return h.ID()
}

func templateFor(d values.DocType) string {
	switch d {
	case values.DocTypePublisher:
		return "publisher"
	case values.DocTypeCollection:
		return "collection"
	default:
		return "model"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
