package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	apperrors "github.com/tensorflow/tfhub.dev/internal/application/errors"
	"github.com/tensorflow/tfhub.dev/internal/application/ports"
)

// ValidateTagsUseCase checks the tag definition files of a repository.
type ValidateTagsUseCase struct {
	fs        ports.FileSystem
	validator ports.TagDefinitionValidator
	logger    *slog.Logger
}

// NewValidateTagsUseCase creates a new tag definition validation use case.
func NewValidateTagsUseCase(fs ports.FileSystem, validator ports.TagDefinitionValidator, logger *slog.Logger) *ValidateTagsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateTagsUseCase{fs: fs, validator: validator, logger: logger}
}

// Execute validates the requested definition files, or every YAML file below
// the tags directory when none are given. Errors are keyed by the path
// relative to the tags directory.
func (uc *ValidateTagsUseCase) Execute(ctx context.Context, req dto.ValidateTagsRequest) (*dto.ValidateTagsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tagsDir := TagsDir(req.RootDir, req.TagsPath)
	paths, err := uc.discover(tagsDir, req.Files)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("validating tag definitions", "dir", tagsDir, "files", len(paths))

	resp := &dto.ValidateTagsResponse{Errors: make(map[string]error)}
	for _, p := range paths {
		resp.Validated = append(resp.Validated, relTo(tagsDir, p))
	}
	for p, verr := range uc.validator.ValidateFiles(paths) {
		resp.Errors[relTo(tagsDir, p)] = verr
	}

	if len(resp.Errors) == 0 {
		uc.logger.Info(fmt.Sprintf("Found %d matching files - all validated successfully.", len(paths)))
	}
	return resp, nil
}

// TagsDir resolves the tag definition directory of a repository.
func TagsDir(rootDir, tagsPath string) string {
	if tagsPath == "" {
		tagsPath = dto.DefaultTagsPath
	}
	if filepath.IsAbs(tagsPath) {
		return filepath.Clean(tagsPath)
	}
	return filepath.Join(rootDir, tagsPath)
}

func (uc *ValidateTagsUseCase) discover(tagsDir string, files []string) ([]string, error) {
	if len(files) > 0 {
		out := make([]string, 0, len(files))
		for _, f := range files {
			if filepath.IsAbs(f) {
				out = append(out, filepath.Clean(f))
				continue
			}
			out = append(out, filepath.Join(tagsDir, f))
		}
		return out, nil
	}

	exists, err := uc.fs.Exists(tagsDir)
	if err != nil {
		return nil, apperrors.NewConfigurationError("tags", "failed to access tags directory", err)
	}
	if !exists {
		return nil, apperrors.NewConfigurationError("tags",
			fmt.Sprintf("tags directory %s does not exist", tagsDir), nil)
	}

	var out []string
	err = uc.fs.Walk(tagsDir, func(path string) error {
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("tags", "failed to list tag definition files", err)
	}
	sort.Strings(out)
	return out, nil
}

func relTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
