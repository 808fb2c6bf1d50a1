// Package assets validates the asset-path tag of model documents: the value
// itself, and optionally the archive it points to.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// GitHub's robots.txt disallows fetching release downloads.
var githubDownloadRegex = regexp.MustCompile(`^https://github.com/.*/releases/download/.*$`)

// Ensure interface compliance
var _ ports.AssetValidator = (*Resolver)(nil)

// Checker inspects the archive behind an asset-path value.
type Checker interface {
	Check(ctx context.Context, location string) error
}

// Resolver checks asset-path tags.
type Resolver struct {
	changes ports.ChangeDetector
	smoke   Checker
	logger  *slog.Logger
}

// NewResolver creates a resolver. smoke may be nil when smoke tests are never requested.
func NewResolver(changes ports.ChangeDetector, smoke Checker, logger *slog.Logger) *Resolver {
	if changes == nil {
		changes = AlwaysModified{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{changes: changes, smoke: smoke, logger: logger}
}

// Validate checks the asset-path of the document at docPath.
//
// Unchanged tags are skipped. Otherwise the tag must hold exactly one value
// ending in suffix that is not a GitHub release download. With smoke set, a
// SavedModel archive is downloaded and inspected as well.
func (r *Resolver) Validate(ctx context.Context, docPath string, h values.Handle, md values.Metadata, suffix string, smoke bool) error {
	modified, err := r.changes.AssetPathModified(ctx, docPath)
	if err != nil {
		return fmt.Errorf("failed to detect asset-path changes: %w", err)
	}
	if !modified {
		r.logger.Info("skipping asset path validation since the tag is not added or modified", "path", docPath)
		return nil
	}

	assetPaths := md.Values(services.KeyAssetPath)
	if len(assetPaths) != 1 {
		return validation.New(validation.KindAssetPath, "No more than one asset-path tag may be specified.")
	}
	assetPath := assetPaths[0]

	if !strings.HasSuffix(assetPath, suffix) {
		return validation.New(validation.KindAssetPath, "Expected asset-path to end with %s but was %s.", suffix, assetPath)
	}

	if githubDownloadRegex.MatchString(assetPath) {
		return validation.New(validation.KindAssetPath,
			"The asset-path %s is a url that cannot be automatically fetched. "+
				"Please provide an asset-path that is allowed to be fetched by its robots.txt.", assetPath)
	}

	if !smoke || h.DocType != values.DocTypeSavedModel {
		return nil
	}
	if r.smoke == nil {
		return fmt.Errorf("smoke test requested for %s but no smoke tester is configured", docPath)
	}

	r.logger.Info("smoke testing asset", "path", docPath, "asset", assetPath)
	return r.smoke.Check(ctx, assetPath)
}
