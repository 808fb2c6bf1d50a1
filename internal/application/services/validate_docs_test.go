package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	apperrors "github.com/tensorflow/tfhub.dev/internal/application/errors"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/engine"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/filesystem"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/persistence/memory"
)

type useCaseFixture struct {
	fs      *filesystem.AferoFS
	assets  *fakeAssets
	runs    *memory.RunRepository
	metrics *fakeMetrics
	uc      *ValidateDocsUseCase
}

func newUseCase(t *testing.T, docs map[string]string) *useCaseFixture {
	t.Helper()
	f := &useCaseFixture{
		fs:      seedRepo(t, docs),
		assets:  &fakeAssets{},
		runs:    memory.NewRunRepository(),
		metrics: &fakeMetrics{},
	}
	f.uc = NewValidateDocsUseCase(ValidateDocsDeps{
		FileSystem: f.fs,
		Registry:   registryFor(f.fs),
		Assets:     f.assets,
		Engines:    engine.NewFactory(quietLogger()),
		Runs:       f.runs,
		Metrics:    f.metrics,
		Logger:     quietLogger(),
		Version:    "1.2.3",
	})
	return f
}

func request(files ...string) dto.ValidateDocsRequest {
	return dto.ValidateDocsRequest{
		RootDir:   testRoot,
		Files:     files,
		Config:    dto.DefaultValidationConfig(len(files) > 0),
		Execution: dto.ExecutionOptions{Parallel: true, MaxConcurrentDocuments: 2},
	}
}

func TestValidateDocs_WholeTree(t *testing.T) {
	f := newUseCase(t, withDocs(validTree, map[string]string{"README.txt": "not a document"}))

	resp, err := f.uc.Execute(context.Background(), request())
	require.NoError(t, err)

	result := resp.Result
	assert.Equal(t, 4, result.Summary.Total, "only Markdown files are discovered")
	assert.Equal(t, 4, result.Summary.Passed)
	assert.False(t, result.HasFailures())
	assert.False(t, result.SmokeTested)
	assert.Equal(t, "1.2.3", result.HubdocVersion)
	assert.Equal(t, testDocs, result.DocsDir)

	var paths []string
	for _, fr := range result.Files {
		paths = append(paths, fr.Path)
	}
	assert.Equal(t, []string{
		docPath("google/collections/text/1.md"),
		docPath("google/google.md"),
		docPath("google/models/bert/1.md"),
		docPath("google/models/bert/tfjs/1.md"),
	}, paths, "results follow lexical discovery order")

	for _, call := range f.assets.called() {
		assert.False(t, call.smoke)
	}

	recent, err := f.runs.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, result.RunID, recent[0].RunID)
	assert.True(t, recent[0].Succeeded())
	assert.Same(t, result, f.metrics.observed)
}

func TestValidateDocs_Files(t *testing.T) {
	docs := withDocs(validTree, map[string]string{
		"google/bert.md":         savedModelDoc,
		"google/models/bad/1.md": "# Module google/bad/1\nBad.\n",
	})
	f := newUseCase(t, docs)

	resp, err := f.uc.Execute(context.Background(), request(
		"google/models/bert/1.md",
		"google/bert.md",
		"google/models/bad/1.md",
		"google/models/bert/1.md",
	))
	require.NoError(t, err)

	result := resp.Result
	assert.True(t, result.SmokeTested)
	assert.Equal(t, 3, result.Summary.Total, "duplicates are validated once")
	assert.Equal(t, 1, result.Summary.Passed)
	assert.Equal(t, 2, result.Summary.Failed)
	assert.Equal(t, map[validation.Kind]int{
		validation.KindPathPlacement:   1,
		validation.KindMetadataMissing: 1,
	}, result.Summary.ErrorsByKind)

	errs := result.Errors()
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, docPath("google/bert.md"))
	assert.Contains(t, errs, docPath("google/models/bad/1.md"))

	assert.Equal(t, []assetCall{{path: docPath("google/models/bert/1.md"), suffix: ".tar.gz", smoke: true}},
		f.assets.called())

	recent, err := f.runs.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, recent[0].Succeeded())
	assert.Equal(t, 2, recent[0].Failed)
}

func TestValidateDocs_MissingFileIsError(t *testing.T) {
	f := newUseCase(t, validTree)

	resp, err := f.uc.Execute(context.Background(), request("google/models/nope/1.md"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Result.Summary.Errored)
	assert.Equal(t, values.StatusError, resp.Result.Files[0].Status)
}

func TestValidateDocs_Filter(t *testing.T) {
	f := newUseCase(t, validTree)
	req := request()
	req.Filters.FilterExpression = `doc_type == "collection" || doc_type == "publisher"`

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	result := resp.Result
	assert.Equal(t, 4, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Passed)
	assert.Equal(t, 2, result.Summary.Skipped)
	skipped, ok := result.GetFileResult(docPath("google/models/bert/1.md"))
	require.True(t, ok)
	assert.Equal(t, values.StatusSkipped, skipped.Status)
	assert.Equal(t, "excluded by filter expression", skipped.SkipReason)
	assert.Equal(t, "google/bert/1", skipped.HandleID)
	assert.Empty(t, f.assets.called())
}

func TestValidateDocs_InvalidFilter(t *testing.T) {
	f := newUseCase(t, validTree)
	req := request()
	req.Filters.FilterExpression = `doc_type ==`

	_, err := f.uc.Execute(context.Background(), req)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "filter", verr.Field)
}

func TestValidateDocs_MissingDocsDir(t *testing.T) {
	f := newUseCase(t, nil)

	_, err := f.uc.Execute(context.Background(), request())
	var cerr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "docs", cerr.Aspect)
}

func TestValidateDocs_RegistryWarnings(t *testing.T) {
	f := newUseCase(t, validTree)
	require.NoError(t, f.fs.Fs().Remove("/repo/tags/language.yaml"))

	resp, err := f.uc.Execute(context.Background(), request())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Diagnostics.Warnings)
	assert.Contains(t, resp.Diagnostics.Warnings[0], "language")

	fr, ok := resp.Result.GetFileResult(docPath("google/models/bert/1.md"))
	require.True(t, ok)
	assert.Equal(t, validation.KindRegistryLoad, fr.ErrorKind)
	assert.True(t, fr.ErrorKind.IsTagValue())
}

func TestValidateDocs_MetricsFailureIsWarning(t *testing.T) {
	f := newUseCase(t, validTree)
	f.metrics.err = errors.New("disk full")

	resp, err := f.uc.Execute(context.Background(), request())
	require.NoError(t, err)
	assert.Contains(t, resp.Diagnostics.Warnings, "metrics: disk full")
}

func TestValidateDocs_Cancelled(t *testing.T) {
	f := newUseCase(t, validTree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, request())
	var eerr *apperrors.ExecutionError
	require.ErrorAs(t, err, &eerr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocsDir(t *testing.T) {
	assert.Equal(t, "/repo/assets/docs", DocsDir("/repo", ""))
	assert.Equal(t, "/repo/docs", DocsDir("/repo", "docs"))
	assert.Equal(t, "/elsewhere", DocsDir("/repo", "/elsewhere/"))
}
