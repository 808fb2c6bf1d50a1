package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/filesystem"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/tags"
)

const (
	testRoot = "/repo"
	testDocs = "/repo/assets/docs"
)

var testTags = map[string]string{
	"dataset.yaml": `
values:
  - id: wikipedia
    display_name: Wikipedia`,
	"language.yaml": `
values:
  - id: en
    display_name: English`,
	"license.yaml": `
values:
  - id: apache-2.0
    display_name: Apache-2.0`,
	"network_architecture.yaml": `
values:
  - id: transformer
    display_name: Transformer`,
	"task.yaml": `
values:
  - id: text-embedding
    display_name: Text embedding
    domains:
      - text`,
	"interactive_visualizer.yaml": `
values:
  - id: vision
    display_name: Vision`,
	"colab.yaml": `
format: url
required_domain: colab.research.google.com`,
	"demo.yaml": `
format: url`,
}

const publisherDoc = `# Publisher google
Google.

[![Icon URL]](https://www.gstatic.com/aihub/google_logo_120.png)
`

const savedModelDoc = `# Module google/bert/1
BERT text encoder.

<!-- asset-path: https://storage.googleapis.com/google/bert/1.tar.gz -->
<!-- fine-tunable: true -->
<!-- format: saved_model_2 -->
<!-- task: text-embedding -->
<!-- language: en -->

## Overview
`

const tfjsDoc = `# Tfjs google/bert/1
BERT for the browser.

<!-- asset-path: https://storage.googleapis.com/google/bert/tfjs/1.tar.gz -->
<!-- parent-model: https://tfhub.dev/google/bert/1 -->
`

const collectionDoc = `# Collection google/text/1
Text models.

<!-- task: text-embedding -->

## Models

| Model |
|-------|
| [BERT](https://tfhub.dev/google/bert/1) |
`

// validTree is a documentation tree where every document passes.
var validTree = map[string]string{
	"google/google.md":             publisherDoc,
	"google/models/bert/1.md":      savedModelDoc,
	"google/models/bert/tfjs/1.md": tfjsDoc,
	"google/collections/text/1.md": collectionDoc,
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedRepo writes the tag files and the given documents (relative to the
// docs dir) into an in-memory filesystem.
func seedRepo(t *testing.T, docs map[string]string) *filesystem.AferoFS {
	t.Helper()
	fs := filesystem.NewMemory()
	for name, content := range testTags {
		require.NoError(t, afero.WriteFile(fs.Fs(), filepath.Join(testRoot, "tags", name), []byte(content), 0o644))
	}
	for rel, content := range docs {
		require.NoError(t, afero.WriteFile(fs.Fs(), filepath.Join(testDocs, rel), []byte(content), 0o644))
	}
	return fs
}

func withDocs(base map[string]string, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func registryFor(fs *filesystem.AferoFS) *tags.Registry {
	return tags.NewRegistry(fs, testRoot, "tags", nil)
}

type assetCall struct {
	path   string
	suffix string
	smoke  bool
}

type fakeAssets struct {
	errs  map[string]error
	calls []assetCall
	mu    sync.Mutex
}

func (f *fakeAssets) Validate(_ context.Context, docPath string, _ values.Handle, _ values.Metadata, suffix string, smoke bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, assetCall{path: docPath, suffix: suffix, smoke: smoke})
	return f.errs[docPath]
}

func (f *fakeAssets) called() []assetCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]assetCall(nil), f.calls...)
}

type fakeMetrics struct {
	observed *execution.ValidationResult
	err      error
}

func (m *fakeMetrics) Observe(result *execution.ValidationResult) error {
	m.observed = result
	return m.err
}
