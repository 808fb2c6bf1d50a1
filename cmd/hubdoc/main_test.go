package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const (
	publisherDoc = "# Publisher google\nGoogle.\n\n[![Icon URL]](https://www.gstatic.com/aihub/google_logo_120.png)\n"

	bertDoc = `# Module google/bert/1
BERT text encoder.

<!-- asset-path: https://storage.googleapis.com/google/bert/1.tar.gz -->
<!-- fine-tunable: true -->
<!-- format: saved_model_2 -->
<!-- task: text-embedding -->
<!-- language: en -->

## Overview

BERT encodes text.
`

	// missing fine-tunable and format
	brokenDoc = `# Module google/broken/1
Broken.

<!-- asset-path: https://storage.googleapis.com/google/broken/1.tar.gz -->
<!-- task: text-embedding -->
`
)

var repoTags = map[string]string{
	"task.yaml":     "values:\n  - id: text-embedding\n    display_name: Text embedding\n    domains:\n      - text\n",
	"language.yaml": "values:\n  - id: en\n    display_name: English\n",
}

// seedRepo creates a repository with tag definitions and the given documents,
// keyed by their path below assets/docs.
func seedRepo(t *testing.T, docs map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range repoTags {
		writeFile(t, filepath.Join(root, "tags", name), content)
	}
	for rel, content := range docs {
		writeFile(t, filepath.Join(root, "assets", "docs", rel), content)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runCLI executes hubdoc with a fresh command tree and returns what it wrote
// to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	rootCmd = newRootCmd()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--quiet"}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
