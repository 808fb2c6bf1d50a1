package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Passes(t *testing.T) {
	root := seedRepo(t, map[string]string{
		"google/google.md":        publisherDoc,
		"google/models/bert/1.md": bertDoc,
	})

	out, err := runCLI(t, "validate", "--root-dir", root, "--skip-asset-check", "--format", "json")
	require.NoError(t, err)

	var result struct {
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
		} `json:"summary"`
		SmokeTested bool `json:"smoke_tested"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Passed)
	assert.False(t, result.SmokeTested)
}

func TestValidate_Fails(t *testing.T) {
	root := seedRepo(t, map[string]string{
		"google/google.md":          publisherDoc,
		"google/models/bert/1.md":   bertDoc,
		"google/models/broken/1.md": brokenDoc,
	})

	out, err := runCLI(t, "validate", "--root-dir", root, "--skip-asset-check")
	require.Error(t, err)
	assert.Equal(t, "validation failed: 2 passed, 1 failed, 0 errors", err.Error())
	assert.Contains(t, out, "google/models/broken/1.md")
	assert.Contains(t, out, "[metadata_missing]")
}

func TestValidate_GivenFilesAreSmokeTestedByDefault(t *testing.T) {
	root := seedRepo(t, map[string]string{"google/google.md": publisherDoc})

	out, err := runCLI(t, "validate", "--root-dir", root, "--skip-asset-check", "--format", "json", "google/google.md")
	require.NoError(t, err)
	assert.Contains(t, out, `"smoke_tested": true`)

	out, err = runCLI(t, "validate", "--root-dir", root, "--skip-asset-check", "--smoke-test=false",
		"--format", "json", "google/google.md")
	require.NoError(t, err)
	assert.Contains(t, out, `"smoke_tested": false`)
}

func TestValidate_Filter(t *testing.T) {
	root := seedRepo(t, map[string]string{
		"google/google.md":          publisherDoc,
		"google/models/broken/1.md": brokenDoc,
	})

	_, err := runCLI(t, "validate", "--root-dir", root, "--skip-asset-check", "--filter", "doc_type == 'publisher'")
	assert.NoError(t, err)
}

func TestValidate_OutputFileAndHistory(t *testing.T) {
	root := seedRepo(t, map[string]string{"google/google.md": publisherDoc})
	report := filepath.Join(t.TempDir(), "report.xml")
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := runCLI(t, "validate", "--root-dir", root, "--format", "junit", "-o", report, "--history-db", db)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")

	out, err := runCLI(t, "history", "--root-dir", root, "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "STARTED")
}

func TestValidate_InvalidFormat(t *testing.T) {
	root := seedRepo(t, nil)

	_, err := runCLI(t, "validate", "--root-dir", root, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format: xml")
}

func TestValidate_MetricsFile(t *testing.T) {
	root := seedRepo(t, map[string]string{"google/google.md": publisherDoc})
	metrics := filepath.Join(t.TempDir(), "hubdoc.prom")

	_, err := runCLI(t, "validate", "--root-dir", root, "--metrics-file", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hubdoc_documents_total{status="pass"} 1`)
}

func TestValidateTags(t *testing.T) {
	root := seedRepo(t, nil)

	_, err := runCLI(t, "validate-tags", "--root-dir", root)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "tags", "dataset.yaml"), "items:\n  - id: mnist\n    display_name: MNIST\n")
	_, err = runCLI(t, "validate-tags", "--root-dir", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 tag files are invalid")
}
