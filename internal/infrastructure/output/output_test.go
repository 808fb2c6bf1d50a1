package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

const (
	testRoot = "/repo"
	testDocs = "/repo/assets/docs"
)

var longMessage = "Expected first line of the documentation to match one of:\n" +
	"# Module publisher/model/version\n# Placeholder publisher/model/version"

// createTestResult builds a finalized result with one document per status.
func createTestResult() *execution.ValidationResult {
	result := execution.NewValidationResultWithID(
		values.MustParseRunID("6f1c1c3e-2f59-4c55-9a43-3f1f5c6b1f0a"), testRoot, testDocs)
	result.HubdocVersion = "1.2.3"
	result.StartTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	pass := execution.NewFileResult(0, testDocs+"/google/models/bert/1.md", nil)
	pass.HandleID = "google/bert/1"
	pass.DocType = values.DocTypeSavedModel.String()
	pass.Duration = 20 * time.Millisecond

	fail := execution.NewFileResult(1, testDocs+"/google/models/bad/1.md",
		validation.New(validation.KindMetadataMissing,
			"The following required metadata tags are missing: %s", validation.FormatList([]string{"format"})))
	fail.HandleID = "google/bad/1"
	fail.DocType = values.DocTypeSavedModel.String()

	broken := execution.NewFileResult(2, testDocs+"/google/models/odd/1.md",
		validation.New(validation.KindHandleFormat, "%s", longMessage))

	errored := execution.NewFileResult(3, testDocs+"/google/gone.md", errors.New("failed to read gone.md: file does not exist"))

	skipped := execution.SkippedFileResult(4, testDocs+"/google/collections/text/1.md", "excluded by filter expression")

	for _, fr := range []execution.FileResult{skipped, errored, broken, fail, pass} {
		result.AddFileResult(fr)
	}
	result.Finalize()
	result.EndTime = result.StartTime.Add(1500 * time.Millisecond)
	result.Duration = 1500 * time.Millisecond
	return result
}

func noColor() *bool {
	off := false
	return &off
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false, noColor(), 0).Format(createTestResult()))

	out := buf.String()
	assert.Contains(t, out, "Docs: "+testDocs)
	assert.Contains(t, out, "Duration: 1.5s")
	assert.NotContains(t, out, "google/models/bert/1.md", "passing documents are hidden")
	assert.Contains(t, out, "✗ "+testDocs+"/google/models/bad/1.md (google/bad/1)")
	assert.Contains(t, out, "[metadata_missing] The following required metadata tags are missing: ['format']")
	assert.Contains(t, out, "⚠ "+testDocs+"/google/gone.md")
	assert.Contains(t, out, "excluded by filter expression")
	assert.Contains(t, out, "Total:   5")
	assert.Contains(t, out, "Failed:  2")
	assert.Contains(t, out, "metadata_missing")
	assert.NotContains(t, out, "\033[", "color disabled")
}

func TestTableFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, true, noColor(), 0).Format(createTestResult()))
	assert.Contains(t, buf.String(), "✓ "+testDocs+"/google/models/bert/1.md (google/bert/1)")
}

func TestTableFormatter_Truncation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false, noColor(), 40).Format(createTestResult()))

	out := buf.String()
	assert.Contains(t, out, "[handle_format] "+longMessage[:40]+execution.TruncationMarker)
	assert.NotContains(t, out, "# Placeholder publisher/model/version")

	buf.Reset()
	require.NoError(t, NewTableFormatter(&buf, false, noColor(), 0).Format(createTestResult()))
	assert.Contains(t, buf.String(), "    # Placeholder publisher/model/version", "continuation lines are indented")
}

func TestTableFormatter_EmptyResult(t *testing.T) {
	result := execution.NewValidationResult(testRoot, testDocs)
	result.Finalize()

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false, noColor(), 0).Format(result))
	assert.Contains(t, buf.String(), "No documents validated.")
}

func TestTableFormatter_StatusSymbols(t *testing.T) {
	f := NewTableFormatter(&bytes.Buffer{}, false, noColor(), 0)
	tests := map[values.Status]string{
		values.StatusPass:    "✓",
		values.StatusFail:    "✗",
		values.StatusError:   "⚠",
		values.StatusSkipped: "⊘",
		values.Status("odd"): "?",
	}
	for status, want := range tests {
		got, _ := f.statusInfo(status)
		assert.Equal(t, want, got, status)
	}
}

func TestJSONFormatter_Format_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).Format(createTestResult()))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "\n  \"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "6f1c1c3e-2f59-4c55-9a43-3f1f5c6b1f0a", decoded["run_id"])
	assert.Equal(t, "1.2.3", decoded["hubdoc_version"])
}

func TestJSONFormatter_Format_Compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).Format(createTestResult()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestJSONFormatter_PreservesTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).Format(createTestResult()))

	var decoded struct {
		Files []struct {
			Path      string `json:"path"`
			Status    string `json:"status"`
			ErrorKind string `json:"error_kind"`
			Message   string `json:"message"`
		} `json:"files"`
		Summary struct {
			ErrorsByKind map[string]int `json:"errors_by_kind"`
			Total        int            `json:"total"`
			Failed       int            `json:"failed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Files, 5)
	assert.Equal(t, "pass", decoded.Files[0].Status)
	assert.Equal(t, "metadata_missing", decoded.Files[1].ErrorKind)
	assert.Equal(t, "error", decoded.Files[3].Status)
	assert.Equal(t, 5, decoded.Summary.Total)
	assert.Equal(t, map[string]int{"metadata_missing": 1, "handle_format": 1}, decoded.Summary.ErrorsByKind)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(createTestResult()))

	out := buf.String()
	assert.Contains(t, out, "root_dir: /repo")
	assert.Contains(t, out, "files:")
	assert.Contains(t, out, "error_kind: metadata_missing")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, summary["failed"])
}

func TestAllFormatters_WithSameData(t *testing.T) {
	factory := NewFormatterFactory("1.2.3")
	for _, format := range factory.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			f, err := factory.Create(format, &buf, testFormatterOptions())
			require.NoError(t, err)
			require.NoError(t, f.Format(createTestResult()))
			assert.NotEmpty(t, buf.String())
		})
	}
}
