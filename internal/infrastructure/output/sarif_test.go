package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
)

func formatToReport(t *testing.T, result *execution.ValidationResult) *sarif.Report {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, "0.0.0-dev").Format(result))

	report, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, report.Runs, 1)
	return report
}

func TestSARIFFormatter_Format(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, "").Format(createTestResult()))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	assert.Equal(t, "2.1.0", raw["version"])
	assert.Contains(t, raw, "$schema")

	runs := raw["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})
	assert.Contains(t, run, "tool")
	assert.Contains(t, run, "results")
	assert.Contains(t, run, "invocations")
	assert.Contains(t, run, "artifacts")
}

func TestSARIFFormatter_ValidatesAgainstSchema(t *testing.T) {
	t.Parallel()
	report := formatToReport(t, createTestResult())
	require.NoError(t, report.Validate())
}

func TestSARIFFormatter_ToolMetadata(t *testing.T) {
	t.Parallel()
	tool := formatToReport(t, createTestResult()).Runs[0].Tool
	assert.Equal(t, "hubdoc", *tool.Driver.Name)
	assert.Equal(t, "1.2.3", *tool.Driver.Version, "result version wins")
	assert.Equal(t, toolInformationURI, *tool.Driver.InformationURI)

	result := createTestResult()
	result.HubdocVersion = ""
	tool = formatToReport(t, result).Runs[0].Tool
	assert.Equal(t, "0.0.0-dev", *tool.Driver.Version)
}

func TestSARIFMapper_Rules(t *testing.T) {
	t.Parallel()
	rules := formatToReport(t, createTestResult()).Runs[0].Tool.Driver.Rules
	require.Len(t, rules, len(validation.AllKinds)+1)

	byID := make(map[string]*sarif.ReportingDescriptor)
	for _, r := range rules {
		byID[*r.ID] = r
	}
	missing := byID[string(validation.KindMetadataMissing)]
	require.NotNil(t, missing)
	assert.Equal(t, "MetadataMissing", *missing.Name)
	assert.Equal(t, validation.KindMetadataMissing.Description(), *missing.ShortDescription.Text)
	assert.Contains(t, byID, executionErrorRule)
}

func TestSARIFMapper_Results(t *testing.T) {
	t.Parallel()
	run := formatToReport(t, createTestResult()).Runs[0]
	require.Len(t, run.Results, 3, "only failed and errored documents are reported")

	first := run.Results[0]
	assert.Equal(t, string(validation.KindMetadataMissing), *first.RuleID)
	assert.Equal(t, "error", first.Level)
	assert.Equal(t, "fail", first.Kind)
	assert.Contains(t, *first.Message.Text, "['format']")

	require.Len(t, first.Locations, 1)
	loc := first.Locations[0].PhysicalLocation
	assert.Equal(t, "assets/docs/google/models/bad/1.md", *loc.ArtifactLocation.URI)
	assert.Equal(t, 1, *loc.Region.StartLine)
	assert.Equal(t, "google/bad/1", first.Properties.Properties["handle"])

	assert.Equal(t, executionErrorRule, *run.Results[2].RuleID)
}

func TestSARIFMapper_Artifacts(t *testing.T) {
	t.Parallel()
	run := formatToReport(t, createTestResult()).Runs[0]
	require.Len(t, run.Artifacts, 5, "every validated document is an artifact")
	assert.Equal(t, "assets/docs/google/models/bert/1.md", *run.Artifacts[0].Location.URI)
}

func TestSARIFMapper_NormalizeURI(t *testing.T) {
	t.Parallel()
	m := newSARIFMapper(createTestResult())
	assert.Equal(t, "assets/docs/a.md", m.normalizeURI("/repo/assets/docs/a.md"))
	assert.Equal(t, "file:///elsewhere/a.md", m.normalizeURI("/elsewhere/a.md"))
	assert.Equal(t, "a.md", newSARIFMapper(&execution.ValidationResult{}).normalizeURI("a.md"))
}

func TestSARIFMapper_Invocation(t *testing.T) {
	t.Parallel()
	run := formatToReport(t, createTestResult()).Runs[0]
	require.Len(t, run.Invocations, 1)

	inv := run.Invocations[0]
	assert.False(t, *inv.ExecutionSuccessful, "one document errored")
	assert.Equal(t, "2024-05-01T12:00:00.000Z", *inv.StartTimeUtc)
	assert.Equal(t, "6f1c1c3e-2f59-4c55-9a43-3f1f5c6b1f0a", inv.Properties.Properties["runId"])
	assert.Equal(t, "file:///repo", *inv.WorkingDirectory.URI)
}

func TestSARIFMapper_EmptyResults(t *testing.T) {
	t.Parallel()
	result := execution.NewValidationResult(testRoot, testDocs)
	result.Finalize()

	run := formatToReport(t, result).Runs[0]
	assert.Empty(t, run.Results)
	assert.True(t, *run.Invocations[0].ExecutionSuccessful)
}
