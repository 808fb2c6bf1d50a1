package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
)

func TestItemKeys(t *testing.T) {
	assert.ElementsMatch(t, []string{"id", "display_name"}, RequiredItemKeys("dataset.yaml"))
	assert.ElementsMatch(t, []string{"id", "display_name", "domains"}, RequiredItemKeys("/repo/tags/task.yaml"))
	assert.ElementsMatch(t,
		[]string{"id", "display_name", "url", "description", "aggregation_rule"},
		SupportedItemKeys("language.yaml"))
	assert.ElementsMatch(t,
		[]string{"id", "display_name", "url", "description", "aggregation_rule", "domains"},
		SupportedItemKeys("task.yaml"))
}

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name: "minimal file",
			file: "tag.yml",
			content: `
values:
  - id: mnist
    display_name: MNIST`,
		},
		{
			name: "all optional keys",
			file: "license.yaml",
			content: `
values:
  - id: apache-2.0
    display_name: Apache-2.0
    url: https://opensource.org/licenses/Apache-2.0
    description: Apache License
    aggregation_rule: UNION
  - id: "no"
    display_name: Norwegian census dataset`,
		},
		{
			name: "task with domains",
			file: "task.yaml",
			content: `
values:
  - id: text-embedding
    display_name: Text embedding
    domains:
      - text`,
		},
		{
			name: "url shaped",
			file: "colab.yaml",
			content: `
format: url
required_domain: colab.research.google.com`,
		},
		{
			name:    "not yaml",
			file:    "1.md",
			content: "# Module",
			wantErr: "Cannot parse file to YAML.",
		},
		{
			name: "extra top level key",
			file: "extra_top_level.yml",
			content: `
name: dataset
values:
  - id: mnist
    display_name: MNIST`,
			wantErr: "Expected top-level keys {'values'} but got ['name', 'values'].",
		},
		{
			name: "wrong top level key",
			file: "wrong_top_level.yml",
			content: `
items:
  - id: mnist
    display_name: MNIST`,
			wantErr: "Expected top-level keys {'values'} but got ['items'].",
		},
		{
			name: "missing required item key",
			file: "missing_item_level.yml",
			content: `
values:
  - id: mnist`,
			wantErr: "Missing required item-level keys: {'display_name'}.",
		},
		{
			name: "task without domains",
			file: "task.yaml",
			content: `
values:
  - id: text-embedding
    display_name: Text embedding`,
			wantErr: "Missing required item-level keys: {'domains'}.",
		},
		{
			name: "unsupported item key",
			file: "wrong_item_level.yml",
			content: `
values:
  - id: mnist
    display_name: MNIST
    extra_field: something`,
			wantErr: "Unsupported item-level keys: {'extra_field'}.",
		},
		{
			name: "duplicate item key",
			file: "duplicate_item_level.yml",
			content: `
values:
  - id: mnist
    display_name: dup
    id: another_dataset`,
			wantErr: "Found duplicate key: id",
		},
		{
			name: "schema violation",
			file: "dataset.yaml",
			content: `
values:
  - id: MNIST Upper
    display_name: MNIST`,
			wantErr: "Tag definition does not match its schema: /values/0/id:",
		},
		{
			name: "url shaped with wrong format",
			file: "demo.yaml",
			content: `
format: email`,
			wantErr: "Tag definition does not match its schema: /format:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseDefinition(tt.file, []byte(tt.content))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, validation.KindDefinitionFormat, validation.KindOf(err))
		})
	}
}

func TestParseDefinition_NonStringValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"yaml 1.1 bool", "values:\n  - id: no\n    display_name: Norwegian data"},
		{"integer", "values:\n  - id: 42\n    display_name: Answer"},
		{"null", "values:\n  - id: mnist\n    display_name:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseDefinition("dataset.yaml", []byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Found non-string value: ")
		})
	}
}

func TestDefinitionValidator_ValidateFiles(t *testing.T) {
	fs := seedTags(t, map[string]string{
		"good.yaml":  testTagFiles["dataset.yaml"],
		"colab.yaml": testTagFiles["colab.yaml"],
		"bad.yaml":   "values:\n  - id: mnist",
	})
	v := NewDefinitionValidator(fs, nil)

	errs := v.ValidateFiles([]string{
		"/repo/tags/good.yaml",
		"/repo/tags/colab.yaml",
		"/repo/tags/bad.yaml",
		"/repo/tags/missing.yaml",
	})

	require.Len(t, errs, 2)
	bad := errs["/repo/tags/bad.yaml"]
	require.Error(t, bad)
	var verr *validation.Error
	require.ErrorAs(t, bad, &verr)
	assert.Equal(t, "/repo/tags/bad.yaml", verr.Path)
	assert.Equal(t, "Missing required item-level keys: {'display_name'}.", bad.Error())

	missing := errs["/repo/tags/missing.yaml"]
	require.Error(t, missing)
	assert.Empty(t, validation.KindOf(missing))
}
