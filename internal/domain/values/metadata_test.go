package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Metadata_AddTrimsAndGroups(t *testing.T) {
	md := Metadata{}
	md.Add(" task ", "  text-embedding ")
	md.Add("task", "text-classification")
	md.Add("task", "text-embedding")
	md.Add("format", "saved_model_2")

	assert.Equal(t, []string{"format", "task"}, md.Keys())
	assert.Equal(t, []string{"text-classification", "text-embedding"}, md.Values("task"))
	assert.Equal(t, "saved_model_2", md.First("format"))
	assert.True(t, md.Has("task"))
	assert.False(t, md.Has("Task"), "keys are case-sensitive")
	assert.Nil(t, md.Values("missing"))
	assert.Empty(t, md.First("missing"))
}

func Test_StringSet_Operations(t *testing.T) {
	a := NewStringSet("x", "y", "z")
	b := NewStringSet("y")

	assert.Equal(t, []string{"x", "z"}, a.Difference(b))
	assert.Empty(t, b.Difference(a))
	assert.Equal(t, []string{"x", "y", "z"}, b.Union(a).Sorted())
}

func Test_Metadata_JSON(t *testing.T) {
	md := Metadata{}
	md.Add("language", "fr")
	md.Add("language", "en")

	data, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"language":["en","fr"]}`, string(data))
}
