package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseDocType(t *testing.T) {
	tests := []struct {
		input   string
		want    DocType
		wantErr bool
	}{
		{"Module", DocTypeSavedModel, false},
		{"saved_model", DocTypeSavedModel, false},
		{"placeholder", DocTypePlaceholder, false},
		{"TFJS", DocTypeTfjs, false},
		{" coral ", DocTypeCoral, false},
		{"Publisher", DocTypePublisher, false},
		{"collection", DocTypeCollection, false},
		{"notebook", DocTypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDocType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_DocType_IsModel(t *testing.T) {
	models := map[DocType]bool{
		DocTypeSavedModel:  true,
		DocTypeLite:        true,
		DocTypeTfjs:        true,
		DocTypeCoral:       true,
		DocTypePlaceholder: false,
		DocTypePublisher:   false,
		DocTypeCollection:  false,
	}
	for d, want := range models {
		assert.Equal(t, want, d.IsModel(), d.String())
	}
}

func Test_DocType_Text(t *testing.T) {
	data, err := DocTypeLite.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "lite", string(data))

	var d DocType
	require.NoError(t, d.UnmarshalText([]byte("Module")))
	assert.Equal(t, DocTypeSavedModel, d)

	assert.Equal(t, "unknown", DocTypeUnknown.String())
	assert.Equal(t, "TF Model", DocTypeSavedModel.Label())
}

func Test_Handle_ID(t *testing.T) {
	model := Handle{DocType: DocTypeSavedModel, Publisher: "google", Name: "bert/uncased", Version: "3"}
	assert.Equal(t, "google/bert/uncased/3", model.ID())

	collection := Handle{DocType: DocTypeCollection, Publisher: "google", Name: "text-embedding"}
	assert.Equal(t, "google/text-embedding", collection.ID())

	publisher := model.PublisherHandle()
	assert.Equal(t, "google", publisher.ID())
	assert.Equal(t, DocTypePublisher, publisher.DocType)

	assert.True(t, Handle{Version: WildcardVersion}.HasWildcardVersion())
	assert.False(t, model.HasWildcardVersion())
}
