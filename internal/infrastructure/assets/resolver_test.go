package assets

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assetMetadata(paths ...string) values.Metadata {
	md := values.Metadata{}
	for _, p := range paths {
		md.Add(services.KeyAssetPath, p)
	}
	return md
}

var savedModelHandle = values.Handle{DocType: values.DocTypeSavedModel, Publisher: "acme", Name: "encoder", Version: "1"}

func TestResolver_Validate(t *testing.T) {
	tests := []struct {
		name    string
		md      values.Metadata
		suffix  string
		wantErr string
	}{
		{
			name:   "valid tarball",
			md:     assetMetadata("https://storage.googleapis.com/acme/encoder/1.tar.gz"),
			suffix: services.TarSuffix,
		},
		{
			name:    "two values",
			md:      assetMetadata("https://a.org/1.tar.gz", "https://b.org/1.tar.gz"),
			suffix:  services.TarSuffix,
			wantErr: "No more than one asset-path tag may be specified.",
		},
		{
			name:    "wrong suffix",
			md:      assetMetadata("https://storage.googleapis.com/acme/encoder/1.zip"),
			suffix:  services.TarSuffix,
			wantErr: "Expected asset-path to end with .tar.gz but was https://storage.googleapis.com/acme/encoder/1.zip.",
		},
		{
			name:    "lite suffix",
			md:      assetMetadata("https://storage.googleapis.com/acme/encoder/1.tar.gz"),
			suffix:  services.TfliteSuffix,
			wantErr: "Expected asset-path to end with .tflite but was https://storage.googleapis.com/acme/encoder/1.tar.gz.",
		},
		{
			name:   "github release download",
			md:     assetMetadata("https://github.com/acme/encoder/releases/download/v1/model.tar.gz"),
			suffix: services.TarSuffix,
			wantErr: "The asset-path https://github.com/acme/encoder/releases/download/v1/model.tar.gz is a url " +
				"that cannot be automatically fetched. Please provide an asset-path that is allowed to be fetched by its robots.txt.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(fakeChanges{modified: true}, nil, quietLogger())
			err := r.Validate(context.Background(), "/docs/acme/encoder/1.md", savedModelHandle, tt.md, tt.suffix, false)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, validation.KindAssetPath, validation.KindOf(err))
		})
	}
}

func TestResolver_SkipsUnchangedTag(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewResolver(fakeChanges{modified: false}, newTester(fetcher), quietLogger())

	// Even an invalid value passes when the tag is unchanged.
	err := r.Validate(context.Background(), "/docs/a.md", savedModelHandle, assetMetadata("x.zip"), services.TarSuffix, true)
	assert.NoError(t, err)
	assert.Empty(t, fetcher.calls)
}

func TestResolver_ChangeDetectionError(t *testing.T) {
	r := NewResolver(fakeChanges{err: errGit}, nil, quietLogger())

	err := r.Validate(context.Background(), "/docs/a.md", savedModelHandle, assetMetadata("x.tar.gz"), services.TarSuffix, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errGit)
	assert.Empty(t, validation.KindOf(err))
}

func TestResolver_SmokeTestOnlyForSavedModels(t *testing.T) {
	const location = "https://storage.googleapis.com/acme/encoder/1.tar.gz"
	fetcher := &fakeFetcher{assets: map[string][]byte{
		location: buildArchive(t, file("saved_model.pb", savedModelBytes(t, "serve"))),
	}}
	r := NewResolver(fakeChanges{modified: true}, newTester(fetcher), quietLogger())
	ctx := context.Background()

	require.NoError(t, r.Validate(ctx, "/docs/a.md", savedModelHandle, assetMetadata(location), services.TarSuffix, true))
	assert.Equal(t, []string{location}, fetcher.calls)

	tfjs := savedModelHandle
	tfjs.DocType = values.DocTypeTfjs
	require.NoError(t, r.Validate(ctx, "/docs/b.md", tfjs, assetMetadata(location), services.TarSuffix, true))
	assert.Len(t, fetcher.calls, 1)

	// Without the flag nothing is downloaded.
	require.NoError(t, r.Validate(ctx, "/docs/a.md", savedModelHandle, assetMetadata(location), services.TarSuffix, false))
	assert.Len(t, fetcher.calls, 1)
}

func TestResolver_SmokeTestFailure(t *testing.T) {
	const location = "https://storage.googleapis.com/acme/encoder/1.tar.gz"
	fetcher := &fakeFetcher{assets: map[string][]byte{
		location: buildArchive(t, file("variables/variables.index", []byte("x"))),
	}}
	r := NewResolver(nil, newTester(fetcher), quietLogger())

	err := r.Validate(context.Background(), "/docs/a.md", savedModelHandle, assetMetadata(location), services.TarSuffix, true)
	require.Error(t, err)
	assert.Equal(t, validation.KindAssetSmokeTest, validation.KindOf(err))
}

func TestResolver_GitUnavailableSkipsCheck(t *testing.T) {
	run := func(context.Context, string, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("fatal: not a git repository (or any of the parent directories): .git"), errGit
	}
	fetcher := &fakeFetcher{}
	r := NewResolver(detectorFor(t, baseDoc, run), newTester(fetcher), quietLogger())

	err := r.Validate(context.Background(), docPath, savedModelHandle, assetMetadata("x.zip"), services.TarSuffix, true)
	assert.NoError(t, err)
	assert.Empty(t, fetcher.calls)
}
