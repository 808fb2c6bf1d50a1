package assets

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type member struct {
	name     string
	data     []byte
	typeflag byte
}

func file(name string, data []byte) member {
	return member{name: name, data: data, typeflag: tar.TypeReg}
}

func dir(name string) member {
	return member{name: name, typeflag: tar.TypeDir}
}

// buildArchive returns a gzip-compressed tar holding members in order.
func buildArchive(t *testing.T, members ...member) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: 0o644, Typeflag: m.typeflag, Size: int64(len(m.data))}
		if m.typeflag == tar.TypeDir {
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if len(m.data) > 0 {
			_, err := tw.Write(m.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// savedModelBytes encodes a SavedModel with one meta graph tagged tags.
func savedModelBytes(t *testing.T, tags ...string) []byte {
	t.Helper()

	msg, err := NewSavedModel()
	require.NoError(t, err)
	fields := msg.Descriptor().Fields()
	msg.Set(fields.ByName("saved_model_schema_version"), protoreflect.ValueOfInt64(1))

	graphs := msg.Mutable(fields.ByName("meta_graphs")).List()
	graph := graphs.NewElement().Message()
	metaInfo := graph.Mutable(graph.Descriptor().Fields().ByName("meta_info_def")).Message()
	tagList := metaInfo.Mutable(metaInfo.Descriptor().Fields().ByName("tags")).List()
	for _, tag := range tags {
		tagList.Append(protoreflect.ValueOfString(tag))
	}
	graphs.Append(protoreflect.ValueOfMessage(graph))

	data, err := proto.Marshal(msg)
	require.NoError(t, err)
	return data
}

// fakeFetcher serves archives from memory.
type fakeFetcher struct {
	assets map[string][]byte
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, location string) (io.ReadCloser, error) {
	f.calls = append(f.calls, location)
	data, ok := f.assets[location]
	if !ok {
		return nil, fmt.Errorf("HTTP request failed with status: %d", 404)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// fakeChanges answers AssetPathModified from a fixed value.
type fakeChanges struct {
	err      error
	modified bool
}

func (f fakeChanges) AssetPathModified(context.Context, string) (bool, error) {
	return f.modified, f.err
}

var errGit = errors.New("not a git repository")
