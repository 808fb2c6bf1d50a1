package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
)

// Ensure interface compliance
var _ ports.AssetFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher opens remote assets over HTTP(S) and local assets from a filesystem.
type HTTPFetcher struct {
	client  *http.Client
	fs      afero.Fs
	baseDir string
}

// NewHTTPFetcher creates a fetcher. Relative local paths are resolved against baseDir.
func NewHTTPFetcher(client *http.Client, fs afero.Fs, baseDir string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &HTTPFetcher{client: client, fs: fs, baseDir: baseDir}
}

// Fetch returns the asset body. Non-2xx responses are errors; nothing is retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchRemote(ctx, location)
	}

	p := location
	if err == nil && u.Scheme == "file" {
		p = u.Path
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.baseDir, p)
	}
	file, err := f.fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open local asset: %w", err)
	}
	return file, nil
}

func (f *HTTPFetcher) fetchRemote(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download asset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
