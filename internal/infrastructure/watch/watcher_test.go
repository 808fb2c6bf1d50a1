package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, cfg Config) <-chan []string {
	t.Helper()
	w, err := New(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	batches := make(chan []string, 8)
	ready := make(chan struct{})
	go func() {
		close(ready)
		_ = w.Watch(ctx, func(_ context.Context, paths []string) { batches <- paths })
	}()
	<-ready
	// Give Watch time to register the directories.
	time.Sleep(100 * time.Millisecond)
	return batches
}

func TestWatcher_DebouncesBatch(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, Config{Dirs: []string{dir}, Extensions: []string{".md"}, Debounce: 100 * time.Millisecond})

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("three"), 0o644))

	select {
	case got := <-batches:
		assert.Equal(t, []string{a, b}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, Config{Dirs: []string{dir}, Extensions: []string{".md"}, Debounce: 50 * time.Millisecond})

	sub := filepath.Join(dir, "google", "models")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(150 * time.Millisecond)
	doc := filepath.Join(sub, "1.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Module google/x/1"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-batches:
			if assert.NotEmpty(t, got) && got[len(got)-1] == doc {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{config: Config{Extensions: []string{".md", ".yaml"}}}
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "a.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "t.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "a.md", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: ".a.md", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "a.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.event), tt.event.String())
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(Config{}, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
}
