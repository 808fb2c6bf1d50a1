package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/infrastructure/container"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/watch"
)

var (
	docExtensions = []string{".md"}
	tagExtensions = []string{".yaml", ".yml"}
)

func newWatchCmd() *cobra.Command {
	opts := &validateOptions{CommonOptions: DefaultCommonOptions()}
	// A watch session runs until interrupted.
	opts.Timeout = 0

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate documentation as it changes",
		Long: `Validate the whole documentation tree once, then watch the docs and tags
directories. Changed documents are validated again. A changed tag definition
re-validates every document, since any of them may use its values.`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cc.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cc, cmd, opts)
		}, func(o *container.Options) {
			o.HistoryDB = opts.historyDB
			o.MetricsFile = opts.metricsFile
		}),
	}

	opts.registerFlags(cmd)
	return cmd
}

func runWatch(ctx context.Context, cc *CommandContext, cmd *cobra.Command, opts *validateOptions) error {
	docsDir := cc.Container.DocsDir()
	tagsDir := cc.Container.TagsDir()

	if _, err := validateOnce(ctx, cc, cmd, opts, nil); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Dirs:       []string{docsDir, tagsDir},
		Extensions: slices.Concat(docExtensions, tagExtensions),
	}, cc.Logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	cc.Logger.Info("watching for changes", "docs", docsDir, "tags", tagsDir)
	err = w.Watch(ctx, func(ctx context.Context, paths []string) {
		files, all := changedDocs(docsDir, tagsDir, paths)
		if !all && len(files) == 0 {
			return
		}
		if all {
			files = nil
		}
		cc.Logger.Info("change detected", "files", len(paths))
		if _, err := validateOnce(ctx, cc, cmd, opts, files); err != nil {
			cc.Logger.Error("validation run failed", "error", err)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// changedDocs maps a batch of changed paths to documents relative to docsDir.
// all is set when a tag definition changed and every document must be re-run.
func changedDocs(docsDir, tagsDir string, paths []string) (files []string, all bool) {
	for _, p := range paths {
		if isBelow(tagsDir, p) && slices.Contains(tagExtensions, filepath.Ext(p)) {
			return nil, true
		}
		if filepath.Ext(p) != ".md" || !isBelow(docsDir, p) {
			continue
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			continue
		}
		files = append(files, rel)
	}
	return files, false
}

func isBelow(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
