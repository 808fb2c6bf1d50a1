package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/infrastructure/container"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/system"
	"github.com/tensorflow/tfhub.dev/internal/version"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Config    *system.Config
	Logger    *slog.Logger
	Context   context.Context
	RootDir   string
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with config loading and container
// initialization. configure runs after the defaults are set and may add
// command specific options such as the history database.
func withContainer(handler CommandHandler, configure ...func(*container.Options)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		root, err := resolveRootDir(cfg)
		if err != nil {
			return err
		}

		logger := slog.Default()
		opts := container.Options{
			Logger:  logger,
			Config:  cfg,
			RootDir: root,
			Version: version.Version,
		}
		for _, fn := range configure {
			fn(&opts)
		}

		c, err := container.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("failed to release resources", "error", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return handler(&CommandContext{
			Container: c,
			Config:    cfg,
			Logger:    logger,
			Context:   ctx,
			RootDir:   root,
		}, cmd, args)
	}
}
