package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
)

// DefaultGitReference is the revision asset-path changes are measured against.
const DefaultGitReference = "origin/master"

const assetPathLinePrefix = "<!-- asset-path:"

// Ensure interface compliance
var (
	_ ports.ChangeDetector = (*GitChangeDetector)(nil)
	_ ports.ChangeDetector = AlwaysModified{}
)

// CommandRunner runs a command in dir and returns its stdout and stderr.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// GitChangeDetector compares a document against its content at a git reference.
type GitChangeDetector struct {
	fs      ports.FileSystem
	run     CommandRunner
	logger  *slog.Logger
	repoDir string
	ref     string
}

// NewGitChangeDetector creates a detector for the repository at repoDir.
// A nil run uses os/exec.
func NewGitChangeDetector(fs ports.FileSystem, repoDir, ref string, run CommandRunner, logger *slog.Logger) *GitChangeDetector {
	if ref == "" {
		ref = DefaultGitReference
	}
	if run == nil {
		run = execRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitChangeDetector{fs: fs, run: run, logger: logger, repoDir: repoDir, ref: ref}
}

// AssetPathModified reports whether the working copy of path inserts an
// asset-path line compared to the reference. A file unknown to the reference
// counts as modified. When git cannot answer (no repository, unknown
// reference, missing binary) the tag counts as unmodified.
//
// The object name uses a "./" path so git resolves it against repoDir, which
// may be a subdirectory of the checkout.
func (d *GitChangeDetector) AssetPathModified(ctx context.Context, path string) (bool, error) {
	rel, err := filepath.Rel(d.repoDir, path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s inside %s: %w", path, d.repoDir, err)
	}
	rel = filepath.ToSlash(rel)

	current, err := d.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	stdout, stderr, err := d.run(ctx, d.repoDir, "git", "show", d.ref+":./"+rel)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if missingAtRef(stderr) {
			d.logger.Debug("document not present at reference", "path", rel, "ref", d.ref)
			return true, nil
		}
		d.logger.Debug("git reference unavailable, treating asset-path as unmodified",
			"path", rel, "ref", d.ref, "error", err, "stderr", strings.TrimSpace(string(stderr)))
		return false, nil
	}

	return insertsAssetPath(string(stdout), string(current)), nil
}

// insertsAssetPath diffs old and new line by line and looks for an inserted
// asset-path line.
func insertsAssetPath(oldContent, newContent string) bool {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		for _, line := range strings.Split(d.Text, "\n") {
			if strings.HasPrefix(line, assetPathLinePrefix) {
				return true
			}
		}
	}
	return false
}

func missingAtRef(stderr []byte) bool {
	msg := string(stderr)
	return strings.Contains(msg, "does not exist in") ||
		strings.Contains(msg, "exists on disk, but not in")
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	//nolint:gosec // G204: fixed git subcommand, arguments are never shell-interpreted
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// AlwaysModified treats every asset-path as changed.
type AlwaysModified struct{}

// AssetPathModified always returns true.
func (AlwaysModified) AssetPathModified(context.Context, string) (bool, error) {
	return true, nil
}
