package assets

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
)

// CIEnvKey marks a run inside GitHub Actions, where downloads are throttled.
const CIEnvKey = "GITHUB_ACTION"

const (
	// DefaultCISleep is the pause before each download on CI.
	DefaultCISleep = 5 * time.Second
	// DefaultTimeout bounds a single download and inspection.
	DefaultTimeout = 5 * time.Minute
)

const exportingGuideURL = "https://www.tensorflow.org/hub/exporting_tf2_saved_model"

var (
	fileNamePattern = `[\w-][-!',_\w.=:% ]*`
	memberPathRegex = regexp.MustCompile(`^(` + fileNamePattern + `)+(/` + fileNamePattern + `)*$`)

	// allowedSavedModelPaths lists the files a SavedModel directory may hold.
	allowedSavedModelPaths = []string{
		"saved_model.pb", "saved_model.pbtxt", "tfhub_module.pb",
		"keras_metadata.pb", "assets/*", "assets.extra/*", "variables/variables.*",
	}
	allowedSavedModelRegexes = compileWildcards(allowedSavedModelPaths)
)

// compileWildcards translates shell-style patterns into anchored regexes.
// Unlike path.Match, '*' also matches '/'.
func compileWildcards(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		var b strings.Builder
		b.WriteString("^")
		for _, r := range p {
			switch r {
			case '*':
				b.WriteString(".*")
			case '?':
				b.WriteString(".")
			default:
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		b.WriteString("$")
		out = append(out, regexp.MustCompile(b.String()))
	}
	return out
}

// SmokeTester downloads a SavedModel archive and checks that it can be loaded.
type SmokeTester struct {
	fetcher ports.AssetFetcher
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
	getenv  func(string) string
	ciSleep time.Duration
	timeout time.Duration
}

// SmokeTesterOption configures a SmokeTester.
type SmokeTesterOption func(*SmokeTester)

// WithCISleep sets the pause taken before each download on CI.
func WithCISleep(d time.Duration) SmokeTesterOption {
	return func(s *SmokeTester) { s.ciSleep = d }
}

// WithTimeout bounds each smoke test. Zero disables the bound.
func WithTimeout(d time.Duration) SmokeTesterOption {
	return func(s *SmokeTester) { s.timeout = d }
}

// WithGetenv replaces the environment lookup, mainly for tests.
func WithGetenv(getenv func(string) string) SmokeTesterOption {
	return func(s *SmokeTester) { s.getenv = getenv }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SmokeTesterOption {
	return func(s *SmokeTester) { s.logger = logger }
}

// NewSmokeTester creates a smoke tester fetching archives through fetcher.
func NewSmokeTester(fetcher ports.AssetFetcher, opts ...SmokeTesterOption) *SmokeTester {
	s := &SmokeTester{
		fetcher: fetcher,
		logger:  slog.Default(),
		sleep:   sleepContext,
		getenv:  os.Getenv,
		ciSleep: DefaultCISleep,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check fetches location and inspects every regular file of the archive.
// It succeeds when at least one saved_model.pb or saved_model.pbtxt decodes.
func (s *SmokeTester) Check(ctx context.Context, location string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.getenv(CIEnvKey) != "" && s.ciSleep > 0 {
		s.logger.Debug("throttling download on CI", "delay", s.ciSleep)
		if err := s.sleep(ctx, s.ciSleep); err != nil {
			return err
		}
	}

	body, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return validation.Wrap(validation.KindAssetSmokeTest, err, "Could not fetch %s: %v", location, err)
	}
	defer func() {
		_ = body.Close() // Best-effort cleanup
	}()

	found, err := s.inspect(body)
	if err != nil {
		return err
	}
	if !found {
		return validation.New(validation.KindAssetSmokeTest,
			"The model from %s does not contain a valid saved_model.pb or saved_model.pbtxt file. "+
				"Please make sure that the asset-path metadata points to a valid TF2 SavedModel or a TF1 "+
				"Hub module as described on %s.", location, exportingGuideURL)
	}
	return nil
}

func (s *SmokeTester) inspect(r io.Reader) (bool, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return false, readError(err)
	}
	defer func() {
		_ = gz.Close()
	}()

	found := false
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, readError(err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := normalizeMemberPath(hdr.Name)
		if err := ValidateMemberPath(name); err != nil {
			return false, err
		}

		switch path.Base(name) {
		case SavedModelPB:
			data, err := io.ReadAll(tr)
			if err != nil {
				return false, readError(err)
			}
			info, err := DecodeSavedModel(data)
			if err != nil {
				return false, validation.Wrap(validation.KindAssetSmokeTest, err, "Could not parse saved_model.pb.")
			}
			s.logger.Debug("decoded saved model", "member", name, "meta_graphs", info.MetaGraphs, "tags", info.Tags)
			found = true
		case SavedModelPBTxt:
			data, err := io.ReadAll(tr)
			if err != nil {
				return false, readError(err)
			}
			if _, err := DecodeSavedModelText(data); err != nil {
				return false, validation.Wrap(validation.KindAssetSmokeTest, err, "Could not parse saved_model.pbtxt.")
			}
			found = true
		}
	}
	return found, nil
}

// ValidateMemberPath checks that an archive member may be part of a SavedModel.
func ValidateMemberPath(name string) error {
	if !memberPathRegex.MatchString(name) {
		return validation.New(validation.KindAssetSmokeTest, "Invalid filepath in asset: %s", name)
	}
	for _, re := range allowedSavedModelRegexes {
		if re.MatchString(name) {
			return nil
		}
	}
	return validation.New(validation.KindAssetSmokeTest, "File cannot be used by SavedModel: %s", name)
}

// normalizeMemberPath cleans the member name, dropping a leading "./".
func normalizeMemberPath(name string) string {
	return path.Clean(name)
}

func readError(err error) error {
	return validation.Wrap(validation.KindAssetSmokeTest, err, "Could not read tarfile: %v", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
