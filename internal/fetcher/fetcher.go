package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytscribe/internal/language"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/videoref"
)

const outputTailLines = 8

// Config captures the caption download settings.
type Config struct {
	Binary       string
	Language     string
	SleepSeconds int
	Timeout      time.Duration
	// TempDir is the parent for per-call scratch directories; empty means os.TempDir().
	TempDir string
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *Fetcher) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithLogger sets the logger used for download diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Fetcher downloads the automatic captions of one video through yt-dlp.
type Fetcher struct {
	cfg    Config
	exec   Executor
	logger *slog.Logger
}

// New constructs a Fetcher.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		return nil, errors.New("caption fetcher binary required")
	}
	cfg.Language = strings.TrimSpace(cfg.Language)
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.SleepSeconds < 0 {
		cfg.SleepSeconds = 0
	}
	f := &Fetcher{
		cfg:    cfg,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "fetcher")
	return f, nil
}

// Fetch downloads the auto-generated caption document for videoID and returns
// its raw bytes. Every call writes into its own scratch directory, which is
// removed before Fetch returns.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) ([]byte, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "fetching", "fetch captions", "video id required", nil)
	}

	if f.cfg.TempDir != "" {
		if err := os.MkdirAll(f.cfg.TempDir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrFetch, "fetching", "prepare temp dir", f.cfg.TempDir, err)
		}
	}
	workDir, err := os.MkdirTemp(f.cfg.TempDir, "captions-*")
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetching", "create temp dir", "", err)
	}
	logger := logging.WithContext(ctx, f.logger).With(logging.Video(videoID))
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.WarnWithContext(logger, "caption temp dir cleanup failed", "fetch_cleanup_failed",
				logging.String("path", workDir),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "scratch files remain on disk"),
			)
		}
	}()

	base := filepath.Join(workDir, uuid.NewString())
	args := f.buildArgs(base, videoID)

	runCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	tail := newLineTail(outputTailLines)
	started := time.Now()
	logger.Debug("caption download starting", logging.String("binary", f.cfg.Binary), logging.Any("args", args))
	if err := f.exec.Run(runCtx, f.cfg.Binary, args, func(line string) {
		tail.add(line)
		logger.Debug("yt-dlp", logging.String("line", line))
	}); err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil && ctx.Err() == nil {
			err = fmt.Errorf("%w (timeout=%s): %w", services.ErrTimeout, f.cfg.Timeout, err)
		}
		return nil, services.Wrap(services.ErrFetch, "fetching", f.cfg.Binary, tail.String(), err)
	}

	captionPath := base + "." + f.cfg.Language + ".vtt"
	data, err := os.ReadFile(captionPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrFetch, "fetching", "read captions",
				fmt.Sprintf("no auto-generated %s captions available for %s", language.DisplayName(f.cfg.Language), videoID), nil)
		}
		return nil, services.Wrap(services.ErrFetch, "fetching", "read captions", captionPath, err)
	}

	logger.Info("captions downloaded",
		logging.Int("bytes", len(data)),
		logging.Elapsed(started),
	)
	return data, nil
}

func (f *Fetcher) buildArgs(base, videoID string) []string {
	return []string{
		"--skip-download",
		"--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", f.cfg.Language,
		"--sleep-subtitles", strconv.Itoa(f.cfg.SleepSeconds),
		"--no-progress",
		"-o", base,
		videoref.WatchURL(videoID),
	}
}

type lineTail struct {
	max   int
	lines []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "; ")
}
