package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. Credential
// lookups point at files inside the temp directory so the developer's own
// secrets never leak into tests.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Credentials.EnvVar = "YTSCRIBE_TEST_PAT"
	cfgVal.Credentials.SecretsFile = filepath.Join(base, "secrets.toml")
	cfgVal.Credentials.DotenvFile = filepath.Join(base, ".env")
	cfgVal.Fetcher.SleepSubtitlesSeconds = 0
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithClarifaiURL points the model client at a test server.
func WithClarifaiURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Clarifai.BaseURL = strings.TrimRight(url, "/")
	}
}

// WithToken exposes a personal access token through the configured
// environment variable for the duration of the test.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.t.Setenv(b.cfg.Credentials.EnvVar, token)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp"}
		}
		binDir := b.binDir()
		for _, name := range names {
			writeExecutable(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}
		b.prependPath(binDir)
	}
}

// WithCaptionStub installs a fake yt-dlp that writes vtt to the requested
// output base and points the fetcher at it.
func WithCaptionStub(vtt string) ConfigOption {
	return func(b *configBuilder) {
		source := filepath.Join(b.baseDir, "captions.vtt")
		if err := os.WriteFile(source, []byte(vtt), 0o644); err != nil {
			b.t.Fatalf("write caption source: %v", err)
		}
		script := "#!/bin/sh\n" +
			"if [ \"$1\" = \"--version\" ]; then echo 2024.08.06; exit 0; fi\n" +
			"out=\"\"\n" +
			"while [ $# -gt 0 ]; do\n" +
			"  if [ \"$1\" = \"-o\" ]; then out=\"$2\"; fi\n" +
			"  shift\n" +
			"done\n" +
			"cp '" + source + "' \"$out.en.vtt\"\n"
		target := filepath.Join(b.binDir(), "yt-dlp")
		writeExecutable(b.t, target, script)
		b.cfg.Fetcher.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func (b *configBuilder) binDir() string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func (b *configBuilder) prependPath(dir string) {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

func writeExecutable(t testing.TB, path, script string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}
