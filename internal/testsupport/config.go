package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"av1janitor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The watched library directory exists; admission thresholds are lowered so
// small fixture files flow through without gigabytes of test data.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()

	library := filepath.Join(base, "library")
	if err := os.MkdirAll(library, 0o755); err != nil {
		t.Fatalf("mkdir library dir: %v", err)
	}
	cfgVal.Paths.WatchedDirectories = []string{library}
	cfgVal.Paths.JobsDir = filepath.Join(base, "jobs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Scan.MinFileSizeBytes = 1
	cfgVal.Scan.StabilitySamples = 1
	cfgVal.Scan.StabilityDelayMS = 1
	cfgVal.Encoding.EncodeTimeoutSeconds = 60

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

// WithWatchedDirectories replaces the watched directory list.
func WithWatchedDirectories(paths ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.WatchedDirectories = append([]string(nil), paths...)
	}
}

// WithMinFileSize sets the admission size threshold on the test config.
func WithMinFileSize(bytes int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.MinFileSizeBytes = bytes
	}
}

// WithSizeGateFactor sets the post-encode size gate on the test config.
func WithSizeGateFactor(factor float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Postprocess.SizeGateFactor = factor
	}
}

// WithDryRun toggles dry-run mode on the test config.
func WithDryRun(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.DryRun = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WatchDir returns the first watched directory of the generated config.
func WatchDir(t testing.TB, cfg *config.Config) string {
	t.Helper()
	if len(cfg.Paths.WatchedDirectories) == 0 {
		t.Fatal("test config has no watched directories")
	}
	return cfg.Paths.WatchedDirectories[0]
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.JobsDir)
}
