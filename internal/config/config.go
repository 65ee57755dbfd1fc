package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchedDirectories []string `toml:"watched_directories"`
	JobsDir            string   `toml:"jobs_dir"`
	LogDir             string   `toml:"log_dir"`
	HistoryDB          string   `toml:"history_db"`
}

// Scan contains configuration for library scanning and candidate admission.
type Scan struct {
	IntervalSeconds  int      `toml:"interval_seconds"`
	MediaExtensions  []string `toml:"media_extensions"`
	MinFileSizeBytes int64    `toml:"min_file_size_bytes"`
	StabilitySamples int      `toml:"stability_samples"`
	StabilityDelayMS int      `toml:"stability_delay_ms"`
}

// Encoding contains configuration for the ffmpeg encode step.
type Encoding struct {
	FFmpegPath           string `toml:"ffmpeg_path"`
	FFprobePath          string `toml:"ffprobe_path"`
	MaxConcurrent        int    `toml:"max_concurrent"`
	EncodeTimeoutSeconds int    `toml:"encode_timeout_seconds"`
	MaxStderrLines       int    `toml:"max_stderr_lines"`
	ExcludedLanguage     string `toml:"excluded_language"`
	Preset               string `toml:"preset"`
}

// Quality maps video height tiers to av1_qsv global_quality values.
// Lower values produce larger, higher-fidelity output.
type Quality struct {
	Below1080p      int `toml:"below_1080p"`
	At1080p         int `toml:"at_1080p"`
	At1440pAndAbove int `toml:"at_1440p_and_above"`
}

// Postprocess contains configuration for output acceptance.
type Postprocess struct {
	// SizeGateFactor is the maximum accepted ratio of output size to
	// input size. Outputs above the factor are rejected and the source
	// is marked so it is never retried.
	SizeGateFactor float64 `toml:"size_gate_factor"`
}

// Daemon contains daemon behavior toggles.
type Daemon struct {
	// DryRun evaluates candidates and records the decision without
	// spawning any encode.
	DryRun bool `toml:"dry_run"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for av1janitor.
//
// Configuration sections by subsystem:
//   - Paths: watched media directories and state directories
//   - Scan: scan cadence and candidate admission thresholds
//   - Encoding: ffmpeg/ffprobe overrides, concurrency, timeout
//   - Quality: resolution-tier quality targets
//   - Postprocess: size gate acceptance factor
//   - Daemon: dry-run toggle
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Scan        Scan        `toml:"scan"`
	Encoding    Encoding    `toml:"encoding"`
	Quality     Quality     `toml:"quality"`
	Postprocess Postprocess `toml:"postprocess"`
	Daemon      Daemon      `toml:"daemon"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/av1janitor/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/av1janitor/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("av1janitor.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directories the daemon needs.
// Watched directories are never created here: a missing watch directory
// means external storage is offline, and creating an empty stand-in would
// silently hide the whole library.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.JobsDir, c.Paths.LogDir, filepath.Dir(c.Paths.HistoryDB)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the configured ffmpeg path, or empty when the
// daemon should discover one.
func (c *Config) FFmpegBinary() string {
	return strings.TrimSpace(c.Encoding.FFmpegPath)
}

// FFprobeBinary returns the configured ffprobe path, or empty when the
// daemon should use the sibling of the discovered ffmpeg.
func (c *Config) FFprobeBinary() string {
	return strings.TrimSpace(c.Encoding.FFprobePath)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
