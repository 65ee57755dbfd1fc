package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validatePostprocess(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if len(c.Paths.WatchedDirectories) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/av1janitor/config.toml"
		}
		return fmt.Errorf("paths.watched_directories must list at least one directory. Edit %s (create with 'av1d config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateScan() error {
	if err := ensurePositiveMap(map[string]int{
		"scan.interval_seconds": c.Scan.IntervalSeconds,
	}); err != nil {
		return err
	}
	if c.Scan.MinFileSizeBytes <= 0 {
		return errors.New("scan.min_file_size_bytes must be positive")
	}
	if len(c.Scan.MediaExtensions) == 0 {
		return errors.New("scan.media_extensions must include at least one extension")
	}
	if c.Scan.StabilitySamples < 0 {
		return errors.New("scan.stability_samples must be >= 0")
	}
	if c.Scan.StabilityDelayMS < 0 {
		return errors.New("scan.stability_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if err := ensurePositiveMap(map[string]int{
		"encoding.max_concurrent":         c.Encoding.MaxConcurrent,
		"encoding.encode_timeout_seconds": c.Encoding.EncodeTimeoutSeconds,
		"encoding.max_stderr_lines":       c.Encoding.MaxStderrLines,
	}); err != nil {
		return err
	}
	if c.Encoding.ExcludedLanguage != "" {
		if _, err := language.Parse(c.Encoding.ExcludedLanguage); err != nil {
			return fmt.Errorf("encoding.excluded_language %q is not a recognized language tag: %w", c.Encoding.ExcludedLanguage, err)
		}
	}
	return nil
}

func (c *Config) validateQuality() error {
	tiers := map[string]int{
		"quality.below_1080p":        c.Quality.Below1080p,
		"quality.at_1080p":           c.Quality.At1080p,
		"quality.at_1440p_and_above": c.Quality.At1440pAndAbove,
	}
	for key, value := range tiers {
		if value < 1 || value > 51 {
			return fmt.Errorf("%s must be between 1 and 51", key)
		}
	}
	return nil
}

func (c *Config) validatePostprocess() error {
	factor := c.Postprocess.SizeGateFactor
	if factor <= 0 || factor > 1 {
		return errors.New("postprocess.size_gate_factor must be greater than 0 and at most 1")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
