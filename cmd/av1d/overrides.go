package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"av1janitor/internal/config"
)

// encodeOverrides are the config fields run and once may override from
// the command line. Overrides apply after Load so the file stays the
// source of truth for everything else.
type encodeOverrides struct {
	dryRun      bool
	concurrent  int
	directories []string
}

func (o *encodeOverrides) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Evaluate candidates and log decisions without encoding")
	cmd.Flags().IntVar(&o.concurrent, "concurrent", 0, "Override the maximum number of concurrent encodes")
	cmd.Flags().StringArrayVar(&o.directories, "directory", nil, "Scan only this directory (repeatable)")
}

func (o *encodeOverrides) apply(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if o.dryRun {
		cfg.Daemon.DryRun = true
	}
	if o.concurrent > 0 {
		cfg.Encoding.MaxConcurrent = o.concurrent
	}
	if len(o.directories) > 0 {
		expanded := make([]string, 0, len(o.directories))
		for _, dir := range o.directories {
			path, err := config.ExpandPath(dir)
			if err != nil {
				return fmt.Errorf("resolve directory %q: %w", dir, err)
			}
			expanded = append(expanded, path)
		}
		cfg.Paths.WatchedDirectories = expanded
	}
	return cfg.Validate()
}
