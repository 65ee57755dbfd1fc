package preflight

import (
	"context"

	"av1janitor/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config: state
// directories, watched directories, the ffmpeg installation, and the
// render node. The render node result is advisory; everything else
// describes a configuration problem when it fails.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := make([]Result, 0, 4+len(cfg.Paths.WatchedDirectories))
	results = append(results, CheckDirectoryAccess("Jobs directory", cfg.Paths.JobsDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	for _, dir := range cfg.Paths.WatchedDirectories {
		results = append(results, CheckDirectoryAccess("Watched directory", dir))
	}
	results = append(results, CheckFFmpeg(ctx, cfg.FFmpegBinary()))
	results = append(results, CheckRenderNode())
	return results
}

// AdvisoryOnly reports whether a failed check should never stop the
// daemon. The render node check qualifies: software probing may still
// find a device ffmpeg can use.
func AdvisoryOnly(result Result) bool {
	return result.Name == renderNodeCheckName
}

// FatalFailures filters results down to the ones that should stop the
// daemon from starting.
func FatalFailures(results []Result) []Result {
	fatal := make([]Result, 0, len(results))
	for _, result := range results {
		if result.Passed || AdvisoryOnly(result) {
			continue
		}
		fatal = append(fatal, result)
	}
	return fatal
}
