package workflow

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"av1janitor/internal/config"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/logging"
)

// Scan walks the watched directories and returns every candidate media
// file in discovery order. Missing directories are logged and skipped:
// an offline mount must not abort the pass, and the next rescan picks
// the directory up again. In-progress encode outputs share the media
// extension, so the naming policy filters them here.
func Scan(cfg *config.Config, logger *slog.Logger) []string {
	if logger == nil {
		logger = logging.NewNop()
	}
	allowed := make(map[string]struct{}, len(cfg.Scan.MediaExtensions))
	for _, ext := range cfg.Scan.MediaExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	var files []string
	for _, root := range cfg.Paths.WatchedDirectories {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			logging.WarnWithContext(logger, "watched directory unavailable; skipping this pass",
				"watch_dir_unavailable",
				logging.String("directory", root),
				logging.String(logging.FieldErrorHint, "check that the storage is mounted"),
				logging.String(logging.FieldImpact, "files under this directory are not scanned"),
			)
			continue
		}
		walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("scan entry unreadable",
					logging.Error(err),
					logging.String("path", path),
					logging.String(logging.FieldEventType, "scan_entry_failed"),
				)
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			if !isMediaFile(path, allowed) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if walkErr != nil {
			logger.Warn("scan aborted for directory",
				logging.Error(walkErr),
				logging.String("directory", root),
				logging.String(logging.FieldEventType, "scan_failed"),
			)
		}
	}
	return files
}

func isMediaFile(path string, allowed map[string]struct{}) bool {
	if fileutil.IsTempOutput(path) {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := allowed[ext]
	return ok
}
