// Package fileutil derives the sidecar and working-file names used around
// a source file and formats byte counts for display.
package fileutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Suffixes for files written beside a source. Scans must honor the skip
// marker forever, so these literals can never change.
const (
	tempOutputSuffix = ".av1-tmp.mkv"
	skipMarkerSuffix = ".av1skip"
	whyFileSuffix    = ".why.txt"
)

// stem returns the source's file name without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TempOutput returns the in-progress encode output path for source,
// placed in the same directory so the final swap is a same-filesystem
// rename.
func TempOutput(source string) string {
	return filepath.Join(filepath.Dir(source), stem(source)+tempOutputSuffix)
}

// IsTempOutput reports whether path is an in-progress encode output.
// Temp outputs end in .mkv, so extension matching alone cannot exclude
// them from a scan.
func IsTempOutput(path string) bool {
	return strings.HasSuffix(filepath.Base(path), tempOutputSuffix)
}

// SkipMarker returns the path of the marker that permanently excludes
// source from future scans.
func SkipMarker(source string) string {
	return filepath.Join(filepath.Dir(source), stem(source)+skipMarkerSuffix)
}

// WhyFile returns the path of the human-readable rejection note written
// beside source.
func WhyFile(source string) string {
	return filepath.Join(filepath.Dir(source), stem(source)+whyFileSuffix)
}

// BackupPath returns the collision-free name the original is parked at
// during a swap. The suffix must be unique per attempt.
func BackupPath(source, suffix string) string {
	name := fmt.Sprintf("%s.bak-%s", stem(source), suffix)
	return filepath.Join(filepath.Dir(source), name)
}
