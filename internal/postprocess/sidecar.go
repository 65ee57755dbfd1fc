package postprocess

import (
	"os"
	"time"

	"av1janitor/internal/fileutil"
)

// WriteWhyFile records the reason a source was left alone, next to the
// source itself. The reason is written verbatim.
func WriteWhyFile(sourcePath, reason string) error {
	return os.WriteFile(fileutil.WhyFile(sourcePath), []byte(reason), 0o644)
}

// WriteSkipMarker drops the marker that excludes a source from every
// future scan.
func WriteSkipMarker(sourcePath string) error {
	content := "Created: " + time.Now().Format(time.RFC3339)
	return os.WriteFile(fileutil.SkipMarker(sourcePath), []byte(content), 0o644)
}

// RemoveTempOutput deletes a leftover encode artifact. A missing file is
// not an error; crash recovery calls this blindly.
func RemoveTempOutput(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
