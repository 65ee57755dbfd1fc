package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"av1janitor/internal/services"
)

// Installation describes a validated ffmpeg install.
type Installation struct {
	FFmpegPath  string
	FFprobePath string
	Version     string
	HasAV1QSV   bool
}

// commonLocations are checked after PATH when no explicit binary is
// configured. Distribution packages and the static builds land here.
var commonLocations = []string{
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/opt/ffmpeg/bin/ffmpeg",
	"/snap/bin/ffmpeg",
}

// InstallHint is appended to discovery failures so the operator knows
// what to install.
const InstallHint = "install FFmpeg 8.0+ with Intel QSV support (av1_qsv encoder); " +
	"most distributions ship it as the 'ffmpeg' package"

// Resolve locates the ffmpeg binary to use. An explicit configured path
// wins; otherwise PATH, then the usual installation locations.
func Resolve(configured string) (string, error) {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		if _, err := os.Stat(trimmed); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "deps", "resolve ffmpeg", trimmed, err)
		}
		return trimmed, nil
	}
	if found, err := exec.LookPath("ffmpeg"); err == nil {
		return found, nil
	}
	for _, location := range commonLocations {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location, nil
		}
	}
	return "", services.Wrap(services.ErrConfiguration, "deps", "resolve ffmpeg", InstallHint, nil)
}

// Validate checks that the binary is FFmpeg 8.0 or later and carries the
// av1_qsv encoder, and locates the ffprobe that ships with it.
func Validate(ctx context.Context, ffmpegPath string) (Installation, error) {
	install := Installation{FFmpegPath: ffmpegPath}

	versionOut, err := commandOutput(ctx, ffmpegPath, "-version")
	if err != nil {
		return install, services.Wrap(services.ErrConfiguration, "deps", "ffmpeg -version", ffmpegPath, err)
	}
	version, err := extractVersion(string(versionOut))
	if err != nil {
		return install, services.Wrap(services.ErrConfiguration, "deps", "parse ffmpeg version", ffmpegPath, err)
	}
	install.Version = version
	if !versionAtLeast8(version) {
		return install, services.Wrap(services.ErrConfiguration, "deps", "ffmpeg version",
			fmt.Sprintf("%s is too old, need 8.0+; %s", version, InstallHint), nil)
	}

	encodersOut, err := commandOutput(ctx, ffmpegPath, "-encoders")
	if err != nil {
		return install, services.Wrap(services.ErrConfiguration, "deps", "ffmpeg -encoders", ffmpegPath, err)
	}
	install.HasAV1QSV = strings.Contains(string(encodersOut), "av1_qsv")
	if !install.HasAV1QSV {
		return install, services.Wrap(services.ErrConfiguration, "deps", "ffmpeg encoders",
			"av1_qsv encoder missing; "+InstallHint, nil)
	}

	ffprobe, err := findFFprobe(ffmpegPath)
	if err != nil {
		return install, err
	}
	install.FFprobePath = ffprobe
	return install, nil
}

// TestHardware runs a one-frame synthetic encode through the QSV device.
// The result is advisory: a failure usually means missing GPU drivers or
// permissions, which the operator fixes outside this process.
func TestHardware(ctx context.Context, ffmpegPath string) bool {
	_, err := commandOutput(ctx, ffmpegPath,
		"-hide_banner",
		"-init_hw_device", "qsv=hw",
		"-filter_hw_device", "hw",
		"-f", "lavfi",
		"-i", "testsrc2=s=64x64:d=0.1",
		"-vf", "format=nv12,hwupload=extra_hw_frames=64",
		"-c:v", "av1_qsv",
		"-frames:v", "1",
		"-f", "null", "-",
	)
	return err == nil
}

// extractVersion pulls the version token from the first line of
// `ffmpeg -version` output, e.g. "ffmpeg version n8.0 Copyright ...".
func extractVersion(output string) (string, error) {
	line, _, _ := strings.Cut(output, "\n")
	_, after, found := strings.Cut(line, "version ")
	if !found {
		return "", fmt.Errorf("no version token in %q", strings.TrimSpace(line))
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return "", fmt.Errorf("no version token in %q", strings.TrimSpace(line))
	}
	return fields[0], nil
}

// versionAtLeast8 accepts plain ("8.0") and tag-style ("n8.0") versions.
func versionAtLeast8(version string) bool {
	trimmed := strings.TrimPrefix(version, "n")
	digits := trimmed
	if i := strings.IndexFunc(trimmed, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = trimmed[:i]
	}
	major, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	return major >= 8
}

// findFFprobe prefers the ffprobe sitting next to ffmpeg, then PATH.
// Mixed installs probe with a different build than they encode with,
// which is how version skew bugs start.
func findFFprobe(ffmpegPath string) (string, error) {
	sibling := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
	if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
		return sibling, nil
	}
	if found, err := exec.LookPath("ffprobe"); err == nil {
		return found, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "deps", "resolve ffprobe",
		"ffprobe not found beside ffmpeg or on PATH", nil)
}
