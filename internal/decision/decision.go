// Package decision holds the pure predicates that decide whether and
// how a file is re-encoded. Everything here is a stateless function of
// the media descriptor and configuration, which keeps the full decision
// matrix unit-testable without touching ffmpeg.
package decision

import (
	"strings"

	"av1janitor/internal/config"
	"av1janitor/internal/media"
)

// Surface names passed to ffmpeg's format filter.
const (
	SurfaceStandard     = "nv12"
	SurfaceHighBitDepth = "p010"
)

// ShouldSkipForSize reports whether a file is too small to be worth
// re-encoding.
func ShouldSkipForSize(bytes, minBytes int64) bool {
	return bytes < minBytes
}

// QualityForHeight maps the video height to the configured
// global_quality value. Heights are bucketed below, at, and above
// 1080 lines; the above bucket starts at 1081, so 1081 through 1439
// already receive the top-tier quality.
func QualityForHeight(height int, tiers config.Quality) int {
	switch {
	case height < 1080:
		return tiers.Below1080p
	case height == 1080:
		return tiers.At1080p
	default:
		return tiers.At1440pAndAbove
	}
}

// SurfaceForBitDepth selects the hardware pixel surface. Ten bits and
// up need the wide surface; everything else encodes from nv12.
func SurfaceForBitDepth(bitDepth int) string {
	if bitDepth >= 10 {
		return SurfaceHighBitDepth
	}
	return SurfaceStandard
}

// NeedsSpecialHandling reports whether the file looks like a web rip
// that needs timestamp regeneration and sync correction during the
// encode. True when the container family is mp4/mov/webm, or any video
// stream is variable-frame-rate, or any stream has odd dimensions.
func NeedsSpecialHandling(desc media.Descriptor) bool {
	format := strings.ToLower(desc.FormatName)
	if strings.Contains(format, "mp4") || strings.Contains(format, "mov") || strings.Contains(format, "webm") {
		return true
	}
	for _, stream := range desc.VideoStreams {
		if stream.IsVFR() || stream.HasOddDimensions() {
			return true
		}
	}
	return false
}
