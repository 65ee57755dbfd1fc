// Package media normalizes ffprobe output into the descriptor the
// decision and encoding layers consume.
package media

import (
	"fmt"
	"strings"
)

// VideoStream is the normalized view of one video stream.
type VideoStream struct {
	Codec        string
	Width        int
	Height       int
	BitDepth     int
	Default      bool
	AvgFrameRate string
	RawFrameRate string
}

// IsVFR reports whether the stream looks variable-frame-rate. ffprobe
// reports both rates as fraction strings; any disagreement counts.
func (s VideoStream) IsVFR() bool {
	return s.AvgFrameRate != s.RawFrameRate
}

// HasOddDimensions reports whether either dimension is not divisible
// by two. av1_qsv requires even dimensions, so such streams are padded.
func (s VideoStream) HasOddDimensions() bool {
	return s.Width%2 != 0 || s.Height%2 != 0
}

// Resolution returns the stream dimensions for display.
func (s VideoStream) Resolution() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ResolutionLabel returns a simplified resolution name for display.
func (s VideoStream) ResolutionLabel() string {
	switch {
	case s.Height >= 2160:
		return "4K"
	case s.Height >= 1440:
		return "1440p"
	case s.Height >= 1080:
		return "1080p"
	case s.Height >= 720:
		return "720p"
	case s.Height >= 480:
		return "480p"
	default:
		return fmt.Sprintf("%dp", s.Height)
	}
}

// Descriptor is the normalized metadata for one media file.
type Descriptor struct {
	Path             string
	VideoStreams     []VideoStream
	FormatName       string
	MuxingApp        string
	MajorBrand       string
	CompatibleBrands string
	SizeBytes        int64
	DurationSeconds  float64
}

// HasVideo reports whether the file contains at least one video stream.
func (d Descriptor) HasVideo() bool {
	return len(d.VideoStreams) > 0
}

// IsAV1 reports whether any video stream is already AV1.
func (d Descriptor) IsAV1() bool {
	for _, stream := range d.VideoStreams {
		if strings.ToLower(stream.Codec) == "av1" {
			return true
		}
	}
	return false
}

// DefaultVideoStream returns the stream ffmpeg should encode: the first
// stream with the default disposition, or the first video stream when
// none is marked.
func (d Descriptor) DefaultVideoStream() (VideoStream, bool) {
	for _, stream := range d.VideoStreams {
		if stream.Default {
			return stream, true
		}
	}
	if len(d.VideoStreams) > 0 {
		return d.VideoStreams[0], true
	}
	return VideoStream{}, false
}

// DefaultVideoIndex returns the position of the default stream among
// the file's video streams, which is the N in ffmpeg's 0:v:N selector.
func (d Descriptor) DefaultVideoIndex() (int, bool) {
	for i, stream := range d.VideoStreams {
		if stream.Default {
			return i, true
		}
	}
	if len(d.VideoStreams) > 0 {
		return 0, true
	}
	return 0, false
}
