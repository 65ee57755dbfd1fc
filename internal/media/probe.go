package media

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"av1janitor/internal/media/ffprobe"
	"av1janitor/internal/services"
)

// Prober inspects a media file and returns its normalized descriptor.
type Prober interface {
	Describe(ctx context.Context, path string) (Descriptor, error)
}

// FFprobe implements Prober with the ffprobe CLI.
type FFprobe struct {
	binary string
}

// Option customizes an FFprobe prober.
type Option func(*FFprobe)

// WithBinary overrides the ffprobe executable path.
func WithBinary(binary string) Option {
	return func(p *FFprobe) {
		if trimmed := strings.TrimSpace(binary); trimmed != "" {
			p.binary = trimmed
		}
	}
}

// NewFFprobe constructs an ffprobe-backed prober.
func NewFFprobe(opts ...Option) *FFprobe {
	prober := &FFprobe{binary: "ffprobe"}
	for _, opt := range opts {
		opt(prober)
	}
	return prober
}

var _ Prober = (*FFprobe)(nil)

var inspect = ffprobe.Inspect

// SetInspectForTests replaces the ffprobe invocation and returns a
// restore func.
func SetInspectForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	prev := inspect
	inspect = fn
	return func() { inspect = prev }
}

// Describe probes path and normalizes the result.
func (p *FFprobe) Describe(ctx context.Context, path string) (Descriptor, error) {
	result, err := inspect(ctx, p.binary, path)
	if err != nil {
		return Descriptor{}, services.Wrap(services.ErrProbe, "probe", "inspect", path, err)
	}
	return fromResult(path, result), nil
}

func fromResult(path string, result ffprobe.Result) Descriptor {
	streams := make([]VideoStream, 0, 1)
	for _, raw := range result.VideoStreams() {
		streams = append(streams, VideoStream{
			Codec:        raw.CodecName,
			Width:        raw.Width,
			Height:       raw.Height,
			BitDepth:     parseBitDepth(raw.PixFmt, raw.BitsPerRawSample),
			Default:      raw.Disposition.Default == 1,
			AvgFrameRate: raw.AvgFrameRate,
			RawFrameRate: raw.RFrameRate,
		})
	}

	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}

	return Descriptor{
		Path:             path,
		VideoStreams:     streams,
		FormatName:       result.Format.FormatName,
		MuxingApp:        result.Format.Tag("MUXING_APP", "muxing_app"),
		MajorBrand:       result.Format.Tag("major_brand"),
		CompatibleBrands: result.Format.Tag("compatible_brands"),
		SizeBytes:        sizeOf(path, result),
		DurationSeconds:  duration,
	}
}

// sizeOf prefers the container-reported size and falls back to the
// filesystem when ffprobe omits it.
func sizeOf(path string, result ffprobe.Result) int64 {
	if size := result.SizeBytes(); size > 0 {
		return size
	}
	if info, err := os.Stat(path); err == nil {
		return info.Size()
	}
	return 0
}

// parseBitDepth resolves the stream bit depth, trying the explicit
// bits_per_raw_sample field first and the pixel format name second.
// Unknown depths report as 8.
func parseBitDepth(pixFmt, bitsPerRawSample string) int {
	if depth, err := strconv.Atoi(strings.TrimSpace(bitsPerRawSample)); err == nil && depth > 0 && depth <= 255 {
		return depth
	}
	lower := strings.ToLower(pixFmt)
	switch {
	case strings.Contains(lower, "10le") || strings.Contains(lower, "10be") || strings.Contains(lower, "p10"):
		return 10
	case strings.Contains(lower, "12le") || strings.Contains(lower, "12be") || strings.Contains(lower, "p12"):
		return 12
	case strings.Contains(lower, "16le") || strings.Contains(lower, "16be") || strings.Contains(lower, "p16"):
		return 16
	default:
		return 8
	}
}
