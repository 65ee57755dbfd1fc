package encoding

import (
	"strconv"
	"strings"
)

// Progress is one decoded ffmpeg stats line.
type Progress struct {
	Frame     int64
	FPS       float64
	SizeBytes int64
	Seconds   float64
	Speed     float64
}

// ProgressFunc receives decoded progress events during an encode.
type ProgressFunc func(Progress)

// ParseProgress decodes an ffmpeg stderr stats line of the form
//
//	frame=  480 fps= 32 q=28.0 size=    1024kB time=00:00:20.11 bitrate=... speed=1.34x
//
// Lines that are not stats lines report ok false, as do stats lines that
// have not counted a frame yet. ffmpeg pads values with spaces, so a
// padded frame count lands in the wrong token and the line is dropped
// rather than misread.
func ParseProgress(line string) (Progress, bool) {
	if !strings.HasPrefix(line, "frame=") {
		return Progress{}, false
	}
	var progress Progress
	for _, field := range strings.Fields(line) {
		key, value, found := strings.Cut(field, "=")
		if !found || value == "" {
			continue
		}
		switch key {
		case "frame":
			progress.Frame, _ = strconv.ParseInt(value, 10, 64)
		case "fps":
			progress.FPS, _ = strconv.ParseFloat(value, 64)
		case "size":
			progress.SizeBytes = parseSizeWithUnit(value)
		case "time":
			progress.Seconds = parseClock(value)
		case "speed":
			progress.Speed, _ = strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64)
		}
	}
	if progress.Frame <= 0 {
		return Progress{}, false
	}
	return progress, true
}

func parseSizeWithUnit(value string) int64 {
	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"kB", 1 << 10},
		{"MB", 1 << 20},
		{"GB", 1 << 30},
	}
	for _, unit := range units {
		raw, found := strings.CutSuffix(value, unit.suffix)
		if !found {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0
		}
		return n * unit.multiplier
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseClock(value string) float64 {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}
	var total float64
	for i, scale := range []float64{3600, 60, 1} {
		n, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0
		}
		total += n * scale
	}
	return total
}
