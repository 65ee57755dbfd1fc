package encoding

import (
	"fmt"
	"strconv"
)

// hwFilterChain pads odd dimensions to even, resets the sample aspect,
// converts to the QSV surface format, and uploads frames to the hardware
// device.
const hwFilterChain = "pad=ceil(iw/2)*2:ceil(ih/2)*2,setsar=1,format=%s,hwupload=extra_hw_frames=64"

// BuildArgs assembles the complete ffmpeg argument list for one encode.
// Order is load-bearing for ffmpeg: global flags, hardware setup, input
// flags, the input, stream maps, codec settings, then the output path.
// Special handling inserts timestamp regeneration before the input and
// frame-sync clamps after the maps.
func BuildArgs(params Params, excludedLanguages []string, hwDevice string) []string {
	args := []string{
		"-y",
		"-v", "verbose",
		"-stats",
		"-benchmark",
		"-benchmark_all",
		"-hwaccel", "none",
		"-init_hw_device", hwDevice,
		"-filter_hw_device", "hw",
		"-analyzeduration", "50M",
		"-probesize", "50M",
	}
	if params.SpecialHandling {
		args = append(args, "-fflags", "+genpts", "-copyts", "-start_at_zero")
	}
	args = append(args, "-i", params.InputPath)

	// Drop every video and attachment stream, then re-add the one video
	// stream being encoded. Audio and subtitles ride along except for the
	// excluded language.
	args = append(args,
		"-map", "0",
		"-map", "-0:v",
		"-map", "-0:t",
		"-map", "0:v:"+strconv.Itoa(params.VideoStreamIndex),
		"-map", "0:a?",
	)
	for _, lang := range excludedLanguages {
		args = append(args, "-map", "-0:a:m:language:"+lang)
	}
	args = append(args, "-map", "0:s?")
	for _, lang := range excludedLanguages {
		args = append(args, "-map", "-0:s:m:language:"+lang)
	}
	args = append(args, "-map_chapters", "0")
	if params.SpecialHandling {
		args = append(args, "-vsync", "0", "-avoid_negative_ts", "make_zero")
	}

	args = append(args,
		"-vf:v:0", fmt.Sprintf(hwFilterChain, params.Surface),
		"-c:v:0", "av1_qsv",
		"-global_quality:v:0", strconv.Itoa(params.Quality),
		"-preset:v:0", params.Preset,
		"-look_ahead", "1",
		"-c:a", "copy",
		"-c:s", "copy",
		"-max_muxing_queue_size", "2048",
		"-map_metadata", "0",
		"-f", "matroska",
		"-movflags", "+faststart",
		params.OutputPath,
	)
	return args
}
