package encoding

import (
	"av1janitor/internal/config"
	"av1janitor/internal/decision"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/media"
	"av1janitor/internal/services"
)

// Params captures every per-file decision feeding the ffmpeg command
// builder. Building params never touches the filesystem; the output path
// is derived, not created.
type Params struct {
	InputPath        string
	OutputPath       string
	VideoStreamIndex int
	Quality          int
	Surface          string
	Preset           string
	SpecialHandling  bool
}

// Plan derives encode parameters for a probed source file.
func Plan(desc media.Descriptor, cfg *config.Config) (Params, error) {
	stream, ok := desc.DefaultVideoStream()
	if !ok {
		return Params{}, services.Wrap(services.ErrBuild, "plan", "select video stream", desc.Path, nil)
	}
	index, _ := desc.DefaultVideoIndex()
	return Params{
		InputPath:        desc.Path,
		OutputPath:       fileutil.TempOutput(desc.Path),
		VideoStreamIndex: index,
		Quality:          decision.QualityForHeight(stream.Height, cfg.Quality),
		Surface:          decision.SurfaceForBitDepth(stream.BitDepth),
		Preset:           cfg.Encoding.Preset,
		SpecialHandling:  decision.NeedsSpecialHandling(desc),
	}, nil
}
