package encoding_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"av1janitor/internal/encoding"
)

func TestBuildArgsStandardFile(t *testing.T) {
	params := encoding.Params{
		InputPath:        "/library/movies/Big Movie (2021)/big.movie.mkv",
		OutputPath:       "/library/movies/Big Movie (2021)/big.movie.av1-tmp.mkv",
		VideoStreamIndex: 0,
		Quality:          24,
		Surface:          "nv12",
		Preset:           "medium",
	}

	got := encoding.BuildArgs(params, []string{"rus", "ru"}, "qsv=hw,child_device_type=vaapi")
	want := []string{
		"-y",
		"-v", "verbose",
		"-stats",
		"-benchmark",
		"-benchmark_all",
		"-hwaccel", "none",
		"-init_hw_device", "qsv=hw,child_device_type=vaapi",
		"-filter_hw_device", "hw",
		"-analyzeduration", "50M",
		"-probesize", "50M",
		"-i", "/library/movies/Big Movie (2021)/big.movie.mkv",
		"-map", "0",
		"-map", "-0:v",
		"-map", "-0:t",
		"-map", "0:v:0",
		"-map", "0:a?",
		"-map", "-0:a:m:language:rus",
		"-map", "-0:a:m:language:ru",
		"-map", "0:s?",
		"-map", "-0:s:m:language:rus",
		"-map", "-0:s:m:language:ru",
		"-map_chapters", "0",
		"-vf:v:0", "pad=ceil(iw/2)*2:ceil(ih/2)*2,setsar=1,format=nv12,hwupload=extra_hw_frames=64",
		"-c:v:0", "av1_qsv",
		"-global_quality:v:0", "24",
		"-preset:v:0", "medium",
		"-look_ahead", "1",
		"-c:a", "copy",
		"-c:s", "copy",
		"-max_muxing_queue_size", "2048",
		"-map_metadata", "0",
		"-f", "matroska",
		"-movflags", "+faststart",
		"/library/movies/Big Movie (2021)/big.movie.av1-tmp.mkv",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("argument list mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestBuildArgsSpecialHandling(t *testing.T) {
	params := encoding.Params{
		InputPath:        "/library/shows/clip.mp4",
		OutputPath:       "/library/shows/clip.av1-tmp.mkv",
		VideoStreamIndex: 1,
		Quality:          23,
		Surface:          "p010",
		Preset:           "slow",
		SpecialHandling:  true,
	}

	got := encoding.BuildArgs(params, []string{"jpn", "ja"}, "qsv=hw")
	want := []string{
		"-y",
		"-v", "verbose",
		"-stats",
		"-benchmark",
		"-benchmark_all",
		"-hwaccel", "none",
		"-init_hw_device", "qsv=hw",
		"-filter_hw_device", "hw",
		"-analyzeduration", "50M",
		"-probesize", "50M",
		"-fflags", "+genpts",
		"-copyts",
		"-start_at_zero",
		"-i", "/library/shows/clip.mp4",
		"-map", "0",
		"-map", "-0:v",
		"-map", "-0:t",
		"-map", "0:v:1",
		"-map", "0:a?",
		"-map", "-0:a:m:language:jpn",
		"-map", "-0:a:m:language:ja",
		"-map", "0:s?",
		"-map", "-0:s:m:language:jpn",
		"-map", "-0:s:m:language:ja",
		"-map_chapters", "0",
		"-vsync", "0",
		"-avoid_negative_ts", "make_zero",
		"-vf:v:0", "pad=ceil(iw/2)*2:ceil(ih/2)*2,setsar=1,format=p010,hwupload=extra_hw_frames=64",
		"-c:v:0", "av1_qsv",
		"-global_quality:v:0", "23",
		"-preset:v:0", "slow",
		"-look_ahead", "1",
		"-c:a", "copy",
		"-c:s", "copy",
		"-max_muxing_queue_size", "2048",
		"-map_metadata", "0",
		"-f", "matroska",
		"-movflags", "+faststart",
		"/library/shows/clip.av1-tmp.mkv",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("argument list mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestBuildArgsNoExcludedLanguages(t *testing.T) {
	params := encoding.Params{
		InputPath:        "/library/a.mkv",
		OutputPath:       "/library/a.av1-tmp.mkv",
		VideoStreamIndex: 0,
		Quality:          25,
		Surface:          "nv12",
		Preset:           "medium",
	}

	got := encoding.BuildArgs(params, nil, "qsv=hw")
	for _, arg := range got {
		if arg == "-0:a:m:language:" || arg == "-0:s:m:language:" {
			t.Fatalf("empty language exclusion leaked into arguments: %v", got)
		}
	}
	// Audio and subtitle wildcards stay adjacent when nothing is excluded.
	for i, arg := range got {
		if arg == "0:a?" {
			if got[i+1] != "-map" || got[i+2] != "0:s?" {
				t.Fatalf("expected subtitle map directly after audio map, got %v", got[i+1:i+3])
			}
		}
	}
}

func TestQSVDevicePrefersRenderNode(t *testing.T) {
	root := t.TempDir()
	restore := encoding.SetDeviceRootForTests(root)
	t.Cleanup(restore)

	if got := encoding.QSVDevice(); got != "qsv=hw" {
		t.Fatalf("expected plain device for empty %s, got %q", root, got)
	}

	if err := os.WriteFile(filepath.Join(root, "card0"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := encoding.QSVDevice(); got != "qsv=hw" {
		t.Fatalf("card node alone must not select vaapi, got %q", got)
	}

	if err := os.WriteFile(filepath.Join(root, "renderD128"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := encoding.QSVDevice(); got != "qsv=hw,child_device_type=vaapi" {
		t.Fatalf("expected vaapi child device with render node present, got %q", got)
	}
}

func TestQSVDeviceUnreadableRoot(t *testing.T) {
	restore := encoding.SetDeviceRootForTests(filepath.Join(t.TempDir(), "missing"))
	t.Cleanup(restore)

	if got := encoding.QSVDevice(); got != "qsv=hw" {
		t.Fatalf("expected fallback device for missing root, got %q", got)
	}
}
