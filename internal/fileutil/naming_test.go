package fileutil_test

import (
	"testing"

	"av1janitor/internal/fileutil"
)

func TestTempOutput(t *testing.T) {
	got := fileutil.TempOutput("/media/movies/example.mkv")
	if want := "/media/movies/example.av1-tmp.mkv"; got != want {
		t.Fatalf("TempOutput = %q, want %q", got, want)
	}
}

func TestSidecarNames(t *testing.T) {
	cases := []struct {
		source string
		skip   string
		why    string
	}{
		{
			source: "/media/movies/example.mkv",
			skip:   "/media/movies/example.av1skip",
			why:    "/media/movies/example.why.txt",
		},
		{
			source: "/media/shows/pilot.mp4",
			skip:   "/media/shows/pilot.av1skip",
			why:    "/media/shows/pilot.why.txt",
		},
		{
			source: "/media/a.b.c.avi",
			skip:   "/media/a.b.c.av1skip",
			why:    "/media/a.b.c.why.txt",
		},
	}
	for _, tc := range cases {
		if got := fileutil.SkipMarker(tc.source); got != tc.skip {
			t.Fatalf("SkipMarker(%q) = %q, want %q", tc.source, got, tc.skip)
		}
		if got := fileutil.WhyFile(tc.source); got != tc.why {
			t.Fatalf("WhyFile(%q) = %q, want %q", tc.source, got, tc.why)
		}
	}
}

func TestIsTempOutput(t *testing.T) {
	if !fileutil.IsTempOutput("/media/movies/example.av1-tmp.mkv") {
		t.Fatal("temp output not recognized")
	}
	if fileutil.IsTempOutput("/media/movies/example.mkv") {
		t.Fatal("plain mkv misclassified as temp output")
	}
	if !fileutil.IsTempOutput(fileutil.TempOutput("/media/a.b.c.avi")) {
		t.Fatal("derived temp output not recognized")
	}
}

func TestBackupPathDropsExtension(t *testing.T) {
	got := fileutil.BackupPath("/media/movies/example.mkv", "1234abcd")
	if want := "/media/movies/example.bak-1234abcd"; got != want {
		t.Fatalf("BackupPath = %q, want %q", got, want)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{bytes: 0, want: "0 B"},
		{bytes: 512, want: "512 B"},
		{bytes: 2048, want: "2 KiB"},
		{bytes: 5 * 1024 * 1024, want: "5.0 MiB"},
		{bytes: 3 * 1024 * 1024 * 1024, want: "3.00 GiB"},
		{bytes: int64(2)*1024*1024*1024*1024 + 512*1024*1024*1024, want: "2.50 TiB"},
	}
	for _, tc := range cases {
		if got := fileutil.FormatBytes(tc.bytes); got != tc.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
