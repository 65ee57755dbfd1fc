package workflow_test

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"av1janitor/internal/fileutil"
	"av1janitor/internal/logging"
	"av1janitor/internal/testsupport"
	"av1janitor/internal/workflow"
)

func TestScanFindsMediaRecursively(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.WatchDir(t, cfg)

	want := []string{
		filepath.Join(root, "movie.mkv"),
		filepath.Join(root, "shows", "season1", "pilot.mp4"),
		filepath.Join(root, "UPPER.MKV"),
	}
	for _, path := range want {
		testsupport.WriteFile(t, path, 64)
	}
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), 64)
	testsupport.WriteFile(t, filepath.Join(root, "movie.av1skip"), 4)
	testsupport.WriteFile(t, fileutil.TempOutput(filepath.Join(root, "movie.mkv")), 64)

	got := workflow.Scan(cfg, logging.NewNop())
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
}

func TestScanWalksEveryWatchedDirectory(t *testing.T) {
	movies := t.TempDir()
	shows := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithWatchedDirectories(movies, shows))

	want := []string{
		filepath.Join(movies, "film.mkv"),
		filepath.Join(shows, "episode.mkv"),
	}
	for _, path := range want {
		testsupport.WriteFile(t, path, 64)
	}

	got := workflow.Scan(cfg, logging.NewNop())
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
}

func TestScanSkipsMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.WatchDir(t, cfg)
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), 64)
	cfg.Paths.WatchedDirectories = append(cfg.Paths.WatchedDirectories, filepath.Join(root, "does", "not", "exist"))

	got := workflow.Scan(cfg, logging.NewNop())
	if len(got) != 1 || got[0] != filepath.Join(root, "movie.mkv") {
		t.Fatalf("Scan = %v", got)
	}
}

func TestScanIgnoresExtensionlessFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.WatchDir(t, cfg)
	testsupport.WriteFile(t, filepath.Join(root, "README"), 64)

	if got := workflow.Scan(cfg, logging.NewNop()); len(got) != 0 {
		t.Fatalf("Scan = %v, want empty", got)
	}
}
