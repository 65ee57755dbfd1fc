package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"av1janitor/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	library    string
	ffmpegPath string
}

// setupCLITestEnv writes a config file, the state directories, and stub
// ffmpeg/ffprobe executables that answer -version and -encoders like a
// QSV-capable FFmpeg 8 build. The stub "encode" writes a small file to
// the last argument so replacement flows run end to end.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	library := filepath.Join(base, "library")
	if err := os.MkdirAll(library, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	binDir := filepath.Join(base, "bin")
	writeStubEncoder(t, binDir, 0)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, library)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		library:    library,
		ffmpegPath: filepath.Join(binDir, "ffmpeg"),
	}
}

func writeTestConfig(t *testing.T, path, base, library string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
watched_directories = [%q]
jobs_dir = %q
log_dir = %q
history_db = %q

[scan]
min_file_size_bytes = 1
stability_samples = 1
stability_delay_ms = 1

[encoding]
ffmpeg_path = %q
ffprobe_path = %q
`,
		library,
		filepath.Join(base, "jobs"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state", "history.db"),
		filepath.Join(base, "bin", "ffmpeg"),
		filepath.Join(base, "bin", "ffprobe"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeStubEncoder fakes ffmpeg and ffprobe. encodeExit is the exit code
// for encode invocations; version and encoder queries always succeed.
func writeStubEncoder(t *testing.T, binDir string, encodeExit int) {
	t.Helper()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}

	ffmpeg := fmt.Sprintf(`#!/bin/sh
out=""
for arg in "$@"; do
  case "$arg" in
    -version) echo "ffmpeg version 8.0 Copyright (c) 2000-2026 the FFmpeg developers"; exit 0;;
    -encoders) echo " V..... av1_qsv              AV1 (Intel Quick Sync Video acceleration) (codec av1)"; exit 0;;
  esac
  out="$arg"
done
if [ %d -ne 0 ]; then
  echo "stub encode failure" >&2
  exit %d
fi
if [ -n "$out" ] && [ "$out" != "-" ]; then
  head -c 1024 /dev/zero > "$out"
fi
exit 0
`, encodeExit, encodeExit)
	if err := os.WriteFile(filepath.Join(binDir, "ffmpeg"), []byte(ffmpeg), 0o755); err != nil {
		t.Fatalf("write stub ffmpeg: %v", err)
	}

	ffprobe := `#!/bin/sh
cat <<'JSON'
{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "pix_fmt": "yuv420p",
      "avg_frame_rate": "24000/1001",
      "r_frame_rate": "24000/1001",
      "disposition": {"default": 1}
    },
    {
      "index": 1,
      "codec_name": "aac",
      "codec_type": "audio",
      "disposition": {"default": 1},
      "tags": {"language": "eng"}
    }
  ],
  "format": {
    "filename": "input.mkv",
    "nb_streams": 2,
    "format_name": "matroska,webm",
    "duration": "1200.000000"
  }
}
JSON
exit 0
`
	if err := os.WriteFile(filepath.Join(binDir, "ffprobe"), []byte(ffprobe), 0o755); err != nil {
		t.Fatalf("write stub ffprobe: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cliArgs := args
	if configPath != "" {
		cliArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(cliArgs)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}
