package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"av1janitor/internal/config"
)

// setupMonitorEnv writes a config pointing every state path into a temp
// tree. av1top never runs FFmpeg, so the encoding defaults stay as-is.
func setupMonitorEnv(t *testing.T) (*config.Config, string) {
	t.Helper()

	base := t.TempDir()
	library := filepath.Join(base, "library")
	if err := os.MkdirAll(library, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
watched_directories = [%q]
jobs_dir = %q
log_dir = %q
history_db = %q
`,
		library,
		filepath.Join(base, "jobs"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state", "history.db"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return cfg, configPath
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
