package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"av1janitor/internal/config"
)

func TestRunStopsOnContextCancel(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", env.configPath, "run"})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	pidPath := filepath.Join(env.cfg.Paths.LogDir, "av1d.pid")
	waitFor(t, 5*time.Second, func() bool {
		_, err := os.Stat(pidPath)
		return err == nil
	})
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop after cancel")
	}

	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed on shutdown, stat err = %v", err)
	}
}

func TestRunFailsPreflightForMissingWatchedDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(env.library); err != nil {
		t.Fatalf("remove library: %v", err)
	}

	_, _, err := runCLI(t, env.configPath, "run")
	if err == nil || !strings.Contains(err.Error(), "preflight") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
}

func TestEncodeOverridesApply(t *testing.T) {
	env := setupCLITestEnv(t)
	extra := filepath.Join(env.baseDir, "extra")
	if err := os.MkdirAll(extra, 0o755); err != nil {
		t.Fatalf("mkdir extra: %v", err)
	}

	overrides := &encodeOverrides{
		dryRun:      true,
		concurrent:  3,
		directories: []string{extra},
	}
	if err := overrides.apply(env.cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !env.cfg.Daemon.DryRun {
		t.Fatal("dry-run override not applied")
	}
	if env.cfg.Encoding.MaxConcurrent != 3 {
		t.Fatalf("concurrent override not applied, got %d", env.cfg.Encoding.MaxConcurrent)
	}
	if len(env.cfg.Paths.WatchedDirectories) != 1 || env.cfg.Paths.WatchedDirectories[0] != extra {
		t.Fatalf("directory override not applied, got %v", env.cfg.Paths.WatchedDirectories)
	}
}

func TestEncodeOverridesLeaveDefaults(t *testing.T) {
	env := setupCLITestEnv(t)
	before := *env.cfg

	overrides := &encodeOverrides{}
	if err := overrides.apply(env.cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if env.cfg.Daemon.DryRun != before.Daemon.DryRun {
		t.Fatal("dry-run changed without an override")
	}
	if env.cfg.Encoding.MaxConcurrent != before.Encoding.MaxConcurrent {
		t.Fatal("concurrency changed without an override")
	}
}

func TestEncodeOverridesValidate(t *testing.T) {
	cfg := config.Default()
	overrides := &encodeOverrides{directories: []string{}}
	if err := overrides.apply(&cfg); err == nil {
		t.Fatal("expected validation failure for a config with no watched directories")
	}
}
