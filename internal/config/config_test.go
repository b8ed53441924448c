package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DRIFTPAD_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("sync_interval = %v, want 30s", cfg.SyncInterval)
	}
	if cfg.DebounceDelay != 750*time.Millisecond {
		t.Errorf("debounce_delay = %v, want 750ms", cfg.DebounceDelay)
	}
	if cfg.DataDir == "" {
		t.Error("data_dir is empty")
	}
	if got := cfg.StorePath(); filepath.Base(got) != "notes.db" {
		t.Errorf("StorePath() = %q, want .../notes.db", got)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
remote_url: "libsql://notes.example.turso.io"
sync_interval: 5s
dashboard_port: 9001
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	t.Setenv("DRIFTPAD_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.RemoteURL != "libsql://notes.example.turso.io" {
		t.Errorf("remote_url = %q", cfg.RemoteURL)
	}
	if cfg.SyncInterval != 5*time.Second {
		t.Errorf("sync_interval = %v, want 5s", cfg.SyncInterval)
	}
	if cfg.DashboardPort != 9001 {
		t.Errorf("dashboard_port = %d, want 9001", cfg.DashboardPort)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DRIFTPAD_CONFIG", "")
	t.Setenv("DRIFTPAD_REMOTE_URL", "file:/tmp/remote.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.RemoteURL != "file:/tmp/remote.db" {
		t.Errorf("remote_url = %q, want env override", cfg.RemoteURL)
	}
}
