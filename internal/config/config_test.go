package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Supervisor.CheckIntervalSeconds != DefaultCheckIntervalSeconds {
		t.Errorf("Expected default check interval %d, got %d",
			DefaultCheckIntervalSeconds, cfg.Supervisor.CheckIntervalSeconds)
	}
	if cfg.Player.SwapStrategy != "restart" {
		t.Errorf("Expected default swap strategy 'restart', got %q", cfg.Player.SwapStrategy)
	}
	if !cfg.Player.Fullscreen {
		t.Error("Expected fullscreen by default")
	}
	if cfg.Drive.BaseURL != DefaultDriveBaseURL {
		t.Errorf("Expected default drive base URL, got %q", cfg.Drive.BaseURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tv-player.yaml")

	yaml := `
drive:
  api_key: test-key
  main_folder_id: folder-123
  download_folder: /tmp/videos
monitoring:
  check_interval_seconds: 60
player:
  swap_strategy: rc
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Drive.APIKey != "test-key" {
		t.Errorf("Expected api key 'test-key', got %q", cfg.Drive.APIKey)
	}
	if cfg.Supervisor.CheckIntervalSeconds != 60 {
		t.Errorf("Expected check interval 60, got %d", cfg.Supervisor.CheckIntervalSeconds)
	}
	if cfg.Player.SwapStrategy != "rc" {
		t.Errorf("Expected swap strategy 'rc', got %q", cfg.Player.SwapStrategy)
	}
	// Untouched values keep their defaults.
	if cfg.Supervisor.HeartbeatIntervalSeconds != DefaultHeartbeatIntervalSeconds {
		t.Errorf("Expected default heartbeat interval, got %d", cfg.Supervisor.HeartbeatIntervalSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tv-player.yaml")

	yaml := `
drive:
  api_key: from-file
  main_folder_id: folder-123
  download_folder: /tmp/videos
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("DRIVE_API_KEY", "from-env")
	t.Setenv("CHECK_INTERVAL_SECONDS", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Drive.APIKey != "from-env" {
		t.Errorf("Expected environment to override file, got %q", cfg.Drive.APIKey)
	}
	if cfg.Supervisor.CheckIntervalSeconds != 120 {
		t.Errorf("Expected check interval 120 from env, got %d", cfg.Supervisor.CheckIntervalSeconds)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "absent.yaml")

	// No file, no env: the Drive credentials are missing.
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for missing drive credentials, got nil")
	}
}

func TestIntervalAccessors(t *testing.T) {
	cfg := Default()

	if cfg.Supervisor.CheckInterval().Seconds() != float64(DefaultCheckIntervalSeconds) {
		t.Errorf("Expected check interval accessor to match seconds field")
	}
	if cfg.Player.StopGrace().Milliseconds() != int64(DefaultStopGraceMillis) {
		t.Errorf("Expected stop grace accessor to match millis field")
	}
}
