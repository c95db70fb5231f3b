package player

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestWritePlaylist(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "promo.mp4")

	path, err := WritePlaylist(asset)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != filepath.Join(dir, "playlist.m3u8") {
		t.Errorf("Expected playlist next to the asset, got %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read playlist: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Errorf("Expected M3U header, got %q", content)
	}
	if !strings.Contains(content, asset+"\n") {
		t.Errorf("Expected playlist to reference %q, got %q", asset, content)
	}
}

func TestDefaultLocatorConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "vlc")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("Failed to write fake binary: %v", err)
	}

	loc := &DefaultLocator{ConfiguredPath: bin}
	path, err := loc.Locate()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != bin {
		t.Errorf("Expected configured path %q, got %q", bin, path)
	}
}

func TestDefaultLocatorConfiguredPathMissing(t *testing.T) {
	loc := &DefaultLocator{ConfiguredPath: "/nonexistent/vlc"}
	if _, err := loc.Locate(); err == nil {
		t.Error("Expected error for missing configured path, got nil")
	}
}

func TestBuildArgsRestartStrategy(t *testing.T) {
	v := NewVLC(config.PlayerConfig{
		SwapStrategy: StrategyRestart,
		Fullscreen:   true,
	}, &DefaultLocator{}, testLogger())

	args := v.buildArgs("/videos/playlist.m3u8")

	for _, want := range []string{"--repeat", "--loop", "--fullscreen", "--no-osd"} {
		if !contains(args, want) {
			t.Errorf("Expected args to contain %q, got %v", want, args)
		}
	}
	if contains(args, "--extraintf") {
		t.Errorf("Expected no RC interface with restart strategy, got %v", args)
	}
	if args[len(args)-1] != "/videos/playlist.m3u8" {
		t.Errorf("Expected target as final argument, got %v", args)
	}
}

func TestBuildArgsRCStrategy(t *testing.T) {
	v := NewVLC(config.PlayerConfig{
		SwapStrategy: StrategyRC,
		RCPort:       9999,
	}, &DefaultLocator{}, testLogger())

	args := v.buildArgs("/videos/playlist.m3u8")

	if !contains(args, "--extraintf") || !contains(args, "rc") {
		t.Errorf("Expected RC interface flags, got %v", args)
	}
	if !contains(args, "127.0.0.1:9999") {
		t.Errorf("Expected RC host with configured port, got %v", args)
	}
	if contains(args, "--fullscreen") {
		t.Errorf("Expected no fullscreen flag when disabled, got %v", args)
	}
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	v := NewVLC(config.PlayerConfig{StopGraceMillis: 100}, &DefaultLocator{}, testLogger())

	if v.IsAlive() {
		t.Error("Expected fresh player to not be alive")
	}
	if v.Handle() != nil {
		t.Error("Expected nil handle before first start")
	}
	if err := v.Stop(context.Background()); err != nil {
		t.Errorf("Expected stopping a never-started player to succeed, got %v", err)
	}
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
