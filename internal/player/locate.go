package player

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Candidate binary names per platform
var (
	vlcBinaryNames = []string{"vlc", "cvlc"}

	vlcWindowsDirs = []string{
		`C:\Program Files\VideoLAN\VLC`,
		`C:\Program Files (x86)\VideoLAN\VLC`,
	}

	vlcDarwinPaths = []string{
		"/Applications/VLC.app/Contents/MacOS/VLC",
	}

	vlcLinuxPaths = []string{
		"/usr/bin/vlc",
		"/usr/local/bin/vlc",
		"/snap/bin/vlc",
	}
)

// Locator finds the renderer binary. Pure probe, no side effects; injected
// into the player at construction so the supervisor never touches it.
type Locator interface {
	Locate() (string, error)
}

// DefaultLocator probes an explicitly configured path first, then PATH,
// then the platform's well-known install locations.
type DefaultLocator struct {
	// ConfiguredPath pins the binary when set.
	ConfiguredPath string
}

// Locate implements Locator.
func (l *DefaultLocator) Locate() (string, error) {
	if l.ConfiguredPath != "" {
		if _, err := os.Stat(l.ConfiguredPath); err != nil {
			return "", fmt.Errorf("configured player path %s not usable: %w", l.ConfiguredPath, err)
		}
		return l.ConfiguredPath, nil
	}

	for _, name := range vlcBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, path := range wellKnownPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("vlc not found on %s; install it or set player.path", runtime.GOOS)
}

func wellKnownPaths() []string {
	switch runtime.GOOS {
	case "windows":
		paths := make([]string, 0, len(vlcWindowsDirs)+2)
		for _, dir := range vlcWindowsDirs {
			paths = append(paths, filepath.Join(dir, "vlc.exe"))
		}
		if pf := os.Getenv("ProgramFiles"); pf != "" {
			paths = append(paths, filepath.Join(pf, "VideoLAN", "VLC", "vlc.exe"))
		}
		if pf := os.Getenv("ProgramFiles(x86)"); pf != "" {
			paths = append(paths, filepath.Join(pf, "VideoLAN", "VLC", "vlc.exe"))
		}
		return paths
	case "darwin":
		return vlcDarwinPaths
	default:
		return vlcLinuxPaths
	}
}
