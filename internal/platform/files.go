package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Video file extensions recognized when scanning the asset directory
var VideoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".webm"}

// EnsureDir creates the directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// IsVideoFile reports whether the path has a known video extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// CommandExists reports whether the named binary is available on PATH
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
