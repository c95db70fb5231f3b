package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Playlist file name written next to the assets
const playlistFileName = "playlist.m3u8"

// WritePlaylist writes a single-entry M3U playlist for the asset and returns
// its path. VLC loops the playlist rather than the bare file, which survives
// some renderer versions dropping --repeat on direct file arguments.
func WritePlaylist(assetPath string) (string, error) {
	dir := filepath.Dir(assetPath)
	playlistPath := filepath.Join(dir, playlistFileName)

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	fmt.Fprintf(&b, "#EXTINF:-1,%s\n", filepath.Base(assetPath))
	b.WriteString(assetPath + "\n")

	if err := os.WriteFile(playlistPath, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write playlist: %w", err)
	}
	return playlistPath, nil
}
