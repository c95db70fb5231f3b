package player

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
)

// ReapStray kills leftover renderer processes from a previous run. Two
// renderers fighting over the screen is worse than a one-second gap at
// startup, so this runs before the first Start. Best effort; a non-zero exit
// usually just means nothing was running.
func ReapStray(ctx context.Context, log *logrus.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.CommandContext(ctx, "taskkill", "/F", "/IM", "vlc.exe")
	case "darwin", "linux":
		cmd = exec.CommandContext(ctx, "pkill", "-x", "vlc")
	default:
		return
	}

	if err := cmd.Run(); err != nil {
		log.WithField("component", "player").Debugf("Stray renderer reap: %v", err)
		return
	}
	log.WithField("component", "player").Info("Killed stray renderer process(es)")
}
