package visibility

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/platform"
	"github.com/signagekit/tv-player/internal/player"
)

// Enforcer keeps the renderer window in the foreground. Failures are always
// non-fatal: the caller logs them and carries on, since fullscreen or
// headless setups may expose no window at all.
type Enforcer interface {
	EnsureForeground(ctx context.Context, handle *player.Handle) error
}

// Noop is the enforcer for platforms without a windowing system, and the
// default when enforcement is disabled.
type Noop struct{}

// EnsureForeground implements Enforcer.
func (Noop) EnsureForeground(ctx context.Context, handle *player.Handle) error {
	return nil
}

// windowTool describes one external window-management utility and how to ask
// it to raise the renderer window.
type windowTool struct {
	name string
	args func(handle *player.Handle) []string
}

// Tools tried in order; the first one present on PATH wins.
var linuxWindowTools = []windowTool{
	{
		name: "wmctrl",
		args: func(h *player.Handle) []string {
			return []string{"-a", "VLC"}
		},
	},
	{
		name: "xdotool",
		args: func(h *player.Handle) []string {
			return []string{"search", "--onlyvisible", "--class", "vlc", "windowactivate"}
		},
	},
}

// Exec raises the renderer window using whichever window tool the host has
// installed.
type Exec struct {
	log *logrus.Entry
}

// NewExec creates the exec-based enforcer.
func NewExec(log *logrus.Logger) *Exec {
	return &Exec{log: log.WithField("component", "visibility")}
}

// EnsureForeground implements Enforcer.
func (e *Exec) EnsureForeground(ctx context.Context, handle *player.Handle) error {
	if handle == nil {
		return nil
	}
	if runtime.GOOS != "linux" {
		// Window control elsewhere rides on fullscreen + video-on-top flags.
		return nil
	}

	for _, tool := range linuxWindowTools {
		if !platform.CommandExists(tool.name) {
			continue
		}
		cmd := exec.CommandContext(ctx, tool.name, tool.args(handle)...)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed to raise renderer window: %w", tool.name, err)
		}
		return nil
	}

	return fmt.Errorf("no window management tool available")
}
