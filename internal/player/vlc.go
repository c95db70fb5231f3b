package player

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/model"
)

// Spawn flags suppressing VLC's interactive chrome so the video is the only
// visible element.
var vlcQuietFlags = []string{
	"--no-video-title-show",
	"--no-osd",
	"--video-on-top",
	"--no-qt-fs-controller",
	"--no-qt-system-tray",
	"--no-qt-error-dialogs",
}

// vlcProcess tracks one spawned renderer until Wait returns.
type vlcProcess struct {
	cmd  *exec.Cmd
	done chan struct{} // closed when the process has been reaped
}

func (p *vlcProcess) alive() bool {
	if p == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// VLC drives a VLC renderer process. It implements Player with either the
// restart or the RC swap strategy.
type VLC struct {
	cfg     config.PlayerConfig
	locator Locator
	log     *logrus.Entry

	mu     sync.Mutex
	proc   *vlcProcess
	handle *Handle
	rc     *rcSession
}

// NewVLC creates a VLC-backed player.
func NewVLC(cfg config.PlayerConfig, locator Locator, log *logrus.Logger) *VLC {
	if locator == nil {
		locator = &DefaultLocator{ConfiguredPath: cfg.Path}
	}
	return &VLC{
		cfg:     cfg,
		locator: locator,
		log:     log.WithField("component", "player"),
	}
}

// Start spawns the renderer looping assetPath. A previous live process is
// stopped first, so at most one renderer exists at any instant.
func (v *VLC) Start(ctx context.Context, assetPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.startLocked(ctx, assetPath)
}

func (v *VLC) startLocked(ctx context.Context, assetPath string) error {
	if v.proc.alive() {
		if err := v.stopLocked(ctx); err != nil {
			return err
		}
	}

	bin, err := v.locator.Locate()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPlayerStart, err)
	}

	target := assetPath
	if v.cfg.UsePlaylist {
		if playlistPath, err := WritePlaylist(assetPath); err == nil {
			target = playlistPath
		} else {
			v.log.WithError(err).Warn("Playlist write failed, playing file directly")
		}
	}

	args := v.buildArgs(target)
	cmd := exec.Command(bin, args...)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPlayerStart, err)
	}

	proc := &vlcProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		// Reap to avoid zombies and make liveness observable.
		_ = cmd.Wait()
		close(proc.done)
	}()

	v.proc = proc
	v.handle = &Handle{
		Token:     uuid.New().String(),
		PID:       cmd.Process.Pid,
		AssetPath: assetPath,
		StartedAt: time.Now(),
	}

	v.log.WithFields(logrus.Fields{
		"pid":   v.handle.PID,
		"asset": assetPath,
	}).Info("Renderer started")
	return nil
}

// buildArgs assembles the VLC command line: loop forever, optional
// fullscreen, chrome suppression, optional RC control socket.
func (v *VLC) buildArgs(target string) []string {
	args := []string{"--repeat", "--loop"}
	if v.cfg.Fullscreen {
		args = append(args, "--fullscreen")
	}
	args = append(args, vlcQuietFlags...)
	if v.cfg.SwapStrategy == StrategyRC {
		args = append(args,
			"--extraintf", "rc",
			"--rc-host", fmt.Sprintf("127.0.0.1:%d", v.cfg.RCPort),
		)
	}
	return append(args, target)
}

// Swap re-targets playback at assetPath. With the RC strategy the running
// process is re-pointed over the control socket; otherwise, or when the RC
// session is unusable, the process is restarted.
func (v *VLC) Swap(ctx context.Context, assetPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.proc.alive() {
		return v.startLocked(ctx, assetPath)
	}

	if v.cfg.SwapStrategy == StrategyRC {
		err := v.rcSwapLocked(ctx, assetPath)
		if err == nil {
			return nil
		}
		v.log.WithError(err).Warn("RC swap failed, falling back to restart")
	}

	if err := v.stopLocked(ctx); err != nil {
		return err
	}
	return v.startLocked(ctx, assetPath)
}

// rcSwapLocked performs an in-place playlist swap over the RC interface.
func (v *VLC) rcSwapLocked(ctx context.Context, assetPath string) error {
	if v.rc == nil {
		rc, err := dialRC(ctx, v.cfg.RCPort)
		if err != nil {
			return err
		}
		v.rc = rc
	}

	target := assetPath
	if v.cfg.UsePlaylist {
		if playlistPath, err := WritePlaylist(assetPath); err == nil {
			target = playlistPath
		}
	}

	if err := v.rc.swapTo(target); err != nil {
		v.rc.close()
		v.rc = nil
		return err
	}

	v.handle = &Handle{
		Token:     uuid.New().String(),
		PID:       v.handle.PID,
		AssetPath: assetPath,
		StartedAt: time.Now(),
	}
	v.log.WithField("asset", assetPath).Info("Renderer re-targeted over RC")
	return nil
}

// IsAlive reports whether the current renderer process is still running.
// Non-blocking.
func (v *VLC) IsAlive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.proc.alive()
}

// Handle returns the current handle, nil before the first start.
func (v *VLC) Handle() *Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle
}

// Stop requests graceful termination and escalates to a kill once the grace
// period expires. Safe to call on an already-dead process.
func (v *VLC) Stop(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopLocked(ctx)
}

func (v *VLC) stopLocked(ctx context.Context) error {
	if v.rc != nil {
		v.rc.close()
		v.rc = nil
	}

	proc := v.proc
	if !proc.alive() {
		return nil
	}

	pid := proc.cmd.Process.Pid
	if err := proc.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery is unsupported on some platforms; go straight to kill.
		_ = proc.cmd.Process.Kill()
	}

	select {
	case <-proc.done:
		v.log.WithField("pid", pid).Info("Renderer exited")
	case <-time.After(v.cfg.StopGrace()):
		v.log.WithField("pid", pid).Warn("Renderer ignored terminate, killing")
		_ = proc.cmd.Process.Kill()
		select {
		case <-proc.done:
		case <-time.After(v.cfg.StopGrace()):
			return fmt.Errorf("renderer pid %d did not exit after kill", pid)
		}
	case <-ctx.Done():
		_ = proc.cmd.Process.Kill()
		return ctx.Err()
	}

	return nil
}
