package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/fetch"
	"github.com/signagekit/tv-player/internal/identity"
	"github.com/signagekit/tv-player/internal/model"
	"github.com/signagekit/tv-player/internal/player"
	"github.com/signagekit/tv-player/internal/source"
	"github.com/signagekit/tv-player/internal/status"
	"github.com/signagekit/tv-player/internal/visibility"
)

// Timeouts for work done off the control loop
const (
	publishTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Cap on the backoff exponent so the shift cannot overflow
const maxBackoffShift = 6

// Supervisor is the long-lived control loop: it resolves what should be
// showing, materializes it, keeps a renderer alive on it, and reports state.
//
// All PlaybackState mutation happens under one transition lock. Content
// polling runs in its own goroutine so a slow resolve or download never
// delays crash detection of whatever is already on screen.
type Supervisor struct {
	cfg      config.SupervisorConfig
	id       identity.Identity
	source   source.Source
	fetcher  fetch.Fetcher
	player   player.Player
	enforcer visibility.Enforcer
	reporter status.Reporter
	log      *logrus.Entry

	mu         sync.Mutex // transition lock; guards everything below
	state      model.PlaybackState
	current    *model.ContentDescriptor
	asset      *model.LocalAsset
	lastErr    model.ErrorKind
	lastChange time.Time
	restarts   int // consecutive crash restarts since last healthy probe
	failures   int // consecutive resolve/fetch/start failures, drives backoff
}

// New wires a supervisor. enforcer and reporter may be nil.
func New(
	cfg config.SupervisorConfig,
	id identity.Identity,
	src source.Source,
	fetcher fetch.Fetcher,
	p player.Player,
	enforcer visibility.Enforcer,
	reporter status.Reporter,
	log *logrus.Logger,
) *Supervisor {
	if reporter == nil {
		reporter = status.Noop{}
	}
	return &Supervisor{
		cfg:      cfg,
		id:       id,
		source:   src,
		fetcher:  fetcher,
		player:   p,
		enforcer: enforcer,
		reporter: reporter,
		log:      log.WithField("component", "supervisor"),
		state:    model.StateIdle,
	}
}

// Run drives the control loop until ctx is cancelled. On shutdown the
// renderer is stopped gracefully; an in-flight fetch is abandoned and its
// temporary cleaned up by the fetcher on the next run.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	s.setStateLocked(model.StateIdle, model.ErrKindNone)
	s.mu.Unlock()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pollLoop(ctx)
	}()

	if s.enforcer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.enforceLoop(ctx)
		}()
	}

	liveness := time.NewTicker(s.cfg.LivenessInterval())
	defer liveness.Stop()
	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval())
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.shutdown()
			return ctx.Err()
		case <-liveness.C:
			s.superviseLiveness(ctx)
		case <-heartbeat.C:
			s.publish(s.snapshot())
		}
	}
}

// pollLoop resolves and applies content changes. Strictly sequential, so at
// most one swap is ever in flight.
func (s *Supervisor) pollLoop(ctx context.Context) {
	for {
		s.pollOnce(ctx)

		select {
		case <-time.After(s.nextPollDelay()):
		case <-ctx.Done():
			return
		}
	}
}

// pollOnce performs one resolve → fetch → swap cycle.
func (s *Supervisor) pollOnce(ctx context.Context) {
	s.mu.Lock()
	if s.state != model.StatePlaying {
		s.setStateLocked(model.StateResolving, s.lastErr)
	}
	cur := s.current
	s.mu.Unlock()

	desc, err := s.source.ResolveLatest(ctx, s.id)
	if err != nil {
		s.noteResolveFailure(err)
		return
	}

	if desc == nil {
		// Affirmative "nothing assigned". This is the only case where an
		// already-playing asset is taken off the screen.
		s.handleNoContent(ctx)
		return
	}

	same := cur != nil && cur.ID == desc.ID
	if same && s.player.IsAlive() {
		// Identity unchanged; a renamed display name is not new content.
		s.mu.Lock()
		s.failures = 0
		s.setStateLocked(model.StatePlaying, model.ErrKindNone)
		s.mu.Unlock()
		return
	}

	if !same {
		s.mu.Lock()
		s.setStateLocked(model.StateFetching, model.ErrKindNone)
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"video": desc.DisplayName,
			"id":    desc.ID,
		}).Info("New content resolved")
	}

	// Slow path: network transfer happens outside the transition lock.
	asset, err := s.fetcher.Fetch(ctx, desc)
	if err != nil {
		s.noteFailure(err)
		return
	}

	s.applyAsset(ctx, desc, asset)
}

// applyAsset swaps the renderer onto the asset under the transition lock.
func (s *Supervisor) applyAsset(ctx context.Context, desc *model.ContentDescriptor, asset *model.LocalAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStateLocked(model.StateStarting, model.ErrKindNone)

	if err := s.player.Swap(ctx, asset.Path); err != nil {
		s.log.WithError(err).Error("Renderer start failed")
		s.failures++
		s.setStateLocked(model.StateDegraded, model.ErrKindPlayerStart)
		return
	}

	s.current = desc
	s.asset = asset
	s.restarts = 0
	s.failures = 0
	s.setStateLocked(model.StatePlaying, model.ErrKindNone)
}

// superviseLiveness probes the renderer and performs bounded immediate
// restarts of the same asset, escalating to Degraded when the budget is
// exhausted so a broken file cannot cause a restart storm.
func (s *Supervisor) superviseLiveness(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.asset == nil {
		return
	}
	if s.state != model.StatePlaying && s.state != model.StateDegraded {
		return
	}

	if s.player.IsAlive() {
		// Survived a probe interval: the restart budget refills.
		s.restarts = 0
		return
	}

	if s.state == model.StateDegraded {
		// Crashed while degraded; the poll loop owns recovery from here.
		return
	}

	if s.restarts >= s.cfg.MaxImmediateRestarts {
		s.log.Error("Renderer keeps dying, backing off")
		s.failures++
		s.setStateLocked(model.StateDegraded, model.ErrKindPlayerCrashed)
		return
	}

	s.restarts++
	s.log.WithFields(logrus.Fields{
		"attempt": s.restarts,
		"asset":   s.asset.Path,
	}).Warn("Renderer died, restarting same asset")

	s.setStateLocked(model.StateStarting, model.ErrKindPlayerCrashed)
	if err := s.player.Start(ctx, s.asset.Path); err != nil {
		s.log.WithError(err).Error("Renderer restart failed")
		s.setStateLocked(model.StateDegraded, model.ErrKindPlayerStart)
		return
	}
	s.setStateLocked(model.StatePlaying, model.ErrKindNone)
}

// handleNoContent stops playback after a successful resolution affirmatively
// reported that nothing is assigned.
func (s *Supervisor) handleNoContent(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = 0

	if s.player.IsAlive() {
		s.log.Info("Assignment removed, stopping playback")
		if err := s.player.Stop(ctx); err != nil {
			s.log.WithError(err).Warn("Renderer stop failed")
		}
	}

	s.current = nil
	s.asset = nil
	if s.state != model.StateIdle {
		s.setStateLocked(model.StateIdle, model.ErrKindNone)
	}
}

// noteResolveFailure records a resolution error. Transient failures keep the
// current display state untouched; permanent ones degrade, both widen the
// retry interval.
func (s *Supervisor) noteResolveFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	kind := model.KindOf(err)

	var rerr *model.ResolutionError
	if errors.As(err, &rerr) && !rerr.Transient {
		s.log.WithError(err).Warn("Content resolution failed permanently, will keep retrying")
		s.setStateLocked(model.StateDegraded, kind)
		return
	}

	// Transient outage: state unchanged, never blank the screen over it.
	s.log.WithError(err).Warn("Content resolution failed, keeping current playback")
	s.setStateLocked(s.state, kind)
}

// noteFailure records a fetch (or other swap) failure; the previous asset,
// if any, keeps playing.
func (s *Supervisor) noteFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	s.log.WithError(err).Error("Content swap failed")
	s.setStateLocked(model.StateDegraded, model.KindOf(err))
}

// nextPollDelay widens the poll interval exponentially with consecutive
// failures, up to the ceiling, and returns to base after any success.
func (s *Supervisor) nextPollDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.cfg.CheckInterval()
	if s.failures == 0 {
		return base
	}

	shift := s.failures
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}

	delay := base * time.Duration(1<<shift)
	if ceiling := s.cfg.BackoffCeiling(); delay > ceiling {
		delay = ceiling
	}
	return delay
}

// enforceLoop keeps the renderer window in the foreground on its own short
// timer. Failures here are logged and never influence the state machine.
func (s *Supervisor) enforceLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.EnforceInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.player.IsAlive() {
				continue
			}
			if err := s.enforcer.EnsureForeground(ctx, s.player.Handle()); err != nil {
				s.log.WithError(err).Debug("Visibility enforcement failed")
			}
		}
	}
}

// setStateLocked transitions the state machine and publishes the new
// snapshot. Callers hold the transition lock.
func (s *Supervisor) setStateLocked(state model.PlaybackState, errKind model.ErrorKind) {
	if s.state == state && s.lastErr == errKind {
		return
	}

	s.log.WithFields(logrus.Fields{
		"from": s.state,
		"to":   state,
	}).Debug("State transition")

	s.state = state
	s.lastErr = errKind
	s.lastChange = time.Now()
	s.publish(s.snapshotLocked())
}

// State returns the current playback state.
func (s *Supervisor) State() model.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// snapshot builds the current status value.
func (s *Supervisor) snapshot() model.SupervisorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Supervisor) snapshotLocked() model.SupervisorSnapshot {
	snap := model.SupervisorSnapshot{
		IdentityKey:      s.id.Key(),
		State:            s.state,
		LastError:        s.lastErr,
		LastTransitionAt: s.lastChange,
	}
	if s.current != nil {
		snap.CurrentDescriptorID = s.current.ID
		snap.CurrentVideoName = s.current.DisplayName
	}
	return snap
}

// publish hands a snapshot to the reporter off the control loop,
// fire-and-forget.
func (s *Supervisor) publish(snap model.SupervisorSnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.reporter.Publish(ctx, snap); err != nil {
			s.log.WithError(err).Debug("Status publish failed")
		}
	}()
}

// shutdown stops the renderer with a bounded grace period.
func (s *Supervisor) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.player.Stop(ctx); err != nil {
		s.log.WithError(err).Warn("Renderer stop failed during shutdown")
	}
	s.log.Info("Supervisor stopped")
}
