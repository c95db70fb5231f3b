package status

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/model"
)

// Reporter pushes supervisor snapshots to an external observability sink.
// Publishing is best effort: implementations may fail, but callers never let
// that alter the state machine.
type Reporter interface {
	Publish(ctx context.Context, snap model.SupervisorSnapshot) error
}

// Noop discards snapshots.
type Noop struct{}

// Publish implements Reporter.
func (Noop) Publish(ctx context.Context, snap model.SupervisorSnapshot) error {
	return nil
}

// Fanout publishes to several sinks, logging individual failures and never
// propagating them.
type Fanout struct {
	reporters []Reporter
	log       *logrus.Entry
}

// NewFanout combines reporters into one. With no reporters it behaves as Noop.
func NewFanout(log *logrus.Logger, reporters ...Reporter) *Fanout {
	return &Fanout{
		reporters: reporters,
		log:       log.WithField("component", "status"),
	}
}

// Publish implements Reporter.
func (f *Fanout) Publish(ctx context.Context, snap model.SupervisorSnapshot) error {
	for _, r := range f.reporters {
		if err := r.Publish(ctx, snap); err != nil {
			f.log.WithError(err).Warn("Status publish failed")
		}
	}
	return nil
}
