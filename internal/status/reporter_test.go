package status

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/model"
)

type recordingReporter struct {
	published int
	err       error
}

func (r *recordingReporter) Publish(ctx context.Context, snap model.SupervisorSnapshot) error {
	r.published++
	return r.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFanoutPublishesToAll(t *testing.T) {
	a := &recordingReporter{}
	b := &recordingReporter{}
	f := NewFanout(testLogger(), a, b)

	snap := model.SupervisorSnapshot{State: model.StatePlaying}
	if err := f.Publish(context.Background(), snap); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if a.published != 1 || b.published != 1 {
		t.Errorf("Expected both sinks published once, got %d and %d", a.published, b.published)
	}
}

func TestFanoutIsolatesFailures(t *testing.T) {
	failing := &recordingReporter{err: errors.New("broker down")}
	healthy := &recordingReporter{}
	f := NewFanout(testLogger(), failing, healthy)

	snap := model.SupervisorSnapshot{State: model.StateDegraded}
	if err := f.Publish(context.Background(), snap); err != nil {
		t.Errorf("Expected sink failure to be swallowed, got %v", err)
	}

	if healthy.published != 1 {
		t.Errorf("Expected healthy sink to still publish, got %d", healthy.published)
	}
}

func TestFanoutEmptyBehavesAsNoop(t *testing.T) {
	f := NewFanout(testLogger())
	if err := f.Publish(context.Background(), model.SupervisorSnapshot{}); err != nil {
		t.Errorf("Expected no error from empty fanout, got %v", err)
	}
}
