package model

import (
	"errors"
	"testing"
	"time"
)

func TestPlaybackStateHelpers(t *testing.T) {
	transitioning := []PlaybackState{StateResolving, StateFetching, StateStarting}
	for _, st := range transitioning {
		if !st.IsTransitioning() {
			t.Errorf("Expected %s to be transitioning", st)
		}
	}

	steady := []PlaybackState{StateIdle, StatePlaying, StateDegraded}
	for _, st := range steady {
		if st.IsTransitioning() {
			t.Errorf("Expected %s to not be transitioning", st)
		}
	}

	if !StatePlaying.IsDisplaying() {
		t.Error("Expected Playing to be displaying")
	}
	if StateDegraded.IsDisplaying() {
		t.Error("Expected Degraded to not be displaying")
	}
}

func TestDescriptorSame(t *testing.T) {
	a := &ContentDescriptor{ID: "v1", DisplayName: "a.mp4"}
	b := &ContentDescriptor{ID: "v1", DisplayName: "a_renamed.mp4", CreatedAt: time.Now()}
	c := &ContentDescriptor{ID: "v2", DisplayName: "a.mp4"}

	if !a.Same(b) {
		t.Error("Expected descriptors with equal id to be the same content")
	}
	if a.Same(c) {
		t.Error("Expected descriptors with different ids to differ")
	}
	if a.Same(nil) {
		t.Error("Expected non-nil descriptor to differ from nil")
	}
}

func TestDescriptorExt(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"video.mp4", ".mp4"},
		{"Movie.MKV", ".mkv"},
		{"no-extension", ".mp4"},
	}

	for _, tt := range tests {
		d := &ContentDescriptor{ID: "x", DisplayName: tt.name}
		if got := d.Ext(); got != tt.expected {
			t.Errorf("Expected ext %q for %q, got %q", tt.expected, tt.name, got)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorKind
	}{
		{nil, ErrKindNone},
		{&ResolutionError{Transient: true, Err: errors.New("x")}, ErrKindResolutionTransient},
		{&ResolutionError{Transient: false, Err: errors.New("x")}, ErrKindResolutionPermanent},
		{&FetchError{Kind: FetchNetwork, Err: errors.New("x")}, ErrKindFetchNetwork},
		{&FetchError{Kind: FetchStorage, Err: errors.New("x")}, ErrKindFetchStorage},
		{&FetchError{Kind: FetchSizeMismatch, Err: errors.New("x")}, ErrKindFetchSizeMismatch},
		{ErrPlayerStart, ErrKindPlayerStart},
		{ErrPlayerCrashed, ErrKindPlayerCrashed},
		{errors.New("unclassified"), ErrKindNone},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.expected {
			t.Errorf("Expected kind %q for %v, got %q", tt.expected, tt.err, got)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := &FetchError{Kind: FetchSizeMismatch, Err: errors.New("short read")}
	wrapped := errors.Join(errors.New("outer"), err)

	if got := KindOf(wrapped); got != ErrKindFetchSizeMismatch {
		t.Errorf("Expected wrapped fetch error to classify, got %q", got)
	}
}
