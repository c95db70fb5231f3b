package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the coarse failure classification carried in status snapshots.
type ErrorKind string

const (
	ErrKindNone                ErrorKind = ""
	ErrKindResolutionTransient ErrorKind = "resolution_transient"
	ErrKindResolutionPermanent ErrorKind = "resolution_permanent"
	ErrKindFetchNetwork        ErrorKind = "fetch_network"
	ErrKindFetchStorage        ErrorKind = "fetch_storage"
	ErrKindFetchSizeMismatch   ErrorKind = "fetch_size_mismatch"
	ErrKindPlayerStart         ErrorKind = "player_start"
	ErrKindPlayerCrashed       ErrorKind = "player_crashed"
)

// ResolutionError describes a failed attempt to resolve the assigned content.
// Transient failures (network, rate limiting) must never be treated as
// "no content" by callers.
type ResolutionError struct {
	Transient bool
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Transient {
		return fmt.Sprintf("transient resolution failure: %v", e.Err)
	}
	return fmt.Sprintf("permanent resolution failure: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// FetchErrorKind narrows a FetchError to its failure class.
type FetchErrorKind string

const (
	FetchNetwork      FetchErrorKind = "network"
	FetchStorage      FetchErrorKind = "storage"
	FetchSizeMismatch FetchErrorKind = "size_mismatch"
)

// FetchError describes a failed download attempt. The fetcher guarantees the
// temporary file has been removed by the time one of these is returned.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Player lifecycle sentinels.
var (
	ErrPlayerStart   = errors.New("player failed to start")
	ErrPlayerCrashed = errors.New("player process exited unexpectedly")
)

// KindOf maps an error to the snapshot classification. Unknown errors map to
// ErrKindNone so callers can decide whether to record them.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}

	var rerr *ResolutionError
	if errors.As(err, &rerr) {
		if rerr.Transient {
			return ErrKindResolutionTransient
		}
		return ErrKindResolutionPermanent
	}

	var ferr *FetchError
	if errors.As(err, &ferr) {
		switch ferr.Kind {
		case FetchStorage:
			return ErrKindFetchStorage
		case FetchSizeMismatch:
			return ErrKindFetchSizeMismatch
		default:
			return ErrKindFetchNetwork
		}
	}

	if errors.Is(err, ErrPlayerCrashed) {
		return ErrKindPlayerCrashed
	}
	if errors.Is(err, ErrPlayerStart) {
		return ErrKindPlayerStart
	}

	return ErrKindNone
}
