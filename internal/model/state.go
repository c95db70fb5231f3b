package model

// PlaybackState represents the supervisor's position in the playback lifecycle
type PlaybackState string

const (
	// StateIdle means no content is assigned or playing
	StateIdle PlaybackState = "Idle"

	// StateResolving means the content source is being polled
	StateResolving PlaybackState = "Resolving"

	// StateFetching means a new asset is being downloaded
	StateFetching PlaybackState = "Fetching"

	// StateStarting means the renderer process is being launched
	StateStarting PlaybackState = "Starting"

	// StatePlaying means the renderer is alive and looping the current asset
	StatePlaying PlaybackState = "Playing"

	// StateDegraded means the last resolve/fetch/start failed; the previous
	// asset, if any, keeps playing while retries continue on a widened interval
	StateDegraded PlaybackState = "Degraded"
)

// String returns the string representation of PlaybackState
func (ps PlaybackState) String() string {
	return string(ps)
}

// IsTransitioning returns true while a content swap is being carried out
func (ps PlaybackState) IsTransitioning() bool {
	return ps == StateResolving || ps == StateFetching || ps == StateStarting
}

// IsDisplaying returns true if the screen is expected to show content
func (ps PlaybackState) IsDisplaying() bool {
	return ps == StatePlaying
}
