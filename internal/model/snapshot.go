package model

import "time"

// SupervisorSnapshot is the immutable status value handed to reporters.
// It is replaced wholesale on every state change and re-published unchanged
// by the heartbeat.
type SupervisorSnapshot struct {
	IdentityKey         string        `json:"identity_key"`
	State               PlaybackState `json:"status"`
	CurrentDescriptorID string        `json:"video_id,omitempty"`
	CurrentVideoName    string        `json:"video_name,omitempty"`
	LastError           ErrorKind     `json:"last_error,omitempty"`
	LastTransitionAt    time.Time     `json:"last_transition_at"`
}
