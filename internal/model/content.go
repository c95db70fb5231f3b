package model

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentDescriptor identifies a remote video assigned to this node.
// Two descriptors with equal ID are the same content; DisplayName and
// CreatedAt carry no identity.
type ContentDescriptor struct {
	ID          string    // opaque remote file id
	DisplayName string    // file name as stored remotely
	CreatedAt   time.Time // remote creation time, used only for ordering
	Size        int64     // declared size in bytes, 0 if unknown
}

// Same reports whether other refers to the same content as d.
func (d *ContentDescriptor) Same(other *ContentDescriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ID == other.ID
}

// Ext returns the file extension of the display name, defaulting to .mp4
// when the remote name carries none.
func (d *ContentDescriptor) Ext() string {
	ext := strings.ToLower(filepath.Ext(d.DisplayName))
	if ext == "" {
		return ".mp4"
	}
	return ext
}

// LocalAsset is a fully materialized local copy of a descriptor's content.
// Only the fetcher creates these; the supervisor treats them as read-only.
type LocalAsset struct {
	DescriptorID     string
	Path             string
	Size             int64
	VerifiedComplete bool
}
