// Package model defines the domain data shared across the daemon: content
// descriptors and local assets, the playback state enum, status snapshots,
// and the error taxonomy. Values are plain data; all lifecycle logic lives
// in the owning components.
package model
