// Package supervisor implements the playback control loop. It polls the
// content source for the video assigned to this node, downloads replacements
// through the fetcher, drives the renderer process through swaps and crash
// restarts, and publishes status snapshots. At most one content transition is
// ever in flight, and a transient failure never blanks the screen.
package supervisor
