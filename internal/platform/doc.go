// Package platform holds small OS-level helpers shared by the player,
// fetcher and content source: directory creation, video file detection and
// PATH probing.
package platform
