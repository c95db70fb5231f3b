package player

import (
	"context"
	"time"
)

// Swap strategies. Restart replaces the renderer process for every content
// change; RC keeps one process alive and re-targets it over VLC's remote
// control interface. Both present the same interface to the supervisor.
const (
	StrategyRestart = "restart"
	StrategyRC      = "rc"
)

// Handle describes one spawned renderer. The supervisor only ever reads it;
// process lifetime is mutated exclusively inside this package.
type Handle struct {
	Token     string // unique per spawn
	PID       int
	AssetPath string
	StartedAt time.Time
}

// Player owns the lifecycle of at most one external rendering process.
//
// Start must not block past process creation. Stop is idempotent and safe on
// an already-dead process. Swap either restarts or hot-swaps depending on
// the configured strategy.
type Player interface {
	Start(ctx context.Context, assetPath string) error
	Swap(ctx context.Context, assetPath string) error
	IsAlive() bool
	Handle() *Handle
	Stop(ctx context.Context) error
}
