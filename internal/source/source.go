package source

import (
	"context"

	"github.com/signagekit/tv-player/internal/identity"
	"github.com/signagekit/tv-player/internal/model"
)

// Source resolves the video that should currently be showing on this node.
//
// ResolveLatest is a side-effect-free query, safe to call on every poll tick.
// A (nil, nil) return is an affirmative "no content is assigned"; errors are
// always *model.ResolutionError so callers can distinguish transient outages
// from a missing assignment.
type Source interface {
	ResolveLatest(ctx context.Context, id identity.Identity) (*model.ContentDescriptor, error)
}
