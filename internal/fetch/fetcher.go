package fetch

import (
	"context"

	"github.com/signagekit/tv-player/internal/model"
)

// Fetcher materializes a content descriptor to a stable local file.
//
// Implementations must be idempotent (a verified-complete asset is returned
// without re-downloading) and atomic (a partially written file is never
// visible at the final path).
type Fetcher interface {
	Fetch(ctx context.Context, desc *model.ContentDescriptor) (*model.LocalAsset, error)
}
