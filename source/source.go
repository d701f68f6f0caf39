// Package source defines where articles come from.
package source

import (
	"context"

	"github.com/poiesic/newsvec/core"
)

// ArticleSource fetches one article by its formatted identifier.
//
// Implementations return an error wrapping core.ErrNotFound when the source
// has no article for id, and a *core.TransportError when the upstream could
// not be reached or answered with an unexpected status.
type ArticleSource interface {
	Fetch(ctx context.Context, id string) (*core.ArticleRecord, error)
}
