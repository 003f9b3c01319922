// Package feed defines the data source contract the engine consumes,
// plus the shipped implementations: an HTTP API client, an RSS adapter,
// and a sqlite-backed offline cache.
package feed

import (
	"context"
	"errors"

	"github.com/impactlink/pulse/internal/sampler"
	"github.com/impactlink/pulse/pkg/models"
)

var ErrNoMorePages = errors.New("no more pages")

// Page is one slice of the feed. An empty NextCursor means the end.
type Page struct {
	Items      []models.FeedItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// Source supplies paginated feed content. An empty cursor requests the
// first page. Implementations must honor ctx cancellation so an
// in-flight fetch can be abandoned.
type Source interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// LiveSource is an optional extension: a source that can push real
// counter deltas for an item. When absent, the sampler's simulated
// strategy stands in.
type LiveSource interface {
	Source
	SubscribeLive(ctx context.Context, itemID string) (<-chan sampler.Delta, error)
}
