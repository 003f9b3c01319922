package feed

import (
	"context"
	"log/slog"

	"github.com/impactlink/pulse/internal/database"
)

// CachingSource wraps a primary source with a sqlite snapshot cache.
// First pages write through on success; when the primary is unreachable
// the last cached snapshot is served instead, so the dashboard degrades
// to stale-but-rendered rather than empty.
type CachingSource struct {
	primary  Source
	db       *database.DB
	maxItems int
	logger   *slog.Logger
}

func NewCachingSource(primary Source, db *database.DB, maxItems int, logger *slog.Logger) *CachingSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingSource{
		primary:  primary,
		db:       db,
		maxItems: maxItems,
		logger:   logger,
	}
}

func (s *CachingSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	page, err := s.primary.FetchPage(ctx, cursor)
	if err == nil {
		if cursor == "" {
			if cacheErr := s.db.ReplaceSnapshot(page.Items); cacheErr != nil {
				// A failed cache write must not fail the fetch.
				s.logger.Warn("caching feed snapshot", "error", cacheErr)
			}
		}
		return page, nil
	}

	// A cancelled fetch is a deliberate abort, not an outage: the result
	// would be discarded anyway, so don't substitute stale data.
	if ctx.Err() != nil {
		return Page{}, err
	}
	if cursor != "" {
		return Page{}, err
	}

	items, cacheErr := s.db.GetSnapshot(s.maxItems)
	if cacheErr != nil || len(items) == 0 {
		return Page{}, err
	}
	s.logger.Warn("serving cached feed snapshot", "items", len(items), "fetch_error", err)
	return Page{Items: items}, nil
}
