package feed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactlink/pulse/internal/database"
	"github.com/impactlink/pulse/pkg/models"
)

type flakySource struct {
	page Page
	err  error
}

func (f *flakySource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if f.err != nil {
		return Page{}, f.err
	}
	return f.page, nil
}

func cacheDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCachingSourceServesStaleOnOutage(t *testing.T) {
	src := &flakySource{page: Page{Items: []models.FeedItem{{ID: "p1", Type: models.ContentProject}}}}
	cached := NewCachingSource(src, cacheDB(t), 200, nil)

	// First fetch succeeds and writes through.
	page, err := cached.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// Outage: the cached snapshot stands in.
	src.err = errors.New("backend down")
	page, err = cached.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p1", page.Items[0].ID)
}

func TestCachingSourceEmptyCachePropagatesError(t *testing.T) {
	wantErr := errors.New("backend down")
	cached := NewCachingSource(&flakySource{err: wantErr}, cacheDB(t), 200, nil)

	_, err := cached.FetchPage(context.Background(), "")
	assert.ErrorIs(t, err, wantErr)
}

func TestCachingSourceNoFallbackForCancelledFetch(t *testing.T) {
	src := &flakySource{page: Page{Items: []models.FeedItem{{ID: "p1"}}}}
	cached := NewCachingSource(src, cacheDB(t), 200, nil)

	_, err := cached.FetchPage(context.Background(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src.err = ctx.Err()
	_, err = cached.FetchPage(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachingSourceDeeperPagesAreNotCached(t *testing.T) {
	wantErr := errors.New("backend down")
	src := &flakySource{page: Page{Items: []models.FeedItem{{ID: "p1"}}}}
	cached := NewCachingSource(src, cacheDB(t), 200, nil)

	_, err := cached.FetchPage(context.Background(), "")
	require.NoError(t, err)

	// Cursor pages never fall back to the snapshot.
	src.err = wantErr
	_, err = cached.FetchPage(context.Background(), "page-2")
	assert.ErrorIs(t, err, wantErr)
}
