// Package orchestrator owns the visible slice of the feed: the filter
// predicate, pagination, and the refresh cycle that reconciles local
// engagement overlays with fresh server state.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/impactlink/pulse/internal/engagement"
	"github.com/impactlink/pulse/internal/feed"
	"github.com/impactlink/pulse/internal/identity"
	"github.com/impactlink/pulse/pkg/models"
)

// ErrRefreshFailed marks a refresh whose fetch failed or was cancelled.
// The previously rendered feed and all overlays are left untouched; the
// condition is recoverable and user-retryable.
var ErrRefreshFailed = errors.New("feed refresh failed")

const DefaultPageSize = 6

type Orchestrator struct {
	source  feed.Source
	store   *engagement.Store
	session *identity.Session
	logger  *slog.Logger

	mu         sync.Mutex
	pageSize   int
	items      []models.FeedItem
	nextCursor string
	query      string
	displayed  int

	// refresh coalescing and stale-result discard
	refreshing bool
	loading    bool
	inflight   chan struct{}
	lastErr    error
	gen        int
	cancel     context.CancelFunc
}

func New(source feed.Source, store *engagement.Store, session *identity.Session, pageSize int, logger *slog.Logger) *Orchestrator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:    source,
		store:     store,
		session:   session,
		logger:    logger,
		pageSize:  pageSize,
		displayed: pageSize,
	}
}

// Store exposes the engagement store for hosts wiring per-item actions.
func (o *Orchestrator) Store() *engagement.Store { return o.store }

// Session exposes the identity provider.
func (o *Orchestrator) Session() *identity.Session { return o.session }

// SetQuery installs the search filter and re-pages from the top.
// Matching is case-insensitive substring across title, description,
// author name, category, location, and type; empty matches everything.
func (o *Orchestrator) SetQuery(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.query = strings.ToLower(strings.TrimSpace(query))
	o.displayed = o.pageSize
}

func (o *Orchestrator) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query
}

func matches(item models.FeedItem, query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{
		item.Title,
		item.Description,
		item.AuthorName,
		item.Category,
		item.Location,
		string(item.Type),
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// filtered is called with the mutex held.
func (o *Orchestrator) filtered() []models.FeedItem {
	if o.query == "" {
		return o.items
	}
	var out []models.FeedItem
	for _, item := range o.items {
		if matches(item, o.query) {
			out = append(out, item)
		}
	}
	return out
}

// VisiblePage returns the first displayedCount items of the filtered,
// not the unfiltered, set.
func (o *Orchestrator) VisiblePage() []models.FeedItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	f := o.filtered()
	n := o.displayed
	if n > len(f) {
		n = len(f)
	}
	page := make([]models.FeedItem, n)
	copy(page, f[:n])
	return page
}

// LoadMore extends the visible slice by one page, clamped to the
// filtered set's length. It never shrinks the slice.
func (o *Orchestrator) LoadMore() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := o.displayed + o.pageSize
	if n := len(o.filtered()); next > n {
		next = n
	}
	if next > o.displayed {
		o.displayed = next
	}
	return o.displayed
}

// DisplayedCount reports how many filtered items are currently visible.
func (o *Orchestrator) DisplayedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n := len(o.filtered()); o.displayed > n {
		return n
	}
	return o.displayed
}

// TotalFiltered reports the size of the filtered set.
func (o *Orchestrator) TotalFiltered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.filtered())
}

// Items returns a snapshot of the full (unfiltered) item set.
func (o *Orchestrator) Items() []models.FeedItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.FeedItem, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Orchestrator) Refreshing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.refreshing
}

// Refresh fetches a cold first page. On success the server snapshot
// fully supersedes local state: items replaced, overlays reset, paging
// back to one page. On failure or cancellation nothing changes and the
// error wraps ErrRefreshFailed. A call arriving while a refresh is in
// flight attaches to that refresh's result instead of fetching again.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	if o.refreshing {
		ch := o.inflight
		o.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return errors.Join(ErrRefreshFailed, ctx.Err())
		}
		o.mu.Lock()
		err := o.lastErr
		o.mu.Unlock()
		return err
	}

	o.refreshing = true
	o.gen++
	ch := make(chan struct{})
	o.inflight = ch
	fetchCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	page, fetchErr := o.source.FetchPage(fetchCtx, "")

	// A cancelled fetch's result is never applied, even if the source
	// ignored the context and returned items anyway.
	if fetchErr == nil && fetchCtx.Err() != nil {
		fetchErr = fetchCtx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.refreshing = false
	if fetchErr != nil {
		o.lastErr = errors.Join(ErrRefreshFailed, fetchErr)
		close(ch)
		o.logger.Warn("feed refresh failed", "error", fetchErr)
		return o.lastErr
	}

	o.items = normalize(page.Items)
	o.nextCursor = page.NextCursor
	o.displayed = o.pageSize
	o.store.Reset()
	o.lastErr = nil
	close(ch)
	o.logger.Info("feed refreshed", "items", len(o.items))
	return nil
}

// LoadPage appends the next cursor's worth of items, for feeds deeper
// than the cached snapshot. The filter and overlays are untouched. Only
// one page load runs at a time; a call arriving while one is in flight
// is a no-op.
func (o *Orchestrator) LoadPage(ctx context.Context) error {
	o.mu.Lock()
	if o.refreshing || o.loading {
		o.mu.Unlock()
		return nil
	}
	cursor := o.nextCursor
	if cursor == "" {
		o.mu.Unlock()
		return feed.ErrNoMorePages
	}
	o.loading = true
	gen := o.gen
	o.mu.Unlock()

	page, err := o.source.FetchPage(ctx, cursor)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false
	if err != nil {
		return errors.Join(ErrRefreshFailed, err)
	}
	if gen != o.gen {
		// A refresh landed in between; this page belongs to the old
		// snapshot and is discarded.
		return nil
	}

	// Cursor feeds drift: an item already in the snapshot may be
	// re-sent on a deeper page. Appending it twice would alias one
	// overlay across two cards.
	seen := make(map[string]struct{}, len(o.items))
	for _, item := range o.items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range normalize(page.Items) {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		o.items = append(o.items, item)
	}
	o.nextCursor = page.NextCursor
	return nil
}

// Close cancels any in-flight fetch. Its result will be discarded.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// normalize drops duplicate ids and maps unknown types, so downstream
// components can rely on unique ids per snapshot.
func normalize(items []models.FeedItem) []models.FeedItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.FeedItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup || item.ID == "" {
			continue
		}
		seen[item.ID] = struct{}{}
		item.Type = models.ParseContentType(string(item.Type))
		out = append(out, item)
	}
	return out
}
