package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactlink/pulse/internal/engagement"
	"github.com/impactlink/pulse/internal/feed"
	"github.com/impactlink/pulse/internal/identity"
	"github.com/impactlink/pulse/pkg/models"
)

// --- Fakes ---

type fakeSource struct {
	mu    sync.Mutex
	pages map[string]feed.Page
	err   error
	calls int
	block chan struct{}
}

func newFakeSource(firstPage feed.Page) *fakeSource {
	return &fakeSource{pages: map[string]feed.Page{"": firstPage}}
}

func (f *fakeSource) FetchPage(ctx context.Context, cursor string) (feed.Page, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.err
	page := f.pages[cursor]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return feed.Page{}, ctx.Err()
		}
	}
	if err != nil {
		return feed.Page{}, err
	}
	if ctx.Err() != nil {
		return feed.Page{}, ctx.Err()
	}
	return page, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func items(n int) []models.FeedItem {
	out := make([]models.FeedItem, n)
	for i := range out {
		out[i] = models.FeedItem{
			ID:    fmt.Sprintf("item-%d", i),
			Type:  models.ContentProject,
			Title: fmt.Sprintf("Story %d", i),
		}
	}
	return out
}

func newOrchestrator(src feed.Source) *Orchestrator {
	session := identity.NewSession()
	session.Login("user-1", "Test User")
	return New(src, engagement.NewStore(), session, 6, nil)
}

// --- Tests ---

func TestRefreshReplacesItemsAndResetsOverlays(t *testing.T) {
	first := items(3)
	first[0].BaseLikes = 10
	src := newFakeSource(feed.Page{Items: first})
	o := newOrchestrator(src)

	require.NoError(t, o.Refresh(context.Background()))

	// Three toggles leave a local delta...
	o.Store().ToggleLike("item-0", 10)
	o.Store().ToggleLike("item-0", 10)
	o.Store().ToggleLike("item-0", 10)

	// ...and the next refresh, with a new baseline, erases it exactly.
	next := items(3)
	next[0].BaseLikes = 7
	src.mu.Lock()
	src.pages[""] = feed.Page{Items: next}
	src.mu.Unlock()

	require.NoError(t, o.Refresh(context.Background()))
	likes, _ := o.Store().Effective("item-0", 7, 0)
	assert.Equal(t, 7, likes)
	assert.Equal(t, 6, o.DisplayedCount())
}

func TestRefreshFailureLeavesStateUntouched(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(8)})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	o.Store().ToggleLike("item-1", 0)
	o.LoadMore()
	require.Equal(t, 8, o.DisplayedCount())

	src.setError(errors.New("backend down"))
	err := o.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)

	// Previously rendered feed and overlays survive a failed refresh.
	assert.Len(t, o.Items(), 8)
	assert.Equal(t, 8, o.DisplayedCount())
	assert.True(t, o.Store().Liked("item-1"))
	assert.False(t, o.Refreshing())
}

func TestRefreshCancellationDiscardsResult(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(4)})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	src.mu.Lock()
	src.block = make(chan struct{})
	src.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Refresh(ctx) }()
	cancel()

	err := <-done
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Len(t, o.Items(), 4)
}

func TestOverlappingRefreshesCoalesce(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(2)})
	src.block = make(chan struct{})
	o := newOrchestrator(src)

	first := make(chan error, 1)
	go func() { first <- o.Refresh(context.Background()) }()

	// Wait until the fetch is in flight before attaching.
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, o.Refreshing, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = o.Refresh(context.Background())
		}(i)
	}

	// Give the attachers a moment, then let the single fetch finish.
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	require.NoError(t, <-first)
	wg.Wait()

	assert.Equal(t, 1, src.callCount())
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, o.Items(), 2)
}

func TestFilterMatchesCaseInsensitively(t *testing.T) {
	feedItems := items(5)
	feedItems[2].Location = "Lagos, Nigeria"
	src := newFakeSource(feed.Page{Items: feedItems})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	o.SetQuery("lagos")
	visible := o.VisiblePage()
	require.Len(t, visible, 1)
	assert.Equal(t, "item-2", visible[0].ID)

	o.SetQuery("")
	assert.Len(t, o.VisiblePage(), 5)
}

func TestFilterCoversTypeAndAuthor(t *testing.T) {
	feedItems := items(3)
	feedItems[0].Type = models.ContentOpportunity
	feedItems[1].AuthorName = "Kwame Mensah"
	src := newFakeSource(feed.Page{Items: feedItems})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	o.SetQuery("OPPORTUNITY")
	require.Len(t, o.VisiblePage(), 1)

	o.SetQuery("kwame")
	require.Len(t, o.VisiblePage(), 1)
	assert.Equal(t, "item-1", o.VisiblePage()[0].ID)
}

func TestPaginationMonotonicAndClamped(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(20)})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	assert.Equal(t, 6, o.DisplayedCount())
	prev := o.DisplayedCount()
	for i := 0; i < 6; i++ {
		count := o.LoadMore()
		assert.GreaterOrEqual(t, count, prev)
		assert.LessOrEqual(t, count, o.TotalFiltered())
		prev = count
	}
	assert.Equal(t, 20, o.DisplayedCount())
}

func TestPaginationAppliesToFilteredSet(t *testing.T) {
	feedItems := items(20)
	for i := 0; i < 9; i++ {
		feedItems[i].Category = "Education"
	}
	src := newFakeSource(feed.Page{Items: feedItems})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	o.SetQuery("education")
	assert.Equal(t, 9, o.TotalFiltered())
	assert.Len(t, o.VisiblePage(), 6)

	o.LoadMore()
	assert.Len(t, o.VisiblePage(), 9)
}

func TestLoadPageFollowsCursor(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(6), NextCursor: "page-2"})
	src.pages["page-2"] = feed.Page{Items: []models.FeedItem{{ID: "deep-1", Title: "Deep story"}}}
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	require.NoError(t, o.LoadPage(context.Background()))
	assert.Len(t, o.Items(), 7)

	// Cursor exhausted.
	assert.ErrorIs(t, o.LoadPage(context.Background()), feed.ErrNoMorePages)
}

func TestLoadPageDropsItemsAlreadyInSnapshot(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(6), NextCursor: "page-2"})
	// Offset drift: the deeper page re-sends an item the snapshot has.
	src.pages["page-2"] = feed.Page{Items: []models.FeedItem{
		{ID: "item-2", Type: models.ContentProject, Title: "Story 2"},
		{ID: "deep-1", Title: "Deep story"},
	}}
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	require.NoError(t, o.LoadPage(context.Background()))
	assert.Len(t, o.Items(), 7)

	occurrences := 0
	for _, item := range o.Items() {
		if item.ID == "item-2" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestLoadPageCallsDoNotOverlap(t *testing.T) {
	src := newFakeSource(feed.Page{Items: items(6), NextCursor: "page-2"})
	src.pages["page-2"] = feed.Page{Items: []models.FeedItem{{ID: "deep-1", Title: "Deep story"}}}
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	src.mu.Lock()
	src.block = make(chan struct{})
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- o.LoadPage(context.Background()) }()
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	// The second call is a no-op while the first holds the cursor.
	require.NoError(t, o.LoadPage(context.Background()))
	assert.Equal(t, 2, src.callCount())

	close(src.block)
	require.NoError(t, <-done)
	assert.Len(t, o.Items(), 7)
}

func TestNormalizeDropsDuplicateIDs(t *testing.T) {
	dup := items(3)
	dup = append(dup, dup[0])
	src := newFakeSource(feed.Page{Items: dup})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	assert.Len(t, o.Items(), 3)
}

func TestNormalizeMapsUnknownTypes(t *testing.T) {
	src := newFakeSource(feed.Page{Items: []models.FeedItem{{ID: "x", Type: "hologram"}}})
	o := newOrchestrator(src)
	require.NoError(t, o.Refresh(context.Background()))

	assert.Equal(t, models.ContentOther, o.Items()[0].Type)
}
