package feed

import (
	"context"
	"sync"

	"github.com/impactlink/pulse/internal/sampler"
	"github.com/impactlink/pulse/pkg/models"
)

// LiveFanIn merges a LiveSource's per-item subscriptions into the single
// delta stream the sampler consumes. Subscriptions cover the items
// present when Deltas is called; a refresh restarts the stream through
// the sampler's context.
type LiveFanIn struct {
	src   LiveSource
	items func() []models.FeedItem
}

func NewLiveFanIn(src LiveSource, items func() []models.FeedItem) *LiveFanIn {
	return &LiveFanIn{src: src, items: items}
}

func (l *LiveFanIn) Deltas(ctx context.Context) <-chan sampler.Delta {
	out := make(chan sampler.Delta)
	go func() {
		defer close(out)
		var wg sync.WaitGroup
		for _, item := range l.items() {
			ch, err := l.src.SubscribeLive(ctx, item.ID)
			if err != nil {
				continue
			}
			wg.Add(1)
			go func(ch <-chan sampler.Delta) {
				defer wg.Done()
				for d := range ch {
					select {
					case out <- d:
					case <-ctx.Done():
						return
					}
				}
			}(ch)
		}
		wg.Wait()
	}()
	return out
}

var _ sampler.Source = (*LiveFanIn)(nil)
