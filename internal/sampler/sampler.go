// Package sampler models the appearance of live community activity on
// interest counters. The simulated strategy is an explicit stand-in for
// a real push feed: it lives behind the Source interface so a genuine
// subscription can replace it without touching the engagement store.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/impactlink/pulse/internal/engagement"
	"github.com/impactlink/pulse/pkg/models"
)

// Delta is one live increment to an item's interest counter.
type Delta struct {
	ItemID string
	Step   int
}

// Source streams counter deltas until its context is cancelled. The
// sampler does not care whether they come from a real subscription or
// the simulated heartbeat.
type Source interface {
	Deltas(ctx context.Context) <-chan Delta
}

// Sampler applies counter deltas to the engagement store. Items whose
// baseline interest is zero are never incremented, whatever the source
// claims: no activity is invented for empty content. Every applied
// increment carries a transient "recently increased" flag.
type Sampler struct {
	store  *engagement.Store
	items  func() []models.FeedItem
	window time.Duration
	logger *slog.Logger

	now func() time.Time
}

// New builds a sampler over the current feed snapshot. items is re-read
// on every delta so a refresh swaps the candidate set automatically.
func New(store *engagement.Store, items func() []models.FeedItem, flagWindow time.Duration, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		store:  store,
		items:  items,
		window: flagWindow,
		logger: logger,
		now:    time.Now,
	}
}

// Run consumes the source until ctx is done.
func (s *Sampler) Run(ctx context.Context, src Source) {
	deltas := src.Deltas(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deltas:
			if !ok {
				return
			}
			s.Apply(d)
		}
	}
}

// Apply merges one delta, enforcing the never-from-zero guard.
func (s *Sampler) Apply(d Delta) {
	if d.Step <= 0 {
		return
	}
	item, ok := s.lookup(d.ItemID)
	if !ok {
		return
	}
	if item.BaseInterest == 0 {
		// Zero-interest items stay at zero; anything else would
		// fabricate activity on empty content.
		return
	}
	count := s.store.BumpInterest(d.ItemID, item.BaseInterest, d.Step, s.now().Add(s.window))
	s.logger.Debug("interest increment", "item", d.ItemID, "count", count)
}

func (s *Sampler) lookup(itemID string) (models.FeedItem, bool) {
	for _, it := range s.items() {
		if it.ID == itemID {
			return it, true
		}
	}
	return models.FeedItem{}, false
}
