package sampler

import (
	"context"
	"math/rand"
	"time"

	"github.com/impactlink/pulse/pkg/models"
)

// SimulatedSource fabricates low-probability interest deltas on a fixed
// heartbeat. It exists to make the feed feel alive in the absence of a
// real event stream and must stay behind the Source interface; server-
// sourced counters never flow through it.
type SimulatedSource struct {
	Tick        time.Duration
	Probability float64
	Step        int

	items func() []models.FeedItem
	rng   *rand.Rand
}

func NewSimulatedSource(tick time.Duration, probability float64, step int, items func() []models.FeedItem, rng *rand.Rand) *SimulatedSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedSource{
		Tick:        tick,
		Probability: probability,
		Step:        step,
		items:       items,
		rng:         rng,
	}
}

// Deltas emits at most one delta per candidate item per tick. Candidates
// are re-read each tick so the stream follows refreshes.
func (s *SimulatedSource) Deltas(ctx context.Context) <-chan Delta {
	out := make(chan Delta)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, item := range s.items() {
					if s.rng.Float64() >= s.Probability {
						continue
					}
					select {
					case out <- Delta{ItemID: item.ID, Step: s.Step}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}
