package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/impactlink/pulse/internal/engagement"
	"github.com/impactlink/pulse/internal/sampler"
	"github.com/impactlink/pulse/pkg/models"
)

// feedCard adapts a feed item plus its engagement state for the list.
type feedCard struct {
	item     models.FeedItem
	liked    bool
	likes    int
	comments int
	interest int
	recent   bool
	own      bool
}

func newFeedCard(item models.FeedItem, store *engagement.Store, viewerID string, now time.Time) feedCard {
	likes, comments := store.Effective(item.ID, item.BaseLikes, item.BaseComments)
	interest, recent := store.Interest(item.ID, item.BaseInterest, now)
	return feedCard{
		item:     item,
		liked:    store.Liked(item.ID),
		likes:    likes,
		comments: comments,
		interest: interest,
		recent:   recent,
		own:      item.IsOwnContent(viewerID),
	}
}

func (c feedCard) Title() string {
	var badges []string
	if c.item.IsLive {
		badges = append(badges, liveBadgeStyle.Render("LIVE"))
	}
	if c.item.IsPinned {
		badges = append(badges, pinnedBadgeStyle.Render("PINNED"))
	}
	if c.item.IsUrgent {
		badges = append(badges, urgentBadgeStyle.Render("URGENT"))
	}
	if c.own {
		badges = append(badges, ownBadgeStyle.Render("YOURS"))
	}
	title := c.item.Title
	if len(badges) > 0 {
		title = strings.Join(badges, " ") + " " + title
	}
	return title
}

func (c feedCard) Description() string {
	heart := "♡"
	if c.liked {
		heart = "♥"
	}
	parts := []string{
		fmt.Sprintf("%s %d", heart, c.likes),
		fmt.Sprintf("💬 %d", c.comments),
	}
	if c.interest > 0 {
		interest := fmt.Sprintf("%s %d interested", heatIcon(sampler.HeatOf(c.interest)), c.interest)
		if c.recent {
			interest += " ↑"
		}
		parts = append(parts, interest)
	}
	parts = append(parts, fmt.Sprintf("%s • %s", c.item.AuthorName, c.item.TimestampDisplay))
	return strings.Join(parts, "  ")
}

func (c feedCard) FilterValue() string {
	return c.item.Title
}

var _ list.Item = feedCard{}

func heatIcon(h sampler.Heat) string {
	switch h {
	case sampler.HeatHot:
		return "🔴"
	case sampler.HeatPopular:
		return "🟡"
	default:
		return "🟢"
	}
}
