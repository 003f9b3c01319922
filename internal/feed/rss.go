package feed

import (
	"context"
	"fmt"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mmcdole/gofeed"

	"github.com/impactlink/pulse/internal/config"
	"github.com/impactlink/pulse/pkg/models"
)

// RSSSource adapts public RSS/Atom feeds into feed items so community
// stories can flow through the same pipeline as platform content. RSS
// has no engagement baselines; counters start at zero and therefore the
// sampler never touches these items.
type RSSSource struct {
	feeds     []config.FeedConfig
	parser    *gofeed.Parser
	converter *md.Converter
}

func NewRSSSource(feeds []config.FeedConfig) *RSSSource {
	return &RSSSource{
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		converter: md.NewConverter("", true, nil),
	}
}

// FetchPage fetches every configured feed. RSS is not cursored; the
// whole set is one page. A feed that fails to parse is skipped so one
// dead feed cannot empty the dashboard.
func (s *RSSSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if cursor != "" {
		return Page{}, ErrNoMorePages
	}

	var items []models.FeedItem
	var lastErr error
	for _, fc := range s.feeds {
		parsed, err := s.parser.ParseURLWithContext(fc.URL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("parsing feed %s: %w", fc.URL, err)
			continue
		}
		for _, item := range parsed.Items {
			converted := s.convertItem(item, fc.Name)
			if converted == nil {
				continue
			}
			items = append(items, *converted)
		}
	}
	if len(items) == 0 && lastErr != nil {
		return Page{}, lastErr
	}
	return Page{Items: items}, nil
}

// convertItem maps a gofeed.Item to a FeedItem.
func (s *RSSSource) convertItem(item *gofeed.Item, feedName string) *models.FeedItem {
	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	} else {
		// Skip items without dates
		return nil
	}

	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		return nil
	}

	author := feedName
	if item.Author != nil && item.Author.Name != "" {
		author = item.Author.Name
	}

	category := ""
	if len(item.Categories) > 0 {
		category = item.Categories[0]
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}
	if markdown, err := s.converter.ConvertString(description); err == nil {
		description = markdown
	}

	return &models.FeedItem{
		ID:               id,
		Type:             models.ContentOther,
		AuthorID:         feedName,
		AuthorName:       author,
		Title:            item.Title,
		Description:      description,
		Category:         category,
		Location:         "",
		TimestampDisplay: publishedAt.Format("Jan 2, 2006"),
		Metadata:         map[string]any{"link": item.Link, "source": feedName},
	}
}
