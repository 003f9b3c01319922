package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/impactlink/pulse/pkg/models"
)

// ReplaceSnapshot swaps the cached feed for a fresh server snapshot.
// Ordering is preserved via the position column.
func (db *DB) ReplaceSnapshot(items []models.FeedItem) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM feed_items"); err != nil {
		return fmt.Errorf("clearing cached items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO feed_items (
			id, type, author_id, author_name, title, description, category, location,
			timestamp_display, base_likes, base_comments, base_interest,
			is_live, is_pinned, is_urgent, is_admin_curated,
			project_id, opportunity_id, campaign_id, metadata, position, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, item := range items {
		metadata := ""
		if item.Metadata != nil {
			data, err := json.Marshal(item.Metadata)
			if err != nil {
				return fmt.Errorf("marshaling metadata for %s: %w", item.ID, err)
			}
			metadata = string(data)
		}
		_, err := stmt.Exec(
			item.ID, string(item.Type), item.AuthorID, item.AuthorName,
			item.Title, item.Description, item.Category, item.Location,
			item.TimestampDisplay, item.BaseLikes, item.BaseComments, item.BaseInterest,
			item.IsLive, item.IsPinned, item.IsUrgent, item.IsAdminCurated,
			item.Related.ProjectID, item.Related.OpportunityID, item.Related.CampaignID,
			metadata, i, now,
		)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the cached feed in original order, up to limit
// items (0 means all).
func (db *DB) GetSnapshot(limit int) ([]models.FeedItem, error) {
	query := `
		SELECT id, type, author_id, author_name, title, description, category, location,
			timestamp_display, base_likes, base_comments, base_interest,
			is_live, is_pinned, is_urgent, is_admin_curated,
			project_id, opportunity_id, campaign_id, metadata
		FROM feed_items ORDER BY position
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("querying cached items: %w", err)
	}
	defer rows.Close()

	var items []models.FeedItem
	for rows.Next() {
		var item models.FeedItem
		var typ, metadata string
		var projectID, opportunityID, campaignID sql.NullString
		if err := rows.Scan(
			&item.ID, &typ, &item.AuthorID, &item.AuthorName,
			&item.Title, &item.Description, &item.Category, &item.Location,
			&item.TimestampDisplay, &item.BaseLikes, &item.BaseComments, &item.BaseInterest,
			&item.IsLive, &item.IsPinned, &item.IsUrgent, &item.IsAdminCurated,
			&projectID, &opportunityID, &campaignID, &metadata,
		); err != nil {
			return nil, fmt.Errorf("scanning cached item: %w", err)
		}
		item.Type = models.ParseContentType(typ)
		item.Related.ProjectID = projectID.String
		item.Related.OpportunityID = opportunityID.String
		item.Related.CampaignID = campaignID.String
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata for %s: %w", item.ID, err)
			}
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// CountItems reports how many items are cached.
func (db *DB) CountItems() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM feed_items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cached items: %w", err)
	}
	return n, nil
}
