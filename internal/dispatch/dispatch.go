// Package dispatch maps a feed item to exactly one navigation action.
// Resolve is pure and total: every content type is an explicit case of
// the switch, every branch returns a non-empty screen, and the caller
// owns the actual navigation (and any telemetry around it).
package dispatch

import "github.com/impactlink/pulse/pkg/models"

// Metadata keys that discriminate admin highlights.
const (
	metaHighlightType       = "highlightType"
	highlightTopMentor      = "top_mentor"
	highlightFeaturedProj   = "featured_project"
	highlightSpotlightedOpp = "spotlighted_opportunity"
)

// Resolve returns the navigation target for a clicked feed item.
// Ownership and related ids pick the branch; unrecognized types fall
// through project-id then opportunity-id routing to the dashboard.
func Resolve(item models.FeedItem, viewerID string) models.NavigationAction {
	own := item.IsOwnContent(viewerID)

	switch item.Type {
	case models.ContentProject:
		return resolveProject(item, own)

	case models.ContentCampaign:
		if item.Related.CampaignID != "" {
			return nav(models.ScreenCampaignDetail, map[string]any{
				"campaignId":  item.Related.CampaignID,
				"title":       item.Title,
				"description": item.Description,
				"category":    item.Category,
				"authorName":  item.AuthorName,
				"location":    item.Location,
				"isLive":      item.IsLive,
				"deadline":    item.MetaString("deadline"),
			})
		}
		return nav(models.ScreenCampaignDetail, nil)

	case models.ContentOpportunity:
		if item.Related.OpportunityID != "" {
			return nav(models.ScreenOpportunityDetail, map[string]any{
				"opportunityId": item.Related.OpportunityID,
				"title":         item.Title,
				"category":      item.Category,
				"description":   item.Description,
				"authorName":    item.AuthorName,
				"location":      item.Location,
				"deadline":      item.MetaString("deadline"),
				"isUrgent":      item.IsUrgent,
			})
		}
		return nav(models.ScreenOpportunities, nil)

	case models.ContentLiveEvent, models.ContentWorkroomLive:
		if item.IsLive && item.Related.ProjectID != "" {
			return nav(models.ScreenWorkroom, map[string]any{
				"projectId": item.Related.ProjectID,
				"openPanel": "live-session",
			})
		}
		if item.Related.ProjectID != "" {
			if own {
				return nav(models.ScreenMyProjects, map[string]any{
					"highlightProjectId": item.Related.ProjectID,
					"projectTitle":       item.Title,
				})
			}
			return nav(models.ScreenProjectDetail, map[string]any{
				"projectId":    item.Related.ProjectID,
				"title":        item.Title,
				"category":     item.Category,
				"focusSection": "sessions",
			})
		}
		return nav(models.ScreenProjectDashboard, nil)

	case models.ContentMilestone, models.ContentSuccessStory,
		models.ContentAchievement, models.ContentCertification:
		if item.Related.ProjectID != "" {
			if own {
				return nav(models.ScreenMyProjects, map[string]any{
					"highlightProjectId": item.Related.ProjectID,
					"focusSection":       "achievements",
				})
			}
			return nav(models.ScreenProjectDetail, map[string]any{
				"projectId":    item.Related.ProjectID,
				"title":        item.Title,
				"category":     item.Category,
				"focusSection": "milestones",
			})
		}
		if own {
			return nav(models.ScreenProfile, map[string]any{"section": "achievements"})
		}
		return nav(models.ScreenProjectDashboard, nil)

	case models.ContentFundingSuccess:
		if item.Related.ProjectID != "" {
			if own {
				return nav(models.ScreenMyProjects, map[string]any{
					"highlightProjectId": item.Related.ProjectID,
					"focusSection":       "funding",
				})
			}
			return nav(models.ScreenProjectDetail, map[string]any{
				"projectId":    item.Related.ProjectID,
				"title":        item.Title,
				"category":     item.Category,
				"focusSection": "funding",
			})
		}
		return nav(models.ScreenOpportunities, nil)

	case models.ContentCollaboration:
		if item.Related.ProjectID != "" {
			return nav(models.ScreenProjectDetail, map[string]any{
				"projectId":    item.Related.ProjectID,
				"title":        item.Title,
				"category":     item.Category,
				"focusSection": "collaboration",
			})
		}
		return nav(models.ScreenProjectDashboard, nil)

	case models.ContentAdminHighlight:
		switch item.MetaString(metaHighlightType) {
		case highlightTopMentor:
			return nav(models.ScreenMentorship, nil)
		case highlightFeaturedProj:
			if item.Related.ProjectID != "" {
				return nav(models.ScreenProjectDetail, map[string]any{
					"projectId":       item.Related.ProjectID,
					"title":           item.Title,
					"category":        item.Category,
					"isAdminFeatured": true,
				})
			}
		case highlightSpotlightedOpp:
			if item.Related.OpportunityID != "" {
				return nav(models.ScreenOpportunityDetail, map[string]any{
					"opportunityId":      item.Related.OpportunityID,
					"title":              item.Title,
					"category":           item.Category,
					"isAdminSpotlighted": true,
				})
			}
		}
		return nav(models.ScreenProjectDashboard, nil)

	case models.ContentProjectClosing, models.ContentOther:
		return resolveFallback(item, own)
	}

	// Unreachable for any ContentType produced by ParseContentType, but
	// the contract is total even for raw values.
	return resolveFallback(item, own)
}

// resolveProject routes a project item (rule for type == project).
func resolveProject(item models.FeedItem, own bool) models.NavigationAction {
	if item.Related.ProjectID != "" {
		if own {
			return nav(models.ScreenMyProjects, map[string]any{
				"highlightProjectId": item.Related.ProjectID,
				"projectTitle":       item.Title,
				"projectCategory":    item.Category,
			})
		}
		return nav(models.ScreenProjectDetail, map[string]any{
			"projectId":   item.Related.ProjectID,
			"title":       item.Title,
			"category":    item.Category,
			"description": item.Description,
			"authorName":  item.AuthorName,
			"location":    item.Location,
		})
	}
	if own {
		return nav(models.ScreenMyProjects, nil)
	}
	return nav(models.ScreenProjectDashboard, nil)
}

// resolveFallback is the documented default: project-id routing, then
// opportunity-id routing, then the dashboard.
func resolveFallback(item models.FeedItem, own bool) models.NavigationAction {
	if item.Related.ProjectID != "" {
		if own {
			return nav(models.ScreenMyProjects, map[string]any{
				"highlightProjectId": item.Related.ProjectID,
			})
		}
		return nav(models.ScreenProjectDetail, map[string]any{
			"projectId": item.Related.ProjectID,
			"title":     item.Title,
			"category":  item.Category,
		})
	}
	if item.Related.OpportunityID != "" {
		return nav(models.ScreenOpportunityDetail, map[string]any{
			"opportunityId": item.Related.OpportunityID,
			"title":         item.Title,
			"category":      item.Category,
		})
	}
	return nav(models.ScreenProjectDashboard, nil)
}

func nav(screen models.Screen, params map[string]any) models.NavigationAction {
	return models.NavigationAction{Screen: screen, Params: params}
}
