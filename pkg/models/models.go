package models

// ContentType classifies a feed item. Unknown values normalize to
// ContentOther at the decode boundary so dispatch stays total.
type ContentType string

const (
	ContentProject        ContentType = "project"
	ContentOpportunity    ContentType = "opportunity"
	ContentCampaign       ContentType = "campaign"
	ContentMilestone      ContentType = "milestone"
	ContentSuccessStory   ContentType = "success_story"
	ContentLiveEvent      ContentType = "live_event"
	ContentWorkroomLive   ContentType = "workroom_live"
	ContentAdminHighlight ContentType = "admin_highlight"
	ContentAchievement    ContentType = "achievement"
	ContentCertification  ContentType = "certification"
	ContentCollaboration  ContentType = "collaboration"
	ContentFundingSuccess ContentType = "funding_success"
	ContentProjectClosing ContentType = "project_closing"
	ContentOther          ContentType = "other"
)

// AllContentTypes lists every known content type.
var AllContentTypes = []ContentType{
	ContentProject,
	ContentOpportunity,
	ContentCampaign,
	ContentMilestone,
	ContentSuccessStory,
	ContentLiveEvent,
	ContentWorkroomLive,
	ContentAdminHighlight,
	ContentAchievement,
	ContentCertification,
	ContentCollaboration,
	ContentFundingSuccess,
	ContentProjectClosing,
	ContentOther,
}

// ParseContentType maps a raw type string to a ContentType.
func ParseContentType(s string) ContentType {
	for _, t := range AllContentTypes {
		if string(t) == s {
			return t
		}
	}
	return ContentOther
}

// RelatedIDs links a feed item to the entities it was generated from.
type RelatedIDs struct {
	ProjectID     string `json:"project_id,omitempty"`
	OpportunityID string `json:"opportunity_id,omitempty"`
	CampaignID    string `json:"campaign_id,omitempty"`
}

type FeedItem struct {
	ID               string         `json:"id"`
	Type             ContentType    `json:"type"`
	AuthorID         string         `json:"author_id"`
	AuthorName       string         `json:"author_name"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Location         string         `json:"location"`
	TimestampDisplay string         `json:"timestamp_display"`
	BaseLikes        int            `json:"base_likes"`
	BaseComments     int            `json:"base_comments"`
	BaseInterest     int            `json:"base_interest"`
	IsLive           bool           `json:"is_live"`
	IsPinned         bool           `json:"is_pinned"`
	IsUrgent         bool           `json:"is_urgent"`
	IsAdminCurated   bool           `json:"is_admin_curated"`
	Related          RelatedIDs     `json:"related"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// IsOwnContent reports whether the item was authored by the viewer.
// Ownership is derived, never stored, so a login/logout is reflected
// immediately.
func (f FeedItem) IsOwnContent(viewerID string) bool {
	return viewerID != "" && f.AuthorID == viewerID
}

// MetaString returns a string metadata value, or "" when absent.
func (f FeedItem) MetaString(key string) string {
	if f.Metadata == nil {
		return ""
	}
	s, _ := f.Metadata[key].(string)
	return s
}

// Screen names the navigation targets the dispatcher may resolve to.
type Screen string

const (
	ScreenMyProjects        Screen = "MyProjects"
	ScreenProjectDetail     Screen = "ProjectDetail"
	ScreenProjectDashboard  Screen = "ProjectDashboard"
	ScreenCampaignDetail    Screen = "CampaignDetail"
	ScreenOpportunities     Screen = "Opportunities"
	ScreenOpportunityDetail Screen = "OpportunityDetail"
	ScreenWorkroom          Screen = "Workroom"
	ScreenProfile           Screen = "Profile"
	ScreenMentorship        Screen = "Mentorship"
)

// NavigationAction is the value handed to a navigation host. The
// dispatcher never performs the transition itself.
type NavigationAction struct {
	Screen Screen         `json:"screen"`
	Params map[string]any `json:"params,omitempty"`
}
