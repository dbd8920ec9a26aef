// Package domain defines the core entities of the trend pipeline: canonical
// trends, competitor posts, notifications, settings, and the static niche
// taxonomy that scopes topic selection.
package domain

import "time"

// Supported platforms. The provider contract is TikTok-shaped; Instagram
// records enter the store through the same pipeline with a different label.
const (
	PlatformTikTok    = "TikTok"
	PlatformInstagram = "Instagram"
)

// TrendTypeHashtag marks trends sourced from hashtag scrape runs.
const TrendTypeHashtag = "Hashtag"

// Trend is the canonical record for one detected keyword on one platform
// within one niche. Identity is (lower(Keyword), Platform, NicheID): the
// store holds at most one row per tuple across repeated ingestion runs.
type Trend struct {
	ID           int64     `json:"id"`
	Keyword      string    `json:"keyword"`
	Platform     string    `json:"platform"`
	NicheID      int       `json:"niche_id"`
	GrowthScore  float64   `json:"growth_score"`
	IsViral      bool      `json:"is_viral"`
	DiscoveredAt time.Time `json:"discovered_at"`
	SoundName    string    `json:"sound_name,omitempty"`
	SoundURL     string    `json:"sound_url,omitempty"`
	TrendType    string    `json:"trend_type"`
}

// EngagementScore is a read-only alias kept for consumers of the old field
// name. Storage holds only GrowthScore.
func (t Trend) EngagementScore() float64 { return t.GrowthScore }

// Competitor is a tracked account on a user's watchlist.
type Competitor struct {
	ID     int64  `json:"id"`
	UserID int    `json:"user_id"`
	Handle string `json:"handle"`
}

// CompetitorPost is one collected video link for a competitor. PostURL is
// unique across all posts; re-ingesting the same URL is a no-op.
type CompetitorPost struct {
	ID             int64     `json:"id"`
	CompetitorID   int64     `json:"competitor_id"`
	PostURL        string    `json:"post_url"`
	EngagementRate float64   `json:"engagement_rate"`
	PostedAt       time.Time `json:"posted_at"`
}

// Notification is an alert raised for a user. Only the read flag is ever
// mutated after creation.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// Setting is a persisted key/value configuration pair.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
