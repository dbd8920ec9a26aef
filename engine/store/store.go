// Package store defines the repository capability the pipeline consumes and
// provides Postgres and in-memory implementations. The pipeline owns no
// persistent state of its own; everything flows through this interface.
package store

import (
	"context"

	"github.com/trendzhq/trendz/engine/domain"
)

// Store is the persistence capability injected into the pipeline.
type Store interface {
	// FindTrend looks up a trend by its canonical identity. The keyword
	// match is case-insensitive. Returns nil when no trend exists.
	FindTrend(ctx context.Context, keyword, platform string, nicheID int) (*domain.Trend, error)
	InsertTrend(ctx context.Context, t *domain.Trend) error

	// Batch runs fn against a store whose writes commit together at the
	// end; an error from fn discards uncommitted writes.
	Batch(ctx context.Context, fn func(Store) error) error

	InsertNotification(ctx context.Context, n *domain.Notification) error
	UnreadNotifications(ctx context.Context, userID int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	ListCompetitorsForUser(ctx context.Context, userID int) ([]domain.Competitor, error)
	AddCompetitor(ctx context.Context, c *domain.Competitor) error
	// DeleteCompetitor removes a competitor and all of its posts.
	DeleteCompetitor(ctx context.Context, id int64) error
	CompetitorPostExists(ctx context.Context, url string) (bool, error)
	InsertCompetitorPost(ctx context.Context, p *domain.CompetitorPost) error

	// GetSetting returns domain.ErrSettingNotFound for absent keys.
	GetSetting(ctx context.Context, key string) (string, error)
	UpsertSetting(ctx context.Context, key, value string) error

	// Query surface for the dashboard/reporting callers.
	ViralTrends(ctx context.Context, limit int) ([]domain.Trend, error)
	HotList(ctx context.Context) ([]domain.Trend, error)
	SearchTrends(ctx context.Context, term string) ([]domain.Trend, error)
	TrendsByNiche(ctx context.Context, nicheID int) ([]domain.Trend, error)
	MarketStats(ctx context.Context) (map[string]int, error)
	MarketStatsByNiche(ctx context.Context, nicheID int) (map[string]int, error)
}

// Market report stat keys shared by both implementations.
const (
	StatTotal       = "Total"
	StatViral       = "Viral"
	StatTikTok      = "TikTok"
	StatInstagram   = "Instagram"
	StatCompetitors = "Competitors"
	StatTotalPosts  = "Total Posts"
)
