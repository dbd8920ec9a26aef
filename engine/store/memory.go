package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/trendzhq/trendz/engine/domain"
)

// Memory is an in-memory Store used in tests and for offline runs. Batch is
// best-effort: writes apply immediately and are not rolled back on error,
// which matches the single-writer batch assumption the gate documents.
type Memory struct {
	mu            sync.Mutex
	trends        []domain.Trend
	competitors   []domain.Competitor
	posts         []domain.CompetitorPost
	notifications []domain.Notification
	settings      map[string]string
	nextID        int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{settings: make(map[string]string)}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) FindTrend(_ context.Context, keyword, platform string, nicheID int) (*domain.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trends {
		t := &m.trends[i]
		if strings.EqualFold(t.Keyword, keyword) && t.Platform == platform && t.NicheID == nicheID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) InsertTrend(_ context.Context, t *domain.Trend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.trends = append(m.trends, *t)
	return nil
}

func (m *Memory) Batch(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *Memory) InsertNotification(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *Memory) UnreadNotifications(_ context.Context, userID int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *Memory) ListCompetitorsForUser(_ context.Context, userID int) ([]domain.Competitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Competitor
	for _, c := range m.competitors {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) AddCompetitor(_ context.Context, c *domain.Competitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.competitors = append(m.competitors, *c)
	return nil
}

func (m *Memory) DeleteCompetitor(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, c := range m.competitors {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrCompetitorNotFound
	}
	m.competitors = append(m.competitors[:idx], m.competitors[idx+1:]...)
	kept := m.posts[:0]
	for _, p := range m.posts {
		if p.CompetitorID != id {
			kept = append(kept, p)
		}
	}
	m.posts = kept
	return nil
}

func (m *Memory) CompetitorPostExists(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.PostURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) InsertCompetitorPost(_ context.Context, post *domain.CompetitorPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.PostURL == post.PostURL {
			return nil // unique URL backstop
		}
	}
	post.ID = m.id()
	m.posts = append(m.posts, *post)
	return nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	if !ok {
		return "", domain.ErrSettingNotFound
	}
	return v, nil
}

func (m *Memory) UpsertSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *Memory) ViralTrends(_ context.Context, limit int) ([]domain.Trend, error) {
	if limit <= 0 {
		limit = 3
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trend
	for _, t := range m.trends {
		if t.IsViral {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrowthScore > out[j].GrowthScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) HotList(_ context.Context) ([]domain.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trend
	for _, t := range m.trends {
		if t.IsViral || t.GrowthScore > 80 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrowthScore > out[j].GrowthScore })
	return out, nil
}

func (m *Memory) SearchTrends(_ context.Context, term string) ([]domain.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term = strings.ToLower(strings.TrimSpace(term))
	var out []domain.Trend
	for _, t := range m.trends {
		if term == "" ||
			strings.Contains(strings.ToLower(t.Keyword), term) ||
			strings.Contains(strings.ToLower(t.Platform), term) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscoveredAt.After(out[j].DiscoveredAt) })
	return out, nil
}

func (m *Memory) TrendsByNiche(_ context.Context, nicheID int) ([]domain.Trend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trend
	for _, t := range m.trends {
		if t.NicheID == nicheID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscoveredAt.After(out[j].DiscoveredAt) })
	return out, nil
}

func (m *Memory) MarketStats(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{
		StatTotal: len(m.trends), StatViral: 0, StatTikTok: 0, StatInstagram: 0,
		StatCompetitors: len(m.competitors), StatTotalPosts: len(m.posts),
	}
	for _, t := range m.trends {
		if t.IsViral {
			stats[StatViral]++
		}
		switch t.Platform {
		case domain.PlatformTikTok:
			stats[StatTikTok]++
		case domain.PlatformInstagram:
			stats[StatInstagram]++
		}
	}
	return stats, nil
}

func (m *Memory) MarketStatsByNiche(_ context.Context, nicheID int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{StatTotal: 0, StatTikTok: 0, StatInstagram: 0}
	for _, t := range m.trends {
		if t.NicheID != nicheID {
			continue
		}
		stats[StatTotal]++
		switch t.Platform {
		case domain.PlatformTikTok:
			stats[StatTikTok]++
		case domain.PlatformInstagram:
			stats[StatInstagram]++
		}
	}
	return stats, nil
}
