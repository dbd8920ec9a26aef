package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trendzhq/trendz/engine/domain"
)

// schema is applied by EnsureSchema. The unique index on trend identity is a
// backstop for the check-then-insert gate: a second writer racing the gate
// hits ON CONFLICT DO NOTHING instead of creating a duplicate.
const schema = `
CREATE TABLE IF NOT EXISTS social_trends (
	trend_id      BIGSERIAL PRIMARY KEY,
	trend_name    TEXT NOT NULL,
	platform      TEXT NOT NULL,
	niche_id      INT NOT NULL,
	growth_score  DOUBLE PRECISION NOT NULL,
	is_viral      BOOLEAN NOT NULL,
	discovered_at TIMESTAMPTZ NOT NULL,
	sound_name    TEXT NOT NULL DEFAULT '',
	sound_url     TEXT NOT NULL DEFAULT '',
	trend_type    TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS social_trends_identity
	ON social_trends (lower(trend_name), platform, niche_id);

CREATE TABLE IF NOT EXISTS competitors (
	competitor_id BIGSERIAL PRIMARY KEY,
	user_id       INT NOT NULL,
	handle        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS competitor_posts (
	post_id         BIGSERIAL PRIMARY KEY,
	competitor_id   BIGINT NOT NULL REFERENCES competitors(competitor_id),
	post_url        TEXT NOT NULL UNIQUE,
	engagement_rate DOUBLE PRECISION NOT NULL,
	posted_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	notification_id BIGSERIAL PRIMARY KEY,
	user_id         INT NOT NULL,
	message         TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	is_read         BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS system_settings (
	setting_key   TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL
);
`

const trendColumns = `trend_id, trend_name, platform, niche_id, growth_score,
	is_viral, discovered_at, sound_name, sound_url, trend_type`

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the same queries
// serve pooled and transactional stores.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewPostgres wraps a pgx pool as a Store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, db: pool}
}

// EnsureSchema creates tables and indexes if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)
	return storageErr("ensure schema", err)
}

// Batch runs fn inside a transaction; writes commit once at the end.
func (p *Postgres) Batch(ctx context.Context, fn func(Store) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin batch", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{pool: p.pool, db: tx}); err != nil {
		return err
	}
	return storageErr("commit batch", tx.Commit(ctx))
}

func (p *Postgres) FindTrend(ctx context.Context, keyword, platform string, nicheID int) (*domain.Trend, error) {
	row := p.db.QueryRow(ctx, `SELECT `+trendColumns+` FROM social_trends
		WHERE lower(trend_name) = lower($1) AND platform = $2 AND niche_id = $3`,
		keyword, platform, nicheID)
	t, err := scanTrend(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find trend", err)
	}
	return &t, nil
}

func (p *Postgres) InsertTrend(ctx context.Context, t *domain.Trend) error {
	err := p.db.QueryRow(ctx, `INSERT INTO social_trends
		(trend_name, platform, niche_id, growth_score, is_viral, discovered_at, sound_name, sound_url, trend_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (lower(trend_name), platform, niche_id) DO NOTHING
		RETURNING trend_id`,
		t.Keyword, t.Platform, t.NicheID, t.GrowthScore, t.IsViral,
		t.DiscoveredAt, t.SoundName, t.SoundURL, t.TrendType).Scan(&t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a race with another writer; the row already exists.
		return nil
	}
	return storageErr("insert trend", err)
}

func (p *Postgres) InsertNotification(ctx context.Context, n *domain.Notification) error {
	err := p.db.QueryRow(ctx, `INSERT INTO notifications (user_id, message, created_at, is_read)
		VALUES ($1, $2, $3, $4) RETURNING notification_id`,
		n.UserID, n.Message, n.CreatedAt, n.IsRead).Scan(&n.ID)
	return storageErr("insert notification", err)
}

func (p *Postgres) UnreadNotifications(ctx context.Context, userID int) ([]domain.Notification, error) {
	rows, err := p.db.Query(ctx, `SELECT notification_id, user_id, message, created_at, is_read
		FROM notifications WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, storageErr("list notifications", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, storageErr("scan notification", err)
		}
		out = append(out, n)
	}
	return out, storageErr("list notifications", rows.Err())
}

func (p *Postgres) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := p.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1`, id)
	return storageErr("mark notification read", err)
}

func (p *Postgres) ListCompetitorsForUser(ctx context.Context, userID int) ([]domain.Competitor, error) {
	rows, err := p.db.Query(ctx, `SELECT competitor_id, user_id, handle
		FROM competitors WHERE user_id = $1 ORDER BY competitor_id`, userID)
	if err != nil {
		return nil, storageErr("list competitors", err)
	}
	defer rows.Close()

	var out []domain.Competitor
	for rows.Next() {
		var c domain.Competitor
		if err := rows.Scan(&c.ID, &c.UserID, &c.Handle); err != nil {
			return nil, storageErr("scan competitor", err)
		}
		out = append(out, c)
	}
	return out, storageErr("list competitors", rows.Err())
}

func (p *Postgres) AddCompetitor(ctx context.Context, c *domain.Competitor) error {
	err := p.db.QueryRow(ctx, `INSERT INTO competitors (user_id, handle)
		VALUES ($1, $2) RETURNING competitor_id`, c.UserID, c.Handle).Scan(&c.ID)
	return storageErr("add competitor", err)
}

func (p *Postgres) DeleteCompetitor(ctx context.Context, id int64) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM competitor_posts WHERE competitor_id = $1`, id); err != nil {
		return storageErr("delete competitor posts", err)
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM competitors WHERE competitor_id = $1`, id)
	if err != nil {
		return storageErr("delete competitor", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompetitorNotFound
	}
	return nil
}

func (p *Postgres) CompetitorPostExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM competitor_posts WHERE post_url = $1)`, url).Scan(&exists)
	return exists, storageErr("competitor post exists", err)
}

func (p *Postgres) InsertCompetitorPost(ctx context.Context, post *domain.CompetitorPost) error {
	err := p.db.QueryRow(ctx, `INSERT INTO competitor_posts (competitor_id, post_url, engagement_rate, posted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_url) DO NOTHING
		RETURNING post_id`,
		post.CompetitorID, post.PostURL, post.EngagementRate, post.PostedAt).Scan(&post.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return storageErr("insert competitor post", err)
}

func (p *Postgres) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRow(ctx, `SELECT setting_value FROM system_settings WHERE setting_key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrSettingNotFound
	}
	return value, storageErr("get setting", err)
}

func (p *Postgres) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := p.db.Exec(ctx, `INSERT INTO system_settings (setting_key, setting_value)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value`, key, value)
	return storageErr("upsert setting", err)
}

func (p *Postgres) ViralTrends(ctx context.Context, limit int) ([]domain.Trend, error) {
	if limit <= 0 {
		limit = 3
	}
	return p.queryTrends(ctx, `SELECT `+trendColumns+` FROM social_trends
		WHERE is_viral ORDER BY growth_score DESC LIMIT $1`, limit)
}

func (p *Postgres) HotList(ctx context.Context) ([]domain.Trend, error) {
	return p.queryTrends(ctx, `SELECT `+trendColumns+` FROM social_trends
		WHERE is_viral OR growth_score > 80 ORDER BY growth_score DESC`)
}

func (p *Postgres) SearchTrends(ctx context.Context, term string) ([]domain.Trend, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return p.queryTrends(ctx, `SELECT `+trendColumns+` FROM social_trends ORDER BY discovered_at DESC`)
	}
	return p.queryTrends(ctx, `SELECT `+trendColumns+` FROM social_trends
		WHERE trend_name ILIKE '%' || $1 || '%' OR platform ILIKE '%' || $1 || '%'
		ORDER BY discovered_at DESC`, term)
}

func (p *Postgres) TrendsByNiche(ctx context.Context, nicheID int) ([]domain.Trend, error) {
	return p.queryTrends(ctx, `SELECT `+trendColumns+` FROM social_trends
		WHERE niche_id = $1 ORDER BY discovered_at DESC`, nicheID)
}

func (p *Postgres) MarketStats(ctx context.Context) (map[string]int, error) {
	stats := map[string]int{}
	row := p.db.QueryRow(ctx, `SELECT
		count(*),
		count(*) FILTER (WHERE is_viral),
		count(*) FILTER (WHERE platform = $1),
		count(*) FILTER (WHERE platform = $2),
		(SELECT count(*) FROM competitors),
		(SELECT count(*) FROM competitor_posts)
		FROM social_trends`, domain.PlatformTikTok, domain.PlatformInstagram)
	var total, viral, tiktok, insta, competitors, posts int
	if err := row.Scan(&total, &viral, &tiktok, &insta, &competitors, &posts); err != nil {
		return nil, storageErr("market stats", err)
	}
	stats[StatTotal] = total
	stats[StatViral] = viral
	stats[StatTikTok] = tiktok
	stats[StatInstagram] = insta
	stats[StatCompetitors] = competitors
	stats[StatTotalPosts] = posts
	return stats, nil
}

func (p *Postgres) MarketStatsByNiche(ctx context.Context, nicheID int) (map[string]int, error) {
	stats := map[string]int{}
	row := p.db.QueryRow(ctx, `SELECT
		count(*),
		count(*) FILTER (WHERE platform = $2),
		count(*) FILTER (WHERE platform = $3)
		FROM social_trends WHERE niche_id = $1`,
		nicheID, domain.PlatformTikTok, domain.PlatformInstagram)
	var total, tiktok, insta int
	if err := row.Scan(&total, &tiktok, &insta); err != nil {
		return nil, storageErr("market stats by niche", err)
	}
	stats[StatTotal] = total
	stats[StatTikTok] = tiktok
	stats[StatInstagram] = insta
	return stats, nil
}

func (p *Postgres) queryTrends(ctx context.Context, sql string, args ...any) ([]domain.Trend, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageErr("query trends", err)
	}
	defer rows.Close()

	var out []domain.Trend
	for rows.Next() {
		t, err := scanTrend(rows)
		if err != nil {
			return nil, storageErr("scan trend", err)
		}
		out = append(out, t)
	}
	return out, storageErr("query trends", rows.Err())
}

func scanTrend(row pgx.Row) (domain.Trend, error) {
	var t domain.Trend
	err := row.Scan(&t.ID, &t.Keyword, &t.Platform, &t.NicheID, &t.GrowthScore,
		&t.IsViral, &t.DiscoveredAt, &t.SoundName, &t.SoundURL, &t.TrendType)
	return t, err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Op: op, Err: err}
}
