package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/store"
)

// SettingHashtag is the settings key holding the dynamic hashtag override.
const SettingHashtag = "scrape.hashtag"

// ResolveTopic picks the hashtag for a scrape run. Resolution order:
// dynamic setting, static niche mapping, hard-coded default. Each step is
// skipped only when it yields nothing.
func ResolveTopic(ctx context.Context, st store.Store, nicheID int, log *slog.Logger) string {
	value, err := st.GetSetting(ctx, SettingHashtag)
	if err == nil && value != "" {
		return value
	}
	if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
		log.Warn("topic: setting lookup failed, falling back", "error", err)
	}

	if n, ok := domain.NicheByID(nicheID); ok && n.Topic != "" {
		return n.Topic
	}
	return domain.DefaultTopic
}
