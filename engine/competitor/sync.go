// Package competitor ingests recent video links for every account on a
// user's watchlist. Structurally a sibling of the hashtag flow, but with a
// stricter dedup key: exact post URL equality, since provider video URLs
// are stable identifiers.
package competitor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/provider"
	"github.com/trendzhq/trendz/engine/store"
	"github.com/trendzhq/trendz/pkg/fn"
	"github.com/trendzhq/trendz/pkg/resilience"
)

// VideoSource fetches recent videos for one profile handle.
type VideoSource interface {
	FetchProfileVideos(ctx context.Context, handle string, limit int) ([]provider.ProfileVideo, error)
}

const (
	defaultWorkers       = 3
	defaultPerCompetitor = 3
)

// Syncer runs the competitor video ingestion flow.
type Syncer struct {
	Source VideoSource
	Store  store.Store
	Log    *slog.Logger
	// Workers bounds per-competitor fetch parallelism.
	Workers int
	// PerCompetitor bounds videos requested per handle.
	PerCompetitor int
	// Breaker, when set, stops hammering a provider that is failing for
	// every competitor in a row.
	Breaker *resilience.Breaker
}

// Report summarizes one sync run. Partial success is the normal completion
// mode: failed fetches are counted, never fatal.
type Report struct {
	CompetitorsProcessed int
	VideosFound          int
	VideosInserted       int
	FetchFailures        int
}

// competitorResult is one competitor's contribution to the report.
type competitorResult struct {
	found    int
	inserted int
	failed   bool
	skipped  bool
}

// Sync fetches and persists recent videos for every competitor on the
// user's watchlist. Per-competitor fetches run concurrently with bounded
// workers; a failure for one competitor never aborts the others.
func (s *Syncer) Sync(ctx context.Context, userID int) (Report, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	perCompetitor := s.PerCompetitor
	if perCompetitor <= 0 {
		perCompetitor = defaultPerCompetitor
	}

	competitors, err := s.Store.ListCompetitorsForUser(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	results := fn.ParMap(competitors, workers, func(c domain.Competitor) competitorResult {
		handle := NormalizeHandle(c.Handle)
		if handle == "" {
			log.Warn("competitor sync: empty handle skipped", "competitor_id", c.ID)
			return competitorResult{skipped: true}
		}

		videos, err := s.fetch(ctx, handle, perCompetitor)
		if err != nil {
			log.Warn("competitor sync: fetch failed", "handle", handle, "error", err)
			return competitorResult{failed: true}
		}

		res := competitorResult{found: len(videos)}
		for _, v := range videos {
			inserted, err := s.persistVideo(ctx, c.ID, v)
			if err != nil {
				log.Warn("competitor sync: persist failed", "handle", handle, "url", v.URL, "error", err)
				continue
			}
			if inserted {
				res.inserted++
			}
		}
		return res
	})

	report := Report{}
	for _, r := range results {
		report.CompetitorsProcessed++
		report.VideosFound += r.found
		report.VideosInserted += r.inserted
		if r.failed {
			report.FetchFailures++
		}
	}

	log.Info("competitor sync: run complete",
		"processed", report.CompetitorsProcessed,
		"found", report.VideosFound,
		"inserted", report.VideosInserted,
		"failures", report.FetchFailures,
	)
	return report, nil
}

func (s *Syncer) fetch(ctx context.Context, handle string, limit int) ([]provider.ProfileVideo, error) {
	if s.Breaker == nil {
		return s.Source.FetchProfileVideos(ctx, handle, limit)
	}
	result := resilience.CallResult(s.Breaker, ctx, func(ctx context.Context) fn.Result[[]provider.ProfileVideo] {
		return fn.FromPair(s.Source.FetchProfileVideos(ctx, handle, limit))
	})
	return result.Unwrap()
}

// persistVideo inserts one post unless its exact URL is already stored.
func (s *Syncer) persistVideo(ctx context.Context, competitorID int64, v provider.ProfileVideo) (bool, error) {
	exists, err := s.Store.CompetitorPostExists(ctx, v.URL)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	post := domain.CompetitorPost{
		CompetitorID:   competitorID,
		PostURL:        v.URL,
		EngagementRate: v.EngagementRate,
		PostedAt:       time.Now(),
	}
	if err := s.Store.InsertCompetitorPost(ctx, &post); err != nil {
		return false, err
	}
	return true, nil
}

// NormalizeHandle strips the leading "@" and surrounding whitespace.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.TrimSpace(handle)
}
