// Package ingest wires the trend pipeline: resolve a topic, fetch raw
// payloads from the provider, normalize them into canonical trends, dedup
// against the store, and raise threshold notifications for what was new.
package ingest

import (
	"context"
	"log/slog"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/provider"
	"github.com/trendzhq/trendz/engine/store"
	"github.com/trendzhq/trendz/pkg/fn"
)

// TrendSource fetches raw dataset items for a topic.
type TrendSource interface {
	FetchTrendBatch(ctx context.Context, topic string, limit int) ([]provider.Payload, error)
}

// Deps holds the collaborators for an ingestion run.
type Deps struct {
	Source   TrendSource
	Store    store.Store
	Notifier *Notifier
	Logger   *slog.Logger
	// Platform labels the stored trends; defaults to TikTok.
	Platform string
	// Limit is the number of items requested per run.
	Limit int
}

// Report summarizes one ingestion run.
type Report struct {
	Topic         string
	Fetched       int
	Inserted      int
	Duplicates    int
	Notifications int
}

// itemOutcome carries one payload's fate through the per-item pipeline.
type itemOutcome struct {
	trend         domain.Trend
	inserted      bool
	notifications int
}

// newPipeline composes the per-item stages: normalize, gate, notify. The
// notify stage only fires for trends the gate actually inserted; duplicate
// sightings of a known trend stay silent.
func newPipeline(deps Deps, gate *Gate, nicheID, userID int) fn.Stage[provider.Payload, itemOutcome] {
	platform := deps.Platform

	normalize := fn.MapStage(func(p provider.Payload) domain.Trend {
		return Normalize(p, nicheID, platform)
	})

	persist := func(ctx context.Context, t domain.Trend) fn.Result[itemOutcome] {
		inserted, err := gate.PersistIfNew(ctx, &t)
		if err != nil {
			return fn.Err[itemOutcome](err)
		}
		return fn.Ok(itemOutcome{trend: t, inserted: inserted})
	}

	notify := func(ctx context.Context, o itemOutcome) fn.Result[itemOutcome] {
		if o.inserted && deps.Notifier != nil {
			o.notifications = len(deps.Notifier.Evaluate(ctx, o.trend, userID))
		}
		return fn.Ok(o)
	}

	return fn.Then(
		fn.TracedStage("ingest.normalize", normalize),
		fn.Then(
			fn.TracedStage("ingest.persist", persist),
			fn.TracedStage("ingest.notify", notify),
		),
	)
}

// Run executes one ingestion batch for a niche on behalf of a user. It
// aborts with the terminal error on provider failure or on the first
// storage failure; per-item degraded data is not an error.
func (deps Deps) Run(ctx context.Context, nicheID, userID int) (Report, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Platform == "" {
		deps.Platform = domain.PlatformTikTok
	}

	topic := ResolveTopic(ctx, deps.Store, nicheID, log)
	report := Report{Topic: topic}

	payloads, err := deps.Source.FetchTrendBatch(ctx, topic, deps.Limit)
	if err != nil {
		return report, err
	}
	report.Fetched = len(payloads)
	log.Info("ingest: fetched batch", "topic", topic, "items", len(payloads))

	pipeline := newPipeline(deps, &Gate{Store: deps.Store, Log: log}, nicheID, userID)

	for _, p := range payloads {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		outcome, err := pipeline(ctx, p).Unwrap()
		if err != nil {
			// Storage failures are fatal for the batch.
			return report, err
		}
		if outcome.inserted {
			report.Inserted++
			report.Notifications += outcome.notifications
		} else {
			report.Duplicates++
		}
	}

	log.Info("ingest: run complete",
		"topic", topic,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"notifications", report.Notifications,
	)
	return report, nil
}
