package ingest

import (
	"context"
	"log/slog"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/store"
)

// Gate is the dedup and persistence gate. It assumes a single writer for
// the duration of a run; the Postgres store's unique index covers the race
// window if that assumption is ever violated.
type Gate struct {
	Store store.Store
	Log   *slog.Logger
}

// PersistIfNew inserts t unless a trend with the same case-insensitive
// (keyword, platform, niche) identity already exists. Duplicates are
// discarded, not merged or updated.
func (g *Gate) PersistIfNew(ctx context.Context, t *domain.Trend) (bool, error) {
	existing, err := g.Store.FindTrend(ctx, t.Keyword, t.Platform, t.NicheID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		g.log().Debug("gate: duplicate discarded", "keyword", t.Keyword, "platform", t.Platform, "niche", t.NicheID)
		return false, nil
	}
	if err := g.Store.InsertTrend(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

// PersistBatch applies the per-item check in sequence inside one storage
// batch, committing at the end. A storage failure aborts the remaining
// items; the returned count reflects items inserted before the failure,
// none of which are committed when the batch rolls back.
func (g *Gate) PersistBatch(ctx context.Context, trends []domain.Trend) (int, error) {
	inserted := 0
	err := g.Store.Batch(ctx, func(st store.Store) error {
		batchGate := &Gate{Store: st, Log: g.Log}
		for i := range trends {
			ok, err := batchGate.PersistIfNew(ctx, &trends[i])
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (g *Gate) log() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.Default()
}
