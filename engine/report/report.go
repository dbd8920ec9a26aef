// Package report builds market summary reports from store counts.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/store"
)

// MarketReport is a point-in-time summary of the trend store.
type MarketReport struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Scope       string         `json:"scope"`
	Stats       map[string]int `json:"stats"`
}

// Build summarizes the whole store.
func Build(ctx context.Context, st store.Store) (MarketReport, error) {
	stats, err := st.MarketStats(ctx)
	if err != nil {
		return MarketReport{}, err
	}
	return newReport("all", stats), nil
}

// BuildForNiche summarizes one niche.
func BuildForNiche(ctx context.Context, st store.Store, nicheID int) (MarketReport, error) {
	stats, err := st.MarketStatsByNiche(ctx, nicheID)
	if err != nil {
		return MarketReport{}, err
	}
	scope := fmt.Sprintf("niche %d", nicheID)
	if n, ok := domain.NicheByID(nicheID); ok {
		scope = n.Name
	}
	return newReport(scope, stats), nil
}

func newReport(scope string, stats map[string]int) MarketReport {
	return MarketReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Scope:       scope,
		Stats:       stats,
	}
}

// Render returns the report as plain text, one stat per line in stable
// order. Export to richer formats lives with the caller.
func (r MarketReport) Render() string {
	keys := make([]string, 0, len(r.Stats))
	for k := range r.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Market report %s (%s), generated %s\n", r.ID, r.Scope, r.GeneratedAt.Format(time.RFC3339))
	for _, k := range keys {
		fmt.Fprintf(&b, "%-12s %d\n", k, r.Stats[k])
	}
	return b.String()
}
