// Package analyze produces the short human-readable assessments shown next
// to trends and competitors. Pure functions: no analyzer state survives a
// call.
package analyze

import (
	"fmt"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/score"
)

// model names the heuristic in user-facing output.
const model = "Trendz-ML-v1"

// Trend returns the assessment line for a trend.
func Trend(t domain.Trend) string {
	if score.IsViral(t.GrowthScore) {
		return fmt.Sprintf("%s: keyword %q shows high viral potential on %s", model, t.Keyword, t.Platform)
	}
	return fmt.Sprintf("%s: keyword %q shows steady growth", model, t.Keyword)
}

// Competitor returns the strategy recommendation for a watched account.
func Competitor(c domain.Competitor) string {
	return fmt.Sprintf("Strategy for @%s: replicate the content hooks currently gaining traction in your niche", c.Handle)
}
