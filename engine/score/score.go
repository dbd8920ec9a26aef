// Package score computes the bounded growth score for raw engagement counts.
// All functions are pure; callers own any state.
package score

const (
	// divisor calibrates raw like-counts onto the 0..100 scale.
	divisor = 500.0
	// maxScore is the upper clamp.
	maxScore = 100.0
	// minVisible is the display floor for trends with any engagement at all.
	// Without it a handful of likes renders as 0 and is indistinguishable
	// from no engagement.
	minVisible = 5.0
	// ViralThreshold classifies a trend as viral when exceeded.
	ViralThreshold = 80.0
)

// GrowthScore maps a raw engagement count to a score in [0, 100].
// Zero engagement scores exactly 0; counts that would score at or below 1
// are floored to minVisible.
func GrowthScore(rawCount int64) float64 {
	if rawCount <= 0 {
		return 0
	}
	s := float64(rawCount) / divisor
	if s > maxScore {
		return maxScore
	}
	if s <= 1 {
		return minVisible
	}
	return s
}

// IsViral reports whether a growth score crosses the viral threshold.
func IsViral(growthScore float64) bool {
	return growthScore > ViralThreshold
}
