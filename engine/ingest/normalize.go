package ingest

import (
	"time"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/provider"
	"github.com/trendzhq/trendz/engine/score"
)

const (
	// maxKeywordLen bounds the stored keyword; longer text is cut and
	// marked with an ellipsis.
	maxKeywordLen = 200
	ellipsis      = "..."
)

// Normalize maps one raw dataset item to a canonical Trend. It never fails:
// missing fields degrade to placeholders and zero scores rather than errors.
// DiscoveredAt is the normalization time, not the provider's timestamp;
// discovery is local to the ingestion run.
func Normalize(p provider.Payload, nicheID int, platform string) domain.Trend {
	text, ok := p.String(provider.FieldText)
	if !ok {
		text = platform + " Trend"
	}

	s := score.GrowthScore(p.Int(provider.FieldEngagement))
	t := domain.Trend{
		Keyword:      truncate(text),
		Platform:     platform,
		NicheID:      nicheID,
		GrowthScore:  s,
		IsViral:      score.IsViral(s),
		DiscoveredAt: time.Now(),
		TrendType:    domain.TrendTypeHashtag,
	}

	if name, ok := p.String(provider.FieldSoundName); ok {
		t.SoundName = name
	}
	if url, ok := p.String(provider.FieldSoundURL); ok {
		t.SoundURL = url
	}
	return t
}

// truncate cuts text to maxKeywordLen runes, ellipsis included.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxKeywordLen {
		return text
	}
	return string(runes[:maxKeywordLen-len(ellipsis)]) + ellipsis
}
