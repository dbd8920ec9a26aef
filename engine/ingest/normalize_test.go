package ingest

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/provider"
)

func payload(t *testing.T, raw string) provider.Payload {
	t.Helper()
	var p provider.Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestNormalizeBasics(t *testing.T) {
	p := payload(t, `{"text": "dance trend", "stats": {"diggCount": 45000}}`)
	tr := Normalize(p, 1, domain.PlatformTikTok)

	if tr.Keyword != "dance trend" {
		t.Errorf("keyword: got %q", tr.Keyword)
	}
	if tr.GrowthScore != 90.0 {
		t.Errorf("score: got %v", tr.GrowthScore)
	}
	if !tr.IsViral {
		t.Error("expected viral at score 90")
	}
	if tr.NicheID != 1 || tr.Platform != domain.PlatformTikTok {
		t.Errorf("identity fields wrong: %+v", tr)
	}
	if tr.TrendType != domain.TrendTypeHashtag {
		t.Errorf("trend type: got %q", tr.TrendType)
	}
	if time.Since(tr.DiscoveredAt) > time.Minute {
		t.Error("DiscoveredAt should be normalization time")
	}
}

func TestNormalizeEquivalentShapes(t *testing.T) {
	shapes := []string{
		`{"text": "x", "diggCount": 45000}`,
		`{"text": "x", "stats": {"diggCount": 45000}}`,
		`{"text": "x", "statistics": {"diggCount": 45000}}`,
	}
	for _, raw := range shapes {
		tr := Normalize(payload(t, raw), 1, domain.PlatformTikTok)
		if tr.GrowthScore != 90.0 {
			t.Errorf("shape %s: score %v", raw, tr.GrowthScore)
		}
	}
}

func TestNormalizeMissingTextPlaceholder(t *testing.T) {
	p := payload(t, `{"stats": {"diggCount": 100}}`)
	tr := Normalize(p, 2, domain.PlatformTikTok)
	if tr.Keyword != "TikTok Trend" {
		t.Errorf("expected placeholder, got %q", tr.Keyword)
	}
}

func TestNormalizeDegradedItem(t *testing.T) {
	// An item with none of the candidate fields still yields a Trend.
	tr := Normalize(payload(t, `{"unrelated": true}`), 1, domain.PlatformInstagram)
	if tr.Keyword != "Instagram Trend" || tr.GrowthScore != 0 || tr.IsViral {
		t.Errorf("degraded item not normalized safely: %+v", tr)
	}
}

func TestNormalizeTruncatesLongKeyword(t *testing.T) {
	long := strings.Repeat("a", 250)
	tr := Normalize(provider.Payload{"text": long}, 1, domain.PlatformTikTok)
	if len(tr.Keyword) > 200 {
		t.Errorf("keyword too long: %d", len(tr.Keyword))
	}
	if !strings.HasSuffix(tr.Keyword, "...") {
		t.Error("expected ellipsis suffix")
	}

	short := strings.Repeat("b", 50)
	tr = Normalize(provider.Payload{"text": short}, 1, domain.PlatformTikTok)
	if tr.Keyword != short {
		t.Error("short keyword should be unchanged")
	}
}

func TestNormalizeSoundShapes(t *testing.T) {
	withMeta := payload(t, `{"text": "x", "musicMeta": {"musicName": "Song A", "playUrl": "https://s/a"}}`)
	tr := Normalize(withMeta, 1, domain.PlatformTikTok)
	if tr.SoundName != "Song A" || tr.SoundURL != "https://s/a" {
		t.Errorf("musicMeta shape: %+v", tr)
	}

	withMusic := payload(t, `{"text": "x", "music": {"title": "Song B", "playUrl": "https://s/b"}}`)
	tr = Normalize(withMusic, 1, domain.PlatformTikTok)
	if tr.SoundName != "Song B" {
		t.Errorf("music shape: %+v", tr)
	}

	without := payload(t, `{"text": "x"}`)
	tr = Normalize(without, 1, domain.PlatformTikTok)
	if tr.SoundName != "" || tr.SoundURL != "" {
		t.Errorf("expected empty sound fields: %+v", tr)
	}
}
