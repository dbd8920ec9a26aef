package analyze

import (
	"strings"
	"testing"

	"github.com/trendzhq/trendz/engine/domain"
)

func TestTrendViral(t *testing.T) {
	got := Trend(domain.Trend{Keyword: "glass skin", Platform: domain.PlatformTikTok, GrowthScore: 92})
	if !strings.Contains(got, "viral") || !strings.Contains(got, `"glass skin"`) {
		t.Fatalf("unexpected assessment: %q", got)
	}
}

func TestTrendSteady(t *testing.T) {
	got := Trend(domain.Trend{Keyword: "retinol", GrowthScore: 40})
	if !strings.Contains(got, "steady growth") {
		t.Fatalf("unexpected assessment: %q", got)
	}
}

func TestCompetitor(t *testing.T) {
	got := Competitor(domain.Competitor{Handle: "glowwithsasha"})
	if !strings.Contains(got, "@glowwithsasha") {
		t.Fatalf("unexpected recommendation: %q", got)
	}
}
