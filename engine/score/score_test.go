package score

import "testing"

func TestGrowthScoreZero(t *testing.T) {
	if got := GrowthScore(0); got != 0 {
		t.Fatalf("expected 0 for zero engagement, got %v", got)
	}
}

func TestGrowthScoreFloor(t *testing.T) {
	// 500 likes works out to exactly 1 before the floor kicks in.
	if got := GrowthScore(500); got != 5.0 {
		t.Fatalf("expected floored score 5.0, got %v", got)
	}
	if got := GrowthScore(3); got != 5.0 {
		t.Fatalf("expected floored score 5.0 for tiny count, got %v", got)
	}
}

func TestGrowthScoreClamp(t *testing.T) {
	if got := GrowthScore(50000); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
	if got := GrowthScore(1 << 40); got != 100 {
		t.Fatalf("expected clamp at 100 for huge count, got %v", got)
	}
}

func TestGrowthScoreLinearRegion(t *testing.T) {
	if got := GrowthScore(45000); got != 90.0 {
		t.Fatalf("expected 90.0, got %v", got)
	}
	if got := GrowthScore(1000); got != 2.0 {
		t.Fatalf("expected 2.0, got %v", got)
	}
}

func TestGrowthScoreBounds(t *testing.T) {
	counts := []int64{0, 1, 7, 499, 500, 501, 40000, 50000, 1 << 32}
	for _, c := range counts {
		s := GrowthScore(c)
		if s < 0 || s > 100 {
			t.Errorf("score out of bounds for count %d: %v", c, s)
		}
	}
}

func TestGrowthScoreDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if GrowthScore(12345) != GrowthScore(12345) {
			t.Fatal("score must be deterministic")
		}
	}
}

func TestIsViral(t *testing.T) {
	if IsViral(80) {
		t.Error("80 is not viral; threshold is strict")
	}
	if !IsViral(80.5) {
		t.Error("80.5 should be viral")
	}
	if IsViral(0) {
		t.Error("0 should not be viral")
	}
	if !IsViral(100) {
		t.Error("100 should be viral")
	}
}
