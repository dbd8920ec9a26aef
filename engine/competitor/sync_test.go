package competitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/provider"
	"github.com/trendzhq/trendz/engine/store"
)

// fakeVideoSource serves canned videos per handle and fails on demand.
type fakeVideoSource struct {
	mu      sync.Mutex
	videos  map[string][]provider.ProfileVideo
	failing map[string]bool
	handles []string
}

func (f *fakeVideoSource) FetchProfileVideos(_ context.Context, handle string, _ int) ([]provider.ProfileVideo, error) {
	f.mu.Lock()
	f.handles = append(f.handles, handle)
	f.mu.Unlock()
	if f.failing[handle] {
		return nil, &domain.UpstreamError{Op: "fetch profiles", Status: 500, Body: "actor crashed"}
	}
	return f.videos[handle], nil
}

func seedCompetitors(t *testing.T, st *store.Memory, userID int, handles ...string) []domain.Competitor {
	t.Helper()
	out := make([]domain.Competitor, len(handles))
	for i, h := range handles {
		c := domain.Competitor{UserID: userID, Handle: h}
		if err := st.AddCompetitor(context.Background(), &c); err != nil {
			t.Fatalf("seed: %v", err)
		}
		out[i] = c
	}
	return out
}

func vids(handle string, n int) []provider.ProfileVideo {
	out := make([]provider.ProfileVideo, n)
	for i := range out {
		out[i] = provider.ProfileVideo{URL: fmt.Sprintf("https://t/%s/%d", handle, i), EngagementRate: 5}
	}
	return out
}

func newSyncer(src VideoSource, st store.Store) *Syncer {
	return &Syncer{Source: src, Store: st, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSyncPartialFailure(t *testing.T) {
	st := store.NewMemory()
	seedCompetitors(t, st, 1, "alpha", "beta", "gamma")
	src := &fakeVideoSource{
		videos: map[string][]provider.ProfileVideo{
			"alpha": vids("alpha", 3),
			"gamma": vids("gamma", 2),
		},
		failing: map[string]bool{"beta": true},
	}

	report, err := newSyncer(src, st).Sync(context.Background(), 1)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.CompetitorsProcessed != 3 {
		t.Errorf("processed: got %d", report.CompetitorsProcessed)
	}
	if report.FetchFailures != 1 {
		t.Errorf("failures: got %d", report.FetchFailures)
	}
	if report.VideosFound != 5 || report.VideosInserted != 5 {
		t.Errorf("videos: %+v", report)
	}
}

func TestSyncResumeSkipsKnownURLs(t *testing.T) {
	st := store.NewMemory()
	seedCompetitors(t, st, 1, "alpha")
	src := &fakeVideoSource{videos: map[string][]provider.ProfileVideo{"alpha": vids("alpha", 3)}}
	s := newSyncer(src, st)
	ctx := context.Background()

	first, err := s.Sync(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first.VideosInserted != 3 {
		t.Fatalf("first run inserted %d", first.VideosInserted)
	}

	second, err := s.Sync(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.VideosFound != 3 || second.VideosInserted != 0 {
		t.Errorf("second run should find but not insert: %+v", second)
	}
}

func TestSyncSkipsEmptyHandle(t *testing.T) {
	st := store.NewMemory()
	seedCompetitors(t, st, 1, "  @  ", "alpha")
	src := &fakeVideoSource{videos: map[string][]provider.ProfileVideo{"alpha": vids("alpha", 1)}}

	report, err := newSyncer(src, st).Sync(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if report.CompetitorsProcessed != 2 {
		t.Errorf("processed: got %d", report.CompetitorsProcessed)
	}
	if report.FetchFailures != 0 {
		t.Errorf("a skipped handle is not a fetch failure: %+v", report)
	}
	if len(src.handles) != 1 || src.handles[0] != "alpha" {
		t.Errorf("only the real handle should be fetched, got %v", src.handles)
	}
}

func TestSyncOnlyOwnWatchlist(t *testing.T) {
	st := store.NewMemory()
	seedCompetitors(t, st, 1, "mine")
	seedCompetitors(t, st, 2, "theirs")
	src := &fakeVideoSource{videos: map[string][]provider.ProfileVideo{
		"mine":   vids("mine", 1),
		"theirs": vids("theirs", 1),
	}}

	report, err := newSyncer(src, st).Sync(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if report.CompetitorsProcessed != 1 {
		t.Errorf("processed: got %d", report.CompetitorsProcessed)
	}
	if len(src.handles) != 1 || src.handles[0] != "mine" {
		t.Errorf("fetched wrong handles: %v", src.handles)
	}
}

func TestNormalizeHandle(t *testing.T) {
	cases := map[string]string{
		"@glowwithsasha":  "glowwithsasha",
		" glowwithsasha ": "glowwithsasha",
		"@ spaced ":       "spaced",
		"plain":           "plain",
		"@":               "",
		"   ":             "",
	}
	for in, want := range cases {
		if got := NormalizeHandle(in); got != want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", in, got, want)
		}
	}
}
