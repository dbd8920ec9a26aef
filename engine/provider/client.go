// Package provider implements the adapter for the external scraping
// provider: the two-phase actor-run / dataset-items contract for hashtag
// scrapes and the synchronous profile endpoint for competitor videos.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/pkg/fn"
)

const (
	// DefaultBaseURL is the provider API root.
	DefaultBaseURL = "https://api.apify.com/v2"
	// DefaultActorID is the hashtag scraper actor.
	DefaultActorID = "clockworks~tiktok-scraper"
	// waitCeiling is the provider's synchronous wait bound in seconds for
	// an actor run. Runs still pending after this surface as incomplete
	// envelopes, which the dataset-id probe turns into an UpstreamError.
	waitCeiling = 120
	// memoryBudgetMB caps actor memory so runs stay inside plan limits.
	memoryBudgetMB = 512
)

// Opts configures a Client.
type Opts struct {
	BaseURL string
	Token   string
	ActorID string
	// RequestsPerSec bounds outbound call rate; 0 means one per second.
	RequestsPerSec float64
}

// Client talks to the scraping provider. It performs no retries: a
// non-success response is returned as *domain.UpstreamError and retry
// policy stays with the caller.
type Client struct {
	baseURL string
	token   string
	actorID string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a provider client.
func NewClient(opts Opts) *Client {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	actor := opts.ActorID
	if actor == "" {
		actor = DefaultActorID
	}
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL: base,
		token:   opts.Token,
		actorID: actor,
		http: &http.Client{
			// The run call can block for the provider's full wait
			// ceiling before responding.
			Timeout:   (waitCeiling + 30) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// runInput is the actor-run request body for hashtag scrapes.
type runInput struct {
	Hashtags       []string `json:"hashtags"`
	ResultsPerPage int      `json:"resultsPerPage"`
	MemoryMbytes   int      `json:"memoryMbytes"`
}

// profileInput is the request body for the synchronous profile endpoint.
type profileInput struct {
	Profiles       []string `json:"profiles"`
	ResultsPerPage int      `json:"resultsPerPage"`
}

// FetchTrendBatch runs a hashtag scrape for topic and returns the dataset
// items. Phase one submits the actor run and waits up to the provider's
// ceiling; phase two pulls items from the run's default dataset.
func (c *Client) FetchTrendBatch(ctx context.Context, topic string, limit int) ([]Payload, error) {
	if limit <= 0 {
		limit = 5
	}
	runURL := fmt.Sprintf("%s/acts/%s/runs?token=%s&waitForFinish=%d",
		c.baseURL, c.actorID, c.token, waitCeiling)

	envelope, err := c.postJSON(ctx, "run actor", runURL, runInput{
		Hashtags:       []string{topic},
		ResultsPerPage: limit,
		MemoryMbytes:   memoryBudgetMB,
	})
	if err != nil {
		return nil, err
	}

	datasetID := datasetIDFromEnvelope(envelope)
	if datasetID == "" {
		return nil, &domain.UpstreamError{Op: "run actor", Body: "dataset id missing"}
	}

	itemsURL := fmt.Sprintf("%s/datasets/%s/items?token=%s", c.baseURL, datasetID, c.token)
	return c.getItems(ctx, "fetch dataset", itemsURL)
}

// ProfileVideo is one video collected from a competitor profile.
type ProfileVideo struct {
	URL            string
	EngagementRate float64
}

// FetchProfileVideos fetches recent videos for one handle through the
// synchronous run endpoint, which returns dataset items directly instead
// of the two-phase pattern.
func (c *Client) FetchProfileVideos(ctx context.Context, handle string, limit int) ([]ProfileVideo, error) {
	if limit <= 0 {
		limit = 3
	}
	syncURL := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, c.actorID, c.token)

	body, err := json.Marshal(profileInput{Profiles: []string{handle}, ResultsPerPage: limit})
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, "fetch profiles", http.MethodPost, syncURL, body)
	if err != nil {
		return nil, err
	}

	var items []Payload
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &domain.UpstreamError{Op: "fetch profiles", Body: "malformed items: " + err.Error()}
	}

	videos := fn.FilterMap(items, func(p Payload) (ProfileVideo, bool) {
		url, ok := p.String(FieldVideoURL)
		if !ok {
			return ProfileVideo{}, false
		}
		return ProfileVideo{URL: url, EngagementRate: engagementRate(p)}, true
	})
	return fn.UniqueBy(videos, func(v ProfileVideo) string { return v.URL }), nil
}

// engagementRate derives likes-per-play as a percentage; 0 when the item
// carries no play count.
func engagementRate(p Payload) float64 {
	likes := p.Int(FieldEngagement)
	plays := p.Int(FieldPlays)
	if likes <= 0 || plays <= 0 {
		return 0
	}
	r := float64(likes) / float64(plays) * 100
	if r > 100 {
		r = 100
	}
	return r
}

// datasetIDFromEnvelope probes data.defaultDatasetId in the run envelope.
func datasetIDFromEnvelope(envelope Payload) string {
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := data["defaultDatasetId"].(string)
	return id
}

func (c *Client) postJSON(ctx context.Context, op, url string, input any) (Payload, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, op, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	var envelope Payload
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &domain.UpstreamError{Op: op, Body: "malformed envelope: " + err.Error()}
	}
	return envelope, nil
}

func (c *Client) getItems(ctx context.Context, op, url string) ([]Payload, error) {
	raw, err := c.do(ctx, op, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var items []Payload
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &domain.UpstreamError{Op: op, Body: "malformed items: " + err.Error()}
	}
	return items, nil
}

// do issues one rate-limited request and returns the response body, or an
// UpstreamError carrying the raw body on a non-2xx status.
func (c *Client) do(ctx context.Context, op, method, url string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{Op: op, Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
