package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/trendzhq/trendz/engine/domain"
	"github.com/trendzhq/trendz/engine/store"
	"github.com/trendzhq/trendz/pkg/natsutil"
)

const (
	// viralAlertThreshold triggers the "Viral Alert" rule.
	viralAlertThreshold = 90.0
	// trendingSoundThreshold triggers the "Trending Sound" rule when a
	// sound is attached.
	trendingSoundThreshold = 80.0

	// NotifySubject is the NATS subject notifications are handed off to.
	NotifySubject = "trendz.notify"
)

// Notifier evaluates threshold rules and persists the resulting alerts.
// Delivery past the store (and the optional NATS handoff) is someone
// else's job.
type Notifier struct {
	Store store.Store
	// NC, when set, receives a copy of each persisted notification.
	NC  *nats.Conn
	Log *slog.Logger
}

// Evaluate runs both alert rules against t for userID and returns the
// notifications that were emitted. The rules fire independently, so one
// trend can produce zero, one, or two alerts. Persistence failures are
// logged and skipped: notifications are best-effort and never abort
// ingestion.
func (n *Notifier) Evaluate(ctx context.Context, t domain.Trend, userID int) []domain.Notification {
	var messages []string
	if t.GrowthScore >= viralAlertThreshold {
		messages = append(messages, fmt.Sprintf("[Viral Alert] %q is taking off on %s (score %.0f)", t.Keyword, t.Platform, t.GrowthScore))
	}
	if t.SoundName != "" && t.GrowthScore > trendingSoundThreshold {
		messages = append(messages, fmt.Sprintf("[Trending Sound] %q is trending with %q", t.SoundName, t.Keyword))
	}

	var emitted []domain.Notification
	for _, msg := range messages {
		notif := domain.Notification{
			UserID:    userID,
			Message:   msg,
			CreatedAt: time.Now(),
		}
		if err := n.Store.InsertNotification(ctx, &notif); err != nil {
			n.log().Warn("notify: persist failed", "error", err, "message", msg)
			continue
		}
		emitted = append(emitted, notif)

		if n.NC != nil {
			if err := natsutil.Publish(ctx, n.NC, NotifySubject, notif); err != nil {
				n.log().Warn("notify: handoff publish failed", "error", err)
			}
		}
	}
	return emitted
}

func (n *Notifier) log() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}
