package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trendzhq/trendz/pkg/fn"
)

var errBoom = errors.New("boom")

func failing(context.Context) error { return errBoom }
func succeeding(context.Context) error { return nil }

func newTestBreaker(threshold int, timeout time.Duration) (*Breaker, *time.Time) {
	b := NewBreaker(BreakerOpts{FailThreshold: threshold, Timeout: timeout, HalfOpenMax: 1})
	now := time.Now()
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Call(ctx, failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open after threshold, got %s", b.State())
	}
	if err := b.Call(ctx, succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	b.Call(ctx, failing)
	if b.State() != StateOpen {
		t.Fatal("expected open")
	}

	*now = now.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatal("expected half-open after timeout")
	}
	if err := b.Call(ctx, succeeding); err != nil {
		t.Fatalf("probe should pass: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	b.Call(ctx, failing)
	*now = now.Add(2 * time.Minute)
	b.Call(ctx, failing) // probe fails
	if b.State() != StateOpen {
		t.Fatalf("expected reopen after failed probe, got %s", b.State())
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	b.Call(ctx, failing)
	b.Call(ctx, failing)
	b.Call(ctx, succeeding)
	b.Call(ctx, failing)
	b.Call(ctx, failing)
	if b.State() != StateClosed {
		t.Fatalf("non-consecutive failures should not trip, got %s", b.State())
	}
}

func TestCallResult(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	r := CallResult(b, ctx, func(context.Context) fn.Result[int] { return fn.Err[int](errBoom) })
	if r.IsOk() {
		t.Fatal("expected error result")
	}
	r = CallResult(b, ctx, func(context.Context) fn.Result[int] { return fn.Ok(7) })
	if _, err := r.Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen while tripped, got %v", err)
	}
}
