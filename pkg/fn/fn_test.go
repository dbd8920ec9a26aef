package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestResultOkErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok should be ok")
	}
	if v, err := r.Unwrap(); v != 42 || err != nil {
		t.Fatal("wrong unwrap")
	}

	e := Err[int](errors.New("fail"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("Err should be err")
	}
	if e.UnwrapOr(9) != 9 {
		t.Fatal("UnwrapOr should return fallback")
	}
}

func TestFromPair(t *testing.T) {
	if FromPair(1, nil).IsErr() {
		t.Fatal("nil error should be ok")
	}
	if FromPair(0, errors.New("x")).IsOk() {
		t.Fatal("non-nil error should be err")
	}
}

func TestCollect(t *testing.T) {
	all := []Result[int]{Ok(1), Ok(2), Ok(3)}
	vals, err := Collect(all).Unwrap()
	if err != nil || len(vals) != 3 {
		t.Fatalf("expected 3 values, got %v %v", vals, err)
	}

	mixed := []Result[int]{Ok(1), Err[int](errors.New("boom")), Ok(3)}
	if Collect(mixed).IsOk() {
		t.Fatal("expected first error to surface")
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond},
		func(context.Context) Result[string] {
			attempts++
			if attempts < 3 {
				return Errf[string]("attempt %d", attempts)
			}
			return Ok("done")
		})
	if v, _ := r.Unwrap(); v != "done" || attempts != 3 {
		t.Fatalf("expected success on attempt 3, got %q after %d", v, attempts)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Retry(ctx, RetryOpts{MaxAttempts: 5, InitialWait: time.Minute},
		func(context.Context) Result[int] { return Errf[int]("nope") })
	_, err := r.Unwrap()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParMapPreservesOrder(t *testing.T) {
	in := []int{5, 4, 3, 2, 1}
	out := ParMap(in, 2, func(v int) string { return strconv.Itoa(v * 10) })
	want := []string{"50", "40", "30", "20", "10"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("order not preserved: %v", out)
		}
	}
}

func TestParMapBoundsConcurrency(t *testing.T) {
	var active, peak int32
	in := make([]int, 20)
	ParMap(in, 3, func(int) int {
		cur := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return 0
	})
	if peak > 3 {
		t.Fatalf("concurrency exceeded bound: %d", peak)
	}
}

func TestParMapResultCollect(t *testing.T) {
	in := []int{1, 2, 3}
	results := ParMapResult(in, 2, func(v int) Result[int] {
		if v == 2 {
			return Errf[int]("bad item %d", v)
		}
		return Ok(v * 10)
	})
	if Collect(results).IsOk() {
		t.Fatal("expected the failed item to surface through Collect")
	}
	ok := Filter(results, Result[int].IsOk)
	if len(ok) != 2 {
		t.Fatalf("expected 2 ok results, got %d", len(ok))
	}
}

func TestThenShortCircuits(t *testing.T) {
	calls := 0
	first := func(_ context.Context, s string) Result[int] { return Errf[int]("bad input %q", s) }
	second := func(_ context.Context, n int) Result[int] { calls++; return Ok(n) }
	r := Then(first, second)(context.Background(), "x")
	if r.IsOk() || calls != 0 {
		t.Fatal("second stage should not run after error")
	}
}

func TestMapAndTapStages(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	var seen int
	tap := TapStage(func(_ context.Context, n int) { seen = n })

	r := Then(double, tap)(context.Background(), 21)
	if v, _ := r.Unwrap(); v != 42 || seen != 42 {
		t.Fatalf("expected 42 through both stages, got %d (seen %d)", v, seen)
	}
}

func TestSliceHelpers(t *testing.T) {
	nums := []int{1, 2, 3, 4}
	if got := Map(nums, func(n int) int { return n + 1 }); got[3] != 5 {
		t.Fatalf("Map: %v", got)
	}
	if got := Filter(nums, func(n int) bool { return n%2 == 0 }); len(got) != 2 {
		t.Fatalf("Filter: %v", got)
	}
	got := FilterMap(nums, func(n int) (int, bool) { return n * 10, n > 2 })
	if len(got) != 2 || got[0] != 30 {
		t.Fatalf("FilterMap: %v", got)
	}
	dups := []string{"a", "b", "a", "c", "b"}
	if got := UniqueBy(dups, func(s string) string { return s }); len(got) != 3 {
		t.Fatalf("UniqueBy: %v", got)
	}
}
