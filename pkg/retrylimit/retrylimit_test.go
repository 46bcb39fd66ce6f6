package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func testConfig(slept *[]time.Duration) Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 4
	cfg.Jitter = false
	cfg.InitialDelay = 100 * time.Millisecond
	cfg.MaxDelay = 300 * time.Millisecond
	cfg.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return cfg
}

func TestDoRetriesWithBackoff(t *testing.T) {
	var slept []time.Duration
	calls := 0
	err := Do(context.Background(), nil, testConfig(&slept), func(context.Context) error {
		calls++
		if calls < 4 {
			return &StatusError{Code: http.StatusBadGateway, URL: "u"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("slept = %v", slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestDoStopsOnClientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"bad request", &StatusError{Code: http.StatusBadRequest}},
		{"permanent", &Permanent{Err: errors.New("bad input")}},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var slept []time.Duration
			calls := 0
			err := Do(context.Background(), nil, testConfig(&slept), func(context.Context) error {
				calls++
				return tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v", err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	cause := errors.New("connection reset")
	err := Do(context.Background(), nil, testConfig(&slept), func(context.Context) error { return cause })
	if !errors.Is(err, ErrAttemptsExhausted) || !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
	if len(slept) != 3 {
		t.Errorf("slept %d times, want 3", len(slept))
	}
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 2, 0.5)
	clock := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return clock }

	lim.Overloaded()
	lim.Overloaded()
	lim.Overloaded()
	if got := lim.Limit(); got != 1 {
		t.Errorf("after overloads = %v, want floor 1", got)
	}

	lim.Success()
	if got := lim.Limit(); got != 1 {
		t.Errorf("raised within the quiet period: %v", got)
	}

	clock = clock.Add(11 * time.Second)
	for range 10 {
		lim.Success()
	}
	if got := lim.Limit(); got != 8 {
		t.Errorf("after successes = %v, want ceiling 8", got)
	}
}

func TestOverloadCutsLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 8, 1, 0.5)
	var slept []time.Duration
	cfg := testConfig(&slept)
	cfg.MaxAttempts = 2

	_ = Do(context.Background(), lim, cfg, func(context.Context) error {
		return &StatusError{Code: http.StatusTooManyRequests}
	})
	if got := lim.Limit(); got != 2 {
		t.Errorf("limit = %v, want 2 after two 429s", got)
	}
}
