package xsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recordingPolicy returns a policy whose waits are instant but recorded.
func recordingPolicy(retries int, delays *[]time.Duration) retryPolicy {
	return retryPolicy{
		retries: retries,
		delay: func(attempt int) time.Duration {
			d := backoffDelay(attempt)
			*delays = append(*delays, d)
			return time.Microsecond
		},
		log: testLogger(),
	}
}

func conclusivePage(cursor string) *Page {
	return &Page{
		Entries:  []Entry{{EntryID: "tweet-1"}, {EntryID: "tweet-2"}, {EntryID: "tweet-3"}},
		EntryIDs: []string{"tweet-1", "tweet-2", "tweet-3", "cursor-top-1", "cursor-bottom-1"},
		Cursor:   cursor,
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	page, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		if calls <= 2 {
			return nil, &StatusError{Code: 500, Body: "oops"}
		}
		return conclusivePage("c1"), nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, "c1", page.Cursor)

	// Exactly one delay per failed attempt, strictly increasing within
	// jitter bounds: 2^i <= delay < 2^i + 1s.
	require.Len(t, delays, 2)
	for i, d := range delays {
		low := time.Duration(1<<i) * time.Second
		require.GreaterOrEqual(t, d, low, "delay %d", i)
		require.Less(t, d, low+time.Second, "delay %d", i)
	}
	require.Greater(t, delays[1], delays[0])
}

func TestRetryUnauthorizedBypassesRetry(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	_, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		return nil, fmt.Errorf("%w (HTTP 401)", ErrUnauthorized)
	})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, calls)
	require.Empty(t, delays)
}

func TestRetryNotFoundBypassesRetry(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	_, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		return nil, fmt.Errorf("%w (HTTP 404)", ErrNotFound)
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, calls)
	require.Empty(t, delays)
}

func TestRetrySoftEmptyPage(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(3, &delays)

	calls := 0
	page, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		return &Page{APIErrors: []string{"query rejected"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Empty(t, delays)
	require.Empty(t, page.Entries)
	require.Empty(t, page.Cursor)
}

func TestRetryDegeneratePageRetriesWithoutDelay(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(2, &delays)

	calls := 0
	_, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		return &Page{EntryIDs: []string{"tweet-1"}}, nil
	})
	require.Error(t, err)
	require.False(t, fatal(err))
	require.Equal(t, 3, calls)
	require.Empty(t, delays)
}

func TestRetryExhaustedPropagatesLastError(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(2, &delays)

	calls := 0
	_, err := p.do(context.Background(), func() (*Page, error) {
		calls++
		return nil, &StatusError{Code: 503, Body: "unavailable"}
	})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 503, statusErr.Code)
	require.Equal(t, 3, calls)
	require.Len(t, delays, 2)
}

func TestRetryCancelledDuringBackoff(t *testing.T) {
	p := retryPolicy{
		retries: 3,
		delay:   func(int) time.Duration { return time.Hour },
		log:     testLogger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.do(ctx, func() (*Page, error) {
		return nil, &StatusError{Code: 500, Body: "oops"}
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDelayBounds(t *testing.T) {
	for attempt := 0; attempt < 4; attempt++ {
		d := backoffDelay(attempt)
		low := time.Duration(1<<attempt) * time.Second
		if d < low || d >= low+time.Second {
			t.Fatalf("attempt %d: delay %v outside [%v, %v)", attempt, d, low, low+time.Second)
		}
	}
}

func TestFatal(t *testing.T) {
	if !fatal(fmt.Errorf("wrap: %w", ErrUnauthorized)) {
		t.Fatal("wrapped ErrUnauthorized should be fatal")
	}
	if !fatal(ErrNotFound) {
		t.Fatal("ErrNotFound should be fatal")
	}
	if fatal(&StatusError{Code: 500}) {
		t.Fatal("StatusError should not be fatal")
	}
	if fatal(errors.New("boom")) {
		t.Fatal("generic error should not be fatal")
	}
}
