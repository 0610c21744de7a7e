package xsearch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// retryPolicy wraps a single fallible fetch with bounded exponential
// backoff. The wait suspends only the calling goroutine and honors context
// cancellation, so sibling paginators keep making progress.
type retryPolicy struct {
	// retries is the number of retries after the initial attempt.
	retries int

	// delay computes the wait before retry number attempt+1.
	delay func(attempt int) time.Duration

	log *slog.Logger
}

func newRetryPolicy(retries int, log *slog.Logger) retryPolicy {
	return retryPolicy{retries: retries, delay: backoffDelay, log: log}
}

// backoffDelay is 2^attempt seconds plus up to one second of jitter.
func backoffDelay(attempt int) time.Duration {
	return time.Duration((math.Pow(2, float64(attempt)) + rand.Float64()) * float64(time.Second))
}

// do runs fn up to retries+1 times.
//
// A response carrying application-level errors is a soft empty page: the
// endpoint rejected the query but answered successfully, so do returns an
// empty Page and the paginator terminates naturally. A response with fewer
// than two distinct entry ids is a degenerate page the endpoint sometimes
// produces; it is retried immediately with no delay. Authorization and
// not-found failures propagate at once, bypassing retry.
func (p retryPolicy) do(ctx context.Context, fn func() (*Page, error)) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		page, err := fn()
		if err == nil {
			if len(page.APIErrors) > 0 {
				for _, msg := range page.APIErrors {
					p.log.Warn("search rejected by endpoint", slog.String("message", msg))
				}
				return &Page{}, nil
			}
			if distinct(page.EntryIDs) >= 2 {
				return page, nil
			}
			lastErr = fmt.Errorf("degenerate page: %d entries", len(page.EntryIDs))
			continue
		}

		if fatal(err) {
			return nil, err
		}
		lastErr = err
		if attempt == p.retries {
			break
		}

		wait := p.delay(attempt)
		retriesTotal.Inc()
		retryBackoffSeconds.Observe(wait.Seconds())
		p.log.Debug("retrying after backoff", slog.Duration("wait", wait), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", p.retries+1, lastErr)
}

// distinct counts unique ids.
func distinct(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
