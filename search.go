package xsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run crawls all queries concurrently, one paginator per query, and returns
// one CrawlResult per input query in input order regardless of completion
// order. limit caps the distinct result ids accumulated per query; zero or
// negative means unbounded, in which case a query only terminates when the
// endpoint signals natural completion.
//
// A failing query does not cancel its siblings: every paginator runs to its
// own completion or failure. Run returns the first error observed; each
// query's own failure, along with any entries gathered before it, is
// recorded on its CrawlResult.
func (c *Client) Run(ctx context.Context, queries []Query, limit int) ([]CrawlResult, error) {
	results := make([]CrawlResult, len(queries))

	g := new(errgroup.Group)
	for i, q := range queries {
		g.Go(func() error {
			entries, err := c.newPaginator().run(ctx, q, limit)
			results[i] = CrawlResult{Query: q, Entries: entries, Err: err}
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// pageFetcher is the fetch seam between the paginator and the network.
type pageFetcher interface {
	fetchPage(ctx context.Context, q Query, cursor string) (*Page, error)
}

// paginator drives the fetch→accumulate→continue loop for one query. All
// of its mutable state (cursor, dedup set, accumulated entries) is owned
// exclusively by one goroutine.
type paginator struct {
	fetch pageFetcher
	retry retryPolicy
	store PageStore
	delay time.Duration
	log   *slog.Logger
}

// run pages through one query until the endpoint signals completion (a page
// holding only cursor markers) or the distinct-id count reaches limit. The
// final short page's entries are appended before the termination check, so
// they are included in the result.
func (p *paginator) run(ctx context.Context, q Query, limit int) ([]Entry, error) {
	var res []Entry
	seen := make(dedupSet)
	cursor := ""

	for {
		page, err := p.retry.do(ctx, func() (*Page, error) {
			return p.fetch.fetchPage(ctx, q, cursor)
		})
		if err != nil {
			return res, fmt.Errorf("%q: %w", q.Text, err)
		}

		res = append(res, page.Entries...)
		entriesHarvestedTotal.Add(float64(len(page.Entries)))
		total := seen.addAll(entryIDs(page.Entries))
		p.log.Debug("page accumulated", slog.String("query", q.Text), slog.Int("total", total))

		if len(page.Entries) <= 2 || (limit > 0 && total >= limit) {
			p.log.Debug("query complete", slog.String("query", q.Text), slog.Int("results", total))
			return res, nil
		}

		cursor = page.Cursor
		if cursor == "" {
			return res, fmt.Errorf("%q: %w", q.Text, ErrNoCursor)
		}

		if p.store != nil {
			if payload, merr := json.Marshal(page.Entries); merr == nil {
				if serr := p.store.SavePage(ctx, q.Text, payload); serr != nil {
					p.log.Warn("page save failed", slog.String("query", q.Text), slog.Any("error", serr))
				}
			}
		}

		p.log.Debug("inter-page delay", slog.String("query", q.Text), slog.Duration("wait", p.delay))
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(p.delay):
		}
	}
}
