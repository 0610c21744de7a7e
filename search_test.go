package xsearch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedFetcher replays a fixed page sequence and records the cursors it
// was asked for.
type scriptedFetcher struct {
	mu      sync.Mutex
	pages   []*Page
	errs    []error
	cursors []string
}

func (f *scriptedFetcher) fetchPage(_ context.Context, _ Query, cursor string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.cursors)
	f.cursors = append(f.cursors, cursor)
	if i >= len(f.pages) {
		return nil, fmt.Errorf("unexpected fetch %d", i)
	}
	if f.errs != nil && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.pages[i], nil
}

// countingStore counts SavePage calls.
type countingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *countingStore) SavePage(context.Context, string, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

// makePage builds a page of n distinct entries starting at id offset,
// flanked by the usual top/bottom cursor markers.
func makePage(offset, n int, cursor string) *Page {
	p := &Page{Cursor: cursor}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("tweet-%d", offset+i)
		p.Entries = append(p.Entries, Entry{EntryID: id})
		p.EntryIDs = append(p.EntryIDs, id)
	}
	p.EntryIDs = append(p.EntryIDs, "cursor-top-0", "cursor-bottom-0")
	return p
}

func testPaginator(fetch pageFetcher, store PageStore) *paginator {
	return &paginator{
		fetch: fetch,
		retry: retryPolicy{
			retries: 0,
			delay:   func(int) time.Duration { return time.Microsecond },
			log:     testLogger(),
		},
		store: store,
		delay: time.Millisecond,
		log:   testLogger(),
	}
}

func TestPaginatorInclusiveTermination(t *testing.T) {
	sf := &scriptedFetcher{pages: []*Page{
		makePage(0, 20, "c1"),
		makePage(20, 20, "c2"),
		makePage(40, 1, ""),
	}}

	entries, err := testPaginator(sf, nil).run(context.Background(), Query{Text: "q"}, 0)
	require.NoError(t, err)

	// The short final page's entry is included: the termination check runs
	// after accumulation.
	require.Len(t, entries, 41)
	require.Equal(t, []string{"", "c1", "c2"}, sf.cursors)
	require.Equal(t, "tweet-0", entries[0].EntryID)
	require.Equal(t, "tweet-40", entries[40].EntryID)
}

func TestPaginatorLimitStopsAfterFirstPage(t *testing.T) {
	sf := &scriptedFetcher{pages: []*Page{
		makePage(0, 20, "c1"),
		makePage(20, 20, "c2"),
	}}

	entries, err := testPaginator(sf, nil).run(context.Background(), Query{Text: "q"}, 15)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	require.Len(t, sf.cursors, 1, "page 2 must not be fetched")
}

func TestPaginatorMissingCursorFails(t *testing.T) {
	sf := &scriptedFetcher{pages: []*Page{
		makePage(0, 20, ""),
	}}

	entries, err := testPaginator(sf, nil).run(context.Background(), Query{Text: "q"}, 0)
	require.ErrorIs(t, err, ErrNoCursor)
	// Entries fetched before the failure are preserved.
	require.Len(t, entries, 20)
}

func TestPaginatorSavesOnlyOnContinuation(t *testing.T) {
	sf := &scriptedFetcher{pages: []*Page{
		makePage(0, 20, "c1"),
		makePage(20, 20, "c2"),
		makePage(40, 1, ""),
	}}
	store := &countingStore{}

	_, err := testPaginator(sf, store).run(context.Background(), Query{Text: "q"}, 0)
	require.NoError(t, err)
	require.Equal(t, 2, store.saves, "the terminal page is not persisted")
}

func TestPaginatorCountsDistinctIDsOnly(t *testing.T) {
	// Page 2 repeats page 1's ids, so the distinct count stays at 20 and
	// the limit of 25 is only reached on page 3. Duplicate entries are
	// still returned: the dedup set measures progress, it does not filter.
	sf := &scriptedFetcher{pages: []*Page{
		makePage(0, 20, "c1"),
		makePage(0, 20, "c2"),
		makePage(20, 20, "c3"),
	}}

	entries, err := testPaginator(sf, nil).run(context.Background(), Query{Text: "q"}, 25)
	require.NoError(t, err)
	require.Len(t, sf.cursors, 3)
	require.Len(t, entries, 60)
}

func TestPaginatorSoftEmptyTerminates(t *testing.T) {
	sf := &scriptedFetcher{pages: []*Page{
		{APIErrors: []string{"query rejected"}},
	}}

	entries, err := testPaginator(sf, nil).run(context.Background(), Query{Text: "q"}, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// --- Orchestrator tests through the full client stack ---

// routedTransport serves scripted HTTP responses keyed by a substring of
// the request URL. Routes are checked in order, so more specific keys go
// first.
type routedTransport struct {
	routes []route
}

type route struct {
	key    string
	status int
	body   string
}

func (t *routedTransport) Do(_, url string, _ map[string]string) ([]byte, int, error) {
	for _, r := range t.routes {
		if strings.Contains(url, r.key) {
			return []byte(r.body), r.status, nil
		}
	}
	return nil, 0, fmt.Errorf("no route for %s", url)
}

type noopSigner struct{}

func (noopSigner) GenerateID(_, _ string) (string, error) { return "test-txid", nil }

// searchBody builds a minimal SearchTimeline response with the given
// content entries plus top/bottom cursor markers.
func searchBody(ids []string, cursor string) string {
	var entries []string
	for i, id := range ids {
		entries = append(entries, fmt.Sprintf(
			`{"entryId":"%s","sortIndex":"%d","content":{"entryType":"TimelineTimelineItem"}}`, id, i))
	}
	entries = append(entries,
		`{"entryId":"cursor-top-0","content":{"entryType":"TimelineTimelineCursor","cursorType":"Top","value":"t"}}`,
		fmt.Sprintf(`{"entryId":"cursor-bottom-0","content":{"entryType":"TimelineTimelineCursor","cursorType":"Bottom","value":"%s"}}`, cursor))

	return fmt.Sprintf(`{"data":{"search_by_raw_query":{"search_timeline":{"timeline":{"instructions":[{"type":"TimelineAddEntries","entries":[%s]}]}}}}}`,
		strings.Join(entries, ","))
}

func testClient(t *testing.T, transport Transport) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Cookies:   map[string]string{"ct0": "csrf", "auth_token": "tok"},
		Transport: transport,
		Signer:    noopSigner{},
		PageDelay: time.Millisecond,
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	return c
}

func TestRunPartialFailure(t *testing.T) {
	// Queries alpha and gamma each complete with a single short page;
	// beta's credentials are rejected. Siblings are not cancelled and
	// results come back in input order.
	transport := &routedTransport{routes: []route{
		{key: "alpha", status: 200, body: searchBody([]string{"tweet-1"}, "")},
		{key: "beta", status: 401, body: `{}`},
		{key: "gamma", status: 200, body: searchBody([]string{"user-2"}, "")},
	}}

	queries := []Query{
		{Text: "alpha", Category: CategoryLatest},
		{Text: "beta", Category: CategoryLatest},
		{Text: "gamma", Category: CategoryTop},
	}
	results, err := testClient(t, transport).Run(context.Background(), queries, 0)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Len(t, results, 3)

	require.Equal(t, "alpha", results[0].Query.Text)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Entries, 1)
	require.Equal(t, "alpha", results[0].Entries[0].Query)

	require.Equal(t, "beta", results[1].Query.Text)
	require.ErrorIs(t, results[1].Err, ErrUnauthorized)
	require.Empty(t, results[1].Entries)

	require.Equal(t, "gamma", results[2].Query.Text)
	require.NoError(t, results[2].Err)
	require.Len(t, results[2].Entries, 1)
}

func TestRunFollowsCursors(t *testing.T) {
	// First request has no cursor parameter; the follow-up must carry c1.
	first := searchBody([]string{"tweet-1", "tweet-2", "tweet-3"}, "c1")
	second := searchBody([]string{"tweet-4"}, "")

	transport := &routedTransport{routes: []route{
		{key: "cursor", status: 200, body: second},
		{key: "alpha", status: 200, body: first},
	}}

	results, err := testClient(t, transport).Run(context.Background(),
		[]Query{{Text: "alpha", Category: CategoryLatest}}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Entries, 4)
}

func TestNewClientRequiresCookies(t *testing.T) {
	_, err := NewClient(Config{Transport: &routedTransport{}, Signer: noopSigner{}})
	require.Error(t, err)

	_, err = NewClient(Config{
		Cookies:   map[string]string{"ct0": "csrf"},
		Transport: &routedTransport{},
		Signer:    noopSigner{},
	})
	require.Error(t, err)
}
