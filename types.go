package xsearch

import "encoding/json"

// Category selects the search product vertical a query runs against.
type Category string

const (
	CategoryTop    Category = "Top"
	CategoryLatest Category = "Latest"
	CategoryPeople Category = "People"
	CategoryMedia  Category = "Media"
)

// Query is one immutable search input.
type Query struct {
	Text     string
	Category Category
}

// Entry is a single search hit (tweet or user record), tagged with the
// query text that produced it. Content retains the raw timeline content
// node so callers can parse whichever fields they need.
type Entry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex,omitempty"`
	Query     string          `json:"query"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// Page is the parsed result of one paginated search request.
//
// Entries holds only the tweet-/user- prefixed hits. EntryIDs holds every
// entryId on the page, cursor markers included; the retry policy uses it to
// recognize degenerate pages. APIErrors carries the application-level error
// messages the endpoint sometimes returns inside an HTTP 200 response.
type Page struct {
	Raw       []byte
	Entries   []Entry
	Cursor    string
	EntryIDs  []string
	APIErrors []string
}

// CrawlResult is the outcome of one query's crawl: the entries accumulated
// across all of its pages in fetch order, and the error that stopped the
// crawl, if any. A result may carry both entries and an error when the
// crawl failed partway through.
type CrawlResult struct {
	Query   Query
	Entries []Entry
	Err     error
}
