package xsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Transport performs one network exchange. The production implementation
// wraps a TLS-fingerprint browser client; tests substitute stubs.
type Transport interface {
	Do(method, url string, headers map[string]string) (body []byte, status int, err error)
}

// TransactionSigner mints the per-request x-client-transaction-id, keyed by
// HTTP method and request path.
type TransactionSigner interface {
	GenerateID(method, path string) (string, error)
}

// stealthTransport is the production Transport.
type stealthTransport struct {
	client *stealth.BrowserClient
}

func newStealthTransport(proxy string) (*stealthTransport, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(searchHeaderOrder),
	}
	if proxy != "" {
		opts = append(opts, stealth.WithProxy(proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &stealthTransport{client: bc}, nil
}

func (t *stealthTransport) Do(method, url string, headers map[string]string) ([]byte, int, error) {
	body, _, status, err := t.client.DoWithHeaderOrder(method, url, headers, nil, searchHeaderOrder)
	return body, status, err
}

// fetcher issues single paginated search requests against a shared session.
type fetcher struct {
	transport Transport
	signer    TransactionSigner
	session   *Session
	pageSize  int
	log       *slog.Logger
}

// fetchPage fetches and parses one page. cursor may be empty (first page).
func (f *fetcher) fetchPage(ctx context.Context, q Query, cursor string) (*Page, error) {
	if q.Text == "" {
		return nil, errors.New("empty query text")
	}

	// Anti-fingerprint jitter, also our cancellation point before the call.
	if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
		return nil, err
	}

	url := searchURL(SearchTimeline, searchVariables(q, f.pageSize, cursor))

	var txID string
	if f.signer != nil {
		id, err := f.signer.GenerateID("GET", SearchTimeline.Path())
		if err != nil {
			f.log.Debug("transaction id unavailable", slog.Any("error", err))
		} else {
			txID = id
		}
	}

	body, status, err := f.transport.Do("GET", url, searchHeaders(f.session, q.Text, txID))
	if err != nil {
		pagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search request: %w", err)
	}

	f.log.Debug("search page fetched", slog.Int("status", status), slog.String("url", url))

	switch {
	case status == 401 || status == 403:
		pagesFetchedTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w (HTTP %d)", ErrUnauthorized, status)
	case status == 404:
		pagesFetchedTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w (HTTP %d)", ErrNotFound, status)
	case status != 200:
		pagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, &StatusError{Code: status, Body: truncateBytes(body, 200)}
	}

	page, err := parseSearchPage(body, q.Text)
	if err != nil {
		pagesFetchedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	pagesFetchedTotal.WithLabelValues("success").Inc()
	return page, nil
}
