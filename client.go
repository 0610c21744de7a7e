package xsearch

import (
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go-xsearch/txid"
)

// Client is the top-level search crawl client. It owns the shared
// transport, session, and transaction signer; each query crawled through
// it gets its own paginator with exclusively-owned mutable state.
type Client struct {
	session   *Session
	transport Transport
	signer    TransactionSigner
	store     PageStore
	cfg       Config
	log       *slog.Logger
}

// NewClient validates the session and wires up a fully configured client.
func NewClient(cfg Config) (*Client, error) {
	cfg.defaults()

	session, err := sessionFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		transport, err = newStealthTransport(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
	}

	signer := cfg.Signer
	if signer == nil {
		mgr := txid.NewManager()
		if err := mgr.Initialize(); err != nil {
			cfg.Logger.Warn("txid: init failed, x-client-transaction-id will be missing", slog.Any("error", err))
		}
		signer = mgr
	}

	store := cfg.Store
	if store == nil && cfg.SavePages {
		store, err = NewFileStore(cfg.OutDir)
		if err != nil {
			return nil, fmt.Errorf("page store: %w", err)
		}
	}

	return &Client{
		session:   session,
		transport: transport,
		signer:    signer,
		store:     store,
		cfg:       cfg,
		log:       cfg.Logger,
	}, nil
}

func sessionFromConfig(cfg Config) (*Session, error) {
	if cfg.Cookies != nil {
		return NewSession(cfg.Cookies)
	}
	if cfg.CookieFile != "" {
		return LoadSession(cfg.CookieFile)
	}
	return nil, fmt.Errorf("cookies not specified")
}

// Session returns the validated session.
func (c *Client) Session() *Session {
	return c.session
}

// newPaginator builds the per-query pagination loop over the shared
// transport and session.
func (c *Client) newPaginator() *paginator {
	return &paginator{
		fetch: &fetcher{
			transport: c.transport,
			signer:    c.signer,
			session:   c.session,
			pageSize:  c.cfg.PageSize,
			log:       c.log,
		},
		retry: newRetryPolicy(c.cfg.Retries, c.log),
		store: c.store,
		delay: c.cfg.PageDelay,
		log:   c.log,
	}
}
