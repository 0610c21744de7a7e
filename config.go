package xsearch

import (
	"log/slog"
	"time"
)

// Config holds all configuration for the search client.
type Config struct {
	// Cookies holds the authenticated session cookies. Both ct0 and
	// auth_token must be present.
	Cookies map[string]string

	// CookieFile is a JSON cookie file to load when Cookies is nil.
	CookieFile string

	// Proxy is the optional proxy URL shared by all requests.
	Proxy string

	// Retries is the retry budget for transient fetch failures.
	// Zero means the default of 3.
	Retries int

	// PageDelay is the courtesy delay between consecutive pages of one
	// query. It is rate limiting, not error backoff. Default: 10s.
	PageDelay time.Duration

	// PageSize is the result count requested per page. Default: 20.
	PageSize int

	// SavePages enables persistence of each intermediate page's entries.
	SavePages bool

	// OutDir is where saved pages are written. Default: data/search_results.
	OutDir string

	// Store overrides the page store built from SavePages/OutDir.
	Store PageStore

	// Transport overrides the default TLS-fingerprint transport.
	Transport Transport

	// Signer overrides the default x-client-transaction-id generator.
	Signer TransactionSigner

	// Logger is the structured logging handle shared by all components.
	// Default: slog.Default().
	Logger *slog.Logger
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = 10 * time.Second
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 20
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "data/search_results"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}
