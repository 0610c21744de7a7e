// Package txid generates the x-client-transaction-id request header.
//
// The header is a freshness token keyed by HTTP method and request path,
// derived from key material the web client embeds in its homepage HTML and
// ondemand script. Algorithm reverse-engineered from the web app:
//   - https://github.com/iSarabjitDhiman/XClientTransaction (Python, MIT)
//   - https://antibot.blog/posts/1741552025433 (analysis)
package txid

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Manager fetches the homepage and ondemand script, caches the derived
// signer, and refreshes it every 30 minutes. Thread-safe; keeps serving
// stale keys when a refresh fails.
type Manager struct {
	mu              sync.RWMutex
	signer          *signer
	lastRefresh     time.Time
	refreshInterval time.Duration
	client          *http.Client
}

// NewManager creates a transaction id manager.
func NewManager() *Manager {
	return &Manager{
		refreshInterval: 30 * time.Minute,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Initialize fetches the key material and builds the signer. Call once at
// startup; GenerateID refreshes on its own afterwards.
func (m *Manager) Initialize() error {
	homepage, err := m.get("https://x.com")
	if err != nil {
		return fmt.Errorf("fetch x.com: %w", err)
	}

	scriptURL := ondemandScriptURL(homepage)
	if scriptURL == "" {
		return fmt.Errorf("ondemand.s URL not found in homepage HTML")
	}

	script, err := m.get(scriptURL)
	if err != nil {
		return fmt.Errorf("fetch ondemand.s: %w", err)
	}

	s, err := newSigner(homepage, script)
	if err != nil {
		return fmt.Errorf("build signer: %w", err)
	}

	m.mu.Lock()
	m.signer = s
	m.lastRefresh = time.Now()
	m.mu.Unlock()

	prefix := s.animationKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	slog.Info("txid: initialized", slog.String("anim_key", prefix+"..."))
	return nil
}

func (m *Manager) get(url string) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GenerateID returns a fresh x-client-transaction-id for the given HTTP
// method and URL path, refreshing stale key material as needed.
func (m *Manager) GenerateID(method, path string) (string, error) {
	m.mu.RLock()
	needRefresh := m.signer == nil || time.Since(m.lastRefresh) > m.refreshInterval
	m.mu.RUnlock()

	if needRefresh {
		if err := m.Initialize(); err != nil {
			m.mu.RLock()
			hasOld := m.signer != nil
			m.mu.RUnlock()
			if !hasOld {
				return "", fmt.Errorf("txid init failed: %w", err)
			}
			slog.Warn("txid: refresh failed, using stale keys", slog.Any("error", err))
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.signer == nil {
		return "", fmt.Errorf("txid not initialized")
	}
	return m.signer.id(method, path), nil
}
