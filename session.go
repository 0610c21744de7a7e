package xsearch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
)

// Session carries the validated credentials shared read-only by every
// paginator in a crawl. It is never mutated after construction.
type Session struct {
	cookies map[string]string
}

// requiredCookies are the credential tokens a session must carry.
var requiredCookies = []string{"ct0", "auth_token"}

// NewSession validates a cookie map and wraps it in a Session.
func NewSession(cookies map[string]string) (*Session, error) {
	if len(cookies) == 0 {
		return nil, fmt.Errorf("cookies not specified")
	}
	for _, name := range requiredCookies {
		if cookies[name] == "" {
			return nil, fmt.Errorf("session not authenticated: missing %s cookie", name)
		}
	}
	cp := make(map[string]string, len(cookies))
	for k, v := range cookies {
		cp[k] = v
	}
	return &Session{cookies: cp}, nil
}

// LoadSession reads a JSON cookie file and validates it.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookie file %s: %w", path, err)
	}
	return NewSession(cookies)
}

// CT0 returns the CSRF token.
func (s *Session) CT0() string { return s.cookies["ct0"] }

// AuthToken returns the auth token.
func (s *Session) AuthToken() string { return s.cookies["auth_token"] }

// Cookie returns an arbitrary cookie value, or "" if absent.
func (s *Session) Cookie(name string) string { return s.cookies[name] }

var twidRe = regexp.MustCompile(`u=(\d+)`)

// UserID extracts the numeric account id from the twid cookie.
func (s *Session) UserID() (string, error) {
	twid := s.cookies["twid"]
	if decoded, err := url.QueryUnescape(twid); err == nil {
		twid = decoded
	}
	m := twidRe.FindStringSubmatch(twid)
	if m == nil {
		return "", fmt.Errorf("twid cookie missing or malformed")
	}
	return m[1], nil
}

// Save persists the session cookies to a JSON file.
func (s *Session) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.cookies, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	return nil
}
