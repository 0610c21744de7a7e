package xsearch

import (
	"net/url"

	stealth "github.com/anatolykoptev/go-stealth"
)

// defaultUserAgent is the User-Agent sent with every request.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// searchHeaders returns the header set for one search page request. The
// referer mirrors the web client's search page so the request looks like a
// typed query.
func searchHeaders(s *Session, rawQuery, transactionID string) map[string]string {
	referer := "https://x.com/search?q=" + url.QueryEscape(rawQuery) + "&src=typed_query"
	h := map[string]string{
		"authorization":             "Bearer " + BearerToken,
		"x-csrf-token":              s.CT0(),
		"x-twitter-active-user":     "yes",
		"x-twitter-auth-type":       "OAuth2Session",
		"x-twitter-client-language": "en",
		"content-type":              "application/json",
		"cookie":                    "auth_token=" + s.AuthToken() + "; ct0=" + s.CT0(),
		"user-agent":                defaultUserAgent,
		"accept":                    "*/*",
		"accept-language":           "en-US,en;q=0.9",
		"accept-encoding":           "gzip, deflate, br",
		"referer":                   referer,
		"origin":                    "https://x.com",
		"sec-fetch-dest":            "empty",
		"sec-fetch-mode":            "cors",
		"sec-fetch-site":            "same-origin",
	}
	if transactionID != "" {
		h["x-client-transaction-id"] = transactionID
	}
	if ch := stealth.ClientHintsHeaders(defaultUserAgent); ch != nil {
		for k, v := range ch {
			h[k] = v
		}
	}
	return h
}

// searchHeaderOrder is the header order for TLS fingerprint consistency.
var searchHeaderOrder = []string{
	"authorization",
	"content-type",
	"x-csrf-token",
	"x-twitter-active-user",
	"x-twitter-client-language",
	"x-client-transaction-id",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"cookie",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
}
