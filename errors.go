package xsearch

import (
	"errors"
	"fmt"
)

// Errors that end a query's crawl without retrying.
var (
	// ErrUnauthorized means the session credentials were rejected (HTTP 401/403).
	ErrUnauthorized = errors.New("access denied")

	// ErrNotFound means the endpoint or resource is absent (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrNoCursor means a non-empty page arrived without a continuation
	// cursor: more content was expected but the endpoint walked off the end
	// of its result set without signaling completion.
	ErrNoCursor = errors.New("cursor not found")
)

// StatusError reports a non-success HTTP status that is eligible for retry.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// fatal reports whether err must bypass the retry policy entirely.
func fatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
