package xsearch

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// resultEntryRe matches the entryId of content entries. Everything else on
// a page is a cursor or module marker.
var resultEntryRe = regexp.MustCompile(`^(tweet|user)-`)

// searchResponse is the typed shape of a SearchTimeline response. Fields
// the crawl does not need are left out; unknown shapes fall back to the
// generic key scan below.
type searchResponse struct {
	Data struct {
		SearchByRawQuery struct {
			SearchTimeline struct {
				Timeline timelineObj `json:"timeline"`
			} `json:"search_timeline"`
		} `json:"search_by_raw_query"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID   string          `json:"entryId"`
	SortIndex string          `json:"sortIndex"`
	Content   json.RawMessage `json:"content"`
}

// entryContent is the slice of a content node relevant to pagination.
type entryContent struct {
	EntryType  string `json:"entryType"`
	TypeName   string `json:"__typename"`
	CursorType string `json:"cursorType"`
	Value      string `json:"value"`
}

// parseSearchPage parses one SearchTimeline response body into a Page,
// tagging every qualifying entry with the originating query text and
// extracting the bottom cursor.
func parseSearchPage(body []byte, query string) (*Page, error) {
	var raw searchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal search page: %w", err)
	}

	page := &Page{Raw: body}
	for _, e := range raw.Errors {
		page.APIErrors = append(page.APIErrors, e.Message)
	}

	entries := collectEntries(raw.Data.SearchByRawQuery.SearchTimeline.Timeline)
	if len(entries) == 0 && len(raw.Errors) == 0 {
		entries = fallbackEntries(body)
	}

	for _, e := range entries {
		page.EntryIDs = append(page.EntryIDs, e.EntryID)

		var c entryContent
		if e.Content != nil {
			// Content shapes vary per entry type; cursor fields simply
			// stay empty for non-cursor entries.
			_ = json.Unmarshal(e.Content, &c)
		}
		if page.Cursor == "" && c.CursorType == "Bottom" {
			page.Cursor = c.Value
		}

		if resultEntryRe.MatchString(e.EntryID) {
			page.Entries = append(page.Entries, Entry{
				EntryID:   e.EntryID,
				SortIndex: e.SortIndex,
				Query:     query,
				Content:   e.Content,
			})
		}
	}
	return page, nil
}

// collectEntries flattens all timeline instructions into one entry list,
// including single-entry instructions such as TimelineReplaceEntry.
func collectEntries(tl timelineObj) []timelineEntry {
	var entries []timelineEntry
	for _, instruction := range tl.Instructions {
		entries = append(entries, instruction.Entries...)
		if instruction.Entry != nil {
			entries = append(entries, *instruction.Entry)
		}
	}
	return entries
}

// fallbackEntries recovers entries from a response whose envelope does not
// match the typed schema, by scanning for "entries" lists anywhere in the
// document. The typed path is primary; this keeps the crawl alive across
// minor envelope changes.
func fallbackEntries(body []byte) []timelineEntry {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	var entries []timelineEntry
	for _, hit := range findKey(doc, "entries") {
		list, ok := hit.([]any)
		if !ok {
			continue
		}
		for _, elem := range list {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			id, _ := m["entryId"].(string)
			if id == "" {
				continue
			}
			e := timelineEntry{EntryID: id}
			if s, ok := m["sortIndex"].(string); ok {
				e.SortIndex = s
			}
			if content, ok := m["content"]; ok {
				if raw, err := json.Marshal(content); err == nil {
					e.Content = raw
				}
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// findKey returns every value stored under key anywhere in a decoded JSON
// document, in depth-first order.
func findKey(doc any, key string) []any {
	var hits []any
	switch v := doc.(type) {
	case map[string]any:
		if hit, ok := v[key]; ok {
			hits = append(hits, hit)
		}
		for _, child := range v {
			hits = append(hits, findKey(child, key)...)
		}
	case []any:
		for _, child := range v {
			hits = append(hits, findKey(child, key)...)
		}
	}
	return hits
}

// entryIDs returns the ids of a filtered entry list.
func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	return ids
}
