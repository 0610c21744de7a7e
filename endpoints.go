package xsearch

import (
	"encoding/json"
	"fmt"
	"strings"
)

const graphqlBase = "https://x.com/i/api/graphql"

// bearerTokens is the list of known web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Endpoint holds a GraphQL operation ID, name, and per-operation feature flags.
type Endpoint struct {
	ID       string
	Name     string
	Features map[string]any
}

// URL returns the full URL for this endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s/%s/%s", graphqlBase, e.ID, e.Name)
}

// Path returns the URL path for this endpoint, used to key the
// per-request transaction id.
func (e Endpoint) Path() string {
	return fmt.Sprintf("/i/api/graphql/%s/%s", e.ID, e.Name)
}

// SearchTimeline is the cursor-paginated search operation.
var SearchTimeline = Endpoint{
	ID:       "yiE17ccAAu3qwM34bPYZkQ",
	Name:     "SearchTimeline",
	Features: searchFeatures(),
}

// querySource tags every search request the way the web client's recent
// search box does.
const querySource = "recent_search_click"

// searchVariables builds the variables block for one page request. The
// cursor is included only when non-empty (first pages carry none).
func searchVariables(q Query, pageSize int, cursor string) map[string]any {
	v := map[string]any{
		"count":       pageSize,
		"querySource": querySource,
		"rawQuery":    q.Text,
		"product":     string(q.Category),
	}
	if cursor != "" {
		v["cursor"] = cursor
	}
	return v
}

// searchURL builds the full request URL with percent-encoded variables and
// feature flags, in the exact wire format the endpoint expects.
func searchURL(ep Endpoint, variables map[string]any) string {
	v, _ := json.Marshal(variables)
	f, _ := json.Marshal(ep.Features)
	return ep.URL() + "?variables=" + escapeJSON(v) + "&features=" + escapeJSON(f)
}

// escapeJSON percent-encodes a marshalled JSON value for use as a query
// parameter. The endpoint is picky about which characters are escaped, so
// this is deliberately not url.QueryEscape.
func escapeJSON(b []byte) string {
	var result strings.Builder
	for _, ch := range string(b) {
		switch ch {
		case ' ':
			result.WriteString("%20")
		case '"':
			result.WriteString("%22")
		case '{':
			result.WriteString("%7B")
		case '}':
			result.WriteString("%7D")
		case '[':
			result.WriteString("%5B")
		case ']':
			result.WriteString("%5D")
		case ':':
			result.WriteString("%3A")
		case ',':
			result.WriteString("%2C")
		case '\'':
			result.WriteString("%27")
		case '|':
			result.WriteString("%7C")
		default:
			result.WriteRune(ch)
		}
	}
	return result.String()
}

// searchFeatures returns the canonical GraphQL feature flags for search.
func searchFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                false,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"premium_content_api_read_enabled":                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    false,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      false,
		"responsive_web_grok_image_annotation_enabled":                            false,
		"responsive_web_grok_share_attachment_enabled":                            false,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"tweet_with_visibility_results_prefer_gql_media_interstitial_enabled":     false,
		"tweetypie_unmention_optimization_enabled":                                true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
