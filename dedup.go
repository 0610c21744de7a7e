package xsearch

// dedupSet tracks the distinct result ids seen across one query's pages.
// It only grows; the cumulative count decides when the crawl has reached
// the requested limit. It does not filter entries out of returned pages.
type dedupSet map[string]struct{}

// addAll merges ids into the set and returns the new cumulative count.
func (d dedupSet) addAll(ids []string) int {
	for _, id := range ids {
		d[id] = struct{}{}
	}
	return len(d)
}
