package crawler

import (
	"net/url"
	"sort"

	"code/internal/urlutil"
)

// splitLinks resolves every href found on a page against the page URL and
// classifies the results. Internal links come back normalized, external
// links as absolute, un-normalized strings. Document order is preserved and
// duplicates are kept; dedup is the caller's concern.
func splitLinks(pageURL string, hrefs []string, baseHost string) (internal []string, external []string) {
	internal = []string{}
	external = []string{}

	base, err := url.Parse(pageURL)
	if err != nil {
		return internal, external
	}

	for _, href := range hrefs {
		absolute, ok := urlutil.Resolve(base, href)
		if !ok {
			continue
		}

		if urlutil.IsInternal(absolute, baseHost) {
			internal = append(internal, urlutil.Normalize(absolute))
		} else {
			external = append(external, absolute)
		}
	}

	return internal, external
}

// sortedUnique converts an accumulated link list to its sorted set form.
func sortedUnique(links []string) []string {
	unique := make([]string, 0, len(links))
	seen := make(map[string]bool, len(links))

	for _, link := range links {
		if seen[link] {
			continue
		}

		seen[link] = true
		unique = append(unique, link)
	}

	sort.Strings(unique)

	return unique
}
