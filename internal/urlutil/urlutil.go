package urlutil

import (
	"net/url"
	"strings"
)

// skipPrefixes lists href values that are non-navigational or point at
// non-HTTP targets. They are dropped before resolution.
var skipPrefixes = []string{"#", "mailto:", "tel:", "javascript:"}

// Normalize returns the canonical form of a URL used as its dedup identity:
// the fragment is dropped, at most one trailing slash is stripped from the
// path, and an empty path becomes "/". Scheme, host, and query are preserved.
// Malformed input is returned unchanged.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	path := strings.TrimSuffix(parsed.Path, "/")
	if path == "" {
		path = "/"
	}

	parsed.Path = path
	parsed.RawPath = ""

	return parsed.String()
}

// IsInternal reports whether an absolute URL belongs to the crawled site.
// A URL is internal when its host equals baseHost exactly, or when it has
// no host at all (a relative reference carries no foreign authority).
// Differing subdomains are external.
func IsInternal(rawURL string, baseHost string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return parsed.Host == baseHost || parsed.Host == ""
}

// Resolve resolves href against base and returns an absolute HTTP(S) URL.
// Empty hrefs, bare fragments, and mailto/tel/javascript targets are
// rejected, as is any resolved URL outside http/https.
func Resolve(base *url.URL, href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" || hasSkippedPrefix(trimmed) {
		return "", false
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	if !isSupportedScheme(parsed.Scheme) {
		return "", false
	}

	resolved := resolveReference(base, parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	return resolved.String(), true
}

func hasSkippedPrefix(href string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}

	return false
}

func isSupportedScheme(scheme string) bool {
	return scheme == "" || scheme == "http" || scheme == "https"
}

func resolveReference(base *url.URL, parsed *url.URL) *url.URL {
	if parsed.Scheme == "" {
		return base.ResolveReference(parsed)
	}

	return parsed
}
