package urlset

import "sync"

// Set is a mutex-guarded set of URL strings. The crawler uses it for O(1)
// membership checks on discovered URLs; Add doubles as an atomic
// check-and-mark so a URL can be claimed exactly once.
type Set struct {
	mu    sync.Mutex
	items map[string]struct{}
}

// New creates an empty Set.
func New() *Set {
	return &Set{
		items: make(map[string]struct{}),
	}
}

// Add inserts a URL and reports whether it was not present before.
func (s *Set) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[url]; ok {
		return false
	}

	s.items[url] = struct{}{}

	return true
}

// Has reports whether the URL is in the set.
func (s *Set) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[url]

	return ok
}

// Len returns the number of URLs in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
