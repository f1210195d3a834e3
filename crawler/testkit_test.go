package crawler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const fixtureBaseURL = "https://ex.com/"

var fixtureTime = time.Date(2024, time.June, 1, 12, 34, 56, 0, time.UTC)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return fn(req) }

func readFixture(t *testing.T, parts ...string) []byte {
	t.Helper()

	path := filepath.Join(append([]string{"..", "testdata"}, parts...)...)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read fixture: %s", path)

	return b
}

// fetchCounter records how many times each URL was requested.
type fetchCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFetchCounter() *fetchCounter {
	return &fetchCounter{calls: map[string]int{}}
}

func (c *fetchCounter) record(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls[url]++
}

func (c *fetchCounter) count(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[url]
}

func (c *fetchCounter) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int, len(c.calls))
	for url, n := range c.calls {
		out[url] = n
	}

	return out
}

// newFixtureClient serves a small site on ex.com: an HTML root, two HTML
// subpages, a 404, a PDF, and a path whose transport always fails.
func newFixtureClient(t *testing.T, counter *fetchCounter) *http.Client {
	t.Helper()

	rootHTML := readFixture(t, "pages", "root.html")
	aboutHTML := readFixture(t, "pages", "about.html")
	blogHTML := readFixture(t, "pages", "blog.html")

	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if counter != nil {
				counter.record(req.URL.String())
			}

			if req.URL.Host != "ex.com" {
				return nil, errors.New("unexpected host: " + req.URL.Host)
			}

			path := req.URL.Path
			if path == "" {
				path = "/"
			}

			switch path {
			case "/":
				return htmlResponse(rootHTML), nil
			case "/about":
				return htmlResponse(aboutHTML), nil
			case "/blog":
				return htmlResponse(blogHTML), nil
			case "/files/report.pdf":
				return responseWithBody(http.StatusOK, []byte("%PDF-1.4"), http.Header{
					"Content-Type": []string{"application/pdf"},
				}), nil
			case "/broken":
				return nil, errors.New("connection refused")
			default:
				return responseWithBody(http.StatusNotFound, []byte("not found"), http.Header{
					"Content-Type": []string{"text/html"},
				}), nil
			}
		}),
	}
}

func htmlResponse(body []byte) *http.Response {
	return responseWithBody(http.StatusOK, body, http.Header{
		"Content-Type": []string{"text/html; charset=utf-8"},
	})
}

func responseWithBody(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) Sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
