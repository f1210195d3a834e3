package crawler

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"code/internal/limiter"
)

// Options configures a crawl run.
// URL is the seed; the crawl never leaves its host.
// Delay is the minimum pause between requests, shared across workers, so it
// bounds the aggregate request rate. Retries is the number of transport-level
// retries after the first attempt; zero means a failed page is skipped
// immediately. With Workers == 1 results follow strict breadth-first
// discovery order.
type Options struct {
	URL                string
	Delay              time.Duration
	Timeout            time.Duration
	Retries            int
	UserAgent          string
	Headers            map[string]string
	Workers            int
	MaxConcurrentFetch int
	HTTPClient         *http.Client
	Clock              limiter.Timer
	Logger             *zap.Logger
	Progress           io.Writer
}

// Record describes one successfully scraped page. The HTML body is used only
// for link extraction and never retained. ExternalLinks holds every off-site
// link found on the page, deduplicated and sorted.
type Record struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	StatusCode    int      `json:"status_code"`
	ContentType   string   `json:"content_type"`
	ScrapedAt     string   `json:"scraped_at"`
	ExternalLinks []string `json:"external_links"`
}
