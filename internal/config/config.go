// Package config holds the crawl run configuration: defaults, optional YAML
// config-file loading, and validation. CLI flags are merged on top by the
// caller; flags always win over file values.
package config

import "time"

// Default configuration values. The delay and user agent mirror common
// polite-scraper settings; the timeout is generous enough for slow sites
// without hanging a run on a single dead host.
const (
	// DefaultOutput is the JSON file the final records are written to.
	DefaultOutput = "scraped_data.json"

	// DefaultDelay is the pause between requests. Half a second keeps the
	// crawl polite without making small sites take forever.
	DefaultDelay = 500 * time.Millisecond

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the scraper in HTTP requests so operators
	// can recognize the traffic in their logs.
	DefaultUserAgent = "Mozilla/5.0 (compatible; site-scraper/1.0; +https://example.com/bot)"

	// DefaultWorkers is one fetch in flight at a time, which preserves
	// strict breadth-first result order.
	DefaultWorkers = 1

	// DefaultRetries is zero: a failed page is skipped, not retried.
	DefaultRetries = 0
)

// Config holds all options for one crawl run.
type Config struct {
	// URL is the seed URL. Required; the crawl never leaves its host.
	URL string

	// Output is the path the JSON record array is written to.
	Output string

	// Delay is the minimum pause between requests, shared across workers.
	Delay time.Duration

	// Timeout is the per-request timeout. Must be positive.
	Timeout time.Duration

	// Retries is the number of transport-level retries after the first
	// attempt for temporary failures. Zero means failed pages are skipped.
	Retries int

	// Workers is the number of concurrent fetch workers. With one worker
	// results follow strict BFS discovery order.
	Workers int

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers. A User-Agent entry here is
	// overridden by UserAgent.
	Headers map[string]string
}

// Default returns a Config with all defaults applied and no seed URL.
func Default() Config {
	return Config{
		Output:    DefaultOutput,
		Delay:     DefaultDelay,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		Workers:   DefaultWorkers,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrNoSeedURL
	}

	if c.Output == "" {
		return ErrNoOutputPath
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	if c.Workers < 1 {
		return ErrInvalidWorkers
	}

	return nil
}
