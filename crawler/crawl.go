package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"code/internal/fetcher"
	"code/internal/limiter"
	"code/internal/urlutil"
)

// Crawl fetches every page reachable from opts.URL via same-host links and
// returns one Record per successfully scraped HTML page. Pages that fail to
// fetch, return a non-2xx status, or serve a non-HTML content type are
// logged and skipped; no page is ever fetched twice in one run. On context
// cancellation the crawl stops issuing new fetches and returns the records
// accumulated so far together with the context error.
func Crawl(ctx context.Context, opts Options) ([]Record, error) {
	if opts.URL == "" {
		return nil, errors.New("url is required")
	}

	if opts.HTTPClient == nil {
		return nil, errors.New("http client is required")
	}

	seed := urlutil.Normalize(opts.URL)
	parsed, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid seed url %q: missing scheme or host", opts.URL)
	}

	clock := opts.Clock
	if clock == nil {
		clock = limiter.NewClock()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fetch := fetcher.New(fetcher.Config{
		Client:    opts.HTTPClient,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		Headers:   opts.Headers,
		Limiter:   limiter.NewWithTimer(opts.Delay, clock),
		Retries:   opts.Retries,
		Clock:     clock,
	})

	session := newSession(opts, seed, parsed.Host, fetch, logger, clock)

	return session.run(ctx)
}

// Marshal encodes records as a JSON array, optionally indented, always
// ending with a newline. A nil slice encodes as an empty array.
func Marshal(records []Record, indent bool) []byte {
	if records == nil {
		records = []Record{}
	}

	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}

	if err != nil {
		data = []byte("[]")
	}

	return ensureNewline(data)
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return append(data, '\n')
	}

	return data
}
