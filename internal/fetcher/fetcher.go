package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"code/internal/limiter"
)

const (
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

var errInvalidRequest = errors.New("invalid request")

// Result contains the HTTP response data.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the raw Content-Type header of the response.
func (r Result) ContentType() string {
	if r.Header == nil {
		return ""
	}

	return r.Header.Get("Content-Type")
}

// IsHTML reports whether the response content type indicates an HTML body.
func (r Result) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType()), "html")
}

// Config bundles everything a Fetcher needs. Client is required; the other
// fields have usable zero values (no timeout, no extra headers, no retries).
type Config struct {
	Client     *http.Client
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	Limiter    *limiter.Limiter
	Retries    int
	RetryDelay time.Duration
	Clock      limiter.Timer
}

// Fetcher performs HTTP GET requests with rate limiting, a per-request
// timeout, and optional retries for temporary failures.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	userAgent  string
	headers    map[string]string
	limiter    *limiter.Limiter
	retries    int
	retryDelay time.Duration
	clock      limiter.Timer
}

// New creates a Fetcher from cfg.
func New(cfg Config) *Fetcher {
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = baseRetryDelay
	}

	clock := cfg.Clock
	if clock == nil {
		clock = limiter.Clock{}
	}

	return &Fetcher{
		client:     cfg.Client,
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		headers:    cfg.Headers,
		limiter:    cfg.Limiter,
		retries:    cfg.Retries,
		retryDelay: retryDelay,
		clock:      clock,
	}
}

// Fetch performs a GET request. With Retries > 0 it retries temporary
// failures (network errors, 429, 5xx) with exponential backoff and returns
// the result of the last attempt. A non-2xx final status is surfaced as an
// error alongside the result.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Result, error) {
	attempts := f.retries + 1
	var lastResult Result
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := f.fetchOnce(ctx, rawURL)
		lastResult = result
		lastErr = err

		if err == nil && result.StatusCode < http.StatusBadRequest {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}

			return result, nil
		}

		retry, retryErr := f.shouldRetry(ctx, attempt, attempts, result, err)
		if !retry {
			return result, retryErr
		}
	}

	return lastResult, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (Result, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
	}

	return f.doRequest(ctx, rawURL)
}

func (f *Fetcher) shouldRetry(
	ctx context.Context,
	attempt int,
	attempts int,
	result Result,
	err error,
) (bool, error) {
	if ctx.Err() != nil {
		return false, coalesceError(err, ctx.Err())
	}

	if !isRetryable(result.StatusCode, err) || attempt == attempts-1 {
		return false, errorForStatus(err, result.StatusCode)
	}

	if err := f.clock.Sleep(ctx, f.retryDelayFor(attempt+1)); err != nil {
		return false, err
	}

	return true, nil
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string) (Result, error) {
	requestCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		requestCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	}

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	for key, value := range f.headers {
		request.Header.Set(key, value)
	}

	if f.userAgent != "" {
		request.Header.Set("User-Agent", f.userAgent)
	}

	response, err := f.client.Do(request)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Result{StatusCode: response.StatusCode, Header: response.Header}, fmt.Errorf("read body: %w", err)
	}

	return Result{StatusCode: response.StatusCode, Header: response.Header, Body: body}, nil
}

func isRetryable(statusCode int, err error) bool {
	if err != nil {
		return isRetryableError(err)
	}

	if statusCode == http.StatusTooManyRequests {
		return true
	}

	return statusCode >= http.StatusInternalServerError
}

func isRetryableError(err error) bool {
	if isContextCanceled(err) || errors.Is(err, errInvalidRequest) {
		return false
	}

	if isEOFLike(err) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isRetryableURLError(urlErr)
	}

	// Non-url errors are retryable only if they look like a temporary
	// transport issue.
	return isNetError(err)
}

func isRetryableURLError(urlErr *url.Error) bool {
	if urlErr == nil {
		return false
	}

	err := urlErr.Err
	for err != nil {
		if isContextCanceled(err) || errors.Is(err, errInvalidRequest) {
			return false
		}

		if isEOFLike(err) {
			return true
		}

		var inner *url.Error
		if errors.As(err, &inner) {
			err = inner.Err

			continue
		}

		return isNetError(err)
	}

	return false
}

func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func isNetError(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr)
}

func isEOFLike(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func errorForStatus(err error, statusCode int) error {
	if err != nil {
		return err
	}

	if statusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s", statusText(statusCode))
	}

	return nil
}

func statusText(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return fmt.Sprintf("http status %d", statusCode)
	}

	return text
}

func coalesceError(primary, fallback error) error {
	if primary != nil {
		return primary
	}

	return fallback
}

func (f *Fetcher) retryDelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := f.retryDelay
	for i := 1; i < attempt; i++ {
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}

		delay *= 2
	}

	if delay > maxRetryDelay {
		return maxRetryDelay
	}

	return delay
}
