package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliFixtureURL = "https://ex.com/"

func TestCLI_CrawlsSiteAndWritesOutput(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "records.json")
	args := []string{
		"site-scraper",
		"--delay=0",
		"--timeout=1s",
		"--output", output,
		cliFixtureURL,
	}

	var stdout, stderr bytes.Buffer
	err := Run(args, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Starting crawl of https://ex.com/")
	assert.Contains(t, stdout.String(), "[   1] https://ex.com/")
	assert.Contains(t, stdout.String(), "Done! Scraped 2 pages.")
	assert.Contains(t, stdout.String(), "Saved to: "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "https://ex.com/", records[0]["url"])
	assert.Equal(t, "Example Site", records[0]["title"])
	assert.Equal(t, "https://ex.com/about", records[1]["url"])
}

func TestCLI_LogsSkippedPagesToStderr(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "records.json")
	args := []string{
		"site-scraper",
		"--delay=0",
		"--output", output,
		cliFixtureURL,
	}

	var stdout, stderr bytes.Buffer
	err := Run(args, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), "fetch failed")
	assert.Contains(t, stderr.String(), "https://ex.com/missing")
}

func TestCLI_MissingURLPrintsHelp(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := Run([]string{"site-scraper"}, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "USAGE")
	assert.NotContains(t, stdout.String(), "Done!")
}

func TestCLI_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "from-config.json")
	configPath := filepath.Join(dir, "site-scraper.yaml")
	configBody := fmt.Sprintf("url: %s\noutput: %s\ndelay: 0\n", cliFixtureURL, output)
	require.NoError(t, os.WriteFile(configPath, []byte(configBody), 0o600))

	var stdout, stderr bytes.Buffer
	err := Run([]string{"site-scraper", "--config", configPath}, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.NoError(t, err)

	_, statErr := os.Stat(output)
	assert.NoError(t, statErr)
}

func TestCLI_FlagOverridesConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configOutput := filepath.Join(dir, "config.json")
	flagOutput := filepath.Join(dir, "flag.json")
	configPath := filepath.Join(dir, "site-scraper.yaml")
	configBody := fmt.Sprintf("url: %s\noutput: %s\ndelay: 0\n", cliFixtureURL, configOutput)
	require.NoError(t, os.WriteFile(configPath, []byte(configBody), 0o600))

	var stdout, stderr bytes.Buffer
	args := []string{"site-scraper", "--config", configPath, "--output", flagOutput}
	err := Run(args, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.NoError(t, err)

	_, statErr := os.Stat(flagOutput)
	assert.NoError(t, statErr)

	_, statErr = os.Stat(configOutput)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLI_MissingConfigFileIsFatal(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	args := []string{"site-scraper", "--config", filepath.Join(t.TempDir(), "absent.yaml"), cliFixtureURL}
	err := Run(args, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.Error(t, err)
}

func TestCLI_InvalidHeaderFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	args := []string{"site-scraper", "--header", "no-colon", cliFixtureURL}
	err := Run(args, &stdout, &stderr, newCLIFixtureClient(t), cliClock{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid header")
}

func TestParseHeaders(t *testing.T) {
	t.Parallel()

	headers, err := parseHeaders([]string{"Accept-Language: en", "X-Token:abc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Accept-Language": "en",
		"X-Token":         "abc",
	}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = parseHeaders([]string{": empty-name"})
	require.Error(t, err)
}

// newCLIFixtureClient serves a two-page site plus a 404 so the CLI tests
// exercise both the happy path and the skip path.
func newCLIFixtureClient(t *testing.T) *http.Client {
	t.Helper()

	rootHTML := []byte(`<html><head><title>Example Site</title></head><body>` +
		`<a href="/about">About</a>` +
		`<a href="/missing">Missing</a>` +
		`<a href="https://other.com/">Other</a>` +
		`</body></html>`)
	aboutHTML := []byte(`<html><head><title>About</title></head><body><a href="/">Home</a></body></html>`)

	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Host != "ex.com" {
				return nil, fmt.Errorf("unexpected host %q", req.URL.Host)
			}

			path := req.URL.Path
			if path == "" {
				path = "/"
			}

			switch path {
			case "/":
				return htmlResponse(http.StatusOK, rootHTML), nil
			case "/about":
				return htmlResponse(http.StatusOK, aboutHTML), nil
			default:
				return htmlResponse(http.StatusNotFound, []byte("not found")), nil
			}
		}),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func htmlResponse(status int, body []byte) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

type cliClock struct{}

func (cliClock) Now() time.Time { return time.Date(2024, time.June, 1, 12, 34, 56, 0, time.UTC) }

func (cliClock) Sleep(ctx context.Context, _ time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
