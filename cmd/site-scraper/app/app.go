package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"code/crawler"
	"code/internal/config"
	"code/internal/limiter"
)

// Run executes the CLI: it crawls the site given by the seed URL argument
// and writes the JSON record array to the configured output file. Progress
// goes to stdout, logs to stderr. If the seed URL is missing, it prints help
// and returns nil.
func Run(args []string, stdout, stderr io.Writer, client *http.Client, clock limiter.Timer) error {
	app := cli.NewApp()
	app.Name = "site-scraper"
	app.Usage = "scrape every page of a single site by following internal links"
	app.UsageText = "site-scraper [global options] <url>"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "output",
			Usage: "output file for the JSON records",
			Value: config.DefaultOutput,
		},
		cli.DurationFlag{
			Name:  "delay",
			Usage: "delay between requests (example: 200ms, 1s)",
			Value: config.DefaultDelay,
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: config.DefaultTimeout,
		},
		cli.IntFlag{
			Name:  "retries",
			Usage: "number of retries for temporary fetch failures",
			Value: config.DefaultRetries,
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "custom user agent",
			Value: config.DefaultUserAgent,
		},
		cli.StringSliceFlag{
			Name:  "header",
			Usage: "extra request header as 'Name: value' (repeatable)",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of concurrent workers (1 preserves breadth-first order)",
			Value: config.DefaultWorkers,
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	}
	app.Action = func(c *cli.Context) error {
		cfg, err := buildConfig(c)
		if err != nil {
			return err
		}

		if cfg.URL == "" {
			_ = cli.ShowAppHelp(c)

			return nil
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(stderr, c.Bool("verbose"))
		defer func() {
			_ = logger.Sync()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(stdout, "Starting crawl of %s (delay %s)\n", cfg.URL, cfg.Delay)

		records, crawlErr := crawler.Crawl(ctx, optionsFromConfig(cfg, client, clock, logger, stdout))
		if crawlErr != nil && records == nil {
			return crawlErr
		}

		// A canceled run still writes what it collected.
		if err := os.WriteFile(cfg.Output, crawler.Marshal(records, true), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		fmt.Fprintf(stdout, "Done! Scraped %d pages.\nSaved to: %s\n", len(records), cfg.Output)

		return crawlErr
	}

	return app.Run(args)
}

// buildConfig layers the configuration sources: defaults, then the optional
// config file, then every flag the user set explicitly, then the positional
// seed URL.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()

	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}

		cfg = loaded
	}

	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}

	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}

	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}

	if c.IsSet("retries") {
		cfg.Retries = c.Int("retries")
	}

	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}

	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}

	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return cfg, err
	}

	if len(headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}

		for key, value := range headers {
			cfg.Headers[key] = value
		}
	}

	if seedURL := c.Args().First(); seedURL != "" {
		cfg.URL = seedURL
	}

	return cfg, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(raw))
	for _, entry := range raw {
		key, value, found := strings.Cut(entry, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid header %q: want 'Name: value'", entry)
		}

		headers[key] = strings.TrimSpace(value)
	}

	return headers, nil
}

func optionsFromConfig(
	cfg config.Config,
	client *http.Client,
	clock limiter.Timer,
	logger *zap.Logger,
	progress io.Writer,
) crawler.Options {
	return crawler.Options{
		URL:        cfg.URL,
		Delay:      cfg.Delay,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		UserAgent:  cfg.UserAgent,
		Headers:    cfg.Headers,
		Workers:    cfg.Workers,
		HTTPClient: client,
		Clock:      clock,
		Logger:     logger,
		Progress:   progress,
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)

	return zap.New(core)
}
