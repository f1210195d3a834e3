package config

import "errors"

var (
	// ErrNoSeedURL is returned when no seed URL was provided.
	ErrNoSeedURL = errors.New("seed url is required")

	// ErrNoOutputPath is returned when the output path is empty.
	ErrNoOutputPath = errors.New("output path is required")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	ErrInvalidDelay = errors.New("delay must not be negative")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("retries must not be negative")

	// ErrInvalidWorkers is returned when the worker count is below one.
	ErrInvalidWorkers = errors.New("workers must be at least one")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
