package bbbc005

import (
	"net/http"
)

// Split defaults.
const (
	// DefaultSeed is the seed used by the CLI when --seed is not given.
	DefaultSeed int64 = 2809

	// DefaultValidationFraction is the share of samples reserved for validation.
	DefaultValidationFraction = 0.1
)

// SplitOption configures a split.
type SplitOption func(*splitConfig)

// splitConfig holds configuration for a split.
type splitConfig struct {
	// valFraction is the share of samples reserved for validation, in (0, 1).
	valFraction float64
}

// newSplitConfig returns a splitConfig with default values.
func newSplitConfig() *splitConfig {
	return &splitConfig{
		valFraction: DefaultValidationFraction,
	}
}

// WithValidationFraction sets the share of samples reserved for validation.
// Values outside (0, 1) are ignored and the default is kept.
func WithValidationFraction(f float64) SplitOption {
	return func(c *splitConfig) {
		if f > 0 && f < 1 {
			c.valFraction = f
		}
	}
}

// FetchOption configures a Fetcher.
type FetchOption func(*fetchConfig)

// fetchConfig holds configuration for Fetcher construction.
type fetchConfig struct {
	// httpClient is used for archive downloads.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// progressFn is called with progress updates during a fetch.
	progressFn func(FetchProgress)
}

// newFetchConfig returns a fetchConfig with default values.
func newFetchConfig() *fetchConfig {
	return &fetchConfig{
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient sets a custom HTTP client for archive downloads.
// Useful for testing with mock servers.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) FetchOption {
	return func(c *fetchConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) FetchOption {
	return func(c *fetchConfig) {
		c.logger = logger
	}
}

// WithProgress sets a callback for progress updates during a fetch.
func WithProgress(fn func(FetchProgress)) FetchOption {
	return func(c *fetchConfig) {
		c.progressFn = fn
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}
