package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

var (
	fetchMetricsOnce sync.Once
	retryCounter     metric.Int64Counter
)

func initFetchMetrics() {
	fetchMetricsOnce.Do(func() {
		meter := otel.Meter("fitseek/browser")

		var err error
		retryCounter, err = meter.Int64Counter(
			"fitseek.fetch.retries",
			metric.WithDescription("Page fetches that needed a retry"),
		)
		if err != nil {
			log.Printf("observability: failed to create fetch retry counter: %v", err)
		}
	})
}

// PageFetcher fetches a URL and returns the fully rendered document HTML.
// Implementations own whatever rendering mechanism they need; callers only
// see text. A failed fetch returns an error wrapping ErrFetchFailed.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ErrFetchFailed marks a transient page-fetch failure. Callers may retry.
var ErrFetchFailed = errors.New("page fetch failed")

// RetryingFetcher wraps a PageFetcher with request pacing and bounded
// retries. All site traffic goes through one of these so the request rate
// against the target stays predictable.
type RetryingFetcher struct {
	inner       PageFetcher
	limiter     *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	logger      *log.Logger
}

// RetryOption configures RetryingFetcher.
type RetryOption func(*RetryingFetcher)

// WithRateLimiter overrides the default rate limiter.
func WithRateLimiter(l *rate.Limiter) RetryOption {
	return func(f *RetryingFetcher) {
		f.limiter = l
	}
}

// WithMaxRetries overrides the default retry attempts.
func WithMaxRetries(n int) RetryOption {
	return func(f *RetryingFetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithBackoffBase overrides the initial backoff duration for retries.
func WithBackoffBase(d time.Duration) RetryOption {
	return func(f *RetryingFetcher) {
		if d > 0 {
			f.backoffBase = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) RetryOption {
	return func(f *RetryingFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewRetryingFetcher constructs a RetryingFetcher with sensible defaults.
func NewRetryingFetcher(inner PageFetcher, opts ...RetryOption) *RetryingFetcher {
	fetcher := &RetryingFetcher{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Limit(1), 2),
		maxRetries:  2,
		backoffBase: 750 * time.Millisecond,
		logger:      log.New(os.Stdout, "[fetch] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// Fetch retrieves the rendered page at url, retrying transient failures up
// to the configured limit with exponential backoff.
func (f *RetryingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		html, err := f.inner.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt < f.maxRetries {
			initFetchMetrics()
			if retryCounter != nil {
				retryCounter.Add(ctx, 1)
			}

			backoff := f.backoffBase * time.Duration(1<<attempt)
			f.logger.Printf("fetch %s failed (attempt %d/%d), retrying in %v: %v",
				url, attempt+1, f.maxRetries+1, backoff, err)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts: %v", ErrFetchFailed, url, f.maxRetries+1, lastErr)
}
