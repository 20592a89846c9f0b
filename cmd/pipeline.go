package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/fitseek/fitseek/internal/browser"
	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/depop"
	"github.com/fitseek/fitseek/internal/metrics"
	"github.com/fitseek/fitseek/internal/observability"
	"github.com/fitseek/fitseek/internal/search"
)

// buildOrchestrator wires the full search pipeline: a Chrome-backed page
// fetcher with retry and rate limiting, the marketplace fetcher and seller
// discoverer, and the orchestrator with its job registry. The returned
// ChromeFetcher must be closed by the caller.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *log.Logger) (*search.Orchestrator, *browser.ChromeFetcher, error) {
	selectors, err := depop.LoadSelectors(cfg.SelectorsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load selectors: %w", err)
	}

	chrome := browser.NewChromeFetcher(ctx, browser.ChromeConfig{
		Headless:        cfg.Headless,
		UserAgent:       cfg.UserAgent,
		NavigateTimeout: cfg.NavigateTimeout,
	}, logger)

	pages := browser.NewRetryingFetcher(chrome,
		browser.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.FetchRateLimit), cfg.FetchRateBurst)),
		browser.WithMaxRetries(cfg.FetchRetries),
		browser.WithBackoffBase(cfg.FetchBackoff),
		browser.WithLogger(logger),
	)

	fetcher := depop.NewFetcher(pages, depop.FetcherConfig{
		Selectors: selectors,
		Groups:    cfg.SellerGroups,
		Gender:    cfg.SellerGender,
	}, logger)
	discoverer := depop.NewDiscoverer(fetcher, cfg.BrowseURL, logger)

	registry := search.NewRegistry(logger)
	orchestrator := search.NewOrchestrator(registry, fetcher, discoverer, search.Defaults{
		MaxItems:    cfg.DefaultMaxItems,
		MaxLinks:    cfg.DefaultMaxLinks,
		MaxLinksCap: cfg.MaxMaxLinks,
	}, logger)

	return orchestrator, chrome, nil
}

// initTelemetry initializes the invocation store and, when enabled, the OTLP
// exporters. The returned function flushes and shuts everything down.
func initTelemetry(cfg *config.Config, mode metrics.Mode, logger *log.Logger) func() {
	if err := metrics.InitWithPath(cfg.StatsDBPath); err != nil {
		logger.Printf("Warning: invocation metrics disabled: %v", err)
	}
	metrics.RecordInvocation(mode)

	shutdown, err := observability.Init(cfg)
	if err != nil {
		logger.Printf("Warning: OpenTelemetry initialization failed: %v", err)
	} else if cfg.OTelEnabled {
		if err := metrics.InitOTelMetrics(); err != nil {
			logger.Printf("Warning: failed to register invocation gauge: %v", err)
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Printf("Warning: telemetry shutdown: %v", err)
		}
		_ = metrics.Close()
	}
}
