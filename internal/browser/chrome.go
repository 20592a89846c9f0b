package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher renders pages in a headless Chrome instance. One allocator
// is shared across fetches; each fetch runs in its own tab so concurrent
// callers don't interfere with each other's navigation state.
type ChromeFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
	scrollPass  int
	logger      *log.Logger
}

// ChromeConfig holds the browser launch settings.
type ChromeConfig struct {
	Headless        bool
	UserAgent       string
	NavigateTimeout time.Duration
	// ScrollPasses bounds how many times a page is scrolled to trigger lazy
	// loading. Detail pages stop after the first pass; index pages keep
	// going until the document stops growing.
	ScrollPasses int
}

// dismissChromeJS clears cookie banners and the login modal, then drops the
// "Sold items" section so its listings never enter the crawl.
const dismissChromeJS = `
(() => {
	const clickByText = (texts) => {
		const buttons = Array.from(document.querySelectorAll('button'));
		for (const t of texts) {
			const b = buttons.find(el => (el.textContent || '').trim().toLowerCase().includes(t));
			if (b && b.offsetParent !== null) { b.click(); return true; }
		}
		return false;
	};
	clickByText(['accept', 'i agree', 'agree', 'got it']);

	const modal = document.querySelector('[class*="Modal"], [role="dialog"]');
	if (modal) {
		const close = Array.from(modal.querySelectorAll('button')).find(el => {
			const t = (el.textContent || '').trim().toLowerCase();
			return !t.includes('sign up') && !t.includes('log in') && el.offsetParent !== null;
		});
		if (close) close.click();
	}

	const headings = Array.from(document.querySelectorAll('p, h2, h3'));
	for (const h of headings) {
		if ((h.textContent || '').trim().toLowerCase() === 'sold items') {
			const section = h.closest('section') || h.parentElement;
			if (section) section.remove();
		}
	}
	return true;
})();
`

// NewChromeFetcher launches the shared allocator. Call Close when done.
func NewChromeFetcher(parent context.Context, cfg ChromeConfig, logger *log.Logger) *ChromeFetcher {
	if logger == nil {
		logger = log.New(os.Stdout, "[chrome] ", log.LstdFlags)
	}
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if cfg.ScrollPasses <= 0 {
		cfg.ScrollPasses = 8
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)

	return &ChromeFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		navTimeout:  cfg.NavigateTimeout,
		scrollPass:  cfg.ScrollPasses,
		logger:      logger,
	}
}

// Close tears down the browser allocator.
func (f *ChromeFetcher) Close() {
	f.cancelAlloc()
}

// Fetch navigates a fresh tab to url and returns the rendered document
// after lazy content has been scrolled into the DOM.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.navTimeout)
	defer cancelTimeout()

	// Honor caller cancellation without forcing it into the tab hierarchy.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-done:
		}
	}()

	var dismissed bool
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Evaluate(dismissChromeJS, &dismissed),
	); err != nil {
		return "", fmt.Errorf("%w: navigate %s: %v", ErrFetchFailed, url, err)
	}

	if err := f.scrollToEnd(tabCtx); err != nil {
		f.logger.Printf("scroll %s: %v", url, err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("%w: read document %s: %v", ErrFetchFailed, url, err)
	}
	return html, nil
}

// scrollToEnd scrolls the page until its height stops growing or the pass
// limit is hit.
func (f *ChromeFetcher) scrollToEnd(ctx context.Context) error {
	lastHeight := -1
	for pass := 0; pass < f.scrollPass; pass++ {
		var height int
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(`(() => { window.scrollBy(0, document.body.scrollHeight); return document.body.scrollHeight; })()`, &height),
			chromedp.Sleep(1200*time.Millisecond),
		); err != nil {
			return err
		}
		if height == lastHeight {
			break
		}
		lastHeight = height
	}
	return nil
}
