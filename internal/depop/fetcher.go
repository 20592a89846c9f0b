package depop

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fitseek/fitseek/internal/browser"
	"github.com/fitseek/fitseek/internal/types"
)

// Fetcher retrieves seller listing indexes and listing detail pages. All
// network access goes through the injected PageFetcher; this type owns only
// the site-specific URL construction and markup interpretation.
type Fetcher struct {
	pages     browser.PageFetcher
	selectors *Selectors
	groups    string
	gender    string
	logger    *log.Logger
	now       func() time.Time
}

// FetcherConfig holds the marketplace settings for a Fetcher.
type FetcherConfig struct {
	Selectors *Selectors
	// Groups and Gender filter a seller's shop page server-side so the index
	// only carries the category under search.
	Groups string
	Gender string
}

// NewFetcher constructs a Fetcher.
func NewFetcher(pages browser.PageFetcher, cfg FetcherConfig, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(os.Stdout, "[depop] ", log.LstdFlags)
	}
	return &Fetcher{
		pages:     pages,
		selectors: cfg.Selectors,
		groups:    cfg.Groups,
		gender:    cfg.Gender,
		logger:    logger,
		now:       time.Now,
	}
}

// SellerURL builds a seller shop URL with sort and category filters applied.
func (f *Fetcher) SellerURL(seller string) string {
	name := strings.Trim(strings.TrimPrefix(strings.TrimSpace(seller), "@"), "/")
	base := fmt.Sprintf("https://www.depop.com/%s/", name)

	params := url.Values{}
	params.Set("sort", "recent")
	if f.groups != "" {
		params.Set("groups", f.groups)
	}
	if f.gender != "" {
		params.Set("gender", f.gender)
	}
	return base + "?" + params.Encode()
}

// ListSellerListings fetches a seller's listing index and returns up to
// maxLinks listing URLs in discovery order, deduplicated.
func (f *Fetcher) ListSellerListings(ctx context.Context, seller string, maxLinks int) ([]string, error) {
	indexURL := f.SellerURL(seller)
	f.logger.Printf("listing index for %s: %s", seller, indexURL)

	html, err := f.pages.Fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch seller index for %s: %w", seller, err)
	}

	links, err := collectListingLinks(html, indexURL, maxLinks, f.selectors)
	if err != nil {
		return nil, err
	}

	f.logger.Printf("collected %d links for %s", len(links), seller)
	return links, nil
}

// FetchListingDetail fetches and parses one listing detail page.
func (f *Fetcher) FetchListingDetail(ctx context.Context, listingURL string) (*types.Listing, error) {
	html, err := f.pages.Fetch(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return parseListing(html, listingURL, f.now(), f.selectors)
}

// CollectLinks parses listing links out of an already-fetched index page.
// Used by the seller discoverer, which fetches the category landing surface
// itself.
func (f *Fetcher) CollectLinks(html, base string, maxLinks int) ([]string, error) {
	return collectListingLinks(html, base, maxLinks, f.selectors)
}
