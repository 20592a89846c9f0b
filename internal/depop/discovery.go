package depop

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fitseek/fitseek/internal/types"
)

// MinSoldItems is the reputation floor for browse-all mode. Sellers below it
// are never handed to the per-seller pipeline.
const MinSoldItems = 50

// Discoverer crawls the category landing surface and produces seller
// candidates for browse-all searches.
type Discoverer struct {
	fetcher   *Fetcher
	browseURL string
	logger    *log.Logger
}

// NewDiscoverer constructs a Discoverer rooted at browseURL.
func NewDiscoverer(fetcher *Fetcher, browseURL string, logger *log.Logger) *Discoverer {
	if logger == nil {
		logger = log.New(os.Stdout, "[discover] ", log.LstdFlags)
	}
	return &Discoverer{
		fetcher:   fetcher,
		browseURL: browseURL,
		logger:    logger,
	}
}

// DiscoverSellers crawls the category landing page, examines up to maxLinks
// candidate listings, and yields each distinct seller whose sold-items count
// meets MinSoldItems. Candidates are sent as soon as they are found so the
// caller can start per-seller work before discovery finishes; the channel is
// closed when discovery is done or ctx is cancelled.
//
// A failure to fetch the landing surface itself is returned synchronously;
// individual listings that cannot be fetched or parsed are skipped.
func (d *Discoverer) DiscoverSellers(ctx context.Context, maxLinks int) (<-chan types.SellerCandidate, error) {
	html, err := d.fetcher.pages.Fetch(ctx, d.browseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category landing page: %w", err)
	}

	links, err := d.fetcher.CollectLinks(html, d.browseURL, maxLinks)
	if err != nil {
		return nil, fmt.Errorf("collect landing page links: %w", err)
	}
	d.logger.Printf("examining %d candidate listings", len(links))

	out := make(chan types.SellerCandidate)

	go func() {
		defer close(out)

		seen := make(map[string]struct{})
		for _, link := range links {
			select {
			case <-ctx.Done():
				return
			default:
			}

			listing, err := d.fetcher.FetchListingDetail(ctx, link)
			if err != nil {
				d.logger.Printf("skipping %s: %v", link, err)
				continue
			}

			if listing.Seller == "" {
				continue
			}
			if _, dup := seen[listing.Seller]; dup {
				continue
			}
			seen[listing.Seller] = struct{}{}

			if listing.SoldCount < MinSoldItems {
				d.logger.Printf("seller %s below threshold (%d sold)", listing.Seller, listing.SoldCount)
				continue
			}

			candidate := types.SellerCandidate{
				Username:       listing.Seller,
				SoldItemsCount: listing.SoldCount,
			}

			select {
			case out <- candidate:
				d.logger.Printf("discovered seller %s (%d sold)", candidate.Username, candidate.SoldItemsCount)
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
