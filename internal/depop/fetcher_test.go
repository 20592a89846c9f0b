package depop

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitseek/fitseek/internal/types"
)

// fakePages serves canned HTML keyed by URL.
type fakePages struct {
	pages  map[string]string
	visits []string
}

func (f *fakePages) Fetch(ctx context.Context, url string) (string, error) {
	f.visits = append(f.visits, url)
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func listingPage(seller string, sold int, description string) string {
	return fmt.Sprintf(`<html><body>
<a class="styles_username__zh8fr">@%s</a>
<div class="styles_signal__D2W6L"><p>%d sold</p></div>
<p aria-label="Price">$20.00</p>
<p class="styles_textWrapper__t">%s</p>
</body></html>`, seller, sold, description)
}

func sellerIndexPage(hrefs ...string) string {
	page := "<html><body><ul>"
	for _, href := range hrefs {
		page += fmt.Sprintf(`<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href=%q>item</a></li>`, href)
	}
	return page + "</ul></body></html>"
}

func newTestFetcher(t *testing.T, pages *fakePages) *Fetcher {
	t.Helper()
	return NewFetcher(pages, FetcherConfig{
		Selectors: testSelectors(t),
		Groups:    "tops",
		Gender:    "male",
	}, log.New(io.Discard, "", 0))
}

func TestSellerURL(t *testing.T) {
	f := newTestFetcher(t, &fakePages{})

	u := f.SellerURL("@acme/")
	assert.Equal(t, "https://www.depop.com/acme/?gender=male&groups=tops&sort=recent", u)
}

func TestListSellerListings(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://www.depop.com/acme/?gender=male&groups=tops&sort=recent": sellerIndexPage(
			"/products/a/", "/products/b/", "/products/a/",
		),
	}}
	f := newTestFetcher(t, pages)

	links, err := f.ListSellerListings(context.Background(), "acme", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.depop.com/products/a/",
		"https://www.depop.com/products/b/",
	}, links)
}

func TestListSellerListingsFetchError(t *testing.T) {
	f := newTestFetcher(t, &fakePages{pages: map[string]string{}})

	_, err := f.ListSellerListings(context.Background(), "ghost", 10)
	require.Error(t, err)
}

func TestFetchListingDetail(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://www.depop.com/products/a/": listingPage("acme", 75, "p2p 20in length 27in"),
	}}
	f := newTestFetcher(t, pages)

	listing, err := f.FetchListingDetail(context.Background(), "https://www.depop.com/products/a/")
	require.NoError(t, err)
	assert.Equal(t, "acme", listing.Seller)
	assert.Equal(t, 75, listing.SoldCount)
	assert.Equal(t, "$20.00", listing.Price)
	assert.Contains(t, listing.Description, "p2p 20in")
}

func TestDiscoverSellersFiltersBySoldCount(t *testing.T) {
	browseURL := "https://www.depop.com/ca/category/mens/tops/?sort=newlyListed"
	pages := &fakePages{pages: map[string]string{
		browseURL: sellerIndexPage("/products/a/", "/products/b/", "/products/c/"),
		"https://www.depop.com/products/a/": listingPage("smallfry", 40, "tee"),
		"https://www.depop.com/products/b/": listingPage("bigshop", 60, "tee"),
		"https://www.depop.com/products/c/": listingPage("bigshop", 60, "another tee"),
	}}
	f := newTestFetcher(t, pages)
	d := NewDiscoverer(f, browseURL, log.New(io.Discard, "", 0))

	ch, err := d.DiscoverSellers(context.Background(), 10)
	require.NoError(t, err)

	var got []types.SellerCandidate
	for c := range ch {
		got = append(got, c)
	}

	// Only the seller at or above the threshold, once despite two listings.
	require.Len(t, got, 1)
	assert.Equal(t, "bigshop", got[0].Username)
	assert.Equal(t, 60, got[0].SoldItemsCount)
}

func TestDiscoverSellersSkipsUnfetchableListings(t *testing.T) {
	browseURL := "https://www.depop.com/ca/category/mens/tops/?sort=newlyListed"
	pages := &fakePages{pages: map[string]string{
		browseURL: sellerIndexPage("/products/broken/", "/products/ok/"),
		"https://www.depop.com/products/ok/": listingPage("survivor", 90, "tee"),
	}}
	f := newTestFetcher(t, pages)
	d := NewDiscoverer(f, browseURL, log.New(io.Discard, "", 0))

	ch, err := d.DiscoverSellers(context.Background(), 10)
	require.NoError(t, err)

	var got []types.SellerCandidate
	for c := range ch {
		got = append(got, c)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "survivor", got[0].Username)
}

func TestDiscoverSellersLandingFailure(t *testing.T) {
	f := newTestFetcher(t, &fakePages{pages: map[string]string{}})
	d := NewDiscoverer(f, "https://www.depop.com/ca/category/mens/tops/", log.New(io.Discard, "", 0))

	_, err := d.DiscoverSellers(context.Background(), 10)
	require.Error(t, err)
}

func TestLoadSelectorsEmbeddedDefault(t *testing.T) {
	sel, err := LoadSelectors("")
	require.NoError(t, err)
	assert.NotEmpty(t, sel.ListingLinks)
	assert.NotEmpty(t, sel.Description)
	assert.NotEmpty(t, sel.Price)
}

func TestLoadSelectorsMissingOverride(t *testing.T) {
	_, err := LoadSelectors("/nonexistent/selectors.yaml")
	require.Error(t, err)
}
