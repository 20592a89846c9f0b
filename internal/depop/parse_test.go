package depop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSelectors(t *testing.T) *Selectors {
	t.Helper()
	sel, err := LoadSelectors("")
	require.NoError(t, err)
	return sel
}

const detailHTML = `<html><body>
<a class="styles_username__zh8fr" href="/acme/">@acme</a>
<div class="styles_signal__D2W6L"><p>120 sold</p></div>
<p aria-label="Price">$45.00</p>
<img class="styles_imageItem__UWJs6" src="https://media.example/img1.jpg">
<time datetime="2026-08-26T12:00:00Z">3 days ago</time>
<p class="styles_textWrapper__abc">Vintage tee. P2P: 21in, length 28in. No flaws.</p>
</body></html>`

func TestParseListingFullDetail(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	listing, err := parseListing(detailHTML, "https://www.depop.com/products/acme-tee/", now, testSelectors(t))
	require.NoError(t, err)

	assert.Equal(t, "https://www.depop.com/products/acme-tee/", listing.URL)
	assert.Equal(t, "$45.00", listing.Price)
	assert.Equal(t, "acme", listing.Seller)
	assert.Equal(t, 120, listing.SoldCount)
	assert.Contains(t, listing.Description, "P2P: 21in")
	require.NotNil(t, listing.Image)
	assert.Equal(t, "https://media.example/img1.jpg", *listing.Image)
	require.NotNil(t, listing.AgeDays)
	assert.InDelta(t, 3.0, *listing.AgeDays, 0.01)
}

func TestParseListingDegradesMissingFields(t *testing.T) {
	html := `<html><body><p class="styles_textWrapper__x">just a description</p></body></html>`

	listing, err := parseListing(html, "https://www.depop.com/products/x/", time.Now(), testSelectors(t))
	require.NoError(t, err)

	assert.Equal(t, "just a description", listing.Description)
	assert.Empty(t, listing.Price)
	assert.Nil(t, listing.Image)
	assert.Empty(t, listing.Seller)
	assert.Zero(t, listing.SoldCount)
	assert.Nil(t, listing.AgeDays)
	assert.Nil(t, listing.ListedAt)
}

func TestParseListingPriceBodyFallback(t *testing.T) {
	html := `<html><body><div>Nice shirt for £12.50 shipped</div></body></html>`

	listing, err := parseListing(html, "https://www.depop.com/products/y/", time.Now(), testSelectors(t))
	require.NoError(t, err)
	assert.Equal(t, "£12.50", listing.Price)
}

func TestParseListingSrcsetPrefersLastCandidate(t *testing.T) {
	html := `<html><body>
<img srcset="https://m.example/a_150.jpg 150w, https://m.example/a_1280.jpg 1280w" src="https://m.example/a_150.jpg">
</body></html>`

	listing, err := parseListing(html, "https://www.depop.com/products/z/", time.Now(), testSelectors(t))
	require.NoError(t, err)
	require.NotNil(t, listing.Image)
	assert.Equal(t, "https://m.example/a_1280.jpg", *listing.Image)
}

func TestParseListingRelativeTimeFallback(t *testing.T) {
	html := `<html><body><time datetime="not-a-date">2 weeks ago</time></body></html>`
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	listing, err := parseListing(html, "https://www.depop.com/products/w/", now, testSelectors(t))
	require.NoError(t, err)
	require.NotNil(t, listing.AgeDays)
	assert.InDelta(t, 14.0, *listing.AgeDays, 0.01)
}

const indexHTML = `<html><body><ul>
<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href="/products/item-1/">one</a></li>
<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href="/products/item-2/">two</a></li>
<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href="/products/item-1/">one again</a></li>
<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href="/products/item-3/">Sold</a></li>
<li class="styles_listItem__Uv9lb"><a class="styles_unstyledLink__DsttP" href="/products/item-4/">four</a></li>
</ul></body></html>`

func TestCollectListingLinksDedupesAndSkipsSold(t *testing.T) {
	links, err := collectListingLinks(indexHTML, "https://www.depop.com/acme/", 0, testSelectors(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.depop.com/products/item-1/",
		"https://www.depop.com/products/item-2/",
		"https://www.depop.com/products/item-4/",
	}, links)
}

func TestCollectListingLinksHonorsMaxLinks(t *testing.T) {
	links, err := collectListingLinks(indexHTML, "https://www.depop.com/acme/", 2, testSelectors(t))
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestCollectListingLinksFallbackSelector(t *testing.T) {
	// Hashed class names rotated away; the loose anchor selector still works.
	html := `<html><body>
<a href="/products/item-9/">nine</a>
<a href="/sellers/not-a-product/">nope</a>
</body></html>`

	links, err := collectListingLinks(html, "https://www.depop.com/", 0, testSelectors(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.depop.com/products/item-9/"}, links)
}

func TestParseISOTime(t *testing.T) {
	ts, ok := parseISOTime("2026-08-26T12:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), ts)

	ts, ok = parseISOTime("2026-08-26T12:00:00+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC), ts)

	_, ok = parseISOTime("garbage")
	assert.False(t, ok)
}

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	ts, ok := parseRelativeTime("listed 5 hours ago", now)
	require.True(t, ok)
	assert.Equal(t, now.Add(-5*time.Hour), ts)

	_, ok = parseRelativeTime("listed yesterday", now)
	assert.False(t, ok)
}
