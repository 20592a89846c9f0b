package depop

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fitseek/fitseek/internal/types"
)

var (
	priceRx = regexp.MustCompile(`([$£€]\s?\d[\d,]*(?:\.\d{2})?)`)
	soldRx  = regexp.MustCompile(`(\d+)\s*sold`)
)

// parseListing extracts a Listing from a rendered detail page. Every field
// degrades independently: a listing with a missing price or image is still
// usable, only an unparsable document is an error.
func parseListing(html, pageURL string, now time.Time, sel *Selectors) (*types.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing document %s: %w", pageURL, err)
	}

	listing := &types.Listing{
		URL:         pageURL,
		Description: firstText(doc, sel.Description),
	}

	listing.Price = extractPrice(doc, sel)
	listing.Image = extractImage(doc, sel)
	listing.Seller = strings.TrimPrefix(firstText(doc, sel.Seller), "@")
	listing.SoldCount = extractSoldCount(doc, sel)
	listing.ListedAt, listing.AgeDays = extractListedAt(doc, now, sel)

	return listing, nil
}

// firstText walks the selector chain and returns the first non-empty text.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, s := range selectors {
		text := strings.TrimSpace(doc.Find(s).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func extractPrice(doc *goquery.Document, sel *Selectors) string {
	if price := firstText(doc, sel.Price); price != "" {
		return price
	}
	// Last resort: scan the whole body for a currency amount.
	if m := priceRx.FindString(doc.Find("body").Text()); m != "" {
		return m
	}
	return ""
}

func extractImage(doc *goquery.Document, sel *Selectors) *string {
	for _, s := range sel.Image {
		img := doc.Find(s).First()
		if img.Length() == 0 {
			continue
		}
		if srcset, ok := img.Attr("srcset"); ok && strings.TrimSpace(srcset) != "" {
			// The last srcset candidate is the highest resolution.
			parts := strings.Split(srcset, ",")
			last := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
			if len(last) > 0 {
				u := last[0]
				return &u
			}
		}
		if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
			u := strings.TrimSpace(src)
			return &u
		}
	}
	return nil
}

func extractSoldCount(doc *goquery.Document, sel *Selectors) int {
	count := 0
	for _, s := range sel.SoldSignal {
		doc.Find(s).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if m := soldRx.FindStringSubmatch(node.Text()); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					count = n
					return false
				}
			}
			return true
		})
		if count > 0 {
			break
		}
	}
	return count
}

func extractListedAt(doc *goquery.Document, now time.Time, sel *Selectors) (*time.Time, *float64) {
	for _, s := range sel.ListedTime {
		node := doc.Find(s).First()
		if node.Length() == 0 {
			continue
		}

		if attr, ok := node.Attr("datetime"); ok {
			if ts, parsed := parseISOTime(attr); parsed {
				age := ageDaysFrom(ts, now)
				return &ts, &age
			}
		}

		if ts, parsed := parseRelativeTime(node.Text(), now); parsed {
			age := ageDaysFrom(ts, now)
			return &ts, &age
		}
	}
	return nil, nil
}

// collectListingLinks pulls product links out of a rendered index page in
// document order, deduplicated and resolved against base. Cards inside sold
// sections are skipped. maxLinks <= 0 means unbounded.
func collectListingLinks(html, base string, maxLinks int, sel *Selectors) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse index document: %w", err)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", base, err)
	}

	seen := make(map[string]struct{})
	var ordered []string

	for _, s := range sel.ListingLinks {
		doc.Find(s).EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
			href, ok := anchor.Attr("href")
			if !ok || href == "" {
				return true
			}

			// Skip cards the site marks as sold.
			if card := anchor.Closest("li"); card.Length() > 0 {
				if strings.Contains(strings.ToLower(card.Text()), "sold") {
					return true
				}
			}

			ref, err := url.Parse(href)
			if err != nil {
				return true
			}
			full := baseURL.ResolveReference(ref).String()

			if _, dup := seen[full]; dup {
				return true
			}
			seen[full] = struct{}{}
			ordered = append(ordered, full)

			return maxLinks <= 0 || len(ordered) < maxLinks
		})

		if maxLinks > 0 && len(ordered) >= maxLinks {
			break
		}
	}

	return ordered, nil
}
