package types

import "time"

// Category identifies the garment category a search runs against.
type Category string

const (
	// CategoryTops is the only category currently supported; the measurement
	// extractor understands pit-to-pit and length, which only make sense for
	// tops.
	CategoryTops Category = "tops"
)

// Valid reports whether the category is one the search pipeline supports.
func (c Category) Valid() bool {
	return c == CategoryTops
}

// Default tolerances applied when the caller omits them.
const (
	DefaultP2PTolerance    = 1.0
	DefaultLengthTolerance = 0.5
)

// SearchRequest describes one measurement search. Seller empty means
// browse-all mode: sellers are discovered from the category landing page.
type SearchRequest struct {
	Category        Category `json:"category"`
	TargetP2P       *float64 `json:"targetP2P"`
	TargetLength    *float64 `json:"targetLength"`
	P2PTolerance    float64  `json:"p2pTolerance"`
	LengthTolerance float64  `json:"lengthTolerance"`
	Seller          string   `json:"seller"`
	MaxItems        int      `json:"maxItems"`
	MaxLinks        int      `json:"maxLinks"`
	SearchID        string   `json:"searchId"`
}

// BrowseAll reports whether the request fans out across discovered sellers.
func (r *SearchRequest) BrowseAll() bool {
	return r.Seller == ""
}

// Listing is an immutable snapshot of one marketplace listing detail page.
type Listing struct {
	URL         string     `json:"url"`
	Price       string     `json:"price"`
	Image       *string    `json:"image"`
	Description string     `json:"description"`
	ListedAt    *time.Time `json:"listedAt,omitempty"`
	AgeDays     *float64   `json:"ageDays"`
	Seller      string     `json:"seller"`
	SoldCount   int        `json:"soldCount"`
}

// Measurement holds the values extracted from a listing description. Either
// field may be nil; not every listing states both measurements.
type Measurement struct {
	P2P    *float64 `json:"p2p"`
	Length *float64 `json:"length"`
}

// MatchResult pairs a listing with its extracted measurement. Only produced
// for listings that satisfied the request tolerances.
type MatchResult struct {
	Listing     Listing     `json:"listing"`
	Measurement Measurement `json:"measurement"`
	Seller      string      `json:"seller,omitempty"`
}

// SellerCandidate is a seller discovered from the category landing surface in
// browse-all mode. Only candidates meeting the discovery sold-items threshold
// are yielded.
type SellerCandidate struct {
	Username       string `json:"username"`
	SoldItemsCount int    `json:"soldItemsCount"`
}

// Float64Ptr returns a pointer to v. Convenience for building requests.
func Float64Ptr(v float64) *float64 {
	return &v
}
