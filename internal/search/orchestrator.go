package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fitseek/fitseek/internal/measure"
	"github.com/fitseek/fitseek/internal/types"
)

// sellerPoolSize bounds concurrent per-seller pipelines in browse-all mode.
// Fixed rather than per-request so the request volume against the site stays
// predictable.
const sellerPoolSize = 3

// eventBuffer decouples pipeline progress from a slow stream consumer.
const eventBuffer = 32

// errCancelled signals that a pipeline stopped because the job's
// cancellation flag was observed.
var errCancelled = errors.New("search cancelled")

var searchTracer = otel.Tracer("fitseek/search")

// ListingFetcher enumerates a seller's listings and fetches listing detail.
type ListingFetcher interface {
	ListSellerListings(ctx context.Context, seller string, maxLinks int) ([]string, error)
	FetchListingDetail(ctx context.Context, url string) (*types.Listing, error)
}

// SellerDiscoverer produces seller candidates for browse-all searches.
type SellerDiscoverer interface {
	DiscoverSellers(ctx context.Context, maxLinks int) (<-chan types.SellerCandidate, error)
}

// Defaults fills request fields the caller omitted.
type Defaults struct {
	MaxItems    int
	MaxLinks    int
	MaxLinksCap int
}

// Orchestrator validates search requests, registers jobs, drives the
// single-seller or browse-all pipeline and emits the event stream.
type Orchestrator struct {
	registry   *Registry
	fetcher    ListingFetcher
	discoverer SellerDiscoverer
	defaults   Defaults
	logger     *log.Logger

	searchesStarted   metric.Int64Counter
	listingsProcessed metric.Int64Counter
	matchesEmitted    metric.Int64Counter
}

// NewOrchestrator constructs an Orchestrator. The discoverer may be nil if
// browse-all mode is not needed (e.g. some tests); browse-all requests then
// fail validation.
func NewOrchestrator(registry *Registry, fetcher ListingFetcher, discoverer SellerDiscoverer, defaults Defaults, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(os.Stdout, "[search] ", log.LstdFlags)
	}

	o := &Orchestrator{
		registry:   registry,
		fetcher:    fetcher,
		discoverer: discoverer,
		defaults:   defaults,
		logger:     logger,
	}

	meter := otel.Meter("fitseek/search")
	var err error
	if o.searchesStarted, err = meter.Int64Counter("fitseek.searches.started",
		metric.WithDescription("Searches started, by mode")); err != nil {
		logger.Printf("metrics: failed to create searches counter: %v", err)
	}
	if o.listingsProcessed, err = meter.Int64Counter("fitseek.listings.processed",
		metric.WithDescription("Listing detail pages processed")); err != nil {
		logger.Printf("metrics: failed to create listings counter: %v", err)
	}
	if o.matchesEmitted, err = meter.Int64Counter("fitseek.matches.emitted",
		metric.WithDescription("Listings that passed the tolerance matcher")); err != nil {
		logger.Printf("metrics: failed to create matches counter: %v", err)
	}

	return o
}

// Registry returns the job registry this orchestrator reports to.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Normalize applies defaults and caps to a request in place. Tolerances of
// zero are treated as omitted, matching the wire behavior clients rely on.
func (o *Orchestrator) Normalize(req *types.SearchRequest) {
	if req.Category == "" {
		req.Category = types.CategoryTops
	}
	req.Seller = strings.Trim(strings.TrimPrefix(strings.TrimSpace(req.Seller), "@"), "/")

	if req.P2PTolerance == 0 {
		req.P2PTolerance = types.DefaultP2PTolerance
	}
	if req.LengthTolerance == 0 {
		req.LengthTolerance = types.DefaultLengthTolerance
	}
	if req.MaxItems <= 0 {
		req.MaxItems = o.defaults.MaxItems
	}
	if req.MaxLinks <= 0 {
		req.MaxLinks = o.defaults.MaxLinks
	}
	if o.defaults.MaxLinksCap > 0 && req.MaxLinks > o.defaults.MaxLinksCap {
		req.MaxLinks = o.defaults.MaxLinksCap
	}
}

// Validate rejects requests the pipeline cannot run. Called after Normalize.
func (o *Orchestrator) Validate(req *types.SearchRequest) error {
	if !req.Category.Valid() {
		return fmt.Errorf("unsupported category %q", req.Category)
	}
	if strings.TrimSpace(req.SearchID) == "" {
		return fmt.Errorf("searchId is required")
	}
	if req.P2PTolerance < 0 || req.LengthTolerance < 0 {
		return fmt.Errorf("tolerances must be non-negative")
	}
	for _, v := range []*float64{req.TargetP2P, req.TargetLength} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("targets must be finite numbers")
		}
	}
	if req.BrowseAll() && o.discoverer == nil {
		return fmt.Errorf("browse-all mode is not available")
	}
	return nil
}

// Run validates req, registers a job under its searchId and returns the
// event stream. The stream always carries exactly one terminal event
// (cancelled, done or error) and is then closed; the job is removed from the
// registry when the stream ends. Validation errors are returned
// synchronously and create no job.
func (o *Orchestrator) Run(ctx context.Context, req *types.SearchRequest) (<-chan Event, error) {
	r := *req
	o.Normalize(&r)
	if err := o.Validate(&r); err != nil {
		return nil, err
	}

	job, err := o.registry.Start(r.SearchID, r.MaxItems)
	if err != nil {
		return nil, err
	}

	events := make(chan Event, eventBuffer)
	go o.run(ctx, job, &r, events)
	return events, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job, req *types.SearchRequest, events chan<- Event) {
	defer close(events)
	defer o.registry.Remove(job.SearchID())

	// Derived context so helper goroutines never outlive the run.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mode := "seller"
	if req.BrowseAll() {
		mode = "browse"
	}

	ctx, span := searchTracer.Start(ctx, "search.run", trace.WithAttributes(
		attribute.String("search.id", req.SearchID),
		attribute.String("search.mode", mode),
	))
	defer span.End()

	o.count(ctx, o.searchesStarted, 1, attribute.String("mode", mode))

	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	emit(HelloEvent{SearchID: req.SearchID, Timestamp: time.Now().UTC()})

	var err error
	if req.BrowseAll() {
		err = o.runBrowseAll(ctx, job, req, emit)
	} else {
		err = o.runSeller(ctx, job, req, emit)
	}

	switch {
	case errors.Is(err, errCancelled), errors.Is(err, context.Canceled):
		job.finish(StateDone)
		emit(CancelledEvent{SearchID: req.SearchID})
		o.logger.Printf("[%s] cancelled", req.SearchID)
	case err != nil:
		job.finish(StateErrored)
		span.RecordError(err)
		emit(ErrorEvent{SearchID: req.SearchID, Message: err.Error()})
		o.logger.Printf("[%s] failed: %v", req.SearchID, err)
	default:
		job.finish(StateDone)
		emit(DoneEvent{SearchID: req.SearchID})
		processed, _, matches := job.Counters()
		o.logger.Printf("[%s] done: %d processed, %d matched", req.SearchID, processed, matches)
	}
}

// runSeller drives the sequential single-seller pipeline.
func (o *Orchestrator) runSeller(ctx context.Context, job *Job, req *types.SearchRequest, emit func(Event) bool) error {
	if !emit(ProgressEvent{SearchID: req.SearchID, Phase: "landing"}) {
		return ctx.Err()
	}

	links, err := o.fetcher.ListSellerListings(ctx, req.Seller, req.MaxLinks)
	if err != nil {
		return fmt.Errorf("enumerate listings for %s: %w", req.Seller, err)
	}
	job.AddTotal(len(links))

	if !emit(MetaEvent{SearchID: req.SearchID, Links: len(links), Seller: req.Seller}) {
		return ctx.Err()
	}

	return o.processListings(ctx, job, req, req.Seller, links, false, emit)
}

// runBrowseAll fans the per-seller pipeline out across discovered sellers
// through a bounded worker pool.
func (o *Orchestrator) runBrowseAll(ctx context.Context, job *Job, req *types.SearchRequest, emit func(Event) bool) error {
	if !emit(ProgressEvent{SearchID: req.SearchID, Phase: "browsing"}) {
		return ctx.Err()
	}

	candidates, err := o.discoverer.DiscoverSellers(ctx, req.MaxLinks)
	if err != nil {
		return fmt.Errorf("seller discovery: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sellerPoolSize)

	discovered := 0
	complete := true
	for candidate := range candidates {
		if job.Cancelled() || job.LimitReached() || gctx.Err() != nil {
			complete = false
			break
		}

		discovered++
		candidate := candidate
		g.Go(func() error {
			return o.runDiscoveredSeller(gctx, job, req, candidate, emit)
		})
	}

	if complete {
		emit(MetaEvent{SearchID: req.SearchID, Links: discovered})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if job.Cancelled() {
		return errCancelled
	}
	return ctx.Err()
}

// runDiscoveredSeller runs one seller's pipeline inside the browse-all pool.
// Cancellation is reported through the job flag rather than an error so
// sibling workers can let their in-flight fetches finish instead of being
// torn down.
func (o *Orchestrator) runDiscoveredSeller(ctx context.Context, job *Job, req *types.SearchRequest, candidate types.SellerCandidate, emit func(Event) bool) error {
	if job.Cancelled() || job.LimitReached() {
		return nil
	}

	processed, total, matches := job.Counters()
	if !emit(ProgressEvent{
		SearchID:  req.SearchID,
		Phase:     "seller",
		Seller:    candidate.Username,
		Processed: processed,
		Total:     total,
		Matches:   matches,
	}) {
		return ctx.Err()
	}

	links, err := o.fetcher.ListSellerListings(ctx, candidate.Username, req.MaxLinks)
	if err != nil {
		// One seller failing does not fail the whole browse.
		o.logger.Printf("[%s] seller %s index failed: %v", req.SearchID, candidate.Username, err)
		return nil
	}
	job.AddTotal(len(links))

	err = o.processListings(ctx, job, req, candidate.Username, links, true, emit)
	if errors.Is(err, errCancelled) {
		return nil
	}
	return err
}

// processListings walks listing URLs in discovery order, fetching, extracting
// and matching each one. Listings that cannot be fetched are skipped but
// still counted as processed.
func (o *Orchestrator) processListings(ctx context.Context, job *Job, req *types.SearchRequest, seller string, links []string, tagged bool, emit func(Event) bool) error {
	for _, link := range links {
		if job.Cancelled() {
			return errCancelled
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if job.LimitReached() {
			return nil
		}

		listing, err := o.fetcher.FetchListingDetail(ctx, link)
		job.AddProcessed()
		o.count(ctx, o.listingsProcessed, 1)

		if err != nil {
			o.logger.Printf("[%s] skipping %s: %v", req.SearchID, link, err)
		} else {
			m := measure.Extract(listing.Description)
			if measure.Matches(m, req) && job.TryAddMatch() {
				o.count(ctx, o.matchesEmitted, 1)

				match := MatchEvent{
					SearchID: req.SearchID,
					Item:     types.MatchResult{Listing: *listing, Measurement: m},
				}
				if tagged {
					match.Seller = seller
					match.Item.Seller = seller
				}
				if !emit(match) {
					return ctx.Err()
				}
			}
		}

		processed, total, matches := job.Counters()
		progress := ProgressEvent{
			SearchID:  req.SearchID,
			Phase:     "scanning",
			Processed: processed,
			Total:     total,
			Matches:   matches,
		}
		if tagged {
			progress.Seller = seller
		}
		if !emit(progress) {
			return ctx.Err()
		}

		if job.LimitReached() {
			return nil
		}
	}
	return nil
}

func (o *Orchestrator) count(ctx context.Context, counter metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(attrs...))
}
