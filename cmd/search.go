package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/metrics"
	"github.com/fitseek/fitseek/internal/search"
	"github.com/fitseek/fitseek/internal/types"
)

var (
	searchSeller    string
	searchP2P       float64
	searchLength    float64
	searchP2PTol    float64
	searchLengthTol float64
	searchMaxItems  int
	searchMaxLinks  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot measurement search from the terminal",
	Long: `
The search command runs a single search and prints every stream event as one
JSON object per line (NDJSON). Omit --seller to browse the whole category and
discover high-volume sellers.

Examples:
  # Search one seller for tops around 21" pit-to-pit
  fitseek search --seller acmevintage --p2p 21

  # Browse-all mode, both measurements, tight tolerances
  fitseek search --p2p 21 --p2p-tol 0.5 --length 27 --length-tol 0.5
`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchSeller, "seller", "s", "",
		"Seller username to search (empty = browse-all mode)")
	searchCmd.Flags().Float64Var(&searchP2P, "p2p", 0,
		"Target pit-to-pit in inches")
	searchCmd.Flags().Float64Var(&searchLength, "length", 0,
		"Target length in inches")
	searchCmd.Flags().Float64Var(&searchP2PTol, "p2p-tol", types.DefaultP2PTolerance,
		"Pit-to-pit tolerance in inches")
	searchCmd.Flags().Float64Var(&searchLengthTol, "length-tol", types.DefaultLengthTolerance,
		"Length tolerance in inches")
	searchCmd.Flags().IntVar(&searchMaxItems, "max-items", 0,
		"Stop after this many matches (0 = configured default)")
	searchCmd.Flags().IntVar(&searchMaxLinks, "max-links", 0,
		"Cap on listing links collected per page (0 = configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "[search] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	req := &types.SearchRequest{
		Seller:          searchSeller,
		P2PTolerance:    searchP2PTol,
		LengthTolerance: searchLengthTol,
		MaxItems:        searchMaxItems,
		MaxLinks:        searchMaxLinks,
		SearchID:        uuid.New().String(),
	}
	if cmd.Flags().Changed("p2p") {
		req.TargetP2P = types.Float64Ptr(searchP2P)
	}
	if cmd.Flags().Changed("length") {
		req.TargetLength = types.Float64Ptr(searchLength)
	}
	if req.TargetP2P == nil && req.TargetLength == nil {
		return fmt.Errorf("at least one of --p2p or --length is required")
	}

	shutdownTelemetry := initTelemetry(cfg, metrics.ModeSearch, logger)
	defer shutdownTelemetry()

	// Ctrl-C unwinds the pipeline through its cancellation path, so the
	// stream still ends with a cancelled event.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator, chrome, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chrome.Close()

	events, err := orchestrator.Run(ctx, req)
	if err != nil {
		return err
	}

	for event := range events {
		data, err := search.MarshalEvent(event)
		if err != nil {
			logger.Printf("Failed to marshal %s event: %v", event.Kind(), err)
			continue
		}
		fmt.Println(string(data))
	}

	return nil
}
