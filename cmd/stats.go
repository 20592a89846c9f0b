package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative invocation counts",
	Long: `
The stats command prints how many times each fitseek mode has been invoked,
read from the local SQLite store.
`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := metrics.InitWithPath(cfg.StatsDBPath); err != nil {
		return fmt.Errorf("failed to open stats store: %w", err)
	}
	defer func() { _ = metrics.Close() }()

	stats := metrics.GetStats()
	if stats == nil {
		return fmt.Errorf("stats store is not available")
	}

	var total int64
	for _, mode := range []metrics.Mode{metrics.ModeServe, metrics.ModeSearch, metrics.ModeParse} {
		fmt.Printf("%-8s %d\n", mode, stats[mode])
		total += stats[mode]
	}
	fmt.Printf("%-8s %d\n", "total", total)

	return nil
}
