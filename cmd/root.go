package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fitseek",
	Short: "FitSeek - garment measurement search across marketplace listings",
	Long: `FitSeek finds secondhand garments that actually fit. It crawls marketplace
seller pages, extracts pit-to-pit and length measurements from free-text
listing descriptions, and streams the listings whose measurements fall
within your tolerances.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Optional .env for local development; missing file is fine.
		_ = godotenv.Load()
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
}
