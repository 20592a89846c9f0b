package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/measure"
	"github.com/fitseek/fitseek/internal/metrics"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Extract measurements from a listing description",
	Long: `
The parse command runs the measurement extractor against a piece of listing
text and prints what it found as JSON. Reads stdin when no argument is given.

Examples:
  fitseek parse "Pit to pit 21in, length 27.5 inches"
  pbpaste | fitseek parse
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "[parse] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	shutdownTelemetry := initTelemetry(cfg, metrics.ModeParse, logger)
	defer shutdownTelemetry()

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to parse")
	}

	m := measure.Extract(text)
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode measurement: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
