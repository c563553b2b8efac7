package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redcanyon-sec/evtflat/internal/csvout"
	"github.com/redcanyon-sec/evtflat/internal/input"
	"github.com/redcanyon-sec/evtflat/internal/textlog"
)

var textCmd = &cobra.Command{
	Use:   "text [input] [output]",
	Short: "Convert a plain-text event log export to CSV",
	Long: `Convert a plain-text Windows Security Event log export to CSV.

The input is split into blocks at every line starting with "Log Name:".
One CSV row is written per block that yields at least one recognized
field. Input defaults to ` + "`event_logs.txt`" + ` and output to
` + "`parsed_events.csv`" + `.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	inPath := cfg.TextInput
	outPath := cfg.TextOutput
	if len(args) > 0 {
		inPath = args[0]
	}
	if len(args) > 1 {
		outPath = args[1]
	}

	content, err := input.ReadFile(inPath)
	if err != nil {
		if errors.Is(err, input.ErrNotFound) {
			return fmt.Errorf("input file %q not found; create it and paste your event logs into it", inPath)
		}
		return err
	}

	slog.Debug("parsing text log", "input", inPath)
	records := textlog.ParseBlocks(content)

	// Extraction is complete before anything is written, so a failure
	// here never corrupts an existing output file.
	if err := csvout.Write(outPath, records); err != nil {
		return err
	}

	if err := csvout.Echo(os.Stdout, records); err != nil {
		return err
	}

	rule := strings.Repeat("=", 80)
	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("Successfully parsed %d events\n", len(records))
	fmt.Printf("Results saved to: %s\n", outPath)
	fmt.Println(rule)

	return nil
}
