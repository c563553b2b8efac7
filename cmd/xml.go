package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/redcanyon-sec/evtflat/internal/csvout"
	"github.com/redcanyon-sec/evtflat/internal/evtxml"
	"github.com/redcanyon-sec/evtflat/internal/input"
	"github.com/redcanyon-sec/evtflat/internal/record"
)

// Exit codes for the xml subcommand. Each failure class is distinct so
// callers can tell them apart without scraping stderr.
const (
	exitFailure  = 1
	exitNotFound = 2
	exitEmpty    = 3
	exitParse    = 4
)

var xmlCmd = &cobra.Command{
	Use:   "xml <input> [output]",
	Short: "Convert an Event-Schema XML document to CSV",
	Long: `Convert a Windows Event-Schema XML document to a single-row CSV.

Stray "- " line prefixes left by some export tools are stripped, and
multi-event wrapper documents are reduced to their first Event element
before parsing. Output defaults to ` + "`parsed_event.csv`" + `.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runXML(args); err != nil {
			reportXMLError(err)
			os.Exit(xmlExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(xmlCmd)
}

func runXML(args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	inPath := args[0]
	outPath := cfg.XMLOutput
	if len(args) > 1 {
		outPath = args[1]
	}

	content, err := input.ReadFile(inPath)
	if err != nil {
		return err
	}
	if content == "" {
		return fmt.Errorf("%w: %s", evtxml.ErrEmptyInput, inPath)
	}

	slog.Debug("parsing event XML", "input", inPath)
	rec, err := evtxml.Parse(content)
	if err != nil {
		return err
	}

	if err := csvout.Write(outPath, []record.Record{rec}); err != nil {
		return err
	}

	csvout.EchoKeyValues(os.Stdout, rec)
	fmt.Printf("\nResults saved to: %s\n", outPath)

	return nil
}

func reportXMLError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var pe *evtxml.ParseError
	if errors.As(err, &pe) && pe.Preview != "" {
		fmt.Fprintf(os.Stderr, "First %d characters of input:\n%s\n", len(pe.Preview), pe.Preview)
	}
}

func xmlExitCode(err error) int {
	var pe *evtxml.ParseError
	switch {
	case errors.Is(err, input.ErrNotFound):
		return exitNotFound
	case errors.Is(err, evtxml.ErrEmptyInput):
		return exitEmpty
	case errors.As(err, &pe):
		return exitParse
	}
	return exitFailure
}
