package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redcanyon-sec/evtflat/internal/config"
	"github.com/redcanyon-sec/evtflat/internal/logging"
)

var (
	// Flags
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "evtflat",
	Short: "Flatten Windows Security Event logs to CSV",
	Long: `evtflat extracts process-creation fields (actor, process identity,
command line, hash) from Windows Security Event log exports and writes
them as CSV rows.

Two input formats are supported: plain-text exports containing one or
more "Log Name:" blocks, and single-event Event-Schema XML documents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env: EVTFLAT_LOG_LEVEL)")
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("evtflat %s\n", version))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the effective config and initializes logging. The
// log-level flag wins over config and environment.
func setup() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}
