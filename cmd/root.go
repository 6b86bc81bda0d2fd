package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/photo-bracket/photo-bracket/bracket/journal"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Path to photo-bracket.yaml

	// cfg is filled in by the root command before any subcommand runs.
	cfg Config
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "photo-bracket",
	Short:         "Cull photos by judging them two at a time",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadDotEnv()
		c, err := LoadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		// Flags win over environment, which wins over the file.
		if cmd.Flags().Changed("log") {
			c.Log = logLevel
		}
		level, err := logrus.ParseLevel(c.Log)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		cfg = c
		return nil
	},
}

// openJournal opens the configured journal, or returns nil when journaling
// is disabled.
func openJournal(ctx context.Context, jc JournalConfig) (*journal.Store, error) {
	if jc.Driver == journalDisabled {
		return nil, nil
	}
	return journal.Open(ctx, jc.Driver, jc.DSN)
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to the YAML config file")

	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sessionsCmd)
}
