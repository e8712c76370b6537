package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/config"
	"github.com/pable/squawka-xg/internal/logger"
	"github.com/pable/squawka-xg/internal/squawka"
)

var (
	dbPath    string
	logLevel  string
	breaks    int
	goalsOnly bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "squawka",
	Short: "Squawka match feed xG tool",
	Long: `Parse Squawka match XML feeds, rebuild the build-up to every shot and
extract expected-goals features.

Settings are read from defaults, a YAML file named by SQUAWKA_CONFIG,
SQUAWKA_* environment variables (a .env file is honoured) and finally flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.squawka/xg.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&breaks, "breaks", 1, "possession changes a build-up may span")
	rootCmd.PersistentFlags().BoolVar(&goalsOnly, "goals-only", false, "only sequence attempts that were scored")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig layers explicitly set flags over config.Load and starts logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("breaks") {
		c.Breaks = breaks
	}
	if flags.Changed("goals-only") {
		c.GoalsOnly = goalsOnly
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := logger.Init(os.Stderr, c.LogLevel); err != nil {
		return err
	}
	cfg = c
	return nil
}

func sequenceOptions() squawka.SequenceOptions {
	return squawka.SequenceOptions{Breaks: cfg.Breaks, FilterGoals: cfg.GoalsOnly}
}
