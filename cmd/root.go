// =============================================================================
// Order Report Summary - Root Command
// =============================================================================
//
// COBRA CLI STRUCTURE:
//   rootCmd (orders)
//   ├── processCmd  (orders process)
//   ├── generateCmd (orders generate)
//   ├── initCmd     (orders init)
//   └── versionCmd  (orders version)
//
// Before any subcommand runs, the root command:
//   1. Loads the configuration (file, ORDERS_* environment, command flags)
//   2. Builds the logger and attaches it to the command context
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/order-report-summary/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig is the configuration loaded for the running command.
var appConfig *config.Config

// runID identifies this invocation in logs and outputs.
var runID = uuid.NewString()

// flagKeys maps command flags to configuration keys they override.
var flagKeys = map[string]string{
	"data-dir": "data_dir",
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "orders",
	Short: "Order report summary - validate, price and summarize daily order reports",
	Long: `Reads daily order reports named YYYY_MM_DD.xlsx from the data directory,
quarantines invalid rows, prices valid orders with tax, writes one report
workbook per day and a summary workbook with totals and charts.

Example Usage:
  orders generate --count 3            # Create three fake daily reports
  orders process                       # Process the data directory
  orders process --config ./prod.yaml  # Use a custom configuration file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: loadConfig,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and attaches a logger to the command
// context.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if err := config.Bind(v, cfgFile); err != nil {
		return err
	}

	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	logger = logger.With().Str("run_id", runID).Logger()

	appConfig = cfg
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
