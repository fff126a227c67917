// =============================================================================
// Order Report Summary - Process Command
// =============================================================================
//
// COMMAND USAGE:
//   orders process [flags]
//
// FLAGS:
//   --data-dir    : Directory scanned for YYYY_MM_DD.xlsx reports
//                   (overrides data_dir from the configuration)
//
// The run fails when the data directory holds no report, or when a report
// cannot be read or an output cannot be written. Invalid rows never fail a
// run; they are quarantined to the errors directory.
//
// =============================================================================

package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-report-summary/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate, price and summarize the daily reports",
	Long: `The process command reads every daily report in the data directory,
validates each row, prices the valid orders and writes:

  - reports/<YYYY_MM_DD>_report.xlsx for every input report
  - <errors_dir>/<YYYY_MM_DD>_errors.json for reports with invalid rows
  - the summary workbook with combined data, totals and charts

Outputs of a previous run are removed first unless clean_outputs is false.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String(
		"data-dir",
		"",
		"Directory containing the daily reports",
	)
}

// runProcess runs the pipeline once over the data directory.
func runProcess(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	runner, err := pipeline.New(appConfig, runID)
	if err != nil {
		return err
	}

	logger.Info().Str("data_dir", appConfig.DataDir).Msg("processing started")

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("summary", result.SummaryPath).
		Str("range", result.DateRange).
		Int("reports", result.Stats.Reports).
		Int("orders", result.Stats.Orders).
		Int("validation_errors", result.Stats.ValidationErrors).
		Dur("elapsed", result.Stats.Elapsed).
		Msg("processing complete")

	return nil
}
