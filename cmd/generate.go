// =============================================================================
// Order Report Summary - Generate Command
// =============================================================================
//
// COMMAND USAGE:
//   orders generate [flags]
//
// FLAGS:
//   --count     : Number of daily reports to write (default 1)
//   --rows      : Rows per report (default 10)
//   --start-id  : First order id of the first report (default 1)
//   --seed      : Random seed, 0 for a random one
//
// Reports are written to the data directory with distinct random past
// dates. Order ids continue across reports.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-report-summary/internal/fakedata"
)

var (
	genCount   int
	genRows    int
	genStartID int
	genSeed    int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write fake daily reports into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genCount, "count", 1, "Number of reports to generate")
	generateCmd.Flags().IntVar(&genRows, "rows", 10, "Rows per report")
	generateCmd.Flags().IntVar(&genStartID, "start-id", 1, "First order id")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed (0 picks one)")
	generateCmd.Flags().String("data-dir", "", "Directory to write the reports to")
}

func runGenerate(cmd *cobra.Command) error {
	if genCount < 1 || genRows < 1 {
		return fmt.Errorf("--count and --rows must be at least 1")
	}

	logger := zerolog.Ctx(cmd.Context())
	gen := fakedata.New(genSeed)

	nextID := genStartID
	for i := 0; i < genCount; i++ {
		batch, err := gen.Generate(nextID, genRows)
		if err != nil {
			return err
		}

		path, err := fakedata.Write(appConfig.DataDir, batch)
		if err != nil {
			return err
		}

		last := batch.Orders[len(batch.Orders)-1].ID
		nextID = last + 1

		logger.Info().Str("path", path).Int("rows", len(batch.Orders)).Msg("fake report written")
	}
	return nil
}
