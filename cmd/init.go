package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-report-summary/internal/config"
)

var initForce bool

// initCmd writes the default configuration. It skips configuration loading
// so it works next to a broken config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(cfgFile, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}
