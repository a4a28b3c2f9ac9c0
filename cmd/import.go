package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the sayings file into the statistics database",
	Long:  "Adds every saying from the sayings file that is not stored yet.\n" +
		"Existing sayings and their counters are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		db, repo, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		_, result, err := loadSayings(cmd.Context(), cfg, repo, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d sayings: %d created, %d already present\n",
			result.TotalProcessed, result.Created, result.Existing)
		return nil
	},
}
