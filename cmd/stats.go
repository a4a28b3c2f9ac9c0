package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/sayingsbot/pkg/models"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer statistics per saying",
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

		rows, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		return printStats(cmd.OutOrStdout(), rows)
	},
}

func printStats(w io.Writer, rows []models.SayingStats) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No sayings stored yet. Run `sayingsbot import` first.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIER\tATTEMPTS\tCORRECT\tACCURACY\tSAYING")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.1f%%\t%s\n",
			r.ID, r.DifficultyLevel, r.Attempts, r.CorrectAttempts, r.Accuracy(), r.SourceText)
	}
	return tw.Flush()
}
