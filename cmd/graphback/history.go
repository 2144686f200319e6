package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphback/graphback/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded backup runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, run := range runs {
				status := "complete"
				if !run.Complete() {
					status = "INCOMPLETE"
				}
				var written int64
				for _, n := range run.Written {
					written += n
				}
				fmt.Fprintf(out, "%s  %s  %s  %d entities  %s  %s\n",
					run.ID,
					run.StartedAt.Format(time.RFC3339),
					run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
					written,
					status,
					run.OutputDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite history database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
