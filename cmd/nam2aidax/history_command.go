package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nam2aidax/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.StartedAt.Local().Format(time.DateTime),
					record.Status,
					record.ModelType,
					strconv.Itoa(record.Epochs),
					historyOutcome(record),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Status", "Model", "Epochs", "Result"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func historyOutcome(record history.Record) string {
	if record.Status == history.StatusSucceeded {
		return record.Destination
	}
	if record.FailureStage != "" {
		return fmt.Sprintf("failed while %s", record.FailureStage)
	}
	return "failed"
}
