package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nam2aidax/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAgeHours int

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale run workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			hours := maxAgeHours
			if !cmd.Flags().Changed("max-age") {
				hours = cfg.Cleanup.MaxAgeHours
			}
			if hours < 0 {
				return fmt.Errorf("max-age must not be negative")
			}

			result := workspace.CleanStale(cfg.Paths.WorkspaceRoot, time.Duration(hours)*time.Hour, logger)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed %d workspace(s), skipped %d\n", len(result.Removed), len(result.Skipped))
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "failed to remove %s: %v\n", failure.Path, failure.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("cleanup finished with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAgeHours, "max-age", 0, "Remove workspaces older than this many hours (default from config)")
	return cmd
}
