package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"redub/internal/scratch"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale job directories from the scratch area",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.ScratchDir
			out := cmd.OutOrStdout()

			if list {
				dirs, err := scratch.ListDirectories(root)
				if err != nil {
					return fmt.Errorf("list scratch directories: %w", err)
				}
				if len(dirs) == 0 {
					fmt.Fprintln(out, "No job directories found")
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				var total int64
				for _, dir := range dirs {
					total += dir.Size
					rows = append(rows, []string{
						dir.Name,
						dir.ModTime.Format(time.DateTime),
						formatSize(dir.Size),
						yesNo(dir.Locked),
					})
				}
				fmt.Fprintf(out, "Scratch directory: %s\n\n", root)
				fmt.Fprintln(out, renderTable(
					[]string{"Job", "Modified", "Size", "In use"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "Total: %s\n", formatSize(total))
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := scratch.CleanStale(cmd.Context(), root, olderThan, logger)
			fmt.Fprintf(out, "Removed %d job director%s\n", len(result.Removed), plural(len(result.Removed), "y", "ies"))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped %d in use\n", len(result.Skipped))
			}
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s: %v\n", e.Path, e.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("failed to remove %d job directories", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove job directories older than this (0 removes all unlocked)")
	cmd.Flags().BoolVar(&list, "list", false, "List job directories instead of removing them")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
