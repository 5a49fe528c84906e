package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redub/internal/deps"
	"redub/internal/preflight"
	"redub/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external programs, directories, and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			results := preflight.RunAll(cmd.Context(), cfg)

			for _, line := range renderSectionHeader("Programs", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range dependencyLines(statuses, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range checkLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(results)
			if len(missing) == 0 && len(failed) == 0 {
				fmt.Fprintln(out, renderStatusLine("Summary", statusOK, "ready to dub", colorize))
				return nil
			}
			msg := fmt.Sprintf("%d program(s) missing, %d check(s) failed", len(missing), len(failed))
			fmt.Fprintln(out, renderStatusLine("Summary", statusError, msg, colorize))
			return services.Wrap(services.ErrConfiguration, "check", "", msg, nil)
		},
	}
}
