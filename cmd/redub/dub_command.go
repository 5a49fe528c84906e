package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/pipeline"
	"redub/internal/preflight"
	"redub/internal/services"
)

func newDubCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var summary bool
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "dub <video>",
		Short: "Replace the dialogue of a video with synthesized speech in another language",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if flags.keepBackground && flags.noBackground {
				return services.Wrap(services.ErrValidation, "cli", "flags", "--keep-background and --no-background are exclusive", nil)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !skipChecks {
				if err := requireReady(runCtx, cfg); err != nil {
					return err
				}
			}

			p, closer, err := buildPipeline(runCtx, cfg, flags, logger, false)
			if err != nil {
				return err
			}
			defer closer()

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "input", "", err)
			}
			result, err := p.Run(runCtx, input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Outcome == pipeline.OutcomeNothingToDub {
				fmt.Fprintf(out, "Nothing to dub: no speech recognized in %s\n", input)
				return services.Wrap(services.ErrEmptyTranscript, "recognize", "", "no speech recognized", nil)
			}
			fmt.Fprintf(out, "Dubbed %d segments into %s\n", len(result.Segments), result.OutputPath)
			if len(result.BedStems) > 0 {
				fmt.Fprintf(out, "Background kept from stems: %v\n", result.BedStems)
			}
			for _, path := range result.Sidecars {
				fmt.Fprintf(out, "Subtitles: %s\n", path)
			}
			if summary {
				printPlacementSummary(out, result)
			}
			return nil
		},
	}

	addJobFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.keepBackground, "keep-background", false, "Separate stems and keep music and effects under the new dialogue")
	cmd.Flags().BoolVar(&flags.noBackground, "no-background", false, "Replace the whole soundtrack with dialogue only")
	cmd.Flags().BoolVar(&flags.sidecars, "srt", false, "Write source and translated subtitle sidecars next to the output")
	cmd.Flags().BoolVar(&flags.keepScratch, "keep-scratch", false, "Keep intermediate audio in the scratch directory")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: <output_dir>/dubbed_<name>)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print per-segment placement and drift")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip dependency and credential checks")
	return cmd
}

func addJobFlags(cmd *cobra.Command, flags *jobFlags) {
	cmd.Flags().StringVar(&flags.from, "from", "", "Source language tag (default: languages.source)")
	cmd.Flags().StringVar(&flags.to, "to", "", "Target language tag (default: languages.target)")
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return services.Wrap(services.ErrValidation, "cli", "args", "", err)
		}
		return nil
	}
}

// requireReady fails when a required binary or check is not satisfied.
func requireReady(ctx context.Context, cfg *config.Config) error {
	var problems []string
	for _, status := range preflight.CheckSystemDeps(cfg) {
		if !status.Available && !status.Optional {
			problems = append(problems, fmt.Sprintf("%s (%s) not found", status.Name, status.Command))
		}
	}
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		problems = append(problems, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	if len(problems) == 0 {
		return nil
	}
	msg := problems[0]
	if len(problems) > 1 {
		msg = fmt.Sprintf("%s (and %d more; run redub check)", msg, len(problems)-1)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", msg, nil)
}

func printPlacementSummary(out io.Writer, result pipeline.Result) {
	rows := make([][]string, 0, len(result.Placements))
	for _, p := range result.Placements {
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			formatSeconds(p.NominalStart),
			formatSeconds(p.PlacedStart),
			formatSeconds(p.Silence),
			formatSeconds(p.ClipDuration),
			formatSeconds(p.Drift),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Nominal", "Placed", "Gap", "Clip", "Drift"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "Max drift: %s\n", formatSeconds(result.MaxDrift))
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + "s"
}
