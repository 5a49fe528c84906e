package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"redub/internal/config"
	"redub/internal/pipeline"
	"redub/internal/segment"
	"redub/internal/services"
)

type planSegment struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Source     string  `json:"source"`
	Translated string  `json:"translated"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "plan <video>",
		Short: "Recognize and translate without synthesizing, then print the segments",
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
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, closer, err := buildPipeline(runCtx, cfg, flags, logger, true)
			if err != nil {
				return err
			}
			defer closer()

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "input", "", err)
			}
			result, err := p.Plan(runCtx, input)
			if err != nil {
				return err
			}
			if result.Outcome == pipeline.OutcomeNothingToDub {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to dub: no speech recognized in %s\n", input)
				return services.Wrap(services.ErrEmptyTranscript, "recognize", "", "no speech recognized", nil)
			}

			if jsonOut {
				return writeJSON(cmd, planSegments(result.Segments))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSegmentTable(result.Segments))
			return nil
		},
	}

	addJobFlags(cmd, &flags)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print segments as JSON")
	return cmd
}

func planSegments(segs []segment.Segment) []planSegment {
	out := make([]planSegment, 0, len(segs))
	for _, seg := range segs {
		out = append(out, planSegment{
			Index:      seg.Index,
			Start:      seg.Start,
			End:        seg.End,
			Source:     segment.Source(seg),
			Translated: segment.Translated(seg),
		})
	}
	return out
}

func renderSegmentTable(segs []segment.Segment) string {
	rows := make([][]string, 0, len(segs))
	for _, seg := range segs {
		rows = append(rows, []string{
			strconv.Itoa(seg.Index),
			segment.FormatTimestamp(seg.Start),
			segment.FormatTimestamp(seg.End),
			segment.Source(seg),
			segment.Translated(seg),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Source", "Translated"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
