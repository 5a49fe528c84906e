package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"redub/internal/language"
	"redub/internal/synthesis"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the configured voice for each target language",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			voices := cfg.Synthesis.Voices
			header := "Voice"
			if cfg.Synthesis.Backend == synthesis.BackendPiper {
				voices = cfg.Synthesis.PiperModels
				header = "Piper model"
			}
			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintf(out, "No voices configured for the %s backend\n", cfg.Synthesis.Backend)
				return nil
			}

			target := strings.ToLower(cfg.Languages.Target)
			rows := make([][]string, 0, len(voices))
			for _, tag := range slices.Sorted(maps.Keys(voices)) {
				marker := ""
				if tag == target {
					marker = "*"
				}
				rows = append(rows, []string{tag, language.DisplayName(tag), voices[tag], marker})
			}
			fmt.Fprintf(out, "Synthesis backend: %s\n", cfg.Synthesis.Backend)
			fmt.Fprintln(out, renderTable([]string{"Language", "Name", header, "Default"}, rows, nil))
			return nil
		},
	}
}
