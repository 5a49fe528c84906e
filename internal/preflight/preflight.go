package preflight

import (
	"context"

	"redub/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and credential checks that apply to the
// configured backends. Binary checks are reported separately by
// CheckSystemDeps.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	results = append(results, CheckFreeSpace("Scratch free space", cfg.Paths.ScratchDir, MinScratchFreeBytes))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))

	if cfg.Recognition.Backend == "openai" || cfg.Translation.Backend == "openai" || cfg.Synthesis.Backend == "openai" {
		results = append(results, CheckOpenAI(ctx, "OpenAI API", cfg.OpenAI))
	}
	switch cfg.Translation.Backend {
	case "llm":
		llmCfg := cfg.LLM
		if cfg.Translation.Model != "" {
			llmCfg.Model = cfg.Translation.Model
		}
		results = append(results, CheckLLM(ctx, "Translation LLM", llmCfg))
	case "gemini":
		results = append(results, CheckGemini("Gemini API", cfg.Gemini))
	}
	if cfg.Synthesis.Backend == "piper" {
		results = append(results, CheckPiperModels(cfg.Synthesis.PiperModels))
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
