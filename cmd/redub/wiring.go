package main

import (
	"context"
	"log/slog"
	"strings"

	"redub/internal/audio"
	"redub/internal/config"
	"redub/internal/language"
	"redub/internal/logging"
	"redub/internal/media/ffmpeg"
	"redub/internal/media/ffprobe"
	"redub/internal/pipeline"
	"redub/internal/recognition"
	"redub/internal/remix"
	"redub/internal/services"
	"redub/internal/services/demucs"
	"redub/internal/synthesis"
	"redub/internal/translation"
)

// jobFlags are the per-invocation overrides shared by dub and plan.
type jobFlags struct {
	from           string
	to             string
	output         string
	keepBackground bool
	noBackground   bool
	sidecars       bool
	keepScratch    bool
}

// resolveLanguages applies flag overrides and checks both tags parse.
func resolveLanguages(cfg *config.Config, flags jobFlags) (string, string, error) {
	from := strings.TrimSpace(flags.from)
	if from == "" {
		from = cfg.Languages.Source
	}
	to := strings.TrimSpace(flags.to)
	if to == "" {
		to = cfg.Languages.Target
	}
	for _, tag := range []string{from, to} {
		if _, err := language.Parse(tag); err != nil {
			return "", "", services.Wrap(services.ErrValidation, "cli", "language", "invalid language tag "+tag, err)
		}
	}
	return from, to, nil
}

func workingFormat(cfg *config.Config) audio.Format {
	return audio.Format{SampleRate: cfg.Mix.SampleRate, Channels: cfg.Mix.Channels}
}

// buildPipeline constructs every adapter the config selects. The returned
// closer releases translator resources and must be called when done.
func buildPipeline(ctx context.Context, base *config.Config, flags jobFlags, logger *slog.Logger, transcriptOnly bool) (*pipeline.Pipeline, func(), error) {
	cfg := *base
	from, to, err := resolveLanguages(&cfg, flags)
	if err != nil {
		return nil, nil, err
	}
	cfg.Languages.Source = from
	cfg.Languages.Target = to

	keepBackground := cfg.Separation.Enabled
	if flags.keepBackground {
		keepBackground = true
	}
	if flags.noBackground || transcriptOnly {
		keepBackground = false
	}

	format := workingFormat(&cfg)
	tool := ffmpeg.New(cfg.FFmpegBinary(), logger)
	probeBinary := cfg.FFprobeBinary()

	recognizer, err := recognition.New(&cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	translator, err := translation.New(ctx, &cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := translation.Close(translator); err != nil {
			logger.Debug("translator close failed", logging.Error(err))
		}
	}
	synthesizer, err := synthesis.New(&cfg, format, cfg.Paths.ScratchDir, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}

	var voice string
	if !transcriptOnly {
		if voice, err = synthesis.Voice(&cfg, to); err != nil {
			closer()
			return nil, nil, err
		}
	}

	deps := pipeline.Deps{
		Prober: pipeline.ProbeFunc(func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, probeBinary, path)
		}),
		Extractor:   tool,
		Recognizer:  recognizer,
		Translator:  translator,
		Synthesizer: synthesizer,
		Muxer:       tool,
		Logger:      logger,
	}
	if keepBackground {
		deps.Separator = demucs.New(demucs.Config{
			Model:       cfg.Separation.Model,
			Stems:       cfg.Separation.Stems,
			CUDAEnabled: cfg.Separation.CUDA,
			UVXBinary:   cfg.UVXBinary(),
		}, format, logger)
	}

	opts := pipeline.Options{
		SourceLanguage: from,
		TargetLanguage: to,
		Voice:          voice,
		Format:         format,
		EmptySeconds:   cfg.Mix.EmptyTrackSeconds,
		Concurrency:    cfg.Synthesis.Concurrency,
		KeepBackground: keepBackground,
		Layout: remix.Layout{
			VocalIndex: cfg.Separation.VocalStemIndex,
			Skip:       cfg.Separation.SkipStemIndices,
		},
		ScratchDir:   cfg.Paths.ScratchDir,
		KeepScratch:  flags.keepScratch,
		OutputDir:    cfg.Paths.OutputDir,
		OutputPath:   strings.TrimSpace(flags.output),
		Sidecars:     flags.sidecars,
		AudioCodec:   cfg.Mix.AudioCodec,
		AudioBitrate: cfg.Mix.AudioBitrate,
		Shortest:     cfg.Mix.Shortest,
	}
	p, err := pipeline.New(deps, opts)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return p, closer, nil
}
