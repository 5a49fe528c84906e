package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"redub/internal/audio"
	"redub/internal/language"
	"redub/internal/logging"
	"redub/internal/media/ffmpeg"
	"redub/internal/remix"
	"redub/internal/scratch"
	"redub/internal/segment"
	"redub/internal/services"
	"redub/internal/timeline"
	"redub/internal/translation"
)

// Scratch file names inside a job directory.
const (
	speechFile = "speech.wav"
	mixFile    = "mix.wav"
	dubbedFile = "dubbed.wav"
)

// Run dubs input end to end. An input without speech ends with
// OutcomeNothingToDub and a nil error; any stage failure aborts the run and
// no output file is left behind.
func (p *Pipeline) Run(ctx context.Context, input string) (Result, error) {
	started := time.Now()
	job, inputSeconds, err := p.startJob(ctx, input)
	if err != nil {
		return Result{}, err
	}
	defer p.releaseJob(job)

	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.deps.Logger)
	result := Result{JobID: job.ID}

	segs, err := p.transcribe(ctx, logger, job, input)
	if err != nil {
		return result, err
	}
	if len(segs) == 0 {
		result.Outcome = OutcomeNothingToDub
		logging.WarnWithContext(logger, "no speech recognized", "nothing_to_dub",
			logging.String("input", input),
			logging.String(logging.FieldErrorHint, "check the source language and that the audio contains dialogue"),
			logging.String(logging.FieldImpact, "no dubbed file written"),
		)
		return result, nil
	}
	if segs, err = p.translate(ctx, logger, segs); err != nil {
		return result, err
	}
	result.Segments = segs

	var clips []audio.Track
	err = runStage(ctx, logger, StageSynthesize, services.ErrSynthesisFailed, func(ctx context.Context, l *slog.Logger) error {
		clips, err = p.synthesize(ctx, l, segs)
		return err
	})
	if err != nil {
		return result, err
	}

	var composed timeline.Result
	err = runStage(ctx, logger, StageCompose, services.ErrCompositionInvariant, func(_ context.Context, l *slog.Logger) error {
		comp, err := timeline.New(p.opts.Format, timeline.WithEmptySeconds(p.opts.EmptySeconds), timeline.WithLogger(l))
		if err != nil {
			return err
		}
		cues := make([]timeline.Cue, len(segs))
		for i := range segs {
			cues[i] = timeline.Cue{Segment: segs[i], Clip: clips[i]}
		}
		composed, err = comp.Compose(cues)
		return err
	})
	if err != nil {
		return result, err
	}
	result.Placements = composed.Placements
	result.MaxDrift = composed.MaxDrift

	final := composed.Track
	if p.opts.KeepBackground {
		mixed, used, err := p.withBackground(ctx, logger, job, input, composed.Track)
		if err != nil {
			return result, err
		}
		final = mixed
		result.BedStems = used
	}
	final = coverInput(logger, final, inputSeconds)

	output := p.OutputPathFor(input)
	err = runStage(ctx, logger, StageMux, services.ErrMuxFailed, func(ctx context.Context, _ *slog.Logger) error {
		wavPath := job.Path(dubbedFile)
		if err := audio.WriteWAV(wavPath, final); err != nil {
			return services.Wrap(services.ErrMuxFailed, StageMux, "write track", "", err)
		}
		res, err := p.deps.Muxer.ReplaceAudio(ctx, ffmpeg.MuxRequest{
			VideoPath:  input,
			AudioPath:  wavPath,
			OutputPath: output,
			Language:   p.opts.TargetLanguage,
			Codec:      p.opts.AudioCodec,
			Bitrate:    p.opts.AudioBitrate,
			SampleRate: p.opts.Format.SampleRate,
			Channels:   p.opts.Format.Channels,
			Shortest:   p.opts.Shortest,
		})
		if err != nil {
			return err
		}
		result.OutputPath = res.OutputPath
		result.Language = res.Language
		return nil
	})
	if err != nil {
		return result, err
	}

	if p.opts.Sidecars {
		err = runStage(ctx, logger, StageSidecars, services.ErrExternalTool, func(_ context.Context, l *slog.Logger) error {
			paths, err := p.writeSidecars(result.OutputPath, segs)
			if err != nil {
				discardOutputs(l, append(paths, result.OutputPath))
				return err
			}
			result.Sidecars = paths
			return nil
		})
		if err != nil {
			result.OutputPath = ""
			return result, err
		}
	}

	result.Outcome = OutcomeDubbed
	logger.Info("dub complete",
		logging.String(logging.FieldEventType, "dub_complete"),
		logging.String("output", result.OutputPath),
		logging.Int("segments", len(segs)),
		logging.Float64("max_drift_seconds", result.MaxDrift),
		logging.Float64("track_seconds", final.Duration()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// startJob probes the input and claims a scratch directory. It reports the
// probed input duration in seconds, or 0 when ffprobe did not know it.
func (p *Pipeline) startJob(ctx context.Context, input string) (*scratch.Job, float64, error) {
	var seconds float64
	if err := runStage(ctx, logging.WithContext(ctx, p.deps.Logger), StageProbe, services.ErrValidation, func(ctx context.Context, l *slog.Logger) error {
		var err error
		seconds, err = p.probe(ctx, l, input)
		return err
	}); err != nil {
		return nil, 0, err
	}
	job, err := scratch.NewJob(p.opts.ScratchDir, p.deps.Logger)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrConfiguration, "scratch", "create job", "", err)
	}
	return job, seconds, nil
}

// coverInput pads the final track with silence so it runs at least as long as
// the input. Longer tracks are kept whole.
func coverInput(logger *slog.Logger, track audio.Track, inputSeconds float64) audio.Track {
	want := track.Format.FramesFor(inputSeconds)
	if want <= track.Frames() {
		return track
	}
	logger.Debug("padding dub to input length",
		logging.Float64("track_seconds", track.Duration()),
		logging.Float64("input_seconds", inputSeconds),
	)
	return audio.PadTo(track, want)
}

// discardOutputs removes files a failed run already placed next to the output.
func discardOutputs(logger *slog.Logger, paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not remove partial output", logging.String("path", path), logging.Error(err))
		}
	}
}

func (p *Pipeline) releaseJob(job *scratch.Job) {
	if err := job.Release(p.opts.KeepScratch); err != nil {
		p.deps.Logger.Debug("job release failed", logging.Error(err))
	}
}

func (p *Pipeline) probe(ctx context.Context, logger *slog.Logger, input string) (float64, error) {
	if _, err := os.Stat(input); err != nil {
		return 0, services.Wrap(services.ErrValidation, StageProbe, "stat", "input not readable", err)
	}
	info, err := p.deps.Prober.Inspect(ctx, input)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, StageProbe, "ffprobe", "cannot inspect input", err)
	}
	if info.VideoStreamCount() == 0 {
		return 0, services.Wrap(services.ErrValidation, StageProbe, "streams", "input has no video stream", nil)
	}
	if info.AudioStreamCount() == 0 {
		return 0, services.Wrap(services.ErrValidation, StageProbe, "streams", "input has no audio stream", nil)
	}
	seconds := info.DurationSeconds()
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	logger.Debug("input inspected",
		logging.String("input", input),
		logging.Float64("duration_seconds", seconds),
		logging.Int("audio_streams", info.AudioStreamCount()),
	)
	return seconds, nil
}

// transcribe extracts speech and recognizes it. Returned segments are
// speakable, sorted by start and numbered in order.
func (p *Pipeline) transcribe(ctx context.Context, logger *slog.Logger, job *scratch.Job, input string) ([]segment.Segment, error) {
	speech := job.Path(speechFile)
	if err := runStage(ctx, logger, StageExtract, services.ErrExternalTool, func(ctx context.Context, _ *slog.Logger) error {
		return p.deps.Extractor.ExtractSpeech(ctx, input, speech)
	}); err != nil {
		return nil, err
	}

	var segs []segment.Segment
	err := runStage(ctx, logger, StageRecognize, services.ErrRecognitionFailed, func(ctx context.Context, l *slog.Logger) error {
		raw, err := p.deps.Recognizer.Recognize(ctx, speech, p.opts.SourceLanguage)
		if err != nil {
			return err
		}
		segs = segment.Speakable(raw)
		slices.SortStableFunc(segs, func(a, b segment.Segment) int {
			switch {
			case a.Start < b.Start:
				return -1
			case a.Start > b.Start:
				return 1
			}
			return 0
		})
		segment.Renumber(segs)
		for i := range segs {
			if segs[i].SourceText == "" {
				segs[i].SourceText = segs[i].Text
			}
		}
		if err := segment.CheckOrder(segs); err != nil {
			return services.Wrap(services.ErrRecognitionFailed, StageRecognize, "validate", "recognizer returned invalid timing", err)
		}
		l.Info("speech recognized",
			logging.Int("segments", len(segs)),
			logging.Int("dropped_blank", len(raw)-len(segs)),
			logging.Float64("speech_span_seconds", segment.Span(segs)),
		)
		return nil
	})
	return segs, err
}

func (p *Pipeline) translate(ctx context.Context, logger *slog.Logger, segs []segment.Segment) ([]segment.Segment, error) {
	var out []segment.Segment
	err := runStage(ctx, logger, StageTranslate, services.ErrTranslationFailed, func(ctx context.Context, l *slog.Logger) error {
		var err error
		out, err = translation.Segments(ctx, p.deps.Translator, segs, p.opts.SourceLanguage, p.opts.TargetLanguage, l)
		return err
	})
	return out, err
}

// synthesize renders one clip per segment. With concurrency above one the
// clips are produced in parallel but stored by position, so the compositor
// still receives them in segment order. The first failure cancels the rest.
func (p *Pipeline) synthesize(ctx context.Context, logger *slog.Logger, segs []segment.Segment) ([]audio.Track, error) {
	clips := make([]audio.Track, len(segs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i := range segs {
		seg := segs[i]
		g.Go(func() error {
			segCtx := services.WithSegmentIndex(gctx, seg.Index)
			clip, err := p.deps.Synthesizer.Synthesize(segCtx, seg.Text, p.opts.Voice)
			if err != nil {
				if !hasMarker(err) {
					err = services.Wrap(services.ErrSynthesisFailed, StageSynthesize, "", "", err)
				}
				return fmt.Errorf("segment %d: %w", seg.Index, err)
			}
			if clip.Format != p.opts.Format {
				converted, err := audio.Convert(clip, p.opts.Format)
				if err != nil {
					return services.Wrap(services.ErrSynthesisFailed, StageSynthesize, "convert", fmt.Sprintf("segment %d", seg.Index), err)
				}
				clip = converted
			}
			clips[i] = clip
			logger.Debug("clip rendered",
				logging.Int(logging.FieldSegmentIndex, seg.Index),
				logging.Float64("clip_seconds", clip.Duration()),
				logging.Float64("slot_seconds", seg.Duration()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

// withBackground separates the original mix and lays the composed dialogue
// over the instrumental bed.
func (p *Pipeline) withBackground(ctx context.Context, logger *slog.Logger, job *scratch.Job, input string, vocal audio.Track) (audio.Track, []string, error) {
	mixPath := job.Path(mixFile)

	var bed remix.Bed
	err := runStage(ctx, logger, StageSeparate, services.ErrSeparationFailed, func(ctx context.Context, l *slog.Logger) error {
		if err := p.deps.Extractor.ExtractMix(ctx, input, mixPath, p.opts.Format); err != nil {
			return err
		}
		set, err := p.deps.Separator.Separate(ctx, mixPath)
		if err != nil {
			return err
		}
		engine, err := remix.New(p.opts.Format, l)
		if err != nil {
			return err
		}
		bed, err = engine.Instrumental(set, p.opts.Layout)
		return err
	})
	if err != nil {
		return audio.Track{}, nil, err
	}

	var mixed audio.Track
	err = runStage(ctx, logger, StageRemix, services.ErrCompositionInvariant, func(_ context.Context, l *slog.Logger) error {
		engine, err := remix.New(p.opts.Format, l)
		if err != nil {
			return err
		}
		mixed, err = engine.Mix(vocal, bed.Track)
		return err
	})
	if err != nil {
		return audio.Track{}, nil, err
	}
	return mixed, bed.Used, nil
}

func (p *Pipeline) writeSidecars(output string, segs []segment.Segment) ([]string, error) {
	src := language.ToISO2(p.opts.SourceLanguage)
	if src == "" {
		src = "src"
	}
	dst := language.ToISO2(p.opts.TargetLanguage)
	if dst == "" {
		dst = "dub"
	}
	if src == dst {
		src += ".orig"
	}
	sourcePath := SidecarPath(output, src)
	targetPath := SidecarPath(output, dst)
	if err := segment.WriteSRT(sourcePath, segs, segment.Source); err != nil {
		return nil, err
	}
	if err := segment.WriteSRT(targetPath, segs, segment.Translated); err != nil {
		return []string{sourcePath}, err
	}
	return []string{sourcePath, targetPath}, nil
}
