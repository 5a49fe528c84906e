package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/media/ffmpeg"
	"redub/internal/media/ffprobe"
	"redub/internal/recognition"
	"redub/internal/remix"
	"redub/internal/segment"
	"redub/internal/separation"
	"redub/internal/services"
	"redub/internal/synthesis"
	"redub/internal/timeline"
	"redub/internal/translation"
)

// OutputPrefix is prepended to the source file name when no explicit output
// path is given.
const OutputPrefix = "dubbed_"

// Prober inspects a media container.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// ProbeFunc adapts a function to Prober.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Inspect implements Prober.
func (f ProbeFunc) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// Extractor pulls audio out of a container into WAV files.
type Extractor interface {
	ExtractSpeech(ctx context.Context, source, dest string) error
	ExtractMix(ctx context.Context, source, dest string, format audio.Format) error
}

// Muxer replaces the audio of a container.
type Muxer interface {
	ReplaceAudio(ctx context.Context, req ffmpeg.MuxRequest) (ffmpeg.MuxResult, error)
}

// Deps are the collaborators a pipeline drives. Separator may be nil when
// background preservation is never requested.
type Deps struct {
	Prober      Prober
	Extractor   Extractor
	Recognizer  recognition.Recognizer
	Translator  translation.Translator
	Synthesizer synthesis.Synthesizer
	Separator   separation.Separator
	Muxer       Muxer
	Logger      *slog.Logger
}

// Options control one pipeline. Zero values fall back to the working format,
// one synthesis worker and a one second empty track.
type Options struct {
	SourceLanguage string
	TargetLanguage string
	Voice          string

	Format       audio.Format
	EmptySeconds float64
	Concurrency  int

	KeepBackground bool
	Layout         remix.Layout

	ScratchDir  string
	KeepScratch bool
	OutputDir   string
	// OutputPath overrides OutputDir/dubbed_<name>.
	OutputPath string
	Sidecars   bool

	AudioCodec   string
	AudioBitrate string
	Shortest     bool
}

// Outcome classifies how a run ended without error.
type Outcome string

const (
	// OutcomeDubbed means a dubbed container was written.
	OutcomeDubbed Outcome = "dubbed"
	// OutcomeNothingToDub means recognition found no speech.
	OutcomeNothingToDub Outcome = "nothing_to_dub"
)

// Result reports a completed run.
type Result struct {
	Outcome    Outcome
	JobID      string
	OutputPath string
	Language   string
	Segments   []segment.Segment
	Placements []timeline.Placement
	MaxDrift   float64
	// BedStems names the stems mixed under the new dialogue, empty when the
	// background was not kept.
	BedStems []string
	Sidecars []string
}

// Pipeline sequences the dubbing stages for one configuration.
type Pipeline struct {
	deps Deps
	opts Options
}

// New validates deps against opts and returns a ready pipeline.
func New(deps Deps, opts Options) (*Pipeline, error) {
	missing := make([]string, 0, 4)
	for name, ok := range map[string]bool{
		"prober":      deps.Prober != nil,
		"extractor":   deps.Extractor != nil,
		"recognizer":  deps.Recognizer != nil,
		"translator":  deps.Translator != nil,
		"synthesizer": deps.Synthesizer != nil,
		"muxer":       deps.Muxer != nil,
	} {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init",
			"missing collaborators: "+strings.Join(missing, ", "), nil)
	}
	if opts.KeepBackground && deps.Separator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "background preservation requires a separator", nil)
	}
	deps.Logger = logging.NewComponentLogger(deps.Logger, "pipeline")
	if opts.Format == (audio.Format{}) {
		opts.Format = audio.Working
	}
	if err := opts.Format.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "invalid working format", err)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.EmptySeconds <= 0 {
		opts.EmptySeconds = timeline.DefaultEmptySeconds
	}
	if strings.TrimSpace(opts.ScratchDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "scratch directory required", nil)
	}
	if strings.TrimSpace(opts.TargetLanguage) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "target language required", nil)
	}
	return &Pipeline{deps: deps, opts: opts}, nil
}

// OutputPathFor returns where the dubbed copy of input is written.
func (p *Pipeline) OutputPathFor(input string) string {
	if p.opts.OutputPath != "" {
		return p.opts.OutputPath
	}
	dir := p.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, OutputPrefix+filepath.Base(input))
}

// SidecarPath returns the subtitle path for lang next to output.
func SidecarPath(output, lang string) string {
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return fmt.Sprintf("%s.%s.srt", base, lang)
}
