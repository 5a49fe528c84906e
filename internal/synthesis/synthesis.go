package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"redub/internal/audio"
	"redub/internal/config"
	"redub/internal/services"
)

// Synthesizer renders text as speech. The returned clip is already in the
// format the synthesizer was constructed with, so it can be handed to the
// compositor unchanged.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (audio.Track, error)
}

// Backend names accepted by synthesis.backend.
const (
	BackendOpenAI = "openai"
	BackendPiper  = "piper"
)

// New builds the synthesizer selected by cfg.Synthesis.Backend. Clips are
// delivered in the given working format; workDir holds intermediate files.
func New(cfg *config.Config, format audio.Format, workDir string, logger *slog.Logger) (Synthesizer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "synthesize", "new", "config required", nil)
	}
	switch cfg.Synthesis.Backend {
	case BackendOpenAI, "":
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.Synthesis.Model,
		}, format, logger), nil
	case BackendPiper:
		return NewPiper(PiperConfig{
			Binary:  cfg.Synthesis.PiperBinary,
			WorkDir: workDir,
		}, format, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "synthesize", "new",
			fmt.Sprintf("unknown backend %q", cfg.Synthesis.Backend), nil)
	}
}

// Voice resolves the voice identifier for a target language: an OpenAI voice
// name for the openai backend, or a Piper model path for piper. Lookup tries
// the full tag first, then its base language.
func Voice(cfg *config.Config, target string) (string, error) {
	var (
		voice string
		ok    bool
		key   string
	)
	switch cfg.Synthesis.Backend {
	case BackendPiper:
		voice, ok = cfg.PiperModelFor(target)
		key = "synthesis.piper_models"
	default:
		voice, ok = cfg.VoiceFor(target)
		key = "synthesis.voices"
	}
	if !ok || strings.TrimSpace(voice) == "" {
		return "", services.Wrap(services.ErrConfiguration, "synthesize", "voice",
			fmt.Sprintf("no %s entry for %q", key, target), nil)
	}
	return voice, nil
}

func finish(clip audio.Track, format audio.Format, op string) (audio.Track, error) {
	if clip.Empty() {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", op, "synthesizer returned no audio", nil)
	}
	out, err := audio.Convert(clip, format)
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", op, "convert clip", err)
	}
	return out, nil
}
