package recognition

import (
	"context"
	"fmt"
	"log/slog"

	"redub/internal/config"
	"redub/internal/segment"
	"redub/internal/services"
	"redub/internal/services/whisperx"
)

// Recognizer converts speech audio into ordered, timestamped segments.
//
// Implementations return segments sorted by start time with Index assigned in
// order and SourceText equal to Text. An empty slice means no speech was
// found; the caller decides what that means for the job.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath, lang string) ([]segment.Segment, error)
}

// Backend names accepted by recognition.backend.
const (
	BackendWhisperX = "whisperx"
	BackendOpenAI   = "openai"
)

// New builds the recognizer selected by cfg.Recognition.Backend.
func New(cfg *config.Config, logger *slog.Logger) (Recognizer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "recognize", "new", "config required", nil)
	}
	switch cfg.Recognition.Backend {
	case BackendWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       cfg.Recognition.Model,
			CUDAEnabled: cfg.Recognition.CUDA,
			VADMethod:   cfg.Recognition.VADMethod,
			HFToken:     cfg.Recognition.HuggingFaceToken,
			UVXBinary:   cfg.UVXBinary(),
		}, logger), nil
	case BackendOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.Recognition.Model,
		}, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "recognize", "new",
			fmt.Sprintf("unknown backend %q", cfg.Recognition.Backend), nil)
	}
}
