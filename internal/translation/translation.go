package translation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"redub/internal/config"
	"redub/internal/language"
	"redub/internal/logging"
	"redub/internal/segment"
	"redub/internal/services"
	"redub/internal/services/llm"
)

// Translator renders text from one language into another. Languages are
// BCP-47 tags; implementations may ignore the region.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Backend names accepted by translation.backend.
const (
	BackendLLM    = "llm"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

const defaultOpenAIChatModel = "gpt-4o-mini"

// New builds the translator selected by cfg.Translation.Backend. Translators
// holding network clients implement io.Closer; release them with Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Translator, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new", "config required", nil)
	}
	switch cfg.Translation.Backend {
	case BackendLLM, "":
		model := cfg.Translation.Model
		if model == "" {
			model = cfg.LLM.Model
		}
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			Prompt:         cfg.Translation.Prompt,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		return &LLM{client: client}, nil
	case BackendOpenAI:
		model := cfg.Translation.Model
		if model == "" {
			model = defaultOpenAIChatModel
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   model,
			Prompt:  cfg.Translation.Prompt,
		}), nil
	case BackendGemini:
		model := cfg.Translation.Model
		if model == "" {
			model = cfg.Gemini.Model
		}
		return NewGemini(ctx, GeminiConfig{
			APIKey: cfg.Gemini.APIKey,
			Model:  model,
			Prompt: cfg.Translation.Prompt,
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new",
			fmt.Sprintf("unknown backend %q", cfg.Translation.Backend), nil)
	}
}

// Close releases resources held by t when it has any.
func Close(t Translator) error {
	if closer, ok := t.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// LLM adapts the OpenRouter chat client to Translator.
type LLM struct {
	client *llm.Client
}

// NewLLM wraps an existing chat client.
func NewLLM(client *llm.Client) *LLM {
	return &LLM{client: client}
}

// Translate implements Translator.
func (l *LLM) Translate(ctx context.Context, text, from, to string) (string, error) {
	out, err := l.client.Translate(ctx, text, from, to)
	if err != nil {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "llm", "", err)
	}
	return out, nil
}

// Segments translates every speakable segment in order and returns a new
// slice. Timing, Index and SourceText are carried over unchanged; Text is
// replaced with the translation. Only the base language of each tag is passed
// to the translator. The first failure aborts the stage.
func Segments(ctx context.Context, t Translator, segments []segment.Segment, from, to string, logger *slog.Logger) ([]segment.Segment, error) {
	logger = logging.NewComponentLogger(logger, "translation")
	src, dst := baseLanguage(from), baseLanguage(to)

	out := make([]segment.Segment, len(segments))
	copy(out, segments)
	started := time.Now()
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg := &out[i]
		if seg.SourceText == "" {
			seg.SourceText = seg.Text
		}
		if seg.Blank() {
			continue
		}
		translated, err := t.Translate(ctx, seg.Text, src, dst)
		if err != nil {
			logging.ErrorWithContext(logger, "segment translation failed", "translation_failed",
				logging.Int(logging.FieldSegmentIndex, seg.Index),
				logging.Error(err),
			)
			return nil, fmt.Errorf("segment %d: %w", seg.Index, err)
		}
		seg.Text = translated
		logger.Debug("segment translated",
			logging.Int(logging.FieldSegmentIndex, seg.Index),
			logging.String("source", seg.SourceText),
			logging.String("translated", translated),
		)
	}
	logger.Info("translation complete",
		logging.String(logging.FieldEventType, "translation_complete"),
		logging.Int("segments", len(out)),
		logging.String("from", src),
		logging.String("to", dst),
		logging.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}

func baseLanguage(tag string) string {
	if iso := language.ToISO2(tag); iso != "" {
		return iso
	}
	return tag
}
