package recognition

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"redub/internal/language"
	"redub/internal/logging"
	"redub/internal/segment"
	"redub/internal/services"
)

// OpenAIConfig holds the settings for the hosted Whisper recognizer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI recognizes speech with the OpenAI transcription endpoint, asking for
// verbose JSON so segment timings come back with the text.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI constructs a hosted Whisper recognizer.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" || model == "large-v3" {
		model = openai.Whisper1
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logging.NewComponentLogger(logger, "recognition"),
	}
}

// Recognize uploads the speech file and converts the returned segments.
func (o *OpenAI) Recognize(ctx context.Context, audioPath, lang string) ([]segment.Segment, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language.ToISO2(lang),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRecognitionFailed, "recognize", "openai", "transcription request failed", err)
	}
	o.logger.Debug("transcription received",
		logging.String("model", o.model),
		logging.Int("segments", len(resp.Segments)),
		logging.Float64("duration_seconds", resp.Duration),
	)

	out := make([]segment.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		out = append(out, segment.Segment{Text: text, SourceText: text, Start: seg.Start, End: end})
	}
	// Short clips sometimes come back as plain text without segments.
	if len(out) == 0 {
		if text := strings.TrimSpace(resp.Text); text != "" {
			out = append(out, segment.Segment{Text: text, SourceText: text, Start: 0, End: resp.Duration})
		}
	}
	segment.Renumber(out)
	return out, nil
}
