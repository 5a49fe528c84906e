package synthesis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/services"
)

// openAIPCMFormat is the layout of the speech endpoint's "pcm" response.
var openAIPCMFormat = audio.Format{SampleRate: 24000, Channels: 1}

// OpenAIConfig holds the settings for OpenAI text-to-speech.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAI synthesizes speech with the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	model  string
	format audio.Format
	logger *slog.Logger
}

// NewOpenAI constructs a TTS client that delivers clips in format.
func NewOpenAI(cfg OpenAIConfig, format audio.Format, logger *slog.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		format: format,
		logger: logging.NewComponentLogger(logger, "synthesis"),
	}
}

// Synthesize requests raw PCM for text and converts it to the working format.
func (o *OpenAI) Synthesize(ctx context.Context, text, voice string) (audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "openai", "", errors.New("text required"))
	}
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "openai", "speech request failed", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "openai", "read speech", err)
	}
	clip, err := audio.DecodePCM16(data, openAIPCMFormat)
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "openai", "decode speech", err)
	}
	logging.WithContext(ctx, o.logger).Debug("speech synthesized",
		logging.String("voice", voice),
		logging.Float64("clip_seconds", clip.Duration()),
	)
	return finish(clip, o.format, "openai")
}
