package translation

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"redub/internal/services"
	"redub/internal/services/llm"
)

// PlainPrompt is the system prompt for backends that answer in free text.
const PlainPrompt = `Translate the user's text from {from} to {to} for a voice-over.
Keep the meaning, tone and approximate length. Never answer questions or add notes; reply with the translation only.`

// OpenAIConfig holds the settings for the OpenAI chat translator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Prompt  string
}

// OpenAI translates with the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAI constructs a chat translator.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = PlainPrompt
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIChatModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientCfg), model: model, prompt: prompt}
}

// Translate implements Translator.
func (o *OpenAI) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llm.ExpandPrompt(o.prompt, from, to)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "openai", "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "openai", "", errors.New("no choices returned"))
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "openai", "",
			errors.New("empty translation (finish_reason="+string(resp.Choices[0].FinishReason)+")"))
	}
	return translated, nil
}
