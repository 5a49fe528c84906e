package translation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"redub/internal/services"
	"redub/internal/services/llm"
)

// GeminiConfig holds the settings for the Gemini translator.
type GeminiConfig struct {
	APIKey string
	Model  string
	Prompt string
}

type generateFunc func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)

// Gemini translates with Google's generative language API.
type Gemini struct {
	client   *genai.Client
	prompt   string
	generate generateFunc
}

// NewGemini opens a Gemini client. Call Close when done.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "gemini", "api key required", nil)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, services.Wrap(services.ErrTranslationFailed, "translate", "gemini", "create client", err)
	}
	model := client.GenerativeModel(cfg.Model)
	g := newGemini(cfg.Prompt, func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(prompt))
	})
	g.client = client
	return g, nil
}

func newGemini(prompt string, generate generateFunc) *Gemini {
	if prompt == "" {
		prompt = PlainPrompt
	}
	return &Gemini{prompt: prompt, generate: generate}
}

// Translate implements Translator.
func (g *Gemini) Translate(ctx context.Context, text, from, to string) (string, error) {
	prompt := llm.ExpandPrompt(g.prompt, from, to) + "\n\n" + text
	resp, err := g.generate(ctx, prompt)
	if err != nil {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "gemini", "generate content", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "gemini", "", errors.New("no candidates returned"))
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	translated := strings.TrimSpace(out.String())
	if translated == "" {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "gemini", "", errors.New("empty translation"))
	}
	return translated, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
