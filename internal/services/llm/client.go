package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 15 * time.Second
	jsonResponseType   = "json_object"
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	Prompt         string
	TimeoutSeconds int
}

// Client sends JSON-mode chat completions to an OpenRouter-compatible
// endpoint.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
	sleep func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts sets how many requests a call may make in total.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff sets the first backoff step and the ceiling. A zero
// ceiling leaves delays uncapped.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = baseDelay
		c.retry.ceiling = maxDelay
	}
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleep = sleeper
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Prompt = strings.TrimSpace(cfg.Prompt)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Translate renders text from one language into another. The system prompt
// is expanded with the language display names and the model must answer with
// a {"translation": "..."} object.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("llm translate: text required")
	}
	content, err := c.CompleteJSON(ctx, c.systemPrompt(from, to), text)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Translation string `json:"translation"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return "", fmt.Errorf("llm translate: parse payload: %w", err)
	}
	translated := strings.TrimSpace(parsed.Translation)
	if translated == "" {
		return "", fmt.Errorf("llm translate: empty translation (payload snippet: %s)", snippet(content))
	}
	return translated, nil
}

func (c *Client) systemPrompt(from, to string) string {
	tmpl := c.cfg.Prompt
	if tmpl == "" {
		tmpl = TranslationPrompt
	}
	return ExpandPrompt(tmpl, from, to)
}

// CompleteJSON sends one system and one user message in JSON mode and returns
// the model's raw payload.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case c.cfg.APIKey == "":
		return "", errors.New("llm complete: api key required")
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: user prompt required")
	}
	return c.complete(ctx, "llm complete", newJSONRequest(c.cfg.Model, systemPrompt, userPrompt))
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	req := newJSONRequest(c.cfg.Model, "You must respond with JSON only.", `Respond with {"ok":true}`)
	content, err := c.complete(ctx, "llm health", req)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}
