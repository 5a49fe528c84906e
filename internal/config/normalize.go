package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLanguages()
	c.normalizeRecognition()
	c.normalizeTranslation()
	if err := c.normalizeSynthesis(); err != nil {
		return err
	}
	c.normalizeSeparation()
	c.normalizeMix()
	c.normalizeCredentials()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLanguages() {
	c.Languages.Source = strings.TrimSpace(c.Languages.Source)
	if c.Languages.Source == "" {
		c.Languages.Source = defaultSourceLanguage
	}
	c.Languages.Target = strings.TrimSpace(c.Languages.Target)
	if c.Languages.Target == "" {
		c.Languages.Target = defaultTargetLanguage
	}
}

func (c *Config) normalizeRecognition() {
	c.Recognition.Backend = strings.ToLower(strings.TrimSpace(c.Recognition.Backend))
	if c.Recognition.Backend == "" {
		c.Recognition.Backend = defaultRecognitionBackend
	}
	c.Recognition.Model = strings.TrimSpace(c.Recognition.Model)
	if c.Recognition.Model == "" && c.Recognition.Backend == "whisperx" {
		c.Recognition.Model = defaultWhisperXModel
	}
	c.Recognition.VADMethod = strings.ToLower(strings.TrimSpace(c.Recognition.VADMethod))
	if c.Recognition.VADMethod == "" {
		c.Recognition.VADMethod = defaultVADMethod
	}
	c.Recognition.HuggingFaceToken = strings.TrimSpace(c.Recognition.HuggingFaceToken)
	if c.Recognition.HuggingFaceToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Recognition.HuggingFaceToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Recognition.HuggingFaceToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.Backend = strings.ToLower(strings.TrimSpace(c.Translation.Backend))
	if c.Translation.Backend == "" {
		c.Translation.Backend = defaultTranslationBackend
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Translation.Prompt = strings.TrimSpace(c.Translation.Prompt)
}

func (c *Config) normalizeSynthesis() error {
	c.Synthesis.Backend = strings.ToLower(strings.TrimSpace(c.Synthesis.Backend))
	if c.Synthesis.Backend == "" {
		c.Synthesis.Backend = defaultSynthesisBackend
	}
	c.Synthesis.Model = strings.TrimSpace(c.Synthesis.Model)
	if c.Synthesis.Model == "" && c.Synthesis.Backend == "openai" {
		c.Synthesis.Model = defaultOpenAITTSModel
	}
	if c.Synthesis.Concurrency <= 0 {
		c.Synthesis.Concurrency = defaultSynthConcurrency
	}
	c.Synthesis.PiperBinary = strings.TrimSpace(c.Synthesis.PiperBinary)
	if c.Synthesis.PiperBinary == "" {
		c.Synthesis.PiperBinary = defaultPiperBinary
	}
	if len(c.Synthesis.Voices) == 0 {
		c.Synthesis.Voices = defaultVoices()
	}
	c.Synthesis.Voices = normalizeTagMap(c.Synthesis.Voices)
	models := normalizeTagMap(c.Synthesis.PiperModels)
	for tag, path := range models {
		expanded, err := expandPath(path)
		if err != nil {
			return fmt.Errorf("synthesis.piper_models.%s: %w", tag, err)
		}
		models[tag] = expanded
	}
	c.Synthesis.PiperModels = models
	return nil
}

func normalizeTagMap(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func (c *Config) normalizeSeparation() {
	c.Separation.Model = strings.TrimSpace(c.Separation.Model)
	if c.Separation.Model == "" {
		c.Separation.Model = defaultDemucsModel
	}
	stems := make([]string, 0, len(c.Separation.Stems))
	for _, stem := range c.Separation.Stems {
		if stem = strings.ToLower(strings.TrimSpace(stem)); stem != "" {
			stems = append(stems, stem)
		}
	}
	if len(stems) == 0 {
		stems = defaultStems()
	}
	c.Separation.Stems = stems
}

func (c *Config) normalizeMix() {
	if c.Mix.SampleRate <= 0 {
		c.Mix.SampleRate = defaultSampleRate
	}
	if c.Mix.Channels <= 0 {
		c.Mix.Channels = defaultChannels
	}
	if c.Mix.EmptyTrackSeconds <= 0 {
		c.Mix.EmptyTrackSeconds = defaultEmptyTrackSeconds
	}
	c.Mix.AudioCodec = strings.ToLower(strings.TrimSpace(c.Mix.AudioCodec))
	if c.Mix.AudioCodec == "" {
		c.Mix.AudioCodec = defaultAudioCodec
	}
	c.Mix.AudioBitrate = strings.TrimSpace(c.Mix.AudioBitrate)
}

func (c *Config) normalizeCredentials() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}

	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	if c.OpenAI.BaseURL == "" {
		if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok {
			c.OpenAI.BaseURL = strings.TrimSpace(value)
		}
	}

	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GENAI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
