package config

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable. Missing credentials are not
// checked here; `redub check` reports them so `config validate` works offline.
func (c *Config) Validate() error {
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateSeparation(); err != nil {
		return err
	}
	if err := c.validateMix(); err != nil {
		return err
	}
	if c.Synthesis.Concurrency > 16 {
		return errors.New("synthesis.concurrency must be between 1 and 16")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if _, err := language.Parse(c.Languages.Source); err != nil {
		return fmt.Errorf("languages.source %q is not a valid language tag: %w", c.Languages.Source, err)
	}
	if _, err := language.Parse(c.Languages.Target); err != nil {
		return fmt.Errorf("languages.target %q is not a valid language tag: %w", c.Languages.Target, err)
	}
	return nil
}

func (c *Config) validateBackends() error {
	if err := ensureOneOf("recognition.backend", c.Recognition.Backend, "whisperx", "openai"); err != nil {
		return err
	}
	if err := ensureOneOf("translation.backend", c.Translation.Backend, "llm", "openai", "gemini"); err != nil {
		return err
	}
	if err := ensureOneOf("synthesis.backend", c.Synthesis.Backend, "openai", "piper"); err != nil {
		return err
	}
	return ensureOneOf("recognition.vad_method", c.Recognition.VADMethod, "silero", "pyannote")
}

func (c *Config) validateSeparation() error {
	if !c.Separation.Enabled {
		return nil
	}
	n := len(c.Separation.Stems)
	if c.Separation.VocalStemIndex < 0 || c.Separation.VocalStemIndex >= n {
		return fmt.Errorf("separation.vocal_stem_index %d is outside separation.stems (%d entries)", c.Separation.VocalStemIndex, n)
	}
	for _, idx := range c.Separation.SkipStemIndices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("separation.skip_stem_indices entry %d is outside separation.stems (%d entries)", idx, n)
		}
	}
	return nil
}

func (c *Config) validateMix() error {
	if c.Mix.Channels < 1 || c.Mix.Channels > 2 {
		return errors.New("mix.channels must be 1 or 2")
	}
	if c.Mix.SampleRate < 8000 || c.Mix.SampleRate > 192000 {
		return errors.New("mix.sample_rate must be between 8000 and 192000")
	}
	return nil
}

func ensureOneOf(key, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %v, got %q", key, allowed, value)
}
