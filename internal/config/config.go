package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Languages names the spoken languages of a job as BCP-47 tags.
type Languages struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

// Recognition selects and tunes the speech recognizer.
type Recognition struct {
	Backend          string `toml:"backend"`
	Model            string `toml:"model"`
	CUDA             bool   `toml:"cuda"`
	VADMethod        string `toml:"vad_method"`
	HuggingFaceToken string `toml:"hf_token"`
}

// Translation selects the text translator.
type Translation struct {
	Backend string `toml:"backend"`
	Model   string `toml:"model"`
	Prompt  string `toml:"prompt"`
}

// Synthesis selects the speech synthesizer and per-language voices.
type Synthesis struct {
	Backend     string            `toml:"backend"`
	Model       string            `toml:"model"`
	Voices      map[string]string `toml:"voices"`
	Concurrency int               `toml:"concurrency"`
	PiperBinary string            `toml:"piper_binary"`
	PiperModels map[string]string `toml:"piper_models"`
}

// Separation configures stem separation and which slots are excluded from
// the instrumental bed.
type Separation struct {
	Enabled         bool     `toml:"enabled"`
	Model           string   `toml:"model"`
	Stems           []string `toml:"stems"`
	VocalStemIndex  int      `toml:"vocal_stem_index"`
	SkipStemIndices []int    `toml:"skip_stem_indices"`
	CUDA            bool     `toml:"cuda"`
}

// Mix configures the working audio format and final encode.
type Mix struct {
	SampleRate        int     `toml:"sample_rate"`
	Channels          int     `toml:"channels"`
	EmptyTrackSeconds float64 `toml:"empty_track_seconds"`
	AudioCodec        string  `toml:"audio_codec"`
	AudioBitrate      string  `toml:"audio_bitrate"`
	Shortest          bool    `toml:"shortest"`
}

// LLM contains OpenAI-compatible chat endpoint settings used by the llm
// translation backend.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenAI contains credentials for the OpenAI audio and chat APIs.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Gemini contains credentials for Google's generative language API.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for redub.
//
// Configuration sections by subsystem:
//   - Paths: scratch, output, and log directories
//   - Languages: source and target language tags
//   - Recognition, Translation, Synthesis, Separation: backend selection
//   - Mix: working format and encode settings
//   - LLM, OpenAI, Gemini: service credentials
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Languages   Languages   `toml:"languages"`
	Recognition Recognition `toml:"recognition"`
	Translation Translation `toml:"translation"`
	Synthesis   Synthesis   `toml:"synthesis"`
	Separation  Separation  `toml:"separation"`
	Mix         Mix         `toml:"mix"`
	LLM         LLM         `toml:"llm"`
	OpenAI      OpenAI      `toml:"openai"`
	Gemini      Gemini      `toml:"gemini"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file next to the config, or in the
// working directory, is loaded first so credentials can live outside the TOML.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env files without overriding variables already set.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env")}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, ".env"))
	}
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load %s: %w", candidate, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("redub.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for extraction and muxing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for input inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// UVXBinary returns the uv tool runner used to launch WhisperX and Demucs.
func (c *Config) UVXBinary() string {
	return "uvx"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// VoiceFor returns the configured voice for a target tag. An exact tag match
// wins, then the base language (pt for pt-BR).
func (c *Config) VoiceFor(tag string) (string, bool) {
	return lookupByTag(c.Synthesis.Voices, tag)
}

// PiperModelFor returns the piper model path for a target tag.
func (c *Config) PiperModelFor(tag string) (string, bool) {
	return lookupByTag(c.Synthesis.PiperModels, tag)
}

func lookupByTag(values map[string]string, tag string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if v, ok := values[key]; ok && v != "" {
		return v, true
	}
	if base, _, found := strings.Cut(key, "-"); found {
		if v, ok := values[base]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
