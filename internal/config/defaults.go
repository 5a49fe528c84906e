package config

const (
	defaultConfigPath         = "~/.config/redub/config.toml"
	defaultScratchDir         = "~/.local/share/redub/scratch"
	defaultOutputDir          = "~/Videos/redub"
	defaultLogDir             = "~/.local/share/redub/logs"
	defaultSourceLanguage     = "en-US"
	defaultTargetLanguage     = "pt-PT"
	defaultRecognitionBackend = "whisperx"
	defaultWhisperXModel      = "large-v3"
	defaultVADMethod          = "silero"
	defaultTranslationBackend = "llm"
	defaultSynthesisBackend   = "openai"
	defaultOpenAITTSModel     = "tts-1"
	defaultPiperBinary        = "piper"
	defaultSynthConcurrency   = 1
	defaultDemucsModel        = "htdemucs_6s"
	defaultVocalStemIndex     = 3
	defaultSampleRate         = 44100
	defaultChannels           = 2
	defaultEmptyTrackSeconds  = 1.0
	defaultAudioCodec         = "aac"
	defaultAudioBitrate       = "192k"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMReferer         = "https://github.com/redub/redub"
	defaultLLMTitle           = "redub"
	defaultLLMTimeoutSeconds  = 60
	defaultGeminiModel        = "gemini-1.5-flash"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// defaultStems is the htdemucs_6s output order.
func defaultStems() []string {
	return []string{"drums", "bass", "other", "vocals", "guitar", "piano"}
}

// defaultSkipStems leaves the drums slot out of the bed alongside vocals.
func defaultSkipStems() []int {
	return []int{0}
}

// defaultVoices maps each supported target language to an OpenAI voice.
func defaultVoices() map[string]string {
	return map[string]string{
		"pt-pt": "onyx",
		"pt-br": "echo",
		"es-es": "alloy",
		"fr-fr": "fable",
		"de-de": "onyx",
		"nl-nl": "echo",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Languages: Languages{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
		Recognition: Recognition{
			Backend:   defaultRecognitionBackend,
			Model:     defaultWhisperXModel,
			VADMethod: defaultVADMethod,
		},
		Translation: Translation{
			Backend: defaultTranslationBackend,
		},
		Synthesis: Synthesis{
			Backend:     defaultSynthesisBackend,
			Model:       defaultOpenAITTSModel,
			Concurrency: defaultSynthConcurrency,
			PiperBinary: defaultPiperBinary,
		},
		Separation: Separation{
			Enabled:         true,
			Model:           defaultDemucsModel,
			Stems:           defaultStems(),
			VocalStemIndex:  defaultVocalStemIndex,
			SkipStemIndices: defaultSkipStems(),
		},
		Mix: Mix{
			SampleRate:        defaultSampleRate,
			Channels:          defaultChannels,
			EmptyTrackSeconds: defaultEmptyTrackSeconds,
			AudioCodec:        defaultAudioCodec,
			AudioBitrate:      defaultAudioBitrate,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Gemini: Gemini{
			Model: defaultGeminiModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
