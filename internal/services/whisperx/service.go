package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "redub/internal/language"
	"redub/internal/logging"
	"redub/internal/segment"
	"redub/internal/services"
)

// Service recognizes speech by running WhisperX through uvx.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

func (s *Service) binary() string {
	if s.cfg.UVXBinary != "" {
		return s.cfg.UVXBinary
	}
	return UVXCommand
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// pyannote checkpoints fail to load under torch's weights_only default.
	if _, set := os.LookupEnv(torchWeightsEnv); !set {
		cmd.Env = append(os.Environ(), torchWeightsEnv+"=1")
	}
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if tail := strings.TrimSpace(string(output)); tail != "" {
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(tail, 5))
	}
	return fmt.Errorf("%s: %w", name, err)
}

const torchWeightsEnv = "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD"

// lastLines keeps the final n lines of tool output for error messages.
func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Recognize transcribes a speech WAV into ordered segments. WhisperX writes
// its JSON next to the audio file. An empty result is returned without error.
func (s *Service) Recognize(ctx context.Context, audioPath, lang string) ([]segment.Segment, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, services.Wrap(services.ErrRecognitionFailed, "recognize", "whisperx", "audio path required", nil)
	}
	outputDir := filepath.Dir(audioPath)

	args := s.buildArgs(audioPath, outputDir, lang)
	s.logger.Debug("running whisperx",
		logging.String("model", s.Model()),
		logging.String("language", lang),
		logging.Bool("cuda", s.cfg.CUDAEnabled),
	)
	if err := s.run(ctx, s.binary(), args...); err != nil {
		return nil, services.Wrap(services.ErrRecognitionFailed, "recognize", "whisperx", "transcription failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := LoadSegments(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return nil, services.Wrap(services.ErrRecognitionFailed, "recognize", "whisperx", "load transcript", err)
	}
	return ToSegments(raw), nil
}

// buildArgs assembles the uvx invocation: package indexes, the whisperx
// entry point with its decoding knobs, then VAD, language and device flags.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := indexArgs(s.cfg.CUDAEnabled)
	args = append(args,
		"whisperx", source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--batch_size", BatchSize,
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
	)
	args = append(args, s.vadArgs()...)
	if iso := langpkg.ToISO2(language); iso != "" {
		args = append(args, "--language", iso)
	}
	return append(args, deviceArgs(s.cfg.CUDAEnabled)...)
}

func indexArgs(cuda bool) []string {
	if cuda {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}
	return []string{"--index-url", PypiIndexURL}
}

func (s *Service) vadArgs() []string {
	method := strings.ToLower(s.cfg.VADMethod)
	if method != VADMethodPyannote {
		return []string{"--vad_method", VADMethodSilero}
	}
	if s.cfg.HFToken == "" {
		return []string{"--vad_method", method}
	}
	return []string{"--vad_method", method, "--hf_token", s.cfg.HFToken}
}

func deviceArgs(cuda bool) []string {
	if cuda {
		return []string{"--device", CUDADevice}
	}
	return []string{"--device", CPUDevice, "--compute_type", CPUComputeType}
}

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// ToSegments converts WhisperX output into pipeline segments, dropping blank
// utterances and numbering the rest in order.
func ToSegments(raw []Segment) []segment.Segment {
	out := make([]segment.Segment, 0, len(raw))
	for _, seg := range raw {
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
	segment.Renumber(out)
	return out
}
