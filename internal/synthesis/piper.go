package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/services"
)

// PiperRunner executes piper with text on stdin.
type PiperRunner func(ctx context.Context, stdin string, name string, args ...string) error

// PiperConfig holds the settings for local Piper synthesis.
type PiperConfig struct {
	Binary  string
	WorkDir string
}

// Piper synthesizes speech with a local piper binary. The voice argument is
// the path of an .onnx voice model.
type Piper struct {
	cfg    PiperConfig
	format audio.Format
	logger *slog.Logger
	run    PiperRunner
}

// NewPiper constructs a Piper synthesizer delivering clips in format.
func NewPiper(cfg PiperConfig, format audio.Format, logger *slog.Logger) *Piper {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	return &Piper{
		cfg:    cfg,
		format: format,
		logger: logging.NewComponentLogger(logger, "piper"),
		run:    runPiper,
	}
}

// WithRunner replaces command execution (for tests).
func (p *Piper) WithRunner(run PiperRunner) {
	if run != nil {
		p.run = run
	}
}

// Synthesize renders text to a temporary WAV and loads it.
func (p *Piper) Synthesize(ctx context.Context, text, voice string) (audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "piper", "", errors.New("text required"))
	}
	if strings.TrimSpace(voice) == "" {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "piper", "", errors.New("voice model required"))
	}

	tmp, err := os.CreateTemp(p.cfg.WorkDir, "piper-*.wav")
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "piper", "create temp file", err)
	}
	outPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(outPath)

	args := []string{"--model", voice, "--output_file", outPath}
	if err := p.run(ctx, text, p.cfg.Binary, args...); err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "piper", "", err)
	}
	clip, err := audio.ReadWAV(outPath)
	if err != nil {
		return audio.Track{}, services.Wrap(services.ErrSynthesisFailed, "synthesize", "piper", "read output", err)
	}
	logging.WithContext(ctx, p.logger).Debug("speech synthesized",
		logging.String("model", voice),
		logging.Float64("clip_seconds", clip.Duration()),
	)
	return finish(clip, p.format, "piper")
}

func runPiper(ctx context.Context, stdin string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
