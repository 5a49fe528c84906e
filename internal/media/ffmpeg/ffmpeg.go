package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/services"
)

// CommandRunner executes an external command and returns an error that
// includes the tool's output on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// SpeechFormat is the layout recognizers expect: 16 kHz mono PCM.
var SpeechFormat = audio.Format{SampleRate: 16000, Channels: 1}

// Tool wraps the ffmpeg binary for audio extraction and remuxing.
type Tool struct {
	binary string
	logger *slog.Logger
	run    CommandRunner
}

// New constructs a Tool for the given ffmpeg binary.
func New(binary string, logger *slog.Logger) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Tool{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Tool) WithCommandRunner(r CommandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Binary reports the configured ffmpeg executable.
func (t *Tool) Binary() string {
	return t.binary
}

// ExtractSpeech writes the first audio stream of source to dest as 16 kHz
// mono 16-bit PCM WAV.
func (t *Tool) ExtractSpeech(ctx context.Context, source, dest string) error {
	return t.extract(ctx, source, dest, SpeechFormat)
}

// ExtractMix writes the first audio stream of source to dest as 16-bit PCM
// WAV in the given format. Separation runs on this file.
func (t *Tool) ExtractMix(ctx context.Context, source, dest string, format audio.Format) error {
	return t.extract(ctx, source, dest, format)
}

func (t *Tool) extract(ctx context.Context, source, dest string, format audio.Format) error {
	if err := format.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "extract", "ffmpeg", "invalid output format", err)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "extract", "ffmpeg", "source not found", err)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	t.logger.Debug("extracting audio",
		logging.String("source", source),
		logging.String("dest", dest),
		logging.String("format", format.String()),
	)
	if err := t.run(ctx, t.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "audio extraction failed", err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
