package demucs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/separation"
	"redub/internal/services"
)

// Demucs configuration constants.
const (
	DefaultModel  = "htdemucs_6s"
	UVXCommand    = "uvx"
	CUDAIndexURL  = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL  = "https://pypi.org/simple"
	CPUDevice     = "cpu"
	CUDADevice    = "cuda"
	outputSubdir  = "stems"
	stemExtension = ".wav"
)

// Config captures runtime settings for a Demucs run.
type Config struct {
	Model       string
	Stems       []string
	CUDAEnabled bool
	UVXBinary   string
	OutputDir   string
}

// Separator runs Demucs through uvx and loads the resulting stem files.
type Separator struct {
	cfg           Config
	format        audio.Format
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// New creates a Separator. Stems are returned in cfg.Stems order and converted
// to format.
func New(cfg Config, format audio.Format, logger *slog.Logger) *Separator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.UVXBinary == "" {
		cfg.UVXBinary = UVXCommand
	}
	return &Separator{
		cfg:    cfg,
		format: format,
		logger: logging.NewComponentLogger(logger, "demucs"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Separator) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

func (s *Separator) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(string(output), 600))
	}
	return nil
}

// Separate splits mixPath into stems. Slots whose file Demucs did not write
// are returned with Present=false; a run that produces no stems at all fails.
func (s *Separator) Separate(ctx context.Context, mixPath string) (separation.StemSet, error) {
	if len(s.cfg.Stems) == 0 {
		return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs", "no stems configured", nil)
	}
	outDir := s.cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(mixPath), outputSubdir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs", "create output dir", err)
	}

	logging.WithContext(ctx, s.logger).Info("separating stems",
		logging.String(logging.FieldEventType, "separation_started"),
		logging.String("model", s.cfg.Model),
		logging.Bool("cuda", s.cfg.CUDAEnabled),
	)
	if err := s.run(ctx, s.cfg.UVXBinary, s.buildArgs(mixPath, outDir)...); err != nil {
		return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs", "", err)
	}

	stemDir := StemDir(outDir, s.cfg.Model, mixPath)
	set := separation.StemSet{Stems: make([]separation.Stem, len(s.cfg.Stems))}
	present := 0
	for i, name := range s.cfg.Stems {
		set.Stems[i].Name = name
		path := filepath.Join(stemDir, name+stemExtension)
		track, err := audio.ReadWAV(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs",
				fmt.Sprintf("read stem %q", name), err)
		}
		converted, err := audio.Convert(track, s.format)
		if err != nil {
			return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs",
				fmt.Sprintf("convert stem %q", name), err)
		}
		set.Stems[i].Track = converted
		set.Stems[i].Present = true
		present++
	}
	if present == 0 {
		return separation.StemSet{}, services.Wrap(services.ErrSeparationFailed, "separate", "demucs",
			fmt.Sprintf("no stems found in %s", stemDir), nil)
	}
	return set, nil
}

func (s *Separator) buildArgs(mixPath, outDir string) []string {
	args := make([]string, 0, 16)
	if s.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	}
	args = append(args, "demucs", "-n", s.cfg.Model, "-o", outDir)
	if s.cfg.CUDAEnabled {
		args = append(args, "-d", CUDADevice)
	} else {
		args = append(args, "-d", CPUDevice)
	}
	return append(args, mixPath)
}

// StemDir returns the directory Demucs writes stems for mixPath into:
// <out>/<model>/<input basename without extension>.
func StemDir(outDir, model, mixPath string) string {
	base := strings.TrimSuffix(filepath.Base(mixPath), filepath.Ext(mixPath))
	return filepath.Join(outDir, model, base)
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
