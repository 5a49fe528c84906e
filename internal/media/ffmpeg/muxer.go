package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	langpkg "redub/internal/language"
	"redub/internal/logging"
	"redub/internal/services"
)

// MuxRequest describes a video whose audio should be replaced.
type MuxRequest struct {
	VideoPath  string // Source container; its first video stream is copied as-is
	AudioPath  string // New audio (WAV) to encode as the only audio stream
	OutputPath string // Destination container
	Language   string // BCP-47 tag of the new audio
	Codec      string // Audio codec, default aac
	Bitrate    string // Optional audio bitrate, e.g. 192k
	SampleRate int
	Channels   int
	Shortest   bool // Stop at the end of the shorter input
}

// MuxResult reports the outcome of a remux.
type MuxResult struct {
	OutputPath string
	Language   string // ISO 639-2 code written to stream metadata
}

// ReplaceAudio writes a copy of the source video with its audio replaced.
// The output is written to a hidden sibling and renamed into place, so a
// failed mux never leaves a partial file at OutputPath.
func (t *Tool) ReplaceAudio(ctx context.Context, req MuxRequest) (MuxResult, error) {
	if t == nil {
		return MuxResult{}, fmt.Errorf("muxer not initialized")
	}
	if strings.TrimSpace(req.VideoPath) == "" || strings.TrimSpace(req.AudioPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "validate", "video, audio, and output paths are required", nil)
	}
	for _, path := range []string{req.VideoPath, req.AudioPath} {
		if _, err := os.Stat(path); err != nil {
			return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "validate", "input not found", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "prepare", "create output directory", err)
	}

	tmpPath := filepath.Join(filepath.Dir(req.OutputPath), ".mux-"+filepath.Base(req.OutputPath))
	args, lang3 := buildMuxArgs(req, tmpPath)

	t.logger.Debug("executing ffmpeg mux",
		logging.String("video_path", req.VideoPath),
		logging.String("audio_path", req.AudioPath),
		logging.String("language", lang3),
		logging.Bool("shortest", req.Shortest),
	)

	if err := t.run(ctx, t.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "ffmpeg", "replace audio failed", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "ffmpeg", "ffmpeg did not produce output file", err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return MuxResult{}, services.Wrap(services.ErrMuxFailed, "mux", "finalize", "rename output", err)
	}

	t.logger.Info("audio replaced",
		logging.String(logging.FieldEventType, "mux_complete"),
		logging.String("output_path", req.OutputPath),
		logging.String("language", lang3),
	)
	return MuxResult{OutputPath: req.OutputPath, Language: lang3}, nil
}

func buildMuxArgs(req MuxRequest, outputPath string) ([]string, string) {
	codec := strings.TrimSpace(req.Codec)
	if codec == "" {
		codec = "aac"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", req.VideoPath,
		"-i", req.AudioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
	}
	if bitrate := strings.TrimSpace(req.Bitrate); bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	if req.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(req.SampleRate))
	}
	if req.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(req.Channels))
	}

	lang3 := "und"
	if l, err := langpkg.Parse(req.Language); err == nil {
		lang3 = l.ISO3()
		args = append(args,
			"-metadata:s:a:0", "language="+lang3,
			"-metadata:s:a:0", "title="+l.DisplayName(),
		)
	}
	if req.Shortest {
		args = append(args, "-shortest")
	}
	args = append(args, outputPath)
	return args, lang3
}
