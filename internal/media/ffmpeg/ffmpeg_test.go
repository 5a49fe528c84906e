package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/services"
)

type recordedCall struct {
	name string
	args []string
}

func recordingRunner(calls *[]recordedCall, produce bool) CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCall{name: name, args: append([]string(nil), args...)})
		if produce {
			return os.WriteFile(args[len(args)-1], []byte("out"), 0o644)
		}
		return nil
	}
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestExtractSpeechArgs(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "in.mp4"))
	var calls []recordedCall
	tool := New("", logging.NewNop())
	tool.WithCommandRunner(recordingRunner(&calls, false))

	if err := tool.ExtractSpeech(context.Background(), src, filepath.Join(dir, "speech.wav")); err != nil {
		t.Fatalf("ExtractSpeech: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "ffmpeg" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	joined := strings.Join(calls[0].args, " ")
	for _, want := range []string{"-map 0:a:0", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
}

func TestExtractMixUsesWorkingFormat(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "in.mkv"))
	var calls []recordedCall
	tool := New("ffmpeg", nil)
	tool.WithCommandRunner(recordingRunner(&calls, false))

	if err := tool.ExtractMix(context.Background(), src, filepath.Join(dir, "mix.wav"), audio.Working); err != nil {
		t.Fatalf("ExtractMix: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "-ac 2") || !strings.Contains(joined, "-ar 44100") {
		t.Fatalf("expected working format args in %q", joined)
	}
}

func TestExtractMissingSourceIsValidationError(t *testing.T) {
	tool := New("ffmpeg", nil)
	err := tool.ExtractSpeech(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), "out.wav")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceAudioCopiesVideoAndTagsLanguage(t *testing.T) {
	dir := t.TempDir()
	video := touch(t, filepath.Join(dir, "in.mp4"))
	wav := touch(t, filepath.Join(dir, "dub.wav"))
	out := filepath.Join(dir, "out", "dubbed_in.mp4")

	var calls []recordedCall
	tool := New("ffmpeg", nil)
	tool.WithCommandRunner(recordingRunner(&calls, true))

	res, err := tool.ReplaceAudio(context.Background(), MuxRequest{
		VideoPath:  video,
		AudioPath:  wav,
		OutputPath: out,
		Language:   "pt-BR",
		SampleRate: 44100,
		Channels:   2,
		Shortest:   true,
	})
	if err != nil {
		t.Fatalf("ReplaceAudio: %v", err)
	}
	if res.OutputPath != out || res.Language != "por" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	args := calls[0].args
	for _, pair := range [][2]string{{"-c:v", "copy"}, {"-c:a", "aac"}, {"-map", "0:v:0"}, {"-metadata:s:a:0", "language=por"}} {
		idx := slices.Index(args, pair[0])
		found := false
		for i := idx; i >= 0 && i < len(args)-1; i++ {
			if args[i] == pair[0] && args[i+1] == pair[1] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %s %s in %v", pair[0], pair[1], args)
		}
	}
	if !slices.Contains(args, "-shortest") {
		t.Fatalf("expected -shortest in %v", args)
	}
	if tmp := args[len(args)-1]; filepath.Base(tmp) != ".mux-dubbed_in.mp4" {
		t.Fatalf("expected hidden temp output, got %q", tmp)
	}
}

func TestReplaceAudioFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	video := touch(t, filepath.Join(dir, "in.mp4"))
	wav := touch(t, filepath.Join(dir, "dub.wav"))
	out := filepath.Join(dir, "dubbed_in.mp4")

	tool := New("ffmpeg", nil)
	tool.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("exit status 1: invalid codec")
	})

	_, err := tool.ReplaceAudio(context.Background(), MuxRequest{VideoPath: video, AudioPath: wav, OutputPath: out, Language: "es-ES"})
	if !errors.Is(err, services.ErrMuxFailed) {
		t.Fatalf("expected mux failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid codec") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".mux-") || e.Name() == "dubbed_in.mp4" {
			t.Fatalf("unexpected leftover %s", e.Name())
		}
	}
}

func TestMuxArgsKeepFullVideoUnlessShortest(t *testing.T) {
	args, _ := buildMuxArgs(MuxRequest{VideoPath: "in.mp4", AudioPath: "dub.wav", Language: "es"}, "out.mp4")
	if slices.Contains(args, "-shortest") {
		t.Fatalf("unexpected -shortest in %v", args)
	}
}
