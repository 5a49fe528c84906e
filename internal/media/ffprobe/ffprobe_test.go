package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "12.5"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "mjpeg", "codec_type": "video"}
  ],
  "format": {"filename": "in.mp4", "nb_streams": 3, "duration": "12.500000", "format_name": "mov,mp4"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream (cover art excluded), got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	audio, ok := result.FirstAudio()
	if !ok || audio.Index != 1 || audio.Tags["language"] != "eng" {
		t.Fatalf("unexpected first audio: %+v %v", audio, ok)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationHandlesInvalidNumbers(t *testing.T) {
	if d := (Result{Format: Format{Duration: "bad"}}).DurationSeconds(); !math.IsNaN(d) {
		t.Fatalf("expected NaN, got %v", d)
	}
	if d := (Result{}).DurationSeconds(); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestInspectWithRunner(t *testing.T) {
	var gotArgs []string
	run := func(_ context.Context, binary string, args ...string) ([]byte, error) {
		if binary != "ffprobe" {
			t.Fatalf("unexpected binary %q", binary)
		}
		gotArgs = args
		return []byte(sampleJSON), nil
	}
	result, err := InspectWith(context.Background(), run, "", "/tmp/in.mp4")
	if err != nil {
		t.Fatalf("InspectWith: %v", err)
	}
	if result.Format.FormatName != "mov,mp4" {
		t.Fatalf("unexpected format: %+v", result.Format)
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/in.mp4" {
		t.Fatalf("expected path as last arg, got %v", gotArgs)
	}

	failing := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("exit 1") }
	if _, err := InspectWith(context.Background(), failing, "ffprobe", "x.mp4"); err == nil {
		t.Fatal("expected runner error")
	}
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected empty path error")
	}
}
