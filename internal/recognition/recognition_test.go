package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"redub/internal/config"
	"redub/internal/services"
	"redub/internal/services/whisperx"
)

func writeSpeech(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speech.wav")
	if err := os.WriteFile(path, []byte("RIFF0000WAVE"), 0o644); err != nil {
		t.Fatalf("write speech: %v", err)
	}
	return path
}

func TestOpenAIRecognizeSegments(t *testing.T) {
	var gotLanguage, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotFormat = r.FormValue("response_format")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"task":     "transcribe",
			"language": "english",
			"duration": 6.0,
			"text":     "Hello there. How are you?",
			"segments": []any{
				map[string]any{"id": 0, "start": 0.5, "end": 1.5, "text": " Hello there."},
				map[string]any{"id": 1, "start": 2.0, "end": 2.0, "text": "  "},
				map[string]any{"id": 2, "start": 3.0, "end": 4.5, "text": "How are you?"},
			},
		})
	}))
	defer server.Close()

	rec := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1"}, nil)
	segs, err := rec.Recognize(context.Background(), writeSpeech(t), "en-US")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if gotLanguage != "en" || gotFormat != "verbose_json" {
		t.Fatalf("unexpected request fields language=%q format=%q", gotLanguage, gotFormat)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segs)
	}
	if segs[0].Text != "Hello there." || segs[1].Index != 1 || segs[1].Start != 3.0 {
		t.Fatalf("unexpected segments %+v", segs)
	}
}

func TestOpenAIRecognizeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	rec := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1"}, nil)
	_, err := rec.Recognize(context.Background(), writeSpeech(t), "en")
	if !errors.Is(err, services.ErrRecognitionFailed) {
		t.Fatalf("expected recognition failure, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Recognition.Backend = BackendWhisperX
	rec, err := New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := rec.(*whisperx.Service); !ok {
		t.Fatalf("expected whisperx service, got %T", rec)
	}

	cfg.Recognition.Backend = BackendOpenAI
	rec, err = New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := rec.(*OpenAI); !ok {
		t.Fatalf("expected openai recognizer, got %T", rec)
	}

	cfg.Recognition.Backend = "vosk"
	if _, err := New(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
