package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"redub/internal/config"
	"redub/internal/segment"
	"redub/internal/services"
)

type recordingTranslator struct {
	calls  []string
	failOn string
}

func (r *recordingTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	r.calls = append(r.calls, fmt.Sprintf("%s>%s:%s", from, to, text))
	if text == r.failOn {
		return "", services.Wrap(services.ErrTranslationFailed, "translate", "fake", "", errors.New("quota"))
	}
	return strings.ToUpper(text), nil
}

func TestSegmentsPreservesTimingAndSource(t *testing.T) {
	input := []segment.Segment{
		{Index: 0, Text: "hello", SourceText: "hello", Start: 0.5, End: 1.5},
		{Index: 1, Text: "world", Start: 2.0, End: 3.25},
	}
	tr := &recordingTranslator{}
	out, err := Segments(context.Background(), tr, input, "en-US", "pt-PT", nil)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out))
	}
	for i, seg := range out {
		if seg.Index != input[i].Index || seg.Start != input[i].Start || seg.End != input[i].End {
			t.Fatalf("segment %d timing changed: %+v", i, seg)
		}
		if seg.SourceText != input[i].Text {
			t.Fatalf("segment %d source text = %q", i, seg.SourceText)
		}
		if seg.Text != strings.ToUpper(input[i].Text) {
			t.Fatalf("segment %d text = %q", i, seg.Text)
		}
	}
	if input[0].Text != "hello" {
		t.Fatal("input slice was mutated")
	}
	if tr.calls[0] != "en>pt:hello" {
		t.Fatalf("expected base languages, got %q", tr.calls[0])
	}
}

func TestSegmentsFailsFast(t *testing.T) {
	input := []segment.Segment{
		{Index: 0, Text: "one"},
		{Index: 1, Text: "two"},
		{Index: 2, Text: "three"},
	}
	tr := &recordingTranslator{failOn: "two"}
	_, err := Segments(context.Background(), tr, input, "en", "es", nil)
	if !errors.Is(err, services.ErrTranslationFailed) {
		t.Fatalf("expected translation failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "segment 1") {
		t.Fatalf("expected segment index in error, got %v", err)
	}
	if len(tr.calls) != 2 {
		t.Fatalf("expected translation to stop after failure, got %v", tr.calls)
	}
}

func TestSegmentsSkipsBlankText(t *testing.T) {
	tr := &recordingTranslator{}
	out, err := Segments(context.Background(), tr, []segment.Segment{{Index: 0, Text: "  "}}, "en", "fr", nil)
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(tr.calls) != 0 || out[0].Text != "  " {
		t.Fatalf("blank segment should pass through untouched: %+v %v", out, tr.calls)
	}
}

func TestOpenAITranslate(t *testing.T) {
	var system string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			system = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []any{map[string]any{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": " Olá! "}}},
		})
	}))
	defer server.Close()

	tr := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1"})
	got, err := tr.Translate(context.Background(), "Hello!", "en", "pt")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Olá!" {
		t.Fatalf("unexpected translation %q", got)
	}
	if !strings.Contains(system, "English") || !strings.Contains(system, "Portuguese") {
		t.Fatalf("expected language names in system prompt, got %q", system)
	}
}

func TestOpenAITranslateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	tr := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1"})
	if _, err := tr.Translate(context.Background(), "Hello", "en", "pt"); !errors.Is(err, services.ErrTranslationFailed) {
		t.Fatalf("expected translation failure, got %v", err)
	}
}

func TestGeminiTranslate(t *testing.T) {
	var prompt string
	g := newGemini("", func(_ context.Context, p string) (*genai.GenerateContentResponse, error) {
		prompt = p
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hallo "), genai.Text("Welt")}},
		}}}, nil
	})
	got, err := g.Translate(context.Background(), "Hello world", "en", "de")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Hallo Welt" {
		t.Fatalf("unexpected translation %q", got)
	}
	if !strings.HasSuffix(prompt, "\n\nHello world") || !strings.Contains(prompt, "German") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}

func TestGeminiTranslateFailures(t *testing.T) {
	tests := map[string]generateFunc{
		"error": func(context.Context, string) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota exceeded")
		},
		"no candidates": func(context.Context, string) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
		"blank": func(context.Context, string) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}},
			}}}, nil
		},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			g := newGemini("", gen)
			if _, err := g.Translate(context.Background(), "Hi", "en", "de"); !errors.Is(err, services.ErrTranslationFailed) {
				t.Fatalf("expected translation failure, got %v", err)
			}
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Translation.Backend = BackendLLM
	tr, err := New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*LLM); !ok {
		t.Fatalf("expected llm translator, got %T", tr)
	}

	cfg.Translation.Backend = BackendOpenAI
	if tr, err = New(context.Background(), &cfg, nil); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*OpenAI); !ok {
		t.Fatalf("expected openai translator, got %T", tr)
	}

	cfg.Translation.Backend = BackendGemini
	cfg.Gemini.APIKey = ""
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without gemini key, got %v", err)
	}

	cfg.Translation.Backend = "azure"
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if err := Close(&LLM{}); err != nil {
		t.Fatalf("Close on non-closer: %v", err)
	}
}
