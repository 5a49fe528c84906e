package services_test

import (
	"errors"
	"strings"
	"testing"

	"redub/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrMuxFailed, "mux", "ffmpeg", "replace audio failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrMuxFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mux", "ffmpeg", "replace audio failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCauseOrMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, services.ExitOK},
		{"empty transcript", services.Wrap(services.ErrEmptyTranscript, "recognize", "", "no speech", nil), services.ExitNothingToDub},
		{"validation", services.Wrap(services.ErrValidation, "input", "probe", "no video", nil), services.ExitUsage},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "bad", nil), services.ExitUsage},
		{"invariant", services.Wrap(services.ErrCompositionInvariant, "compose", "", "unsorted", nil), services.ExitInvariant},
		{"synthesis", services.Wrap(services.ErrSynthesisFailed, "synthesize", "", "tts", errors.New("503")), services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindLabels(t *testing.T) {
	err := services.Wrap(services.ErrSeparationFailed, "separate", "demucs", "exit 1", nil)
	if got := services.Kind(err); got != "separation_failed" {
		t.Fatalf("Kind() = %q", got)
	}
	if got := services.Kind(errors.New("plain")); got != "unknown" {
		t.Fatalf("Kind() = %q, want unknown", got)
	}
}
