package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error that leaves an adapter or engine wraps exactly
// one of these so callers can classify it with errors.Is.
var (
	ErrRecognitionFailed    = errors.New("recognition failed")
	ErrEmptyTranscript      = errors.New("empty transcript")
	ErrTranslationFailed    = errors.New("translation failed")
	ErrSynthesisFailed      = errors.New("synthesis failed")
	ErrSeparationFailed     = errors.New("separation failed")
	ErrMuxFailed            = errors.New("mux failed")
	ErrCompositionInvariant = errors.New("composition invariant violation")
	ErrExternalTool         = errors.New("external tool error")
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above. The adapter error, when present, is kept
// verbatim at the end of the chain.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Exit codes returned by the CLI for each failure class.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitNothingToDub = 2
	ExitUsage        = 3
	ExitInvariant    = 4
)

// ExitCode maps an error to the process exit status the CLI should report.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrEmptyTranscript):
		return ExitNothingToDub
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return ExitUsage
	case errors.Is(err, ErrCompositionInvariant):
		return ExitInvariant
	default:
		return ExitFailure
	}
}

// Kind returns a short label for the marker carried by err, or "unknown".
func Kind(err error) string {
	for _, candidate := range []struct {
		marker error
		label  string
	}{
		{ErrRecognitionFailed, "recognition_failed"},
		{ErrEmptyTranscript, "empty_transcript"},
		{ErrTranslationFailed, "translation_failed"},
		{ErrSynthesisFailed, "synthesis_failed"},
		{ErrSeparationFailed, "separation_failed"},
		{ErrMuxFailed, "mux_failed"},
		{ErrCompositionInvariant, "composition_invariant"},
		{ErrValidation, "validation"},
		{ErrConfiguration, "configuration"},
		{ErrExternalTool, "external_tool"},
	} {
		if errors.Is(err, candidate.marker) {
			return candidate.label
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
