package segment

import (
	"fmt"
	"os"
	"strings"
)

// TextSelector picks which text of a segment goes into a subtitle cue.
type TextSelector func(Segment) string

// Translated selects the current (translated) text.
func Translated(s Segment) string { return s.Text }

// Source selects the recognized text, falling back to Text when unset.
func Source(s Segment) string {
	if strings.TrimSpace(s.SourceText) != "" {
		return s.SourceText
	}
	return s.Text
}

// FormatSRT renders segments as SRT cues numbered from 1.
func FormatSRT(segments []Segment, pick TextSelector) string {
	if pick == nil {
		pick = Translated
	}
	var sb strings.Builder
	n := 0
	for _, seg := range segments {
		text := strings.TrimSpace(pick(seg))
		if text == "" {
			continue
		}
		if n > 0 {
			sb.WriteString("\n")
		}
		n++
		sb.WriteString(fmt.Sprintf("%d\n", n))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End)))
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteSRT writes segments to path as an SRT file.
func WriteSRT(path string, segments []Segment, pick TextSelector) error {
	if err := os.WriteFile(path, []byte(FormatSRT(segments, pick)), 0o644); err != nil {
		return fmt.Errorf("write srt %s: %w", path, err)
	}
	return nil
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
