package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"redub/internal/audio"
)

// WriteFile creates path (and its parents) filled with size bytes of
// filler. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(max(size, 1))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTone writes a WAV of frames frames whose every sample equals value.
func WriteTone(t testing.TB, path string, format audio.Format, frames int, value float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	track := audio.Silence(format, frames)
	for i := range track.Samples {
		track.Samples[i] = value
	}
	if err := audio.WriteWAV(path, track); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
