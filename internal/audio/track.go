package audio

import (
	"fmt"
	"math"
)

// Format describes the sample layout of a Track.
type Format struct {
	SampleRate int
	Channels   int
}

// Working is the format every engine stage operates in.
var Working = Format{SampleRate: 44100, Channels: 2}

// Validate ensures the format is one the engine can process.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", f.Channels)
	}
	return nil
}

// FramesFor converts seconds to a frame count at this format's rate.
func (f Format) FramesFor(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(f.SampleRate)))
}

// Seconds converts a frame count to seconds at this format's rate.
func (f Format) Seconds(frames int) float64 {
	if f.SampleRate <= 0 {
		return 0
	}
	return float64(frames) / float64(f.SampleRate)
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// Track is a buffer of interleaved float PCM samples in [-1, 1].
type Track struct {
	Format  Format
	Samples []float64
}

// Silence returns a zeroed track of the requested length.
func Silence(f Format, frames int) Track {
	if frames < 0 {
		frames = 0
	}
	return Track{Format: f, Samples: make([]float64, frames*f.Channels)}
}

// Frames returns the number of sample frames in the track.
func (t Track) Frames() int {
	if t.Format.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Format.Channels
}

// Duration returns the playback length in seconds.
func (t Track) Duration() float64 {
	return t.Format.Seconds(t.Frames())
}

// Empty reports whether the track has no frames.
func (t Track) Empty() bool {
	return t.Frames() == 0
}

// Frame returns the samples of frame i. Out of range frames read as silence.
func (t Track) Frame(i int) []float64 {
	out := make([]float64, t.Format.Channels)
	if i < 0 || i >= t.Frames() {
		return out
	}
	copy(out, t.Samples[i*t.Format.Channels:(i+1)*t.Format.Channels])
	return out
}

// Peak returns the largest absolute sample value.
func (t Track) Peak() float64 {
	var peak float64
	for _, s := range t.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Builder appends silence and clips into one contiguous track.
type Builder struct {
	format  Format
	samples []float64
}

// NewBuilder starts an empty track in the given format.
func NewBuilder(f Format) *Builder {
	return &Builder{format: f}
}

// Frames reports the number of frames appended so far.
func (b *Builder) Frames() int {
	return len(b.samples) / b.format.Channels
}

// AppendSilence appends n frames of silence. Non-positive n is a no-op.
func (b *Builder) AppendSilence(n int) {
	if n <= 0 {
		return
	}
	b.samples = append(b.samples, make([]float64, n*b.format.Channels)...)
}

// Append copies every frame of t onto the end of the builder.
func (b *Builder) Append(t Track) error {
	if t.Format != b.format {
		return fmt.Errorf("append %s track to %s timeline", t.Format, b.format)
	}
	b.samples = append(b.samples, t.Samples...)
	return nil
}

// Track returns the assembled track.
func (b *Builder) Track() Track {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return Track{Format: b.format, Samples: out}
}

// PadTo extends t with trailing silence up to frames. Longer tracks are
// returned unchanged.
func PadTo(t Track, frames int) Track {
	missing := frames - t.Frames()
	if missing <= 0 {
		return t
	}
	out := make([]float64, frames*t.Format.Channels)
	copy(out, t.Samples)
	return Track{Format: t.Format, Samples: out}
}

// Clamp limits every sample to [-1, 1] in place and returns the number of
// samples that were clipped.
func Clamp(t Track) int {
	clipped := 0
	for i, s := range t.Samples {
		switch {
		case s > 1:
			t.Samples[i] = 1
			clipped++
		case s < -1:
			t.Samples[i] = -1
			clipped++
		}
	}
	return clipped
}
