package audio

import (
	"fmt"

	"github.com/gopxl/beep"
)

// resampleQuality is the beep interpolation window used for rate conversion.
const resampleQuality = 4

// Convert returns t in the target format. Channels are remapped first
// (mono is duplicated, stereo is averaged to mono) and the sample rate is
// converted with beep's resampler. The result length is the source duration
// rounded to whole target frames.
func Convert(t Track, to Format) (Track, error) {
	if err := t.Format.Validate(); err != nil {
		return Track{}, fmt.Errorf("convert source: %w", err)
	}
	if err := to.Validate(); err != nil {
		return Track{}, fmt.Errorf("convert target: %w", err)
	}
	if t.Format == to {
		return t, nil
	}
	remapped := remapChannels(t, to.Channels)
	if remapped.Format.SampleRate == to.SampleRate {
		return remapped, nil
	}
	return resample(remapped, to.SampleRate), nil
}

func remapChannels(t Track, channels int) Track {
	if t.Format.Channels == channels {
		return t
	}
	frames := t.Frames()
	out := Track{
		Format:  Format{SampleRate: t.Format.SampleRate, Channels: channels},
		Samples: make([]float64, frames*channels),
	}
	for i := 0; i < frames; i++ {
		switch {
		case t.Format.Channels == 1:
			for c := 0; c < channels; c++ {
				out.Samples[i*channels+c] = t.Samples[i]
			}
		case channels == 1:
			var sum float64
			for c := 0; c < t.Format.Channels; c++ {
				sum += t.Samples[i*t.Format.Channels+c]
			}
			out.Samples[i] = sum / float64(t.Format.Channels)
		}
	}
	return out
}

func resample(t Track, rate int) Track {
	frames := t.Frames()
	target := Format{SampleRate: rate, Channels: t.Format.Channels}
	want := int(int64(frames) * int64(rate) / int64(t.Format.SampleRate))
	if frames == 0 {
		return Silence(target, 0)
	}

	src := &trackStreamer{track: t}
	resampler := beep.Resample(resampleQuality, beep.SampleRate(t.Format.SampleRate), beep.SampleRate(rate), src)

	out := make([]float64, 0, want*target.Channels)
	buf := make([][2]float64, 512)
	produced := 0
	for produced < want {
		n, ok := resampler.Stream(buf)
		for i := 0; i < n && produced < want; i++ {
			out = append(out, buf[i][0])
			if target.Channels == 2 {
				out = append(out, buf[i][1])
			}
			produced++
		}
		if !ok || n == 0 {
			break
		}
	}
	return PadTo(Track{Format: target, Samples: out}, want)
}

// trackStreamer exposes a mono or stereo Track as a beep.Streamer.
type trackStreamer struct {
	track Track
	pos   int
}

func (s *trackStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.track.Frames()
	if s.pos >= frames {
		return 0, false
	}
	ch := s.track.Format.Channels
	n := 0
	for n < len(samples) && s.pos < frames {
		left := s.track.Samples[s.pos*ch]
		right := left
		if ch == 2 {
			right = s.track.Samples[s.pos*ch+1]
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

func (s *trackStreamer) Err() error { return nil }
