package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// ReadWAV decodes a PCM WAV file into a float track in its native format.
func ReadWAV(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return Track{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	t, err := DecodeWAV(f)
	if err != nil {
		return Track{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// DecodeWAV decodes a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Track{}, errors.New("not a valid wav stream")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Track{}, fmt.Errorf("read pcm: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return Track{}, errors.New("wav stream has no format")
	}
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = int(dec.BitDepth)
	}
	if depth <= 0 || depth > 32 {
		return Track{}, fmt.Errorf("unsupported bit depth %d", depth)
	}
	scale := math.Ldexp(1, depth-1)
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return Track{
		Format:  Format{SampleRate: buf.Format.SampleRate, Channels: buf.Format.NumChannels},
		Samples: samples,
	}, nil
}

// WriteWAV encodes t as 16-bit PCM. The file is written to a temporary
// sibling and renamed into place.
func WriteWAV(path string, t Track) error {
	if err := t.Format.Validate(); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	enc := wav.NewEncoder(f, t.Format.SampleRate, wavBitDepth, t.Format.Channels, 1)
	err = enc.Write(&goaudio.IntBuffer{
		Data:           quantize(t.Samples),
		Format:         &goaudio.Format{SampleRate: t.Format.SampleRate, NumChannels: t.Format.Channels},
		SourceBitDepth: wavBitDepth,
	})
	if err == nil {
		err = enc.Close()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// DecodePCM16 interprets raw signed 16-bit little-endian PCM.
func DecodePCM16(data []byte, f Format) (Track, error) {
	if err := f.Validate(); err != nil {
		return Track{}, err
	}
	if len(data)%2 != 0 {
		return Track{}, fmt.Errorf("pcm16 payload has odd length %d", len(data))
	}
	count := len(data) / 2
	count -= count % f.Channels
	raw := make([]int16, count)
	if err := binary.Read(bytes.NewReader(data[:count*2]), binary.LittleEndian, raw); err != nil {
		return Track{}, fmt.Errorf("read pcm16: %w", err)
	}
	samples := make([]float64, count)
	for i, v := range raw {
		samples[i] = float64(v) / 32768
	}
	return Track{Format: f, Samples: samples}, nil
}

func quantize(samples []float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		out[i] = int(math.Round(s * 32767))
	}
	return out
}
