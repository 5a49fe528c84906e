package audio

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVRoundTripKeepsFormatAndLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	tr := Track{Format: Format{SampleRate: 22050, Channels: 2}, Samples: []float64{0, 0.5, -0.5, 1, -1, 0.25}}
	require.NoError(t, WriteWAV(path, tr))

	got, err := ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, tr.Format, got.Format)
	require.Equal(t, tr.Frames(), got.Frames())
	for i := range tr.Samples {
		assert.InDelta(t, tr.Samples[i], got.Samples[i], 1.0/16384)
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	_, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestDecodePCM16(t *testing.T) {
	data := make([]byte, 6)
	binary.LittleEndian.PutUint16(data[0:], uint16(16384))
	binary.LittleEndian.PutUint16(data[2:], 0x8000) // -32768
	binary.LittleEndian.PutUint16(data[4:], 0)
	tr, err := DecodePCM16(data, Format{SampleRate: 24000, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1, 0}, tr.Samples)

	_, err = DecodePCM16([]byte{1, 2, 3}, Format{SampleRate: 24000, Channels: 1})
	assert.Error(t, err)
}
