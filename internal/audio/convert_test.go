package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSameFormatIsIdentity(t *testing.T) {
	tr := Track{Format: Working, Samples: []float64{0.1, 0.2, 0.3, 0.4}}
	out, err := Convert(tr, Working)
	require.NoError(t, err)
	assert.Equal(t, tr, out)
}

func TestConvertMonoToStereoDuplicates(t *testing.T) {
	tr := Track{Format: Format{SampleRate: 44100, Channels: 1}, Samples: []float64{0.5, -0.5}}
	out, err := Convert(tr, Working)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, -0.5, -0.5}, out.Samples)
}

func TestConvertStereoToMonoAverages(t *testing.T) {
	tr := Track{Format: Format{SampleRate: 16000, Channels: 2}, Samples: []float64{1, 0, 0.5, 0.5}}
	out, err := Convert(tr, Format{SampleRate: 16000, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, out.Samples)
}

func TestConvertResamplePreservesDuration(t *testing.T) {
	src := Silence(Format{SampleRate: 24000, Channels: 1}, 24000*2)
	for i := range src.Samples {
		src.Samples[i] = 0.25
	}
	out, err := Convert(src, Working)
	require.NoError(t, err)
	assert.Equal(t, Working, out.Format)
	assert.Equal(t, 88200, out.Frames())
	assert.InDelta(t, 2.0, out.Duration(), 1e-9)
	// interior samples of a constant signal stay constant after interpolation
	mid := out.Frame(out.Frames() / 2)
	assert.InDelta(t, 0.25, mid[0], 1e-3)
	assert.InDelta(t, 0.25, mid[1], 1e-3)
}

func TestConvertRejectsUnsupportedFormat(t *testing.T) {
	_, err := Convert(Track{Format: Format{SampleRate: 44100, Channels: 6}}, Working)
	assert.Error(t, err)
}
