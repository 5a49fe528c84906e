package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redub/internal/audio"
	"redub/internal/segment"
	"redub/internal/services"
)

// testFormat keeps frame math exact: one frame per millisecond.
var testFormat = audio.Format{SampleRate: 1000, Channels: 1}

func clip(seconds float64, value float64) audio.Track {
	t := audio.Silence(testFormat, testFormat.FramesFor(seconds))
	for i := range t.Samples {
		t.Samples[i] = value
	}
	return t
}

func newCompositor(t *testing.T, opts ...Option) *Compositor {
	t.Helper()
	c, err := New(testFormat, opts...)
	require.NoError(t, err)
	return c
}

func TestComposeInsertsGapSilence(t *testing.T) {
	c := newCompositor(t)
	res, err := c.Compose([]Cue{
		{Segment: segment.Segment{Index: 0, Text: "Hi", Start: 0, End: 1}, Clip: clip(1.2, 0.5)},
		{Segment: segment.Segment{Index: 1, Text: "there", Start: 3, End: 4}, Clip: clip(0.8, -0.5)},
	})
	require.NoError(t, err)

	assert.InDelta(t, 3.8, res.Track.Duration(), 1e-9)
	assert.Equal(t, 3800, res.Track.Frames())

	// clip 1 occupies [0,1200), silence [1200,3000), clip 2 [3000,3800)
	assert.Equal(t, 0.5, res.Track.Samples[0])
	assert.Equal(t, 0.5, res.Track.Samples[1199])
	assert.Equal(t, 0.0, res.Track.Samples[1200])
	assert.Equal(t, 0.0, res.Track.Samples[2999])
	assert.Equal(t, -0.5, res.Track.Samples[3000])
	assert.Equal(t, -0.5, res.Track.Samples[3799])

	require.Len(t, res.Placements, 2)
	assert.InDelta(t, 1.8, res.Placements[1].Silence, 1e-9)
	assert.InDelta(t, 3.0, res.Placements[1].PlacedStart, 1e-9)
	assert.Zero(t, res.MaxDrift)
}

func TestComposeAcceptsDrift(t *testing.T) {
	c := newCompositor(t)
	res, err := c.Compose([]Cue{
		{Segment: segment.Segment{Index: 0, Text: "Hi", Start: 0, End: 1}, Clip: clip(4.0, 0.5)},
		{Segment: segment.Segment{Index: 1, Text: "there", Start: 3, End: 4}, Clip: clip(0.8, -0.5)},
	})
	require.NoError(t, err)

	assert.Equal(t, 4800, res.Track.Frames())
	assert.Equal(t, 0.5, res.Track.Samples[3999])
	assert.Equal(t, -0.5, res.Track.Samples[4000])

	p := res.Placements[1]
	assert.InDelta(t, 3.0, p.NominalStart, 1e-9)
	assert.InDelta(t, 4.0, p.PlacedStart, 1e-9)
	assert.Zero(t, p.Silence)
	assert.InDelta(t, 1.0, p.Drift, 1e-9)
	assert.InDelta(t, 1.0, res.MaxDrift, 1e-9)
}

func TestComposeDriftCarriesForwardUntilAbsorbed(t *testing.T) {
	c := newCompositor(t)
	res, err := c.Compose([]Cue{
		{Segment: segment.Segment{Index: 0, Start: 0, End: 1}, Clip: clip(2.5, 0.1)},
		{Segment: segment.Segment{Index: 1, Start: 2, End: 3}, Clip: clip(1.0, 0.2)},
		{Segment: segment.Segment{Index: 2, Start: 6, End: 7}, Clip: clip(1.0, 0.3)},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.5, res.Placements[1].PlacedStart, 1e-9)
	assert.InDelta(t, 0.5, res.Placements[1].Drift, 1e-9)
	// cursor at 3.5; 2.5s of silence brings segment 2 back on time
	assert.InDelta(t, 6.0, res.Placements[2].PlacedStart, 1e-9)
	assert.InDelta(t, 2.5, res.Placements[2].Silence, 1e-9)
	assert.Zero(t, res.Placements[2].Drift)
	assert.Equal(t, 7000, res.Track.Frames())
}

func TestComposeZeroGapAddsNothing(t *testing.T) {
	c := newCompositor(t)
	first := clip(1.0, 0.4)
	second := clip(0.5, -0.4)
	res, err := c.Compose([]Cue{
		{Segment: segment.Segment{Index: 0, Start: 0, End: 1}, Clip: first},
		{Segment: segment.Segment{Index: 1, Start: 1, End: 1.5}, Clip: second},
	})
	require.NoError(t, err)

	want := append(append([]float64{}, first.Samples...), second.Samples...)
	assert.Equal(t, want, res.Track.Samples)
	assert.Zero(t, res.Placements[1].Silence)
}

func TestComposeKeepsEverySynthesizedFrame(t *testing.T) {
	c := newCompositor(t)
	cues := []Cue{
		{Segment: segment.Segment{Index: 0, Start: 0.5, End: 1}, Clip: clip(3.0, 0.1)},
		{Segment: segment.Segment{Index: 1, Start: 1.0, End: 2}, Clip: clip(0.25, 0.2)},
		{Segment: segment.Segment{Index: 2, Start: 1.1, End: 2}, Clip: clip(0.75, 0.3)},
		{Segment: segment.Segment{Index: 3, Start: 9.0, End: 10}, Clip: clip(0.5, 0.4)},
	}
	res, err := c.Compose(cues)
	require.NoError(t, err)

	var clipFrames, silenceFrames int
	for i, cue := range cues {
		clipFrames += cue.Clip.Frames()
		silenceFrames += testFormat.FramesFor(res.Placements[i].Silence)
	}
	assert.Equal(t, clipFrames+silenceFrames, res.Track.Frames())

	counts := map[float64]int{}
	for _, s := range res.Track.Samples {
		counts[s]++
	}
	for _, cue := range cues {
		assert.Equal(t, cue.Clip.Frames(), counts[cue.Clip.Samples[0]])
	}

	// placements never move backwards
	for i := 1; i < len(res.Placements); i++ {
		prev := res.Placements[i-1]
		assert.GreaterOrEqual(t, res.Placements[i].PlacedStart, prev.PlacedStart+prev.ClipDuration-1e-9)
	}
}

func TestComposeEmptyProducesSilentTrack(t *testing.T) {
	c := newCompositor(t)
	res, err := c.Compose(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Track.Frames())
	assert.Zero(t, res.Track.Peak())
	assert.Empty(t, res.Placements)

	custom := newCompositor(t, WithEmptySeconds(2.5))
	res, err = custom.Compose([]Cue{})
	require.NoError(t, err)
	assert.Equal(t, 2500, res.Track.Frames())
}

func TestComposeRejectsInvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		cues []Cue
	}{
		{"negative start", []Cue{{Segment: segment.Segment{Start: -1, End: 0}, Clip: clip(0.1, 0)}}},
		{"end before start", []Cue{{Segment: segment.Segment{Start: 2, End: 1}, Clip: clip(0.1, 0)}}},
		{"descending starts", []Cue{
			{Segment: segment.Segment{Index: 0, Start: 5, End: 6}, Clip: clip(0.1, 0)},
			{Segment: segment.Segment{Index: 1, Start: 1, End: 2}, Clip: clip(0.1, 0)},
		}},
		{"format mismatch", []Cue{{
			Segment: segment.Segment{Start: 0, End: 1},
			Clip:    audio.Silence(audio.Format{SampleRate: 2000, Channels: 1}, 10),
		}}},
	}
	c := newCompositor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compose(tt.cues)
			require.Error(t, err)
			assert.True(t, errors.Is(err, services.ErrCompositionInvariant), "got %v", err)
		})
	}
}

func TestNewRejectsInvalidFormat(t *testing.T) {
	_, err := New(audio.Format{SampleRate: 0, Channels: 1})
	assert.True(t, errors.Is(err, services.ErrCompositionInvariant))
}
