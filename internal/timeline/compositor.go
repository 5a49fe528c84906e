package timeline

import (
	"fmt"
	"log/slog"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/segment"
	"redub/internal/services"
)

// DefaultEmptySeconds is the length of the silent track produced when there
// is nothing to place.
const DefaultEmptySeconds = 1.0

// Cue pairs a segment with its rendered clip.
type Cue struct {
	Segment segment.Segment
	Clip    audio.Track
}

// Placement records where one clip ended up on the output timeline.
type Placement struct {
	Index        int
	NominalStart float64
	PlacedStart  float64
	Silence      float64
	ClipDuration float64
	// Drift is PlacedStart - NominalStart; positive when earlier clips
	// overran into this segment's slot.
	Drift float64
}

// Result is the composed vocal track plus its placement report.
type Result struct {
	Track      audio.Track
	Placements []Placement
	// MaxDrift is the largest Drift across placements.
	MaxDrift float64
}

// Compositor assembles rendered clips into one continuous track that follows
// the source timeline. Clips are never trimmed or stretched, so an overrunning
// clip pushes every later segment back.
type Compositor struct {
	format       audio.Format
	emptySeconds float64
	logger       *slog.Logger
}

// Option customizes a Compositor.
type Option func(*Compositor)

// WithEmptySeconds overrides the length of the track produced for zero cues.
func WithEmptySeconds(seconds float64) Option {
	return func(c *Compositor) {
		if seconds > 0 {
			c.emptySeconds = seconds
		}
	}
}

// WithLogger attaches a logger for placement diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compositor) {
		c.logger = logging.NewComponentLogger(logger, "timeline")
	}
}

// New constructs a compositor producing tracks in the given format.
func New(format audio.Format, opts ...Option) (*Compositor, error) {
	if err := format.Validate(); err != nil {
		return nil, services.Wrap(services.ErrCompositionInvariant, "compose", "init", "invalid working format", err)
	}
	c := &Compositor{
		format:       format,
		emptySeconds: DefaultEmptySeconds,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Format reports the output format of composed tracks.
func (c *Compositor) Format() audio.Format {
	return c.format
}

// Compose places every cue in order. The cursor advances by the inserted
// silence plus the clip's real length; a gap at or below zero inserts nothing
// and the clip starts at the cursor.
func (c *Compositor) Compose(cues []Cue) (Result, error) {
	if len(cues) == 0 {
		silent := audio.Silence(c.format, c.format.FramesFor(c.emptySeconds))
		c.logger.Info("no segments to place; emitting silent track",
			logging.String(logging.FieldEventType, "timeline_empty"),
			logging.Float64("duration_seconds", silent.Duration()),
		)
		return Result{Track: silent}, nil
	}

	if err := c.check(cues); err != nil {
		return Result{}, err
	}

	builder := audio.NewBuilder(c.format)
	placements := make([]Placement, 0, len(cues))
	cursor := 0
	var maxDrift float64

	for _, cue := range cues {
		startFrame := c.format.FramesFor(cue.Segment.Start)
		gap := startFrame - cursor
		builder.AppendSilence(gap)
		if gap > 0 {
			cursor += gap
		}
		placed := cursor
		if err := builder.Append(cue.Clip); err != nil {
			return Result{}, services.Wrap(services.ErrCompositionInvariant, "compose", "append", fmt.Sprintf("segment %d", cue.Segment.Index), err)
		}
		cursor += cue.Clip.Frames()

		p := Placement{
			Index:        cue.Segment.Index,
			NominalStart: cue.Segment.Start,
			PlacedStart:  c.format.Seconds(placed),
			Silence:      c.format.Seconds(max(gap, 0)),
			ClipDuration: cue.Clip.Duration(),
		}
		p.Drift = c.format.Seconds(placed - startFrame)
		if p.Drift > maxDrift {
			maxDrift = p.Drift
		}
		placements = append(placements, p)

		if gap < 0 {
			c.logger.Debug("segment placed late",
				logging.Int(logging.FieldSegmentIndex, cue.Segment.Index),
				logging.Float64("nominal_start", p.NominalStart),
				logging.Float64("placed_start", p.PlacedStart),
				logging.Float64("drift_seconds", p.Drift),
			)
		}
	}

	track := builder.Track()
	if track.Frames() != cursor {
		return Result{}, services.Wrap(services.ErrCompositionInvariant, "compose", "finalize",
			fmt.Sprintf("cursor %d frames does not match track length %d", cursor, track.Frames()), nil)
	}

	c.logger.Info("timeline composed",
		logging.String(logging.FieldEventType, "timeline_composed"),
		logging.Int("segments", len(cues)),
		logging.Float64("duration_seconds", track.Duration()),
		logging.Float64("max_drift_seconds", maxDrift),
	)
	return Result{Track: track, Placements: placements, MaxDrift: maxDrift}, nil
}

func (c *Compositor) check(cues []Cue) error {
	segs := make([]segment.Segment, len(cues))
	for i, cue := range cues {
		segs[i] = cue.Segment
		if cue.Clip.Format != c.format {
			return services.Wrap(services.ErrCompositionInvariant, "compose", "validate",
				fmt.Sprintf("segment %d clip is %s, want %s", cue.Segment.Index, cue.Clip.Format, c.format), nil)
		}
	}
	if err := segment.CheckOrder(segs); err != nil {
		return services.Wrap(services.ErrCompositionInvariant, "compose", "validate", "segment timing", err)
	}
	return nil
}
