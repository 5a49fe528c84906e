package remix

import (
	"fmt"
	"log/slog"
	"slices"

	"redub/internal/audio"
	"redub/internal/logging"
	"redub/internal/separation"
	"redub/internal/services"
)

// Layout names the stem slots that must not reach the instrumental bed.
type Layout struct {
	VocalIndex int
	Skip       []int
}

// Excludes reports whether slot i is left out of the bed.
func (l Layout) Excludes(i int) bool {
	return i == l.VocalIndex || slices.Contains(l.Skip, i)
}

// Engine rebuilds instrumental beds and mixes them with vocal tracks. Every
// input must already be in the engine's format.
type Engine struct {
	format audio.Format
	logger *slog.Logger
}

// New constructs an Engine working in format.
func New(format audio.Format, logger *slog.Logger) (*Engine, error) {
	if err := format.Validate(); err != nil {
		return nil, services.Wrap(services.ErrCompositionInvariant, "remix", "init", "invalid working format", err)
	}
	return &Engine{format: format, logger: logging.NewComponentLogger(logger, "remix")}, nil
}

// Bed is an instrumental track plus the slots that went into it.
type Bed struct {
	Track audio.Track
	Used  []string
}

// Instrumental sums every present stem the layout does not exclude, with
// equal weight. Missing slots are skipped. When nothing is left the bed is
// an empty track, which mixes as silence.
func (e *Engine) Instrumental(stems separation.StemSet, layout Layout) (Bed, error) {
	var picked []audio.Track
	var used []string
	for i := 0; i < stems.Len(); i++ {
		if layout.Excludes(i) {
			continue
		}
		stem, ok := stems.At(i)
		if !ok {
			e.logger.Debug("stem slot absent; skipping",
				logging.Int("stem_index", i),
				logging.String("stem", stems.Stems[i].Name),
			)
			continue
		}
		if stem.Track.Format != e.format {
			return Bed{}, services.Wrap(services.ErrCompositionInvariant, "remix", "instrumental",
				fmt.Sprintf("stem %q is %s, want %s", stem.Name, stem.Track.Format, e.format), nil)
		}
		picked = append(picked, stem.Track)
		used = append(used, stem.Name)
	}
	if missing := stems.Missing(); len(missing) > 0 {
		logging.WarnWithContext(e.logger, "separation returned fewer stems than expected", "stems_missing",
			logging.Any("missing", missing),
			logging.String(logging.FieldErrorHint, "check the separation model's stem list"),
			logging.String(logging.FieldImpact, "instrumental bed built from the stems that exist"),
		)
	}
	bed := Sum(e.format, picked...)
	e.logger.Info("instrumental bed assembled",
		logging.String(logging.FieldEventType, "instrumental_ready"),
		logging.Any("stems", used),
		logging.Float64("duration_seconds", bed.Duration()),
	)
	return Bed{Track: bed, Used: used}, nil
}

// Mix overlays the vocal track on the bed with equal weight. The result is
// as long as the longer input and its samples are clamped to [-1, 1].
func (e *Engine) Mix(vocal, bed audio.Track) (audio.Track, error) {
	for name, t := range map[string]audio.Track{"vocal": vocal, "bed": bed} {
		if t.Format != e.format && !t.Empty() {
			return audio.Track{}, services.Wrap(services.ErrCompositionInvariant, "remix", "mix",
				fmt.Sprintf("%s track is %s, want %s", name, t.Format, e.format), nil)
		}
	}
	out := Sum(e.format, vocal, bed)
	if clipped := audio.Clamp(out); clipped > 0 {
		e.logger.Debug("mix clipped samples", logging.Int("clipped", clipped))
	}
	return out, nil
}

// Sum adds tracks sample by sample. The result is as long as the longest
// input; shorter inputs contribute silence past their end. Inputs must share
// format f; empty tracks are ignored.
func Sum(f audio.Format, tracks ...audio.Track) audio.Track {
	frames := 0
	for _, t := range tracks {
		frames = max(frames, t.Frames())
	}
	out := audio.Silence(f, frames)
	for _, t := range tracks {
		for i, s := range t.Samples {
			out.Samples[i] += s
		}
	}
	return out
}
