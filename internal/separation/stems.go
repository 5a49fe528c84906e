package separation

import (
	"context"

	"redub/internal/audio"
)

// Stem is one slot of a separation result. Present is false when the model
// did not produce the slot's file.
type Stem struct {
	Name    string
	Track   audio.Track
	Present bool
}

// StemSet is the ordered output of one separation run. Slot order follows the
// model's stem list, so a fixed index always names the same instrument.
type StemSet struct {
	Stems []Stem
}

// Len returns the number of slots, present or not.
func (s StemSet) Len() int {
	return len(s.Stems)
}

// At returns the stem in slot i when it exists and is present.
func (s StemSet) At(i int) (Stem, bool) {
	if i < 0 || i >= len(s.Stems) {
		return Stem{}, false
	}
	stem := s.Stems[i]
	return stem, stem.Present
}

// Missing lists the names of absent slots.
func (s StemSet) Missing() []string {
	var out []string
	for _, stem := range s.Stems {
		if !stem.Present {
			out = append(out, stem.Name)
		}
	}
	return out
}

// Separator splits a mixed recording into stems.
type Separator interface {
	Separate(ctx context.Context, mixPath string) (StemSet, error)
}
