package segment

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one recognized utterance on the source audio timeline.
//
// Start and End are seconds from the beginning of the source audio and are
// never rewritten after recognition. Text holds the recognized utterance until
// translation replaces it; SourceText keeps the recognized wording.
type Segment struct {
	Index      int
	Text       string
	SourceText string
	Start      float64
	End        float64
}

// Duration returns the nominal length of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Blank reports whether the segment carries no speakable text.
func (s Segment) Blank() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Check reports the first timing problem with a single segment.
func (s Segment) Check() error {
	switch {
	case math.IsNaN(s.Start) || math.IsInf(s.Start, 0):
		return fmt.Errorf("segment %d: start %v is not finite", s.Index, s.Start)
	case math.IsNaN(s.End) || math.IsInf(s.End, 0):
		return fmt.Errorf("segment %d: end %v is not finite", s.Index, s.End)
	case s.Start < 0:
		return fmt.Errorf("segment %d: negative start %.3f", s.Index, s.Start)
	case s.End < s.Start:
		return fmt.Errorf("segment %d: end %.3f before start %.3f", s.Index, s.End, s.Start)
	}
	return nil
}

// CheckOrder validates every segment and ensures starts never decrease.
func CheckOrder(segments []Segment) error {
	prev := math.Inf(-1)
	for i, seg := range segments {
		if err := seg.Check(); err != nil {
			return err
		}
		if seg.Start < prev {
			return fmt.Errorf("segment %d at position %d starts at %.3f before previous start %.3f", seg.Index, i, seg.Start, prev)
		}
		prev = seg.Start
	}
	return nil
}

// Renumber assigns ordinal indices in slice order.
func Renumber(segments []Segment) {
	for i := range segments {
		segments[i].Index = i
	}
}

// Speakable drops segments whose text is empty after trimming. The remaining
// segments keep their original indices.
func Speakable(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Blank() {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Span returns the end time of the last segment, or zero when empty.
func Span(segments []Segment) float64 {
	var end float64
	for _, seg := range segments {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}
