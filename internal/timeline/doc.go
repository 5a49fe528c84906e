// Package timeline reassembles per-segment synthesized clips into a single
// vocal track aligned to the source timeline.
//
// Each clip is preceded by whatever silence is needed to reach its segment's
// nominal start. When earlier clips ran long the gap is negative, no silence
// is inserted, and the clip starts late; the delay carries forward. Audio is
// never trimmed, so the output always contains every synthesized frame.
package timeline
