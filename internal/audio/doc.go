// Package audio provides the in-memory PCM track used by the timeline and
// remix engines, WAV and raw PCM codecs for adapter boundaries, and format
// conversion into the working format (44.1 kHz stereo by default).
//
// Engine code never converts formats itself. Adapters call Convert once when
// a clip or stem enters the engine so every track handed to the compositor or
// the mixer already shares one Format.
package audio
