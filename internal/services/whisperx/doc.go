// Package whisperx runs WhisperX through uvx to turn extracted speech into
// timestamped sentence segments.
//
// The service writes WhisperX's JSON output beside the input WAV in the job's
// scratch directory and converts it into segment.Segment values. Tests replace
// the command runner to avoid invoking uvx.
package whisperx
