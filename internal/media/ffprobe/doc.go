// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns a parsed Result; helper methods on
// Result expose stream counts, the first audio stream, and duration parsing.
// The pipeline uses it to reject inputs that lack a video or audio stream
// before any expensive stage runs.
package ffprobe
