// Package scratch manages per-job working directories.
//
// Each dubbing run gets <scratch_dir>/job-<uuid>, held with an flock for as
// long as the run lives. Extracted audio, recognizer output, stems and the
// composed track are written there and removed on Release. CleanStale and
// ListDirectories back the `redub clean` command and never touch a directory
// whose lock is still held.
package scratch
