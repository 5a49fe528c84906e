// Package services defines shared utilities consumed by the pipeline stages
// and the external adapters.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and segment indices for
//     logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     exactly one classification (recognition, translation, synthesis,
//     separation, mux, composition) and the name of the stage that raised it.
//   - Exit-code mapping used by the CLI.
//
// Adapters under services/ subpackages wrap their failures with these markers
// before returning them to the pipeline driver.
package services
